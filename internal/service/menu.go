package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_order/internal/ledger"
	"github.com/Skotchmaster/food_order/internal/logging"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/repo"
	"github.com/Skotchmaster/food_order/internal/search"
	"github.com/Skotchmaster/food_order/internal/transport"
)

type MenuService struct {
	Repo   *repo.GormRepo
	Search search.Searcher
}

func (s *MenuService) List(ctx context.Context, offset, limit int) (int64, []models.MenuItem, error) {
	return s.Repo.PageMenu(ctx, offset, limit)
}

func (s *MenuService) Get(ctx context.Context, id int) (*models.MenuItem, error) {
	item, err := s.Repo.GetMenuItem(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: menu item %d", ErrNotFound, id)
	}
	return item, err
}

// Quote prices quantity units of an item. quantity goes through the same
// clamping as an order.
func (s *MenuService) Quote(ctx context.Context, id int, quantity float64) (*transport.QuoteResponse, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	q := ledger.ClampQuantity(quantity)
	return &transport.QuoteResponse{
		ID:       item.ID,
		Quantity: q,
		Price:    item.Price,
		Total:    ledger.Quote(item.Price, q),
	}, nil
}

func (s *MenuService) SearchMenu(ctx context.Context, query string, offset, limit int) (int64, []models.MenuItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: q is required", ErrValidation)
	}
	total, hits, err := s.Search.Search(ctx, query, offset, limit)
	if err != nil || len(hits) == 0 {
		return total, hits, err
	}
	items, err := s.live(ctx, hits)
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// live swaps search hits for the current menu rows, keeping hit order.
// Indexed quantities lag behind checkouts.
func (s *MenuService) live(ctx context.Context, hits []models.MenuItem) ([]models.MenuItem, error) {
	ids := make([]int, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	rows, err := s.Repo.MenuItemsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load search hits: %w", err)
	}
	byID := make(map[int]models.MenuItem, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	out := make([]models.MenuItem, 0, len(hits))
	for _, h := range hits {
		if r, ok := byID[h.ID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MenuService) Stock(ctx context.Context) ([]models.MenuItem, error) {
	return s.Repo.ListMenu(ctx)
}

func (s *MenuService) Patch(ctx context.Context, id int, req transport.PatchMenuRequest) (*models.MenuItem, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}

	item, err := s.Repo.PatchMenuItem(ctx, id, req)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: menu item %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if s.Search != nil {
		if err := s.Search.Index(ctx, *item); err != nil {
			logging.FromContext(ctx).Warn("reindex_failed", "menu_item", id, "error", err)
		}
	}
	return item, nil
}

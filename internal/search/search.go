package search

import (
	"context"

	"github.com/Skotchmaster/food_order/internal/models"
)

// Searcher finds menu items by free text and keeps its index in step with
// menu changes.
type Searcher interface {
	Search(ctx context.Context, query string, offset, limit int) (int64, []models.MenuItem, error)
	Index(ctx context.Context, item models.MenuItem) error
}

type menuFinder interface {
	SearchMenu(ctx context.Context, q string, offset, limit int) (int64, []models.MenuItem, error)
}

// DBSearcher runs the query against the menu table. Index is a no-op since
// the table is the source.
type DBSearcher struct {
	repo menuFinder
}

func NewDBSearcher(repo menuFinder) *DBSearcher {
	return &DBSearcher{repo: repo}
}

func (s *DBSearcher) Search(ctx context.Context, query string, offset, limit int) (int64, []models.MenuItem, error) {
	return s.repo.SearchMenu(ctx, query, offset, limit)
}

func (s *DBSearcher) Index(context.Context, models.MenuItem) error {
	return nil
}

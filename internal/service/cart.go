package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/food_order/internal/ledger"
	"github.com/Skotchmaster/food_order/internal/logging"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/mykafka"
	"github.com/Skotchmaster/food_order/internal/repo"
	"github.com/Skotchmaster/food_order/internal/session"
	"github.com/Skotchmaster/food_order/internal/transport"
)

// CartService runs the cart of each user on a ledger kept in the session
// store. Calls for one user are serialised.
type CartService struct {
	Repo     *repo.GormRepo
	Sessions session.Store
	Events   EventPublisher
	Notifier Notifier

	locks keyedMutex
}

func toLedgerMenu(items []models.MenuItem) []ledger.MenuItem {
	out := make([]ledger.MenuItem, len(items))
	for i, it := range items {
		out[i] = ledger.MenuItem{
			ID:       it.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Desc:     it.Description,
			Image:    it.Image,
		}
	}
	return out
}

func view(l *ledger.Ledger) transport.CartResponse {
	return transport.CartResponse{Items: l.Cart(), Total: l.CartTotal()}
}

// load returns the session ledger of userID, hydrating it from the committed
// menu on first use.
func (s *CartService) load(ctx context.Context, userID string) (*ledger.Ledger, error) {
	snap, err := s.Sessions.Load(ctx, userID)
	if err == nil {
		return ledger.Restore(snap), nil
	}
	if !errors.Is(err, session.ErrMiss) {
		return nil, fmt.Errorf("load session: %w", err)
	}

	menu, err := s.Repo.ListMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	l := ledger.New(toLedgerMenu(menu))
	if err := s.save(ctx, userID, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *CartService) save(ctx context.Context, userID string, l *ledger.Ledger) error {
	if err := s.Sessions.Save(ctx, userID, l.Snapshot()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (transport.CartResponse, error) {
	key := userID.String()
	unlock := s.locks.Lock(key)
	defer unlock()

	l, err := s.load(ctx, key)
	if err != nil {
		return transport.CartResponse{}, err
	}
	return view(l), nil
}

// Menu is the menu as this user sees it: committed stock minus what sits in
// the user's cart.
func (s *CartService) Menu(ctx context.Context, userID uuid.UUID) ([]ledger.MenuItem, error) {
	key := userID.String()
	unlock := s.locks.Lock(key)
	defer unlock()

	l, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return l.Menu(), nil
}

// Add orders quantity units of item id. A nil quantity orders one unit.
func (s *CartService) Add(ctx context.Context, userID uuid.UUID, id int, quantity *float64) (transport.CartResponse, error) {
	q := 1
	if quantity != nil {
		q = ledger.ClampQuantity(*quantity)
	}

	key := userID.String()
	unlock := s.locks.Lock(key)
	defer unlock()

	l, err := s.load(ctx, key)
	if err != nil {
		return transport.CartResponse{}, err
	}
	if !l.OrderFood(id, q) {
		return transport.CartResponse{}, fmt.Errorf("%w: menu item %d", ErrNotFound, id)
	}
	if err := s.save(ctx, key, l); err != nil {
		return transport.CartResponse{}, err
	}

	publish(ctx, s.Events, mykafka.TopicCartEvents, key, map[string]any{
		"type":     "cart_item_added",
		"user_id":  key,
		"item_id":  id,
		"quantity": q,
	})
	return view(l), nil
}

// Remove drops the cart line of item id and gives it back to stock. A missing
// line leaves the cart as it is.
func (s *CartService) Remove(ctx context.Context, userID uuid.UUID, id int) (transport.CartResponse, error) {
	key := userID.String()
	unlock := s.locks.Lock(key)
	defer unlock()

	l, err := s.load(ctx, key)
	if err != nil {
		return transport.CartResponse{}, err
	}
	removed, ok := l.RemoveFromCart(id)
	if !ok {
		return view(l), nil
	}
	if err := s.save(ctx, key, l); err != nil {
		return transport.CartResponse{}, err
	}

	publish(ctx, s.Events, mykafka.TopicCartEvents, key, map[string]any{
		"type":     "cart_item_removed",
		"user_id":  key,
		"item_id":  id,
		"quantity": removed.Quantity,
	})
	return view(l), nil
}

// Checkout commits the cart as a pending order and empties it.
func (s *CartService) Checkout(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "cart.checkout")

	key := userID.String()
	unlock := s.locks.Lock(key)
	defer unlock()

	led, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	cart := led.Cart()
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		UserID: userID,
		Status: models.OrderStatusPending,
		Total:  led.CartTotal(),
		Items:  make([]models.OrderItem, len(cart)),
	}
	for i, c := range cart {
		order.Items[i] = models.OrderItem{
			MenuItemID: c.ID,
			Name:       c.Name,
			Price:      c.Price,
			Quantity:   c.Quantity,
		}
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		l.Error("checkout_error", "reason", "db_error", "error", err)
		return nil, err
	}

	// Start over from committed stock so restocks and other checkouts show up.
	next := led
	if menu, err := s.Repo.ListMenu(ctx); err == nil {
		next = ledger.New(toLedgerMenu(menu))
	} else {
		l.Warn("checkout_menu_reload_failed", "order_id", order.ID, "error", err)
		led.ClearCart()
	}
	if err := s.save(ctx, key, next); err != nil {
		l.Warn("checkout_session_save_failed", "order_id", order.ID, "error", err)
		if err := s.Sessions.Delete(ctx, key); err != nil {
			l.Error("checkout_session_delete_failed", "order_id", order.ID, "error", err)
		}
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, key, map[string]any{
		"type":     "order_created",
		"user_id":  key,
		"order_id": order.ID,
		"total":    order.Total,
	})
	if s.Notifier != nil {
		s.Notifier.Notify(key)
	}
	return order, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/mykafka"
	"github.com/Skotchmaster/food_order/internal/repo"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID uuid.UUID
	Admin  bool
}

type OrderService struct {
	Repo     *repo.GormRepo
	Events   EventPublisher
	Notifier Notifier
}

func (s *OrderService) List(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, &userID, offset, limit)
}

func (s *OrderService) ListAll(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, nil, offset, limit)
}

// visible loads order id if caller may act on it. Orders of other users are
// reported as missing.
func (s *OrderService) visible(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if !caller.Admin && order.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) Pay(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusPaid {
		return order, nil
	}

	order, err = s.Repo.MarkOrderPaid(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	s.changed(ctx, "order_paid", order)
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, caller Caller, id uint) error {
	if _, err := s.visible(ctx, caller, id); err != nil {
		return err
	}

	order, err := s.Repo.DeleteOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if err != nil {
		return err
	}

	s.changed(ctx, "order_deleted", order)
	return nil
}

func (s *OrderService) changed(ctx context.Context, kind string, order *models.Order) {
	owner := order.UserID.String()
	publish(ctx, s.Events, mykafka.TopicOrderEvents, owner, map[string]any{
		"type":     kind,
		"user_id":  owner,
		"order_id": order.ID,
	})
	if s.Notifier != nil {
		s.Notifier.Notify(owner)
	}
}

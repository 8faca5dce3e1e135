package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/food_order/internal/models"
)

// CreateOrder stores order with its items and takes every line out of the
// committed menu stock, floored at zero. Lines whose menu row is gone are
// stored without touching stock.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range order.Items {
			if err := adjustStock(tx, it.MenuItemID, -it.Quantity); err != nil {
				return err
			}
		}
		return tx.Create(order).Error
	})
}

func adjustStock(tx *gorm.DB, menuItemID, delta int) error {
	var item models.MenuItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, menuItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	next := item.Quantity + delta
	if next < 0 {
		next = 0
	}
	return tx.Model(&item).Update("quantity", next).Error
}

func (r *GormRepo) ListOrders(ctx context.Context, userID *uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	owned := func(db *gorm.DB) *gorm.DB {
		if userID == nil {
			return db
		}
		return db.Where("user_id = ?", *userID)
	}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Scopes(owned).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := []models.Order{}
	if err := r.DB.WithContext(ctx).
		Scopes(owned).
		Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) MarkOrderPaid(ctx context.Context, id uint) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", models.OrderStatusPaid)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetOrder(ctx, id)
}

// DeleteOrder removes the order. A pending order gives its lines back to the
// committed stock.
func (r *GormRepo) DeleteOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&order, id).Error; err != nil {
			return err
		}
		if order.Status == models.OrderStatusPending {
			for _, it := range order.Items {
				if err := adjustStock(tx, it.MenuItemID, it.Quantity); err != nil {
					return err
				}
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

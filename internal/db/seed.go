package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_order/internal/models"
)

var DefaultMenu = []models.MenuItem{
	{ID: 1, Name: "Hamburguesa de Pollo", Quantity: 40, Price: 24, Description: "Hamburguesa de pollo frito con lechuga y mayonesa", Image: "cb.jpg"},
	{ID: 2, Name: "Chicken Fingers", Quantity: 50, Price: 21, Description: "Tiras de pollo empanizado con salsa", Image: "cf.jpg"},
	{ID: 3, Name: "Papas Fritas", Quantity: 30, Price: 8, Description: "Papas fritas crujientes con sal", Image: "pf.jpg"},
	{ID: 4, Name: "Hot Dog", Quantity: 25, Price: 12, Description: "Salchicha con pan, cebolla y mostaza", Image: "hd.jpg"},
	{ID: 5, Name: "Refresco", Quantity: 60, Price: 5, Description: "Bebida fria de 500 ml", Image: "rf.jpg"},
}

// Seed fills an empty menu table. It returns the number of rows inserted.
func Seed(ctx context.Context, db *gorm.DB, menu []models.MenuItem) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count menu: %w", err)
	}
	if count > 0 || len(menu) == 0 {
		return 0, nil
	}

	rows := append([]models.MenuItem(nil), menu...)
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("seed menu: %w", err)
	}
	return len(rows), nil
}

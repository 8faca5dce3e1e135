package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

type MenuItem struct {
	ID          int     `gorm:"primaryKey"                    json:"id"`
	Name        string  `gorm:"not null"                      json:"name"`
	Description string  `gorm:"not null;default:''"           json:"desc"`
	Image       string  `gorm:"not null;default:''"           json:"image"`
	Price       float64 `gorm:"not null"                      json:"price"`
	Quantity    int     `gorm:"not null;check:quantity>=0"    json:"quantity"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	Roles        string    `gorm:"not null;default:user" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Roles == "" {
		u.Roles = RoleUser
	}
	return nil
}

func (u User) RoleList() []string {
	out := []string{}
	for _, r := range strings.Split(u.Roles, ",") {
		r = strings.TrimSpace(r)
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func (u User) HasRole(role string) bool {
	return slices.Contains(u.RoleList(), role)
}

func (u *User) SetRoles(roles []string) {
	list := []string{RoleUser}
	for _, r := range roles {
		if r != "" && !slices.Contains(list, r) {
			list = append(list, r)
		}
	}
	u.Roles = strings.Join(list, ",")
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index"      json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	Token     string    `gorm:"not null"             json:"-"`
	ExpiresAt int64     `gorm:"not null"             json:"expires_at"`
	Revoked   bool      `gorm:"default:false"        json:"revoked"`
}

type Order struct {
	ID        uint        `gorm:"primaryKey"                              json:"id"`
	UserID    uuid.UUID   `gorm:"type:uuid;index;not null"                json:"user_id"`
	Total     float64     `gorm:"not null"                                json:"total"`
	Status    string      `gorm:"not null;default:pending"                json:"status"`
	CreatedAt time.Time   `                                               json:"created_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID         uint    `gorm:"primaryKey"                json:"-"`
	OrderID    uint    `gorm:"index;not null"            json:"-"`
	MenuItemID int     `gorm:"not null"                  json:"id"`
	Name       string  `gorm:"not null"                  json:"name"`
	Price      float64 `gorm:"not null"                  json:"price"`
	Quantity   int     `gorm:"not null;check:quantity>0" json:"quantity"`
}

package transport

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Skotchmaster/food_order/internal/ledger"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"is_admin"`
}

type AddToCartRequest struct {
	ID       int       `json:"id"`
	Quantity *Quantity `json:"quantity"`
}

// Quantity accepts a JSON number or a numeric string. Anything else decodes
// to NaN, which ledger.ClampQuantity turns into 1.
type Quantity float64

func (q *Quantity) UnmarshalJSON(b []byte) error {
	*q = Quantity(parseQuantity(b))
	return nil
}

func parseQuantity(b []byte) float64 {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return math.NaN()
	}
	switch x := v.(type) {
	case float64:
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// Value is nil when the request carried no quantity.
func (q *Quantity) Value() *float64 {
	if q == nil {
		return nil
	}
	v := float64(*q)
	return &v
}

type QuoteResponse struct {
	ID       int     `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type PatchMenuRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"desc"`
	Image       *string  `json:"image"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}

type SetAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

type SetRolesRequest struct {
	Roles []string `json:"roles"`
}

type CartResponse struct {
	Items []ledger.CartItem `json:"items"`
	Total float64           `json:"total"`
}

type PageResponse[T any] struct {
	Items []T            `json:"items"`
	Total int64          `json:"total"`
	Meta  map[string]any `json:"meta"`
}

// Package ledger keeps a menu's stock and a cart in step with each other.
//
// Every operation is total: unknown ids and bad quantities never fail, they
// are ignored or clamped. Ordering moves stock from the menu into the cart
// and removing a cart line moves it back.
package ledger

import "sync"

type MenuItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Desc     string  `json:"desc"`
	Image    string  `json:"image"`
}

type CartItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (c CartItem) Subtotal() float64 {
	return c.Price * float64(c.Quantity)
}

type Snapshot struct {
	Menu []MenuItem `json:"menu"`
	Cart []CartItem `json:"cart"`
}

type Ledger struct {
	mu    sync.Mutex
	menu  []MenuItem
	index map[int]int
	cart  []CartItem
}

// New copies menu, so later changes to the caller's slice are not seen.
// A duplicated id keeps its first entry.
func New(menu []MenuItem) *Ledger {
	l := &Ledger{
		menu:  make([]MenuItem, 0, len(menu)),
		index: make(map[int]int, len(menu)),
	}
	for _, m := range menu {
		if _, ok := l.index[m.ID]; ok {
			continue
		}
		if m.Quantity < 0 {
			m.Quantity = 0
		}
		l.index[m.ID] = len(l.menu)
		l.menu = append(l.menu, m)
	}
	return l
}

func Restore(s Snapshot) *Ledger {
	l := New(s.Menu)
	seen := make(map[int]struct{}, len(s.Cart))
	for _, c := range s.Cart {
		if c.Quantity <= 0 {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		l.cart = append(l.cart, c)
	}
	return l
}

// OrderFood takes quantity units of the menu item id out of stock, never
// going below zero, and adds the same quantity to the cart. It reports false
// when id is not on the menu.
func (l *Ledger) OrderFood(id, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.index[id]
	if !ok {
		return false
	}
	food := &l.menu[pos]

	food.Quantity -= quantity
	if food.Quantity < 0 {
		food.Quantity = 0
	}

	for i := range l.cart {
		if l.cart[i].ID == id {
			l.cart[i].Quantity += quantity
			return true
		}
	}
	l.cart = append(l.cart, CartItem{
		ID:       food.ID,
		Name:     food.Name,
		Price:    food.Price,
		Quantity: quantity,
	})
	return true
}

// RemoveFromCart deletes the cart line for id and gives its quantity back to
// the menu. A missing line is a no-op.
func (l *Ledger) RemoveFromCart(id int) (CartItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, c := range l.cart {
		if c.ID != id {
			continue
		}
		if pos, ok := l.index[id]; ok {
			l.menu[pos].Quantity += c.Quantity
		}
		l.cart = append(l.cart[:i], l.cart[i+1:]...)
		return c, true
	}
	return CartItem{}, false
}

func (l *Ledger) CartTotal() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, c := range l.cart {
		total += c.Subtotal()
	}
	return total
}

// ClearCart empties the cart without restocking. It is used once the cart
// has been committed as an order.
func (l *Ledger) ClearCart() []CartItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.cart
	l.cart = nil
	return out
}

func (l *Ledger) Item(id int) (MenuItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.index[id]
	if !ok {
		return MenuItem{}, false
	}
	return l.menu[pos], true
}

func (l *Ledger) Menu() []MenuItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]MenuItem(nil), l.menu...)
}

func (l *Ledger) Cart() []CartItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]CartItem{}, l.cart...)
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Snapshot{
		Menu: append([]MenuItem(nil), l.menu...),
		Cart: append([]CartItem{}, l.cart...),
	}
}

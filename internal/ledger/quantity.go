package ledger

import "math"

// ClampQuantity turns raw user input into an order quantity. Anything that
// is not a finite number of at least one becomes 1; fractions are truncated.
func ClampQuantity(q float64) int {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 1
	}
	if q >= math.MaxInt32 {
		return math.MaxInt32
	}
	n := int(q)
	if n < 1 {
		return 1
	}
	return n
}

func Quote(price float64, quantity int) float64 {
	if quantity < 1 {
		quantity = 1
	}
	return price * float64(quantity)
}

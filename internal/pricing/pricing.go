// Package pricing does order arithmetic in integer cents. Floats never
// touch money.
package pricing

const basisPointDenominator = 10000

// Subtotal multiplies a unit price by a quantity.
func Subtotal(unitPriceCents int64, quantity int) int64 {
	return unitPriceCents * int64(quantity)
}

// Commission applies a basis-point rate to a subtotal, rounding half-up.
func Commission(subtotalCents int64, rateBasisPoints int64) int64 {
	return (subtotalCents*rateBasisPoints + basisPointDenominator/2) / basisPointDenominator
}

// Total is what the buyer pays: subtotal plus platform commission.
func Total(subtotalCents, commissionCents int64) int64 {
	return subtotalCents + commissionCents
}

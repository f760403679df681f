package domain

// SalePrice derives the effective price from a list price and a discount
// percent: listPrice * (1 - discountPercent/100). No rounding is applied;
// the effective price is exactly the formula result. A discount of 0
// returns the list price unchanged; 100 returns zero.
func SalePrice(listPrice, discountPercent float64) float64 {
	return listPrice * (1 - discountPercent/100)
}

package model

import "github.com/shopspring/decimal"

// Display formats an amount for presentation. Never feed the result back into calculations.
func Display(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// NonNegative clamps amount at zero.
func NonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

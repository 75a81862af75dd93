package value

import "github.com/shopspring/decimal"

// minor-unit precision of the venue currency
const currencyPlaces = 2

// RoundMoney rounds to the currency's minor unit, half up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(currencyPlaces)
}

// ClampMoney caps d at max and floors it at zero.
func ClampMoney(d, max decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(max) {
		d = max
	}

	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}

package value

import "fmt"

// DealType discriminates which type-specific fields of a deal are meaningful.
type DealType string

const (
	PercentageDiscount DealType = "PERCENTAGE_DISCOUNT"
	FixedDiscount      DealType = "FIXED_DISCOUNT"
	Combo              DealType = "COMBO"
	BuyXGetY           DealType = "BUY_X_GET_Y"
	MinimumPurchase    DealType = "MINIMUM_PURCHASE"
)

func (t DealType) String() string {
	return string(t)
}

func (t DealType) Valid() bool {
	switch t {
	case PercentageDiscount, FixedDiscount, Combo, BuyXGetY, MinimumPurchase:
		return true
	}
	return false
}

func ParseDealType(s string) (DealType, error) {
	t := DealType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown deal type %q", s)
	}

	return t, nil
}

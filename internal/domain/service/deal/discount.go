package service

import (
	"github.com/shopspring/decimal"

	"promo-engine/internal/domain/entity"
	"promo-engine/internal/domain/value"
)

var oneHundred = decimal.NewFromInt(100) //nolint:gochecknoglobals

// ComputeDiscount returns the monetary effect of an eligible deal against
// the full order subtotal. Callers must have established eligibility first.
func ComputeDiscount(d entity.Deal, order entity.OrderContext) decimal.Decimal {
	return computeDiscountOn(d, order, order.Subtotal())
}

// computeDiscountOn computes against an explicit base so selection can apply
// deals sequentially: each discount is taken from what is left of the total.
// The result is always within [0, base].
func computeDiscountOn(d entity.Deal, order entity.OrderContext, base decimal.Decimal) decimal.Decimal {
	switch d.Type {
	case value.PercentageDiscount:
		return percentageOf(base, d.DiscountPercentage)

	case value.FixedDiscount:
		return value.ClampMoney(d.DiscountAmount, base)

	case value.Combo:
		return value.ClampMoney(comboSavings(d, order), base)

	case value.BuyXGetY:
		return value.ClampMoney(buyXGetYSavings(d, order), base)

	case value.MinimumPurchase:
		// The threshold itself has no monetary effect; it gates an optional
		// percentage or fixed benefit.
		switch {
		case !d.DiscountPercentage.IsZero():
			return percentageOf(base, d.DiscountPercentage)
		case !d.DiscountAmount.IsZero():
			return value.ClampMoney(d.DiscountAmount, base)
		default:
			return decimal.Zero
		}
	}

	return decimal.Zero
}

func percentageOf(base, percentage decimal.Decimal) decimal.Decimal {
	discount := value.RoundMoney(base.Mul(percentage).Div(oneHundred))

	return value.ClampMoney(discount, base)
}

// comboSavings is the gap between the combo items' cart prices and the flat
// combo price.
func comboSavings(d entity.Deal, order entity.OrderContext) decimal.Decimal {
	sum := decimal.Zero

	for _, itemID := range d.ComboItems {
		for _, line := range order.Lines {
			if line.ItemID == itemID {
				sum = sum.Add(line.UnitPrice)
				break
			}
		}
	}

	savings := sum.Sub(d.ComboPrice)
	if savings.IsNegative() {
		return decimal.Zero
	}

	return value.RoundMoney(savings)
}

// buyXGetYSavings prices the free units at the cheapest qualifying unit
// price, so the discount always lands on the lowest-priced items first.
func buyXGetYSavings(d entity.Deal, order entity.OrderContext) decimal.Decimal {
	groupSize := d.BuyQuantity + d.GetQuantity
	if groupSize <= 0 {
		return decimal.Zero
	}

	var (
		qty      int
		cheapest decimal.Decimal
		found    bool
	)

	for _, line := range order.Lines {
		if line.Quantity <= 0 || !lineQualifies(d, line) {
			continue
		}

		qty += line.Quantity

		if !found || line.UnitPrice.LessThan(cheapest) {
			cheapest = line.UnitPrice
			found = true
		}
	}

	freeUnits := qty / groupSize * d.GetQuantity
	if freeUnits == 0 || !found {
		return decimal.Zero
	}

	return value.RoundMoney(cheapest.Mul(decimal.NewFromInt(int64(freeUnits))))
}

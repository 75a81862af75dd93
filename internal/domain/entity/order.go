package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a single order line as seen by the evaluation core.
type CartLine struct {
	ItemID     uuid.UUID
	CategoryID uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
}

func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderContext is the evaluation input for one checkout. The timestamp is
// injected by the caller; the core never reads a global clock.
type OrderContext struct {
	Lines      []CartLine
	BranchID   uuid.UUID
	CustomerID *uuid.UUID
	Timestamp  time.Time
}

// Subtotal is the undiscounted order total.
func (o OrderContext) Subtotal() decimal.Decimal {
	sum := decimal.Zero

	for _, l := range o.Lines {
		if l.Quantity <= 0 {
			continue
		}
		sum = sum.Add(l.Total())
	}

	return sum
}

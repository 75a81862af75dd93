package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageRecord marks that a deal was applied to an order. Records are
// append-only: they are never mutated or deleted, only aggregated.
type UsageRecord struct {
	ID             uuid.UUID
	DealID         uuid.UUID
	CustomerID     *uuid.UUID // nil for guest checkouts
	OrderID        uuid.UUID
	DiscountAmount decimal.Decimal
	UsedAt         time.Time
}

// UsageStats is the read-side aggregation over a deal's usage log.
type UsageStats struct {
	TotalUsageCount     int
	TotalDiscountGiven  decimal.Decimal
	UniqueCustomerCount int
	AverageDiscount     decimal.Decimal
	RecentUsage         []UsageRecord
}

// AppliedDeal pairs a selected deal with the discount it contributed.
type AppliedDeal struct {
	Deal     Deal
	Discount decimal.Decimal
}

// Selection is the outcome of deal selection for one order.
type Selection struct {
	Applied    []AppliedDeal
	Subtotal   decimal.Decimal
	FinalTotal decimal.Decimal
}

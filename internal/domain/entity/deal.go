package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"promo-engine/internal/domain"
	"promo-engine/internal/domain/value"
	"promo-engine/pkg/errcodes"
)

// Deal is a promotional rule. Which of the type-specific fields are
// meaningful is determined by Type; Validate enforces that exactly the
// matching set is populated before a deal is ever stored.
type Deal struct {
	ID          uuid.UUID
	Name        string
	Description string
	BadgeText   string

	Type value.DealType

	// Type-specific fields. DiscountPercentage and DiscountAmount double as
	// the optional benefit of a MINIMUM_PURCHASE deal.
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	ComboItems         []uuid.UUID
	ComboPrice         decimal.Decimal
	BuyQuantity        int
	GetQuantity        int
	MinimumPurchase    decimal.Decimal

	// Applicability filters, empty = unrestricted.
	ApplicableCategories []uuid.UUID
	ApplicableItems      []uuid.UUID
	ApplicableBranches   []uuid.UUID

	// Temporal filters, nil = unrestricted.
	StartDate  *time.Time
	EndDate    *time.Time
	StartTime  *value.TimeOfDay
	EndTime    *value.TimeOfDay
	DaysOfWeek value.Weekdays

	// Usage limits, nil = unlimited.
	MaxUsagePerCustomer *int
	MaxTotalUsage       *int

	Priority      int
	AllowStacking bool
	IsActive      bool
	ShowOnWebsite bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate rejects malformed definitions at create/update time, so the
// evaluation side can assume well-formed input.
func (d Deal) Validate() error {
	if d.Name == "" {
		return domain.NewError(errcodes.InvalidDeal, "name is required")
	}

	if !d.Type.Valid() {
		return domain.NewError(errcodes.InvalidDealType, "unknown deal type")
	}

	if d.Priority < 0 || d.Priority > 100 {
		return domain.NewError(errcodes.InvalidDeal, "priority must be within 0-100")
	}

	if err := d.validateTypeFields(); err != nil {
		return err
	}

	return d.validateWindows()
}

func (d Deal) validateTypeFields() error {
	hundred := decimal.NewFromInt(100)

	if d.DiscountPercentage.IsNegative() || d.DiscountPercentage.GreaterThan(hundred) {
		return domain.NewError(errcodes.InvalidDeal, "discount percentage must be within 0-100")
	}

	if d.DiscountAmount.IsNegative() || d.ComboPrice.IsNegative() || d.MinimumPurchase.IsNegative() {
		return domain.NewError(errcodes.InvalidDeal, "money fields must not be negative")
	}

	if d.BuyQuantity < 0 || d.GetQuantity < 0 {
		return domain.NewError(errcodes.InvalidDeal, "quantity fields must not be negative")
	}

	switch d.Type {
	case value.PercentageDiscount:
		if d.DiscountPercentage.IsZero() {
			return domain.NewError(errcodes.InvalidDeal, "percentage deal requires a discount percentage")
		}
		if d.hasFixedFields() || d.hasComboFields() || d.hasBuyXGetYFields() || d.hasMinimumPurchaseFields() {
			return domain.NewError(errcodes.InvalidDeal, "percentage deal carries fields of another type")
		}
	case value.FixedDiscount:
		if d.DiscountAmount.IsZero() {
			return domain.NewError(errcodes.InvalidDeal, "fixed deal requires a discount amount")
		}
		if d.hasPercentageFields() || d.hasComboFields() || d.hasBuyXGetYFields() || d.hasMinimumPurchaseFields() {
			return domain.NewError(errcodes.InvalidDeal, "fixed deal carries fields of another type")
		}
	case value.Combo:
		if len(d.ComboItems) == 0 {
			return domain.NewError(errcodes.InvalidDeal, "combo deal requires combo items")
		}
		if d.hasPercentageFields() || d.hasFixedFields() || d.hasBuyXGetYFields() || d.hasMinimumPurchaseFields() {
			return domain.NewError(errcodes.InvalidDeal, "combo deal carries fields of another type")
		}
	case value.BuyXGetY:
		if d.BuyQuantity < 1 || d.GetQuantity < 1 {
			return domain.NewError(errcodes.InvalidDeal, "buy-x-get-y deal requires positive quantities")
		}
		if d.hasPercentageFields() || d.hasFixedFields() || d.hasComboFields() || d.hasMinimumPurchaseFields() {
			return domain.NewError(errcodes.InvalidDeal, "buy-x-get-y deal carries fields of another type")
		}
	case value.MinimumPurchase:
		if d.MinimumPurchase.IsZero() {
			return domain.NewError(errcodes.InvalidDeal, "minimum purchase deal requires a threshold")
		}
		// A percentage or fixed benefit is optional here, but not both.
		if d.hasPercentageFields() && d.hasFixedFields() {
			return domain.NewError(errcodes.InvalidDeal, "minimum purchase deal cannot carry both benefit kinds")
		}
		if d.hasComboFields() || d.hasBuyXGetYFields() {
			return domain.NewError(errcodes.InvalidDeal, "minimum purchase deal carries fields of another type")
		}
	}

	return nil
}

func (d Deal) validateWindows() error {
	if d.StartDate != nil && d.EndDate != nil && d.StartDate.After(*d.EndDate) {
		return domain.NewError(errcodes.InvalidTimeWindow, "start date is after end date")
	}

	if (d.StartTime == nil) != (d.EndTime == nil) {
		return domain.NewError(errcodes.InvalidTimeWindow, "start time and end time must be set together")
	}

	if d.StartTime != nil && (!d.StartTime.Valid() || !d.EndTime.Valid()) {
		return domain.NewError(errcodes.InvalidTimeWindow, "clock window is out of range")
	}

	return nil
}

func (d Deal) hasPercentageFields() bool { return !d.DiscountPercentage.IsZero() }
func (d Deal) hasFixedFields() bool      { return !d.DiscountAmount.IsZero() }
func (d Deal) hasComboFields() bool      { return len(d.ComboItems) > 0 || !d.ComboPrice.IsZero() }
func (d Deal) hasBuyXGetYFields() bool   { return d.BuyQuantity != 0 || d.GetQuantity != 0 }

func (d Deal) hasMinimumPurchaseFields() bool { return !d.MinimumPurchase.IsZero() }

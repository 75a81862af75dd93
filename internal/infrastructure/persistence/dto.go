package persistence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"promo-engine/internal/domain/entity"
	"promo-engine/internal/domain/value"
)

// dealSchema maps one row of the deals table. The ID sets are kept as
// jsonb arrays so the applicability lists stay a single column each.
type dealSchema struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	BadgeText   string    `db:"badge_text"`
	DealType    string    `db:"deal_type"`

	DiscountPercentage decimal.Decimal `db:"discount_percentage"`
	DiscountAmount     decimal.Decimal `db:"discount_amount"`
	ComboItems         []byte          `db:"combo_items"`
	ComboPrice         decimal.Decimal `db:"combo_price"`
	BuyQuantity        int             `db:"buy_quantity"`
	GetQuantity        int             `db:"get_quantity"`
	MinimumPurchase    decimal.Decimal `db:"minimum_purchase"`

	ApplicableCategories []byte `db:"applicable_categories"`
	ApplicableItems      []byte `db:"applicable_items"`
	ApplicableBranches   []byte `db:"applicable_branches"`

	StartDate  *time.Time `db:"start_date"`
	EndDate    *time.Time `db:"end_date"`
	StartTime  *int       `db:"start_time"`
	EndTime    *int       `db:"end_time"`
	DaysOfWeek int        `db:"days_of_week"`

	MaxUsagePerCustomer *int `db:"max_usage_per_customer"`
	MaxTotalUsage       *int `db:"max_total_usage"`
	UsageCount          int  `db:"usage_count"`

	Priority      int  `db:"priority"`
	AllowStacking bool `db:"allow_stacking"`
	IsActive      bool `db:"is_active"`
	ShowOnWebsite bool `db:"show_on_website"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func fromDeal(d *entity.Deal) (*dealSchema, error) {
	comboItems, err := marshalIDs(d.ComboItems)
	if err != nil {
		return nil, err
	}

	categories, err := marshalIDs(d.ApplicableCategories)
	if err != nil {
		return nil, err
	}

	items, err := marshalIDs(d.ApplicableItems)
	if err != nil {
		return nil, err
	}

	branches, err := marshalIDs(d.ApplicableBranches)
	if err != nil {
		return nil, err
	}

	return &dealSchema{
		ID:                   d.ID,
		Name:                 d.Name,
		Description:          d.Description,
		BadgeText:            d.BadgeText,
		DealType:             string(d.Type),
		DiscountPercentage:   d.DiscountPercentage,
		DiscountAmount:       d.DiscountAmount,
		ComboItems:           comboItems,
		ComboPrice:           d.ComboPrice,
		BuyQuantity:          d.BuyQuantity,
		GetQuantity:          d.GetQuantity,
		MinimumPurchase:      d.MinimumPurchase,
		ApplicableCategories: categories,
		ApplicableItems:      items,
		ApplicableBranches:   branches,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		StartTime:            timeOfDayToInt(d.StartTime),
		EndTime:              timeOfDayToInt(d.EndTime),
		DaysOfWeek:           int(d.DaysOfWeek),
		MaxUsagePerCustomer:  d.MaxUsagePerCustomer,
		MaxTotalUsage:        d.MaxTotalUsage,
		Priority:             d.Priority,
		AllowStacking:        d.AllowStacking,
		IsActive:             d.IsActive,
		ShowOnWebsite:        d.ShowOnWebsite,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}, nil
}

func (s *dealSchema) toDomain() (*entity.Deal, error) {
	comboItems, err := unmarshalIDs(s.ComboItems)
	if err != nil {
		return nil, err
	}

	categories, err := unmarshalIDs(s.ApplicableCategories)
	if err != nil {
		return nil, err
	}

	items, err := unmarshalIDs(s.ApplicableItems)
	if err != nil {
		return nil, err
	}

	branches, err := unmarshalIDs(s.ApplicableBranches)
	if err != nil {
		return nil, err
	}

	return &entity.Deal{
		ID:                   s.ID,
		Name:                 s.Name,
		Description:          s.Description,
		BadgeText:            s.BadgeText,
		Type:                 value.DealType(s.DealType),
		DiscountPercentage:   s.DiscountPercentage,
		DiscountAmount:       s.DiscountAmount,
		ComboItems:           comboItems,
		ComboPrice:           s.ComboPrice,
		BuyQuantity:          s.BuyQuantity,
		GetQuantity:          s.GetQuantity,
		MinimumPurchase:      s.MinimumPurchase,
		ApplicableCategories: categories,
		ApplicableItems:      items,
		ApplicableBranches:   branches,
		StartDate:            s.StartDate,
		EndDate:              s.EndDate,
		StartTime:            intToTimeOfDay(s.StartTime),
		EndTime:              intToTimeOfDay(s.EndTime),
		DaysOfWeek:           value.Weekdays(s.DaysOfWeek),
		MaxUsagePerCustomer:  s.MaxUsagePerCustomer,
		MaxTotalUsage:        s.MaxTotalUsage,
		Priority:             s.Priority,
		AllowStacking:        s.AllowStacking,
		IsActive:             s.IsActive,
		ShowOnWebsite:        s.ShowOnWebsite,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}, nil
}

// usageSchema maps one row of the append-only usage_records table.
type usageSchema struct {
	ID             uuid.UUID       `db:"id"`
	DealID         uuid.UUID       `db:"deal_id"`
	CustomerID     *uuid.UUID      `db:"customer_id"`
	OrderID        uuid.UUID       `db:"order_id"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	UsedAt         time.Time       `db:"used_at"`
}

func (s *usageSchema) toDomain() entity.UsageRecord {
	return entity.UsageRecord{
		ID:             s.ID,
		DealID:         s.DealID,
		CustomerID:     s.CustomerID,
		OrderID:        s.OrderID,
		DiscountAmount: s.DiscountAmount,
		UsedAt:         s.UsedAt,
	}
}

func marshalIDs(ids []uuid.UUID) ([]byte, error) {
	if len(ids) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(ids)
}

func unmarshalIDs(raw []byte) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

func timeOfDayToInt(t *value.TimeOfDay) *int {
	if t == nil {
		return nil
	}
	n := int(*t)
	return &n
}

func intToTimeOfDay(n *int) *value.TimeOfDay {
	if n == nil {
		return nil
	}
	t := value.TimeOfDay(*n)
	return &t
}

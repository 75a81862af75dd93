// This file would normally be generated from an openapi specification and
// be called types.gen.go
package rest

import "time"

// Deal is the wire representation of a promotional rule.
type Deal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BadgeText   string `json:"badgeText,omitempty"`
	DealType    string `json:"dealType"`

	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	DiscountAmount     *float64 `json:"discountAmount,omitempty"`
	ComboItems         []string `json:"comboItems,omitempty"`
	ComboPrice         *float64 `json:"comboPrice,omitempty"`
	BuyQuantity        *int     `json:"buyQuantity,omitempty"`
	GetQuantity        *int     `json:"getQuantity,omitempty"`
	MinimumPurchase    *float64 `json:"minimumPurchase,omitempty"`

	ApplicableCategories []string `json:"applicableCategories,omitempty"`
	ApplicableItems      []string `json:"applicableItems,omitempty"`
	ApplicableBranches   []string `json:"applicableBranches,omitempty"`

	// Dates use the "2006-01-02" form, times of day the "15:04" form,
	// days of week are 0-6 with Sunday as 0.
	StartDate  *string `json:"startDate,omitempty"`
	EndDate    *string `json:"endDate,omitempty"`
	StartTime  *string `json:"startTime,omitempty"`
	EndTime    *string `json:"endTime,omitempty"`
	DaysOfWeek []int   `json:"daysOfWeek,omitempty"`

	MaxUsagePerCustomer *int `json:"maxUsagePerCustomer,omitempty"`
	MaxTotalUsage       *int `json:"maxTotalUsage,omitempty"`

	Priority      int  `json:"priority"`
	AllowStacking bool `json:"allowStacking"`
	IsActive      bool `json:"isActive"`
	ShowOnWebsite bool `json:"showOnWebsite"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DealRequest is the write model for creating or replacing a deal.
type DealRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	BadgeText   string `json:"badgeText" validate:"max=100"`
	DealType    string `json:"dealType" validate:"required"`

	DiscountPercentage *float64 `json:"discountPercentage" validate:"omitempty,gt=0,lte=100"`
	DiscountAmount     *float64 `json:"discountAmount" validate:"omitempty,gt=0"`
	ComboItems         []string `json:"comboItems" validate:"omitempty,dive,uuid"`
	ComboPrice         *float64 `json:"comboPrice" validate:"omitempty,gt=0"`
	BuyQuantity        *int     `json:"buyQuantity" validate:"omitempty,min=1"`
	GetQuantity        *int     `json:"getQuantity" validate:"omitempty,min=1"`
	MinimumPurchase    *float64 `json:"minimumPurchase" validate:"omitempty,gt=0"`

	ApplicableCategories []string `json:"applicableCategories" validate:"omitempty,dive,uuid"`
	ApplicableItems      []string `json:"applicableItems" validate:"omitempty,dive,uuid"`
	ApplicableBranches   []string `json:"applicableBranches" validate:"omitempty,dive,uuid"`

	StartDate  *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime  *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime    *string `json:"endTime" validate:"omitempty,datetime=15:04"`
	DaysOfWeek []int   `json:"daysOfWeek" validate:"omitempty,dive,min=0,max=6"`

	MaxUsagePerCustomer *int `json:"maxUsagePerCustomer" validate:"omitempty,min=1"`
	MaxTotalUsage       *int `json:"maxTotalUsage" validate:"omitempty,min=1"`

	Priority      int  `json:"priority" validate:"min=0,max=100"`
	AllowStacking bool `json:"allowStacking"`
	IsActive      bool `json:"isActive"`
	ShowOnWebsite bool `json:"showOnWebsite"`
}

type DealsResponse struct {
	Deals []Deal `json:"deals"`
}

type ToggleDealResponse struct {
	ID       string `json:"id"`
	IsActive bool   `json:"isActive"`
}

// CartLine is one position of the order being evaluated.
type CartLine struct {
	ItemID     string  `json:"itemId" validate:"required,uuid"`
	CategoryID string  `json:"categoryId" validate:"required,uuid"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice" validate:"min=0"`
}

// EvaluateRequest describes a checkout to run deal selection against.
type EvaluateRequest struct {
	Lines      []CartLine `json:"lines" validate:"dive"`
	BranchID   string     `json:"branchId" validate:"required,uuid"`
	CustomerID *string    `json:"customerId" validate:"omitempty,uuid"`

	// Timestamp defaults to the server clock when omitted.
	Timestamp *time.Time `json:"timestamp"`
}

// ApplyRequest finalizes a checkout, consuming usage for applied deals.
type ApplyRequest struct {
	EvaluateRequest
	OrderID string `json:"orderId" validate:"required,uuid"`
}

// AppliedDeal pairs a deal with the discount it contributed to the order.
type AppliedDeal struct {
	Deal           Deal    `json:"deal"`
	DiscountAmount float64 `json:"discountAmount"`
}

type EvaluateResponse struct {
	EligibleDeals []Deal        `json:"eligibleDeals"`
	Applied       []AppliedDeal `json:"applied"`
	Subtotal      float64       `json:"subtotal"`
	TotalDiscount float64       `json:"totalDiscount"`
	FinalTotal    float64       `json:"finalTotal"`
}

type ApplyResponse struct {
	Applied       []AppliedDeal `json:"applied"`
	Subtotal      float64       `json:"subtotal"`
	TotalDiscount float64       `json:"totalDiscount"`
	FinalTotal    float64       `json:"finalTotal"`
}

type UsageRecord struct {
	ID             string    `json:"id"`
	DealID         string    `json:"dealId"`
	CustomerID     *string   `json:"customerId,omitempty"`
	OrderID        string    `json:"orderId"`
	DiscountAmount float64   `json:"discountAmount"`
	UsedAt         time.Time `json:"usedAt"`
}

type UsageStats struct {
	TotalUsageCount     int           `json:"totalUsageCount"`
	TotalDiscountGiven  float64       `json:"totalDiscountGiven"`
	UniqueCustomerCount int           `json:"uniqueCustomerCount"`
	AverageDiscount     float64       `json:"averageDiscount"`
	RecentUsage         []UsageRecord `json:"recentUsage"`
}

// NamedRef is an ID resolved to its catalog display name.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// StorefrontDeal is the public listing shape, enriched with catalog names.
type StorefrontDeal struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	BadgeText   string     `json:"badgeText,omitempty"`
	DealType    string     `json:"dealType"`
	Items       []NamedRef `json:"items,omitempty"`
	Categories  []NamedRef `json:"categories,omitempty"`
	StartDate   *string    `json:"startDate,omitempty"`
	EndDate     *string    `json:"endDate,omitempty"`
	StartTime   *string    `json:"startTime,omitempty"`
	EndTime     *string    `json:"endTime,omitempty"`
	DaysOfWeek  []int      `json:"daysOfWeek,omitempty"`
}

type StorefrontDealsResponse struct {
	Deals []StorefrontDeal `json:"deals"`
}

// Error is the error shape shared by every endpoint.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`

	// Message is a human-readable explanation, suitable for UI.
	Message string `json:"message"`
}

// ErrorCode is a machine-readable error code.
type ErrorCode string

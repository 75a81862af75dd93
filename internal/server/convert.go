package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"promo-engine/internal/domain/entity"
	service "promo-engine/internal/domain/service/deal"
	"promo-engine/internal/domain/value"
	"promo-engine/pkg/lox"
	"promo-engine/pkg/rest"
)

const dateLayout = "2006-01-02"

func newDomainDeal(request rest.DealRequest) (entity.Deal, error) {
	dealType, err := value.ParseDealType(request.DealType)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("value.ParseDealType: %w", err)
	}

	comboItems, err := parseIDs(request.ComboItems)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse combo items: %w", err)
	}

	categories, err := parseIDs(request.ApplicableCategories)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse categories: %w", err)
	}

	items, err := parseIDs(request.ApplicableItems)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse items: %w", err)
	}

	branches, err := parseIDs(request.ApplicableBranches)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse branches: %w", err)
	}

	startDate, err := parseDate(request.StartDate)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse start date: %w", err)
	}

	endDate, err := parseDate(request.EndDate)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse end date: %w", err)
	}

	startTime, err := parseTimeOfDay(request.StartTime)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse start time: %w", err)
	}

	endTime, err := parseTimeOfDay(request.EndTime)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("parse end time: %w", err)
	}

	daysOfWeek, err := value.ParseWeekdays(request.DaysOfWeek)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("value.ParseWeekdays: %w", err)
	}

	return entity.Deal{
		Name:                 request.Name,
		Description:          request.Description,
		BadgeText:            request.BadgeText,
		Type:                 dealType,
		DiscountPercentage:   decimalFrom(request.DiscountPercentage),
		DiscountAmount:       decimalFrom(request.DiscountAmount),
		ComboItems:           comboItems,
		ComboPrice:           decimalFrom(request.ComboPrice),
		BuyQuantity:          intFrom(request.BuyQuantity),
		GetQuantity:          intFrom(request.GetQuantity),
		MinimumPurchase:      decimalFrom(request.MinimumPurchase),
		ApplicableCategories: categories,
		ApplicableItems:      items,
		ApplicableBranches:   branches,
		StartDate:            startDate,
		EndDate:              endDate,
		StartTime:            startTime,
		EndTime:              endTime,
		DaysOfWeek:           daysOfWeek,
		MaxUsagePerCustomer:  request.MaxUsagePerCustomer,
		MaxTotalUsage:        request.MaxTotalUsage,
		Priority:             request.Priority,
		AllowStacking:        request.AllowStacking,
		IsActive:             request.IsActive,
		ShowOnWebsite:        request.ShowOnWebsite,
	}, nil
}

func newRESTDeal(deal entity.Deal) rest.Deal {
	return rest.Deal{
		ID:                   deal.ID.String(),
		Name:                 deal.Name,
		Description:          deal.Description,
		BadgeText:            deal.BadgeText,
		DealType:             deal.Type.String(),
		DiscountPercentage:   floatPtr(deal.DiscountPercentage),
		DiscountAmount:       floatPtr(deal.DiscountAmount),
		ComboItems:           formatIDs(deal.ComboItems),
		ComboPrice:           floatPtr(deal.ComboPrice),
		BuyQuantity:          intPtr(deal.BuyQuantity),
		GetQuantity:          intPtr(deal.GetQuantity),
		MinimumPurchase:      floatPtr(deal.MinimumPurchase),
		ApplicableCategories: formatIDs(deal.ApplicableCategories),
		ApplicableItems:      formatIDs(deal.ApplicableItems),
		ApplicableBranches:   formatIDs(deal.ApplicableBranches),
		StartDate:            formatDate(deal.StartDate),
		EndDate:              formatDate(deal.EndDate),
		StartTime:            formatTimeOfDay(deal.StartTime),
		EndTime:              formatTimeOfDay(deal.EndTime),
		DaysOfWeek:           deal.DaysOfWeek.Days(),
		MaxUsagePerCustomer:  deal.MaxUsagePerCustomer,
		MaxTotalUsage:        deal.MaxTotalUsage,
		Priority:             deal.Priority,
		AllowStacking:        deal.AllowStacking,
		IsActive:             deal.IsActive,
		ShowOnWebsite:        deal.ShowOnWebsite,
		CreatedAt:            deal.CreatedAt,
		UpdatedAt:            deal.UpdatedAt,
	}
}

func newDomainOrder(request rest.EvaluateRequest, now time.Time) (entity.OrderContext, error) {
	branchID, err := uuid.Parse(request.BranchID)
	if err != nil {
		return entity.OrderContext{}, fmt.Errorf("parse branch id: %w", err)
	}

	var customerID *uuid.UUID
	if request.CustomerID != nil {
		id, err := uuid.Parse(*request.CustomerID)
		if err != nil {
			return entity.OrderContext{}, fmt.Errorf("parse customer id: %w", err)
		}
		customerID = &id
	}

	lines := make([]entity.CartLine, 0, len(request.Lines))
	for i, line := range request.Lines {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			return entity.OrderContext{}, fmt.Errorf("parse item id at line %d: %w", i, err)
		}

		categoryID, err := uuid.Parse(line.CategoryID)
		if err != nil {
			return entity.OrderContext{}, fmt.Errorf("parse category id at line %d: %w", i, err)
		}

		lines = append(lines, entity.CartLine{
			ItemID:     itemID,
			CategoryID: categoryID,
			Quantity:   line.Quantity,
			UnitPrice:  decimal.NewFromFloat(line.UnitPrice),
		})
	}

	timestamp := now
	if request.Timestamp != nil {
		timestamp = *request.Timestamp
	}

	return entity.OrderContext{
		Lines:      lines,
		BranchID:   branchID,
		CustomerID: customerID,
		Timestamp:  timestamp,
	}, nil
}

func newRESTApplied(applied []entity.AppliedDeal) []rest.AppliedDeal {
	out := make([]rest.AppliedDeal, 0, len(applied))
	for _, a := range applied {
		out = append(out, rest.AppliedDeal{
			Deal:           newRESTDeal(a.Deal),
			DiscountAmount: floatOf(a.Discount),
		})
	}

	return out
}

func newRESTEvaluateResponse(result service.EvaluationResult) rest.EvaluateResponse {
	return rest.EvaluateResponse{
		EligibleDeals: newRESTDeals(result.Eligible),
		Applied:       newRESTApplied(result.Selection.Applied),
		Subtotal:      floatOf(result.Selection.Subtotal),
		TotalDiscount: floatOf(result.Selection.Subtotal.Sub(result.Selection.FinalTotal)),
		FinalTotal:    floatOf(result.Selection.FinalTotal),
	}
}

func newRESTApplyResponse(selection entity.Selection) rest.ApplyResponse {
	return rest.ApplyResponse{
		Applied:       newRESTApplied(selection.Applied),
		Subtotal:      floatOf(selection.Subtotal),
		TotalDiscount: floatOf(selection.Subtotal.Sub(selection.FinalTotal)),
		FinalTotal:    floatOf(selection.FinalTotal),
	}
}

func newRESTDeals(deals []entity.Deal) []rest.Deal {
	out := make([]rest.Deal, 0, len(deals))
	for _, d := range deals {
		out = append(out, newRESTDeal(d))
	}

	return out
}

func newRESTUsageStats(stats entity.UsageStats) rest.UsageStats {
	recent := make([]rest.UsageRecord, 0, len(stats.RecentUsage))
	for _, r := range stats.RecentUsage {
		var customerID *string
		if r.CustomerID != nil {
			s := r.CustomerID.String()
			customerID = &s
		}

		recent = append(recent, rest.UsageRecord{
			ID:             r.ID.String(),
			DealID:         r.DealID.String(),
			CustomerID:     customerID,
			OrderID:        r.OrderID.String(),
			DiscountAmount: floatOf(r.DiscountAmount),
			UsedAt:         r.UsedAt,
		})
	}

	return rest.UsageStats{
		TotalUsageCount:     stats.TotalUsageCount,
		TotalDiscountGiven:  floatOf(stats.TotalDiscountGiven),
		UniqueCustomerCount: stats.UniqueCustomerCount,
		AverageDiscount:     floatOf(stats.AverageDiscount),
		RecentUsage:         recent,
	}
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	return lox.MapErr(raw, uuid.Parse)
}

func formatIDs(ids []uuid.UUID) []string {
	if len(ids) == 0 {
		return nil
	}

	return lox.Map(ids, func(id uuid.UUID) string { return id.String() })
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("time.Parse %q: %w", *s, err)
	}

	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.Format(dateLayout)
	return &s
}

func parseTimeOfDay(s *string) (*value.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}

	t, err := value.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func formatTimeOfDay(t *value.TimeOfDay) *string {
	if t == nil {
		return nil
	}

	s := t.String()
	return &s
}

func decimalFrom(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}

	return decimal.NewFromFloat(*f)
}

func intFrom(n *int) int {
	if n == nil {
		return 0
	}

	return *n
}

func floatPtr(d decimal.Decimal) *float64 {
	if d.IsZero() {
		return nil
	}

	f, _ := d.Float64()
	return &f
}

func intPtr(n int) *int {
	if n == 0 {
		return nil
	}

	return &n
}

func floatOf(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

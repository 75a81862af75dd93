package service

import (
	"github.com/google/uuid"

	"promo-engine/internal/domain/entity"
	"promo-engine/internal/domain/value"
)

// UsageCounts is the usage history snapshot eligibility is judged against.
// Counts are only consulted when the deal carries the matching limit.
type UsageCounts struct {
	ByCustomer int
	Total      int
}

// IsEligible decides whether a deal applies to the given order. It is a pure
// predicate: evaluating twice with identical inputs yields identical results.
// Checks short-circuit on the first failure.
func IsEligible(d entity.Deal, order entity.OrderContext, usage UsageCounts) bool {
	if !d.IsActive {
		return false
	}

	if !dateInRange(d, order) {
		return false
	}

	if !d.DaysOfWeek.Covers(order.Timestamp.Weekday()) {
		return false
	}

	if d.StartTime != nil && d.EndTime != nil {
		// An end before the start wraps the window past midnight.
		if !value.TimeOfDayFrom(order.Timestamp).InWindow(*d.StartTime, *d.EndTime) {
			return false
		}
	}

	if len(d.ApplicableBranches) > 0 && !containsID(d.ApplicableBranches, order.BranchID) {
		return false
	}

	if !cartMatches(d, order) {
		return false
	}

	if d.Type == value.MinimumPurchase && order.Subtotal().LessThan(d.MinimumPurchase) {
		return false
	}

	if d.Type == value.BuyXGetY && qualifyingQuantity(d, order) < d.BuyQuantity {
		return false
	}

	if d.Type == value.Combo && !comboPresent(d, order) {
		return false
	}

	if d.MaxUsagePerCustomer != nil && usage.ByCustomer >= *d.MaxUsagePerCustomer {
		return false
	}

	if d.MaxTotalUsage != nil && usage.Total >= *d.MaxTotalUsage {
		return false
	}

	return true
}

// dateInRange checks the inclusive calendar range against the timestamp's
// date component in its own location.
func dateInRange(d entity.Deal, order entity.OrderContext) bool {
	y, m, day := order.Timestamp.Date()

	if d.StartDate != nil {
		sy, sm, sd := d.StartDate.Date()
		if y < sy || (y == sy && (m < sm || (m == sm && day < sd))) {
			return false
		}
	}

	if d.EndDate != nil {
		ey, em, ed := d.EndDate.Date()
		if y > ey || (y == ey && (m > em || (m == em && day > ed))) {
			return false
		}
	}

	return true
}

// cartMatches applies the category/item filters with any-item semantics: one
// matching cart line is enough. No filters means every cart matches.
func cartMatches(d entity.Deal, order entity.OrderContext) bool {
	if len(d.ApplicableCategories) == 0 && len(d.ApplicableItems) == 0 {
		return true
	}

	for _, line := range order.Lines {
		if lineQualifies(d, line) {
			return true
		}
	}

	return false
}

func lineQualifies(d entity.Deal, line entity.CartLine) bool {
	if len(d.ApplicableCategories) == 0 && len(d.ApplicableItems) == 0 {
		return true
	}

	return containsID(d.ApplicableItems, line.ItemID) ||
		containsID(d.ApplicableCategories, line.CategoryID)
}

// qualifyingQuantity sums quantities over cart lines passing the
// applicability filters.
func qualifyingQuantity(d entity.Deal, order entity.OrderContext) int {
	var qty int

	for _, line := range order.Lines {
		if line.Quantity > 0 && lineQualifies(d, line) {
			qty += line.Quantity
		}
	}

	return qty
}

// comboPresent requires every combo item to be present in the cart.
func comboPresent(d entity.Deal, order entity.OrderContext) bool {
	for _, itemID := range d.ComboItems {
		found := false

		for _, line := range order.Lines {
			if line.ItemID == itemID && line.Quantity > 0 {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}

package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"promo-engine/internal/domain/entity"
)

// rankedDeal carries the discount a deal would give against the full
// subtotal, used for winner picking and application ordering.
type rankedDeal struct {
	deal     entity.Deal
	discount decimal.Decimal
}

// Select decides which of the eligible deals actually apply and computes the
// final order total. At most one stacking-disallowed deal survives; all
// stacking-allowed deals apply alongside it. Discounts are applied
// sequentially against the running total in a deterministic order, so the
// outcome is stable under reordering of the input.
func Select(eligible []entity.Deal, order entity.OrderContext) entity.Selection {
	subtotal := order.Subtotal()

	var stacking, exclusive []rankedDeal

	for _, d := range eligible {
		ranked := rankedDeal{deal: d, discount: ComputeDiscount(d, order)}

		if d.AllowStacking {
			stacking = append(stacking, ranked)
		} else {
			exclusive = append(exclusive, ranked)
		}
	}

	selected := stacking

	if winner, ok := pickExclusive(exclusive); ok {
		selected = append(selected, winner)
	}

	sortRanked(selected)

	applied := make([]entity.AppliedDeal, 0, len(selected))
	running := subtotal

	for _, ranked := range selected {
		discount := computeDiscountOn(ranked.deal, order, running)
		running = running.Sub(discount)

		applied = append(applied, entity.AppliedDeal{
			Deal:     ranked.deal,
			Discount: discount,
		})
	}

	return entity.Selection{
		Applied:    applied,
		Subtotal:   subtotal,
		FinalTotal: running,
	}
}

// pickExclusive returns the single stacking-disallowed deal to apply.
// Deals with a positive discount are preferred: a zero-discount gate (a bare
// MINIMUM_PURCHASE) must not displace a paying deal, however high its
// priority.
func pickExclusive(exclusive []rankedDeal) (rankedDeal, bool) {
	if len(exclusive) == 0 {
		return rankedDeal{}, false
	}

	paying := make([]rankedDeal, 0, len(exclusive))

	for _, ranked := range exclusive {
		if ranked.discount.IsPositive() {
			paying = append(paying, ranked)
		}
	}

	candidates := paying
	if len(candidates) == 0 {
		candidates = exclusive
	}

	sortRanked(candidates)

	return candidates[0], true
}

// sortRanked orders by priority descending, then larger discount, then
// lexicographically smallest ID. The same ordering ranks winner candidates
// and fixes the sequential application order.
func sortRanked(deals []rankedDeal) {
	sort.SliceStable(deals, func(i, j int) bool {
		a, b := deals[i], deals[j]

		if a.deal.Priority != b.deal.Priority {
			return a.deal.Priority > b.deal.Priority
		}

		if !a.discount.Equal(b.discount) {
			return a.discount.GreaterThan(b.discount)
		}

		return a.deal.ID.String() < b.deal.ID.String()
	})
}

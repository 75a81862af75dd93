package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"promo-engine/internal/domain/entity"
)

const recentUsageLimit = 10

// Repository is the slice of the usage log the tracker needs. The log is
// append-only: nothing here mutates or removes records.
type Repository interface {
	Append(ctx context.Context, record *entity.UsageRecord) error
	ListRecent(ctx context.Context, dealID uuid.UUID, limit int) ([]entity.UsageRecord, error)
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]entity.UsageRecord, error)
}

type Tracker struct {
	repo Repository
	now  func() time.Time
}

func NewTracker(repo Repository) *Tracker {
	return &Tracker{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock overrides the record timestamp source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Record appends one usage record for an applied deal.
func (t *Tracker) Record(
	ctx context.Context,
	dealID uuid.UUID,
	customerID *uuid.UUID,
	orderID uuid.UUID,
	discountAmount decimal.Decimal,
) (*entity.UsageRecord, error) {
	record := &entity.UsageRecord{
		ID:             uuid.New(),
		DealID:         dealID,
		CustomerID:     customerID,
		OrderID:        orderID,
		DiscountAmount: discountAmount,
		UsedAt:         t.now(),
	}

	if err := t.repo.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("usageRepo.Append: %w", err)
	}

	return record, nil
}

// Stats aggregates the deal's usage log, recomputed on every read. An empty
// log yields zeroed metrics, not an error.
func (t *Tracker) Stats(ctx context.Context, dealID uuid.UUID) (entity.UsageStats, error) {
	records, err := t.repo.ListByDeal(ctx, dealID)
	if err != nil {
		return entity.UsageStats{}, fmt.Errorf("usageRepo.ListByDeal: %w", err)
	}

	stats := entity.UsageStats{
		TotalUsageCount:    len(records),
		TotalDiscountGiven: decimal.Zero,
		AverageDiscount:    decimal.Zero,
	}

	customers := make(map[uuid.UUID]struct{})

	for _, r := range records {
		stats.TotalDiscountGiven = stats.TotalDiscountGiven.Add(r.DiscountAmount)

		if r.CustomerID != nil {
			customers[*r.CustomerID] = struct{}{}
		}
	}

	stats.UniqueCustomerCount = len(customers)

	if len(records) > 0 {
		stats.AverageDiscount = stats.TotalDiscountGiven.
			Div(decimal.NewFromInt(int64(len(records)))).
			Round(2)
	}

	recent, err := t.repo.ListRecent(ctx, dealID, recentUsageLimit)
	if err != nil {
		return entity.UsageStats{}, fmt.Errorf("usageRepo.ListRecent: %w", err)
	}

	stats.RecentUsage = recent

	return stats, nil
}

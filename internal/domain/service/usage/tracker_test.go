package usage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"promo-engine/internal/domain/entity"
	"promo-engine/internal/domain/service/usage"
)

type memoryLog struct {
	records []entity.UsageRecord
}

func (l *memoryLog) Append(_ context.Context, record *entity.UsageRecord) error {
	l.records = append(l.records, *record)
	return nil
}

func (l *memoryLog) ListRecent(_ context.Context, dealID uuid.UUID, limit int) ([]entity.UsageRecord, error) {
	var out []entity.UsageRecord
	for i := len(l.records) - 1; i >= 0 && len(out) < limit; i-- {
		if l.records[i].DealID == dealID {
			out = append(out, l.records[i])
		}
	}
	return out, nil
}

func (l *memoryLog) ListByDeal(_ context.Context, dealID uuid.UUID) ([]entity.UsageRecord, error) {
	var out []entity.UsageRecord
	for _, r := range l.records {
		if r.DealID == dealID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestTrackerRecord(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	log := &memoryLog{}
	tracker := usage.NewTracker(log).WithClock(func() time.Time { return now })

	dealID := uuid.New()
	customerID := uuid.New()
	orderID := uuid.New()

	record, err := tracker.Record(ctx, dealID, &customerID, orderID, decimal.NewFromInt(25))
	rq.NoError(err)
	rq.NotEqual(uuid.Nil, record.ID)
	rq.Equal(now, record.UsedAt)

	rq.Len(log.records, 1)
	rq.Equal(dealID, log.records[0].DealID)
	rq.Equal(orderID, log.records[0].OrderID)
}

func TestTrackerStatsEmptyLog(t *testing.T) {
	rq := require.New(t)

	tracker := usage.NewTracker(&memoryLog{})

	stats, err := tracker.Stats(context.Background(), uuid.New())
	rq.NoError(err)
	rq.Zero(stats.TotalUsageCount)
	rq.Zero(stats.UniqueCustomerCount)
	rq.True(stats.TotalDiscountGiven.IsZero())
	rq.True(stats.AverageDiscount.IsZero())
	rq.Empty(stats.RecentUsage)
}

func TestTrackerStatsAggregation(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	log := &memoryLog{}
	tracker := usage.NewTracker(log)

	dealID := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	_, err := tracker.Record(ctx, dealID, &alice, uuid.New(), decimal.NewFromInt(10))
	rq.NoError(err)
	_, err = tracker.Record(ctx, dealID, &alice, uuid.New(), decimal.NewFromInt(20))
	rq.NoError(err)
	_, err = tracker.Record(ctx, dealID, &bob, uuid.New(), decimal.NewFromInt(15))
	rq.NoError(err)
	// Guest checkout, no customer attached.
	_, err = tracker.Record(ctx, dealID, nil, uuid.New(), decimal.NewFromInt(5))
	rq.NoError(err)

	stats, err := tracker.Stats(ctx, dealID)
	rq.NoError(err)

	rq.Equal(4, stats.TotalUsageCount)
	rq.Equal(2, stats.UniqueCustomerCount)
	rq.True(stats.TotalDiscountGiven.Equal(decimal.NewFromInt(50)))
	rq.True(stats.AverageDiscount.Equal(decimal.NewFromFloat(12.5)))
	rq.Len(stats.RecentUsage, 4)
}

func TestTrackerStatsIgnoresOtherDeals(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	log := &memoryLog{}
	tracker := usage.NewTracker(log)

	dealID := uuid.New()
	otherID := uuid.New()

	_, err := tracker.Record(ctx, dealID, nil, uuid.New(), decimal.NewFromInt(10))
	rq.NoError(err)
	_, err = tracker.Record(ctx, otherID, nil, uuid.New(), decimal.NewFromInt(99))
	rq.NoError(err)

	stats, err := tracker.Stats(ctx, dealID)
	rq.NoError(err)
	rq.Equal(1, stats.TotalUsageCount)
	rq.True(stats.TotalDiscountGiven.Equal(decimal.NewFromInt(10)))
}

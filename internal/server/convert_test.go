package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"promo-engine/internal/domain/value"
	"promo-engine/pkg/rest"
)

func TestNewDomainDealRoundTrip(t *testing.T) {
	rq := require.New(t)

	pct := 15.0
	startDate := "2025-06-01"
	endDate := "2025-06-30"
	startTime := "14:00"
	endTime := "17:00"
	maxTotal := 100

	request := rest.DealRequest{
		Name:               "happy hour",
		Description:        "afternoon discount",
		DealType:           "PERCENTAGE_DISCOUNT",
		DiscountPercentage: &pct,
		ApplicableBranches: []string{"1b8e27b3-9c74-4a27-9a33-111111111111"},
		StartDate:          &startDate,
		EndDate:            &endDate,
		StartTime:          &startTime,
		EndTime:            &endTime,
		DaysOfWeek:         []int{1, 2, 3, 4, 5},
		MaxTotalUsage:      &maxTotal,
		Priority:           70,
		IsActive:           true,
	}

	deal, err := newDomainDeal(request)
	rq.NoError(err)

	rq.Equal(value.PercentageDiscount, deal.Type)
	rq.True(deal.DiscountPercentage.Equal(decimalFrom(&pct)))
	rq.Len(deal.ApplicableBranches, 1)
	rq.NotNil(deal.StartDate)
	rq.Equal("14:00", deal.StartTime.String())
	rq.Equal([]int{1, 2, 3, 4, 5}, deal.DaysOfWeek.Days())
	rq.Equal(70, deal.Priority)
	rq.NoError(deal.Validate())

	wire := newRESTDeal(deal)
	rq.Equal(request.DealType, wire.DealType)
	rq.Equal(&startDate, wire.StartDate)
	rq.Equal(&startTime, wire.StartTime)
	rq.Equal([]int{1, 2, 3, 4, 5}, wire.DaysOfWeek)
	rq.Equal(&maxTotal, wire.MaxTotalUsage)
}

func TestNewDomainDealRejectsBadInput(t *testing.T) {
	rq := require.New(t)

	base := rest.DealRequest{
		Name:     "broken",
		DealType: "PERCENTAGE_DISCOUNT",
	}

	badType := base
	badType.DealType = "MYSTERY"
	_, err := newDomainDeal(badType)
	rq.Error(err)

	badDay := base
	badDay.DaysOfWeek = []int{7}
	_, err = newDomainDeal(badDay)
	rq.Error(err)

	badTime := base
	noon := "25:00"
	badTime.StartTime = &noon
	badTime.EndTime = &noon
	_, err = newDomainDeal(badTime)
	rq.Error(err)

	badID := base
	badID.ApplicableItems = []string{"not-a-uuid"}
	_, err = newDomainDeal(badID)
	rq.Error(err)
}

func TestNewDomainOrderDefaultsTimestamp(t *testing.T) {
	rq := require.New(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	request := rest.EvaluateRequest{
		BranchID: "1b8e27b3-9c74-4a27-9a33-111111111111",
		Lines: []rest.CartLine{
			{
				ItemID:     "2c9f38c4-ad85-4b38-ab44-222222222222",
				CategoryID: "5fc26bf7-d0b8-4e6b-de77-555555555555",
				Quantity:   2,
				UnitPrice:  49.5,
			},
		},
	}

	order, err := newDomainOrder(request, now)
	rq.NoError(err)
	rq.Equal(now, order.Timestamp)
	rq.Nil(order.CustomerID)
	rq.Len(order.Lines, 1)
	rq.True(order.Subtotal().Equal(decimalFrom(ptr(99.0))))

	explicit := now.Add(-time.Hour)
	request.Timestamp = &explicit

	order, err = newDomainOrder(request, now)
	rq.NoError(err)
	rq.Equal(explicit, order.Timestamp)
}

func ptr[T any](v T) *T {
	return &v
}

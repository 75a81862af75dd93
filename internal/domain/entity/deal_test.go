package entity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"promo-engine/internal/domain"
	"promo-engine/internal/domain/entity"
	"promo-engine/internal/domain/value"
	"promo-engine/pkg/errcodes"
)

func validPercentageDeal() entity.Deal {
	return entity.Deal{
		ID:                 uuid.New(),
		Name:               "ten percent off",
		Type:               value.PercentageDiscount,
		DiscountPercentage: decimal.NewFromInt(10),
		IsActive:           true,
	}
}

func TestDealValidate(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name    string
		mutate  func(*entity.Deal)
		wantErr bool
	}{
		{
			name:   "valid percentage deal",
			mutate: func(*entity.Deal) {},
		},
		{
			name:    "missing name",
			mutate:  func(d *entity.Deal) { d.Name = "" },
			wantErr: true,
		},
		{
			name:    "unknown type",
			mutate:  func(d *entity.Deal) { d.Type = "HAPPY_HOUR" },
			wantErr: true,
		},
		{
			name:    "percentage above 100",
			mutate:  func(d *entity.Deal) { d.DiscountPercentage = decimal.NewFromInt(150) },
			wantErr: true,
		},
		{
			name:    "percentage deal without percentage",
			mutate:  func(d *entity.Deal) { d.DiscountPercentage = decimal.Zero },
			wantErr: true,
		},
		{
			name: "percentage deal carrying fixed amount",
			mutate: func(d *entity.Deal) {
				d.DiscountAmount = decimal.NewFromInt(50)
			},
			wantErr: true,
		},
		{
			name:    "priority out of range",
			mutate:  func(d *entity.Deal) { d.Priority = 101 },
			wantErr: true,
		},
		{
			name:    "negative priority",
			mutate:  func(d *entity.Deal) { d.Priority = -1 },
			wantErr: true,
		},
		{
			name: "start time without end time",
			mutate: func(d *entity.Deal) {
				start := value.TimeOfDay(14 * 60)
				d.StartTime = &start
			},
			wantErr: true,
		},
		{
			name: "start date after end date",
			mutate: func(d *entity.Deal) {
				start := date(2025, 7, 1)
				end := date(2025, 6, 1)
				d.StartDate = &start
				d.EndDate = &end
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			deal := validPercentageDeal()
			tc.mutate(&deal)

			err := deal.Validate()
			if tc.wantErr {
				rq.Error(err)
				rq.True(domain.IsAppError(err))
			} else {
				rq.NoError(err)
			}
		})
	}
}

func TestDealValidateFixed(t *testing.T) {
	rq := require.New(t)

	deal := entity.Deal{
		ID:             uuid.New(),
		Name:           "50 off",
		Type:           value.FixedDiscount,
		DiscountAmount: decimal.NewFromInt(50),
	}
	rq.NoError(deal.Validate())

	deal.DiscountAmount = decimal.Zero
	rq.Error(deal.Validate())
}

func TestDealValidateCombo(t *testing.T) {
	rq := require.New(t)

	deal := entity.Deal{
		ID:         uuid.New(),
		Name:       "lunch combo",
		Type:       value.Combo,
		ComboItems: []uuid.UUID{uuid.New(), uuid.New()},
		ComboPrice: decimal.NewFromInt(120),
	}
	rq.NoError(deal.Validate())

	deal.ComboItems = nil
	rq.Error(deal.Validate())
}

func TestDealValidateBuyXGetY(t *testing.T) {
	rq := require.New(t)

	deal := entity.Deal{
		ID:          uuid.New(),
		Name:        "buy 2 get 1",
		Type:        value.BuyXGetY,
		BuyQuantity: 2,
		GetQuantity: 1,
	}
	rq.NoError(deal.Validate())

	deal.GetQuantity = 0
	rq.Error(deal.Validate())
}

func TestDealValidateMinimumPurchase(t *testing.T) {
	rq := require.New(t)

	deal := entity.Deal{
		ID:              uuid.New(),
		Name:            "spend 1000",
		Type:            value.MinimumPurchase,
		MinimumPurchase: decimal.NewFromInt(1000),
	}
	rq.NoError(deal.Validate())

	// An optional benefit of either kind is fine.
	withBenefit := deal
	withBenefit.DiscountPercentage = decimal.NewFromInt(10)
	rq.NoError(withBenefit.Validate())

	// Both benefit kinds at once are not.
	withBoth := withBenefit
	withBoth.DiscountAmount = decimal.NewFromInt(50)
	err := withBoth.Validate()
	rq.Error(err)

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.InvalidDeal, code)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

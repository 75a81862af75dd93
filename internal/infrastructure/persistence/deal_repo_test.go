package persistence_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"promo-engine/internal/domain"
	"promo-engine/internal/domain/entity"
	"promo-engine/internal/domain/value"
	"promo-engine/internal/infrastructure/persistence"
	"promo-engine/pkg/dbtest"
	"promo-engine/pkg/errcodes"
)

// testDB connects to the database named by TEST_PG_DSN and applies the
// schema. Tests are skipped when the variable is not set.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN is not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, dbtest.MigrateFromFile(db, "../../../migrations/0001_init.sql"))

	_, err = db.Exec(`TRUNCATE deals, usage_records, deal_customer_usage CASCADE`)
	require.NoError(t, err)

	return db
}

func sampleDeal() *entity.Deal {
	maxTotal := 5

	return &entity.Deal{
		ID:                 uuid.New(),
		Name:               "repo test deal",
		Type:               value.PercentageDiscount,
		DiscountPercentage: decimal.NewFromInt(10),
		ApplicableBranches: []uuid.UUID{uuid.New()},
		MaxTotalUsage:      &maxTotal,
		Priority:           40,
		IsActive:           true,
	}
}

func TestDealRepositoryCRUD(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewDealRepository(testDB(t))

	deal := sampleDeal()
	rq.NoError(repo.Create(ctx, deal))

	loaded, err := repo.GetByID(ctx, deal.ID)
	rq.NoError(err)
	rq.Equal(deal.Name, loaded.Name)
	rq.Equal(deal.Type, loaded.Type)
	rq.True(loaded.DiscountPercentage.Equal(deal.DiscountPercentage))
	rq.Equal(deal.ApplicableBranches, loaded.ApplicableBranches)
	rq.Equal(deal.MaxTotalUsage, loaded.MaxTotalUsage)

	loaded.Name = "renamed"
	rq.NoError(repo.Update(ctx, loaded))

	renamed, err := repo.GetByID(ctx, deal.ID)
	rq.NoError(err)
	rq.Equal("renamed", renamed.Name)

	rq.NoError(repo.SetActive(ctx, deal.ID, false))

	active, err := repo.ListActive(ctx)
	rq.NoError(err)
	rq.Empty(active)

	rq.NoError(repo.Delete(ctx, deal.ID))

	_, err = repo.GetByID(ctx, deal.ID)
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.DealNotFound, code)
}

func TestDealRepositoryDeactivateExpired(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewDealRepository(testDB(t))

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	twoDaysAgo := today.AddDate(0, 0, -2)

	expired := sampleDeal()
	expired.EndDate = &twoDaysAgo
	rq.NoError(repo.Create(ctx, expired))

	// End dates are inclusive, a deal stays on through its whole final day.
	onFinalDay := sampleDeal()
	onFinalDay.ID = uuid.New()
	onFinalDay.EndDate = &today
	rq.NoError(repo.Create(ctx, onFinalDay))

	current := sampleDeal()
	current.ID = uuid.New()
	rq.NoError(repo.Create(ctx, current))

	count, err := repo.DeactivateExpired(ctx, now)
	rq.NoError(err)
	rq.EqualValues(1, count)

	active, err := repo.ListActive(ctx)
	rq.NoError(err)
	rq.Len(active, 2)
	for _, d := range active {
		rq.NotEqual(expired.ID, d.ID)
	}
}

func TestUsageRepositoryConsumeClosesRace(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	db := testDB(t)
	dealRepo := persistence.NewDealRepository(db)
	usageRepo := persistence.NewUsageRepository(db)

	one := 1
	deal := sampleDeal()
	deal.MaxTotalUsage = &one
	rq.NoError(dealRepo.Create(ctx, deal))

	rq.NoError(usageRepo.Consume(ctx, *deal, nil))

	err := usageRepo.Consume(ctx, *deal, nil)
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.DealExhausted, code)

	total, err := usageRepo.CountTotal(ctx, deal.ID)
	rq.NoError(err)
	rq.Equal(1, total)
}

func TestUsageRepositoryPerCustomerCap(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	db := testDB(t)
	dealRepo := persistence.NewDealRepository(db)
	usageRepo := persistence.NewUsageRepository(db)

	two := 2
	deal := sampleDeal()
	deal.MaxUsagePerCustomer = &two
	deal.MaxTotalUsage = nil
	rq.NoError(dealRepo.Create(ctx, deal))

	customerID := uuid.New()

	rq.NoError(usageRepo.Consume(ctx, *deal, &customerID))
	rq.NoError(usageRepo.Consume(ctx, *deal, &customerID))

	err := usageRepo.Consume(ctx, *deal, &customerID)
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.DealExhausted, code)

	count, err := usageRepo.CountForCustomer(ctx, deal.ID, customerID)
	rq.NoError(err)
	rq.Equal(2, count)
}

func TestUsageRepositoryAppendAndList(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	db := testDB(t)
	dealRepo := persistence.NewDealRepository(db)
	usageRepo := persistence.NewUsageRepository(db)

	deal := sampleDeal()
	rq.NoError(dealRepo.Create(ctx, deal))

	customerID := uuid.New()

	for i := 0; i < 3; i++ {
		record := &entity.UsageRecord{
			ID:             uuid.New(),
			DealID:         deal.ID,
			CustomerID:     &customerID,
			OrderID:        uuid.New(),
			DiscountAmount: decimal.NewFromInt(int64(10 * (i + 1))),
			UsedAt:         time.Now().Add(time.Duration(i) * time.Second),
		}
		rq.NoError(usageRepo.Append(ctx, record))
	}

	all, err := usageRepo.ListByDeal(ctx, deal.ID)
	rq.NoError(err)
	rq.Len(all, 3)

	recent, err := usageRepo.ListRecent(ctx, deal.ID, 2)
	rq.NoError(err)
	rq.Len(recent, 2)
	// Most recent first.
	rq.True(recent[0].UsedAt.After(recent[1].UsedAt))
}

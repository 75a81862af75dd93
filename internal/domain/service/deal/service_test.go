package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"promo-engine/internal/domain"
	"promo-engine/internal/domain/entity"
	service "promo-engine/internal/domain/service/deal"
	"promo-engine/internal/domain/service/usage"
	"promo-engine/pkg/errcodes"
)

type fakeDealRepo struct {
	deals map[uuid.UUID]entity.Deal
}

func newFakeDealRepo(deals ...entity.Deal) *fakeDealRepo {
	repo := &fakeDealRepo{deals: make(map[uuid.UUID]entity.Deal)}
	for _, d := range deals {
		repo.deals[d.ID] = d
	}
	return repo
}

func (r *fakeDealRepo) Create(_ context.Context, deal *entity.Deal) error {
	r.deals[deal.ID] = *deal
	return nil
}

func (r *fakeDealRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Deal, error) {
	deal, ok := r.deals[id]
	if !ok {
		return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
	}
	return &deal, nil
}

func (r *fakeDealRepo) Update(_ context.Context, deal *entity.Deal) error {
	r.deals[deal.ID] = *deal
	return nil
}

func (r *fakeDealRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.deals, id)
	return nil
}

func (r *fakeDealRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	deal := r.deals[id]
	deal.IsActive = active
	r.deals[id] = deal
	return nil
}

func (r *fakeDealRepo) List(_ context.Context, _, _ int) ([]entity.Deal, error) {
	return r.all(), nil
}

func (r *fakeDealRepo) ListActive(_ context.Context) ([]entity.Deal, error) {
	var active []entity.Deal
	for _, d := range r.all() {
		if d.IsActive {
			active = append(active, d)
		}
	}
	return active, nil
}

func (r *fakeDealRepo) ListWebsite(_ context.Context) ([]entity.Deal, error) {
	var website []entity.Deal
	for _, d := range r.all() {
		if d.IsActive && d.ShowOnWebsite {
			website = append(website, d)
		}
	}
	return website, nil
}

func (r *fakeDealRepo) all() []entity.Deal {
	out := make([]entity.Deal, 0, len(r.deals))
	for _, d := range r.deals {
		out = append(out, d)
	}
	return out
}

type fakeUsageCounter struct {
	total      map[uuid.UUID]int
	byCustomer map[uuid.UUID]int
	caps       map[uuid.UUID]int
}

func newFakeUsageCounter() *fakeUsageCounter {
	return &fakeUsageCounter{
		total:      make(map[uuid.UUID]int),
		byCustomer: make(map[uuid.UUID]int),
		caps:       make(map[uuid.UUID]int),
	}
}

func (c *fakeUsageCounter) CountForCustomer(_ context.Context, dealID, _ uuid.UUID) (int, error) {
	return c.byCustomer[dealID], nil
}

func (c *fakeUsageCounter) CountTotal(_ context.Context, dealID uuid.UUID) (int, error) {
	return c.total[dealID], nil
}

func (c *fakeUsageCounter) Consume(_ context.Context, deal entity.Deal, customerID *uuid.UUID) error {
	if limit, ok := c.caps[deal.ID]; ok && c.total[deal.ID] >= limit {
		return domain.NewError(errcodes.DealExhausted, "deal no longer available")
	}

	c.total[deal.ID]++
	if customerID != nil {
		c.byCustomer[deal.ID]++
	}

	return nil
}

type fakeUsageLog struct {
	records []entity.UsageRecord
}

func (l *fakeUsageLog) Append(_ context.Context, record *entity.UsageRecord) error {
	l.records = append(l.records, *record)
	return nil
}

func (l *fakeUsageLog) ListRecent(_ context.Context, dealID uuid.UUID, limit int) ([]entity.UsageRecord, error) {
	records, _ := l.ListByDeal(context.Background(), dealID)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l *fakeUsageLog) ListByDeal(_ context.Context, dealID uuid.UUID) ([]entity.UsageRecord, error) {
	var out []entity.UsageRecord
	for _, r := range l.records {
		if r.DealID == dealID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestService(repo *fakeDealRepo, counter *fakeUsageCounter, log *fakeUsageLog) *service.Service {
	return service.NewService(repo, counter, usage.NewTracker(log), nil)
}

func TestServiceEvaluateConsumesNothing(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	deal := percentageDeal(10)
	counter := newFakeUsageCounter()
	log := &fakeUsageLog{}
	svc := newTestService(newFakeDealRepo(deal), counter, log)

	order := orderOf(sundayNoon, line(burgerID, mainsCatID, 1, 100))

	result, err := svc.Evaluate(ctx, order)
	rq.NoError(err)
	rq.Len(result.Eligible, 1)
	rq.Len(result.Selection.Applied, 1)
	rq.True(result.Selection.FinalTotal.Equal(decimal.NewFromInt(90)))

	rq.Zero(counter.total[deal.ID])
	rq.Empty(log.records)
}

func TestServiceApplyRecordsUsage(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	deal := percentageDeal(10)
	counter := newFakeUsageCounter()
	log := &fakeUsageLog{}
	svc := newTestService(newFakeDealRepo(deal), counter, log)

	customerID := uuid.New()
	order := orderOf(sundayNoon, line(burgerID, mainsCatID, 1, 100))
	order.CustomerID = &customerID

	orderID := uuid.New()

	selection, err := svc.Apply(ctx, order, orderID)
	rq.NoError(err)
	rq.Len(selection.Applied, 1)

	rq.Equal(1, counter.total[deal.ID])
	rq.Len(log.records, 1)
	rq.Equal(deal.ID, log.records[0].DealID)
	rq.Equal(orderID, log.records[0].OrderID)
	rq.True(log.records[0].DiscountAmount.Equal(decimal.NewFromInt(10)))
}

func TestServiceApplyReselectsWhenDealExhausted(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	best := percentageDeal(20)
	best.Priority = 80
	fallback := percentageDeal(10)
	fallback.Priority = 50

	counter := newFakeUsageCounter()
	counter.caps[best.ID] = 0 // already fully consumed elsewhere
	counter.total[best.ID] = 0

	log := &fakeUsageLog{}
	svc := newTestService(newFakeDealRepo(best, fallback), counter, log)

	order := orderOf(sundayNoon, line(burgerID, mainsCatID, 1, 100))

	selection, err := svc.Apply(ctx, order, uuid.New())
	rq.NoError(err)

	// The winner lost the race for its last slot, selection falls back.
	rq.Len(selection.Applied, 1)
	rq.Equal(fallback.ID, selection.Applied[0].Deal.ID)
	rq.True(selection.FinalTotal.Equal(decimal.NewFromInt(90)))

	rq.Equal(1, counter.total[fallback.ID])
	rq.Len(log.records, 1)
}

func TestServiceApplyReselectChargesSurvivorOnce(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	survivor := percentageDeal(10)
	survivor.Priority = 90
	survivor.AllowStacking = true

	exhausted := percentageDeal(20)
	exhausted.Priority = 50
	exhausted.AllowStacking = true

	counter := newFakeUsageCounter()
	counter.caps[exhausted.ID] = 0

	log := &fakeUsageLog{}
	svc := newTestService(newFakeDealRepo(survivor, exhausted), counter, log)

	customerID := uuid.New()
	order := orderOf(sundayNoon, line(burgerID, mainsCatID, 1, 100))
	order.CustomerID = &customerID

	selection, err := svc.Apply(ctx, order, uuid.New())
	rq.NoError(err)
	rq.Len(selection.Applied, 1)
	rq.Equal(survivor.ID, selection.Applied[0].Deal.ID)

	// The survivor was consumed before the second deal lost its slot; the
	// reselection pass must not charge or record it again.
	rq.Equal(1, counter.total[survivor.ID])
	rq.Equal(1, counter.byCustomer[survivor.ID])
	rq.Len(log.records, 1)
	rq.Equal(survivor.ID, log.records[0].DealID)
}

func TestServiceApplyNoDealsLeft(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	deal := percentageDeal(10)

	counter := newFakeUsageCounter()
	counter.caps[deal.ID] = 0

	svc := newTestService(newFakeDealRepo(deal), counter, &fakeUsageLog{})

	order := orderOf(sundayNoon, line(burgerID, mainsCatID, 1, 100))

	selection, err := svc.Apply(ctx, order, uuid.New())
	rq.NoError(err)
	rq.Empty(selection.Applied)
	rq.True(selection.FinalTotal.Equal(selection.Subtotal))
}

func TestServiceCreateDealRejectsInvalid(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc := newTestService(newFakeDealRepo(), newFakeUsageCounter(), &fakeUsageLog{})

	invalid := percentageDeal(10)
	invalid.DiscountPercentage = decimal.NewFromInt(150)

	err := svc.CreateDeal(ctx, &invalid)
	rq.Error(err)

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.InvalidDeal, code)
}

func TestServiceToggleDeal(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	deal := percentageDeal(10)
	repo := newFakeDealRepo(deal)
	svc := newTestService(repo, newFakeUsageCounter(), &fakeUsageLog{})

	active, err := svc.ToggleDeal(ctx, deal.ID)
	rq.NoError(err)
	rq.False(active)

	active, err = svc.ToggleDeal(ctx, deal.ID)
	rq.NoError(err)
	rq.True(active)
}

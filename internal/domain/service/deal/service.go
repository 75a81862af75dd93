package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"promo-engine/internal/domain"
	"promo-engine/internal/domain/entity"
	"promo-engine/internal/domain/service/usage"
	"promo-engine/internal/metrics"
	"promo-engine/pkg/contextx"
	"promo-engine/pkg/errcodes"
)

const (
	activeDealsCacheKey = "deals:active"
	activeDealsCacheTTL = 30 * time.Second
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type DealRepository interface {
	Create(ctx context.Context, deal *entity.Deal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error)
	Update(ctx context.Context, deal *entity.Deal) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, limit, offset int) ([]entity.Deal, error)
	ListActive(ctx context.Context) ([]entity.Deal, error)
	ListWebsite(ctx context.Context) ([]entity.Deal, error)
}

type UsageCounter interface {
	CountForCustomer(ctx context.Context, dealID, customerID uuid.UUID) (int, error)
	CountTotal(ctx context.Context, dealID uuid.UUID) (int, error)
	// Consume atomically takes one usage slot for the deal, failing with a
	// DealExhausted error when the caps leave no room. This is the only path
	// that advances usage counters, so two concurrent checkouts near the cap
	// cannot both get through.
	Consume(ctx context.Context, deal entity.Deal, customerID *uuid.UUID) error
}

// AlertNotifier is told when a deal's total cap is fully consumed.
type AlertNotifier interface {
	DealCapReached(ctx context.Context, deal entity.Deal) error
}

// EvaluationResult is the dry-run output for one checkout.
type EvaluationResult struct {
	Eligible  []entity.Deal
	Selection entity.Selection
}

type Service struct {
	dealRepo     DealRepository
	usageCounter UsageCounter
	tracker      *usage.Tracker
	alerts       AlertNotifier
	dealCache    *cache.Cache
}

func NewService(
	dealRepo DealRepository,
	usageCounter UsageCounter,
	tracker *usage.Tracker,
	alerts AlertNotifier,
) *Service {
	return &Service{
		dealRepo:     dealRepo,
		usageCounter: usageCounter,
		tracker:      tracker,
		alerts:       alerts,
		dealCache:    cache.New(activeDealsCacheTTL, time.Minute),
	}
}

// CreateDeal validates and stores a new deal. Malformed definitions are
// rejected here, never at evaluation time.
func (s *Service) CreateDeal(ctx context.Context, deal *entity.Deal) error {
	if err := deal.Validate(); err != nil {
		return err
	}

	if deal.ID == uuid.Nil {
		deal.ID = uuid.New()
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return fmt.Errorf("dealRepo.Create: %w", err)
	}

	s.invalidateCache()

	return nil
}

func (s *Service) GetDeal(ctx context.Context, id uuid.UUID) (*entity.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dealRepo.GetByID: %w", err)
	}

	return deal, nil
}

func (s *Service) ListDeals(ctx context.Context, limit, offset int) ([]entity.Deal, error) {
	deals, err := s.dealRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("dealRepo.List: %w", err)
	}

	return deals, nil
}

func (s *Service) UpdateDeal(ctx context.Context, deal *entity.Deal) error {
	if err := deal.Validate(); err != nil {
		return err
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return fmt.Errorf("dealRepo.Update: %w", err)
	}

	s.invalidateCache()

	return nil
}

func (s *Service) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	if err := s.dealRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("dealRepo.Delete: %w", err)
	}

	s.invalidateCache()

	return nil
}

// ToggleDeal flips the manual on/off switch and reports the new state.
func (s *Service) ToggleDeal(ctx context.Context, id uuid.UUID) (bool, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("dealRepo.GetByID: %w", err)
	}

	active := !deal.IsActive

	if err := s.dealRepo.SetActive(ctx, id, active); err != nil {
		return false, fmt.Errorf("dealRepo.SetActive: %w", err)
	}

	s.invalidateCache()

	return active, nil
}

// WebsiteDeals lists deals flagged for storefront display. The flag is
// display-only: it plays no part in evaluation.
func (s *Service) WebsiteDeals(ctx context.Context) ([]entity.Deal, error) {
	deals, err := s.dealRepo.ListWebsite(ctx)
	if err != nil {
		return nil, fmt.Errorf("dealRepo.ListWebsite: %w", err)
	}

	return deals, nil
}

func (s *Service) Stats(ctx context.Context, dealID uuid.UUID) (entity.UsageStats, error) {
	if _, err := s.dealRepo.GetByID(ctx, dealID); err != nil {
		return entity.UsageStats{}, fmt.Errorf("dealRepo.GetByID: %w", err)
	}

	return s.tracker.Stats(ctx, dealID) //nolint:wrapcheck
}

// CheckDeal answers a single-deal eligibility question for the caller.
func (s *Service) CheckDeal(ctx context.Context, dealID uuid.UUID, order entity.OrderContext) (bool, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return false, fmt.Errorf("dealRepo.GetByID: %w", err)
	}

	counts, err := s.usageCounts(ctx, *deal, order)
	if err != nil {
		return false, err
	}

	return IsEligible(*deal, order, counts), nil
}

// Evaluate is the read-only checkout pass: which deals are eligible, what
// would be applied, what the total would become. No usage is consumed.
func (s *Service) Evaluate(ctx context.Context, order entity.OrderContext) (EvaluationResult, error) {
	metrics.Evaluations.Inc()

	eligible, err := s.eligibleDeals(ctx, order, nil)
	if err != nil {
		return EvaluationResult{}, err
	}

	return EvaluationResult{
		Eligible:  eligible,
		Selection: Select(eligible, order),
	}, nil
}

// Apply runs selection and consumes usage for every applied deal. A deal
// that loses the usage-cap race is dropped and selection is re-run without
// it, so the checkout proceeds with whatever is still available.
func (s *Service) Apply(ctx context.Context, order entity.OrderContext, orderID uuid.UUID) (entity.Selection, error) {
	excluded := make(map[uuid.UUID]struct{})
	consumed := make(map[uuid.UUID]struct{})

	for {
		eligible, err := s.eligibleDeals(ctx, order, excluded)
		if err != nil {
			return entity.Selection{}, err
		}

		selection := Select(eligible, order)

		exhausted, err := s.consumeSelection(ctx, selection, order, orderID, consumed)
		if err != nil {
			return entity.Selection{}, err
		}

		if exhausted == nil {
			if len(selection.Applied) > 0 {
				metrics.Applications.Inc()
			}

			return selection, nil
		}

		metrics.ExhaustedConflicts.Inc()
		logger(ctx).Warn("deal exhausted during apply, reselecting", "deal-id", exhausted.String())

		excluded[*exhausted] = struct{}{}
	}
}

// consumeSelection takes usage slots in application order. It returns the ID
// of the first deal that turned out to be exhausted, or nil when every
// applied deal was consumed and recorded. Deals listed in consumed were
// already taken and recorded by an earlier pass of the same checkout and are
// skipped, so a reselection never charges a surviving deal twice.
func (s *Service) consumeSelection(
	ctx context.Context,
	selection entity.Selection,
	order entity.OrderContext,
	orderID uuid.UUID,
	consumed map[uuid.UUID]struct{},
) (*uuid.UUID, error) {
	for _, applied := range selection.Applied {
		if _, done := consumed[applied.Deal.ID]; done {
			continue
		}

		if err := s.usageCounter.Consume(ctx, applied.Deal, order.CustomerID); err != nil {
			if code, ok := domain.GetCode(err); ok && code == errcodes.DealExhausted {
				id := applied.Deal.ID
				return &id, nil
			}

			return nil, fmt.Errorf("usageCounter.Consume: %w", err)
		}

		if _, err := s.tracker.Record(ctx, applied.Deal.ID, order.CustomerID, orderID, applied.Discount); err != nil {
			return nil, err
		}

		consumed[applied.Deal.ID] = struct{}{}

		discount, _ := applied.Discount.Float64()
		metrics.DiscountGranted.Add(discount)

		s.maybeAlertCapReached(ctx, applied.Deal)
	}

	return nil, nil
}

func (s *Service) maybeAlertCapReached(ctx context.Context, deal entity.Deal) {
	if deal.MaxTotalUsage == nil || s.alerts == nil {
		return
	}

	total, err := s.usageCounter.CountTotal(ctx, deal.ID)
	if err != nil {
		logger(ctx).Error("usageCounter.CountTotal", "error", err)
		return
	}

	if total < *deal.MaxTotalUsage {
		return
	}

	if err := s.alerts.DealCapReached(ctx, deal); err != nil {
		logger(ctx).Error("alerts.DealCapReached", "error", err)
	}
}

func (s *Service) eligibleDeals(
	ctx context.Context,
	order entity.OrderContext,
	excluded map[uuid.UUID]struct{},
) ([]entity.Deal, error) {
	deals, err := s.activeDeals(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]entity.Deal, 0, len(deals))

	for _, deal := range deals {
		if _, skip := excluded[deal.ID]; skip {
			continue
		}

		counts, err := s.usageCounts(ctx, deal, order)
		if err != nil {
			return nil, err
		}

		if IsEligible(deal, order, counts) {
			eligible = append(eligible, deal)
		}
	}

	return eligible, nil
}

// usageCounts pulls only the counters the deal's limits actually need. A
// guest checkout has no per-customer history to count against.
func (s *Service) usageCounts(ctx context.Context, deal entity.Deal, order entity.OrderContext) (UsageCounts, error) {
	var counts UsageCounts

	if deal.MaxUsagePerCustomer != nil && order.CustomerID != nil {
		n, err := s.usageCounter.CountForCustomer(ctx, deal.ID, *order.CustomerID)
		if err != nil {
			return UsageCounts{}, fmt.Errorf("usageCounter.CountForCustomer: %w", err)
		}

		counts.ByCustomer = n
	}

	if deal.MaxTotalUsage != nil {
		n, err := s.usageCounter.CountTotal(ctx, deal.ID)
		if err != nil {
			return UsageCounts{}, fmt.Errorf("usageCounter.CountTotal: %w", err)
		}

		counts.Total = n
	}

	return counts, nil
}

func (s *Service) activeDeals(ctx context.Context) ([]entity.Deal, error) {
	if cached, ok := s.dealCache.Get(activeDealsCacheKey); ok {
		return cached.([]entity.Deal), nil
	}

	deals, err := s.dealRepo.ListActive(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err() //nolint:wrapcheck
		}

		return nil, fmt.Errorf("dealRepo.ListActive: %w", err)
	}

	s.dealCache.SetDefault(activeDealsCacheKey, deals)

	return deals, nil
}

func (s *Service) invalidateCache() {
	s.dealCache.Delete(activeDealsCacheKey)
}

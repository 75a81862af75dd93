package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"

	"promo-engine/internal/domain/entity"
	"promo-engine/pkg/errcodes"
	"promo-engine/pkg/httpx/reply"
	"promo-engine/pkg/httpx/req"
	"promo-engine/pkg/rest"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type dealService interface {
	CreateDeal(ctx context.Context, deal *entity.Deal) error
	GetDeal(ctx context.Context, id uuid.UUID) (*entity.Deal, error)
	ListDeals(ctx context.Context, limit, offset int) ([]entity.Deal, error)
	UpdateDeal(ctx context.Context, deal *entity.Deal) error
	DeleteDeal(ctx context.Context, id uuid.UUID) error
	ToggleDeal(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context, dealID uuid.UUID) (entity.UsageStats, error)
}

// DealServer handles the admin surface for managing deals.
type DealServer struct {
	dealService dealService
}

func NewDealServer(dealService dealService) DealServer {
	return DealServer{
		dealService: dealService,
	}
}

func (s DealServer) postV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.DealRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	deal, err := newDomainDeal(request)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("newDomainDeal: %w", err),
			failure.WithCode(errcodes.InvalidDeal),
		)
	}

	if err := s.dealService.CreateDeal(ctx, &deal); err != nil {
		return fmt.Errorf("dealService.CreateDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTDeal(deal))

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealIDFromPath(r)
	if err != nil {
		return err
	}

	deal, err := s.dealService.GetDeal(ctx, id)
	if err != nil {
		return fmt.Errorf("dealService.GetDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(*deal))

	return nil
}

func (s DealServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, offset, err := paging(r)
	if err != nil {
		return err
	}

	deals, err := s.dealService.ListDeals(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("dealService.ListDeals: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.DealsResponse{Deals: newRESTDeals(deals)})

	return nil
}

func (s DealServer) putV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealIDFromPath(r)
	if err != nil {
		return err
	}

	var request rest.DealRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	deal, err := newDomainDeal(request)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("newDomainDeal: %w", err),
			failure.WithCode(errcodes.InvalidDeal),
		)
	}
	deal.ID = id

	if err := s.dealService.UpdateDeal(ctx, &deal); err != nil {
		return fmt.Errorf("dealService.UpdateDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(deal))

	return nil
}

func (s DealServer) deleteV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealIDFromPath(r)
	if err != nil {
		return err
	}

	if err := s.dealService.DeleteDeal(ctx, id); err != nil {
		return fmt.Errorf("dealService.DeleteDeal: %w", err)
	}

	reply.NoContent(w)

	return nil
}

func (s DealServer) postV1DealToggle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealIDFromPath(r)
	if err != nil {
		return err
	}

	active, err := s.dealService.ToggleDeal(ctx, id)
	if err != nil {
		return fmt.Errorf("dealService.ToggleDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.ToggleDealResponse{
		ID:       id.String(),
		IsActive: active,
	})

	return nil
}

func (s DealServer) getV1DealStats(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealIDFromPath(r)
	if err != nil {
		return err
	}

	stats, err := s.dealService.Stats(ctx, id)
	if err != nil {
		return fmt.Errorf("dealService.Stats: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTUsageStats(stats))

	return nil
}

func dealIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("uuid.Parse: %w", err),
			failure.WithCode(errcodes.InvalidDealID),
		)
	}

	return id, nil
}

func paging(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return 0, 0, failure.NewInvalidArgumentError(
				"invalid limit",
				failure.WithCode(errcodes.InvalidPaging),
			)
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, failure.NewInvalidArgumentError(
				"invalid offset",
				failure.WithCode(errcodes.InvalidPaging),
			)
		}
	}

	return limit, offset, nil
}

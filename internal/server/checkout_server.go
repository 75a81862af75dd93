package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"

	"promo-engine/internal/domain/entity"
	service "promo-engine/internal/domain/service/deal"
	"promo-engine/pkg/errcodes"
	"promo-engine/pkg/httpx/reply"
	"promo-engine/pkg/httpx/req"
	"promo-engine/pkg/rest"
)

type checkoutService interface {
	Evaluate(ctx context.Context, order entity.OrderContext) (service.EvaluationResult, error)
	Apply(ctx context.Context, order entity.OrderContext, orderID uuid.UUID) (entity.Selection, error)
	CheckDeal(ctx context.Context, dealID uuid.UUID, order entity.OrderContext) (bool, error)
}

// CheckoutServer exposes deal evaluation to the ordering flow.
type CheckoutServer struct {
	checkoutService checkoutService
}

func NewCheckoutServer(checkoutService checkoutService) CheckoutServer {
	return CheckoutServer{
		checkoutService: checkoutService,
	}
}

// postV1CheckoutEvaluate is a dry run, nothing is consumed.
func (s CheckoutServer) postV1CheckoutEvaluate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.EvaluateRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	order, err := newDomainOrder(request, time.Now())
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("newDomainOrder: %w", err),
			failure.WithCode(errcodes.InvalidOrderContext),
		)
	}

	result, err := s.checkoutService.Evaluate(ctx, order)
	if err != nil {
		return fmt.Errorf("checkoutService.Evaluate: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTEvaluateResponse(result))

	return nil
}

// postV1CheckoutApply finalizes the order and consumes usage slots.
func (s CheckoutServer) postV1CheckoutApply(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ApplyRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	orderID, err := uuid.Parse(request.OrderID)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("uuid.Parse: %w", err),
			failure.WithCode(errcodes.InvalidOrderContext),
		)
	}

	order, err := newDomainOrder(request.EvaluateRequest, time.Now())
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("newDomainOrder: %w", err),
			failure.WithCode(errcodes.InvalidOrderContext),
		)
	}

	selection, err := s.checkoutService.Apply(ctx, order, orderID)
	if err != nil {
		return fmt.Errorf("checkoutService.Apply: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTApplyResponse(selection))

	return nil
}

// postV1CheckoutCheck answers whether one specific deal would apply.
func (s CheckoutServer) postV1CheckoutCheck(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	dealID, err := dealIDFromPath(r)
	if err != nil {
		return err
	}

	var request rest.EvaluateRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	order, err := newDomainOrder(request, time.Now())
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("newDomainOrder: %w", err),
			failure.WithCode(errcodes.InvalidOrderContext),
		)
	}

	eligible, err := s.checkoutService.CheckDeal(ctx, dealID, order)
	if err != nil {
		return fmt.Errorf("checkoutService.CheckDeal: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, map[string]bool{"eligible": eligible})

	return nil
}

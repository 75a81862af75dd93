package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"promo-engine/internal/domain/entity"
	"promo-engine/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type dealGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error)
}

type capNotifier interface {
	DealCapReached(ctx context.Context, deal entity.Deal) error
}

type expirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// CapAlertHandler resolves the deal named by a cap alert task and pushes
// the notification out.
type CapAlertHandler struct {
	deals    dealGetter
	notifier capNotifier
}

func NewCapAlertHandler(deals dealGetter, notifier capNotifier) *CapAlertHandler {
	return &CapAlertHandler{
		deals:    deals,
		notifier: notifier,
	}
}

func (h *CapAlertHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload CapAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	deal, err := h.deals.GetByID(ctx, payload.DealID)
	if err != nil {
		return fmt.Errorf("deals.GetByID: %w", err)
	}

	if err := h.notifier.DealCapReached(ctx, *deal); err != nil {
		return fmt.Errorf("notifier.DealCapReached: %w", err)
	}

	logger(ctx).Info("cap alert sent", "deal-id", payload.DealID.String())

	return nil
}

// ExpirySweepHandler turns off deals whose end date has passed.
type ExpirySweepHandler struct {
	deals expirer
}

func NewExpirySweepHandler(deals expirer) *ExpirySweepHandler {
	return &ExpirySweepHandler{deals: deals}
}

func (h *ExpirySweepHandler) Handle(ctx context.Context, _ *asynq.Task) error {
	count, err := h.deals.DeactivateExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("deals.DeactivateExpired: %w", err)
	}

	if count > 0 {
		logger(ctx).Info("expired deals deactivated", "count", count)
	}

	return nil
}

package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"promo-engine/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	TypeCapAlert    = "deal:cap_alert"
	TypeExpirySweep = "deal:expiry_sweep"

	QueueDefault = "default"
	QueueAlerts  = "alerts"
)

// Queues returns the queue weights for the asynq server.
func Queues() map[string]int {
	return map[string]int{
		QueueAlerts:  6,
		QueueDefault: 3,
	}
}

type CapAlertPayload struct {
	DealID uuid.UUID `json:"dealId"`
}

func NewCapAlertTask(dealID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(CapAlertPayload{DealID: dealID})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return asynq.NewTask(TypeCapAlert, payload, asynq.Queue(QueueAlerts), asynq.MaxRetry(5)), nil
}

func NewExpirySweepTask() *asynq.Task {
	return asynq.NewTask(TypeExpirySweep, nil, asynq.Queue(QueueDefault))
}

// Enqueuer submits background tasks over the asynq client.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueCapAlert(ctx context.Context, dealID uuid.UUID) error {
	task, err := NewCapAlertTask(dealID)
	if err != nil {
		return err
	}

	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("client.EnqueueContext: %w", err)
	}

	return nil
}

// DealCapReached hands the alert off to the background queue, keeping the
// checkout path free of Telegram round trips.
func (e *Enqueuer) DealCapReached(ctx context.Context, deal entity.Deal) error {
	return e.EnqueueCapAlert(ctx, deal.ID)
}

package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const defaultSweepInterval = 15 * time.Minute

// Sweeper periodically enqueues expiry sweep tasks so whichever worker
// instance picks them up retires outdated deals.
type Sweeper struct {
	client   *asynq.Client
	interval time.Duration
}

func NewSweeper(client *asynq.Client) *Sweeper {
	return &Sweeper{
		client:   client,
		interval: defaultSweepInterval,
	}
}

func (s *Sweeper) WithInterval(interval time.Duration) *Sweeper {
	if interval > 0 {
		s.interval = interval
	}
	return s
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// One sweep right away, deals may have expired while we were down.
	s.enqueueSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		case <-ticker.C:
			s.enqueueSweep(ctx)
		}
	}
}

func (s *Sweeper) enqueueSweep(ctx context.Context) {
	if _, err := s.client.EnqueueContext(ctx, NewExpirySweepTask()); err != nil {
		logger(ctx).Error("failed to enqueue expiry sweep", "error", fmt.Errorf("client.EnqueueContext: %w", err))
	}
}

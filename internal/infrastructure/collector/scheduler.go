package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/go-co-op/gocron"
)

// Scheduler periodically re-runs a collection function.
type Scheduler struct {
	interval time.Duration
	run      func(ctx context.Context)
	logger   logger.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(interval time.Duration, run func(ctx context.Context), logger logger.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", interval)
	}
	if run == nil {
		return nil, fmt.Errorf("run function must not be nil")
	}
	return &Scheduler{interval: interval, run: run, logger: logger}, nil
}

// Start runs the collection function on the configured interval until the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)

	s.logger.Info(fmt.Sprintf("Starting collection scheduler with interval %v", s.interval))

	_, err := scheduler.Every(s.interval).Do(func() {
		s.logger.Info("Scheduled collection run")
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule collection job: %w", err)
	}

	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	s.logger.Info("Collection scheduler stopped")
	return nil
}

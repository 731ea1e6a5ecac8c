package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// Scheduler wires the ticker driver with the fetch and categorization jobs.
type Scheduler struct {
	driver     ports.Scheduler
	fetcher    *FetchOrchestrator
	categorize *CategorizationJob
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs. A nil
// categorize job disables the follow-up categorization run.
func NewScheduler(driver ports.Scheduler, fetcher *FetchOrchestrator, categorize *CategorizationJob, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, fetcher: fetcher, categorize: categorize, logger: logger}
}

// Start registers the recurring job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.fetcher == nil {
		return nil
	}
	return s.driver.Start(ctx, func(trigger time.Time) { s.tick(ctx, trigger) })
}

func (s *Scheduler) tick(ctx context.Context, trigger time.Time) {
	s.logger.Info("scheduled fetch", "trigger", trigger)
	if _, err := s.fetcher.FetchAll(ctx, 0); err != nil {
		s.logger.Error("scheduled fetch failed", "error", err)
		return
	}
	if s.categorize == nil {
		return
	}
	if _, err := s.categorize.Run(ctx, 0, domain.TriggerScheduled); err != nil && !errors.Is(err, ErrCategorizerDisabled) {
		s.logger.Error("scheduled categorization failed", "error", err)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}

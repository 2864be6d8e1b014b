package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mjoubert/kraken-sync/internal/config"
)

// Scheduler runs each enabled category on its own interval.
type Scheduler struct {
	runner *Runner
	cats   config.CategoriesConfig
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(runner *Runner, cats config.CategoriesConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner: runner,
		cats:   cats,
		logger: logger,
	}
}

// Start launches one loop per enabled category. Each category runs
// immediately, then on its interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, name := range Categories {
		cat, ok := s.cats.Get(name)
		if !ok || !cat.On() {
			s.logger.Info("category disabled", "category", name)
			continue
		}

		s.wg.Add(1)
		go s.loop(name, cat.Interval)
	}

	s.logger.Info("scheduler started")
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(category string, interval time.Duration) {
	defer s.wg.Done()

	s.logger.Info("category loop started", "category", category, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runOnce(category)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(category)
		}
	}
}

func (s *Scheduler) runOnce(category string) {
	if err := s.runner.RunCategory(s.ctx, category); err != nil {
		s.logger.Error("category run failed", "category", category, "error", err)
	}
}

// RunAll runs every enabled category once, in order. Failures are logged
// and recorded; the remaining categories still run.
func (s *Scheduler) RunAll(ctx context.Context) {
	for _, name := range Categories {
		cat, ok := s.cats.Get(name)
		if !ok || !cat.On() {
			continue
		}
		if err := s.runner.RunCategory(ctx, name); err != nil {
			s.logger.Error("category run failed", "category", name, "error", err)
		}
	}
}

// Package scheduler runs the periodic background jobs of the billing
// service.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sweeper flips open invoices past their due date to overdue and reports
// how many changed.
type Sweeper interface {
	SweepOverdue(ctx context.Context, actorID uuid.UUID) (int, error)
}

// OverdueSweepScheduler runs the overdue sweep on a fixed interval. Sweeps
// run under the nil actor, which audit records show as the system user.
type OverdueSweepScheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueSweepScheduler creates a new overdue sweep scheduler
func NewOverdueSweepScheduler(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *OverdueSweepScheduler {
	return &OverdueSweepScheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the sweep loop. Calling Start on a running scheduler is a
// no-op.
func (s *OverdueSweepScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("overdue sweep scheduler started", zap.Duration("interval", s.interval))
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *OverdueSweepScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Info("overdue sweep scheduler stopped")
}

func (s *OverdueSweepScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once at startup so a restart never delays the first sweep by a
	// full interval.
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *OverdueSweepScheduler) runOnce(ctx context.Context) {
	swept, err := s.sweeper.SweepOverdue(ctx, uuid.Nil)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("overdue sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		s.logger.Info("overdue sweep completed", zap.Int("invoices", swept))
	}
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vitalstudio/auth-service/internal/auth/store"
)

// HousekeepingService periodically sweeps expired records out of stores that
// cannot expire entries on their own, such as the in-memory revocation and
// two-factor stores. Backends with native TTLs register no pruners.
type HousekeepingService struct {
	Pruners  []store.Pruner
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(pruners []store.Pruner, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Pruners:  pruners,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "pruners", len(s.Pruners))
}

// Stop gracefully shuts down the background worker. Blocks until the worker
// has finished any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup sweeps each pruner independently - a failure in one won't stop the
// others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	var swept int
	for _, pruner := range s.Pruners {
		if err := pruner.PruneExpired(ctx); err != nil {
			s.Logger.Error("failed to prune expired records", "error", err)
			continue
		}
		swept++
	}

	s.Logger.Debug("housekeeping sweep completed", "successful_sweeps", swept)
}

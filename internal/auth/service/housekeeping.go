package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
)

// HousekeepingService periodically deletes revocation records whose token
// has expired anyway, so revoked_tokens does not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  *Metrics

	// Clock defaults to time.Now. It must agree with the token codec's
	// clock: a record is purged only once its token no longer verifies.
	Clock func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// PurgeExpired removes every revocation record whose token expired by now.
func (s *HousekeepingService) PurgeExpired(ctx context.Context) (int64, error) {
	now := time.Now
	if s.Clock != nil {
		now = s.Clock
	}

	n, err := s.Store.Revocations().DeleteExpired(ctx, now().UTC())
	if err != nil {
		return 0, err
	}
	s.Metrics.purged(n)
	return n, nil
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

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	n, err := s.PurgeExpired(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired revocations", "error", err)
		return
	}

	s.Logger.Info("housekeeping cleanup completed", "revocations_purged", n)
}

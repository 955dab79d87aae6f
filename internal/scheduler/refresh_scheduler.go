package scheduler

import (
	"context"
	"time"

	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/google/uuid"
)

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = 24 * time.Hour

// Refresher is the part of the repository the scheduler drives.
type Refresher interface {
	RefreshVideos(ctx context.Context) error
}

// RefreshScheduler periodically pulls the remote playlist into the local store.
type RefreshScheduler struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	onStart   bool
}

func NewRefreshScheduler(refresher Refresher, interval, timeout time.Duration, onStart bool) *RefreshScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &RefreshScheduler{
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		onStart:   onStart,
	}
}

// Start runs the refresh loop until ctx is done.
// Returns a channel that is closed when the loop has exited.
func (s *RefreshScheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	logger.WithComponent("refresh").Debugf("starting refresh scheduler with interval: %v, timeout: %v, on start: %v", s.interval, s.timeout, s.onStart)
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		if s.onStart {
			s.RunOnce(ctx)
		}
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("refresh").Info("refresh scheduler stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
	return done
}

// RunOnce performs a single bounded refresh. Errors are logged, not retried.
func (s *RefreshScheduler) RunOnce(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		logger.WithComponent("refresh").Debugf("refresh skipped: %v", err)
		return
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	start := time.Now()
	log := logger.WithComponent("refresh").WithField("run", id)
	log.Debugf("refreshing videos")
	if err := s.refresher.RefreshVideos(runCtx); err != nil {
		log.Errorf("refresh failed after %v: %v", time.Since(start), err)
		return
	}
	log.Infof("videos refreshed in %v", time.Since(start))
}

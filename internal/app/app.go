package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cerodriguez46/devbyte/internal/config"
	"github.com/cerodriguez46/devbyte/internal/database"
	"github.com/cerodriguez46/devbyte/internal/dispatch"
	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/cerodriguez46/devbyte/internal/network"
	"github.com/cerodriguez46/devbyte/internal/repository"
	"github.com/cerodriguez46/devbyte/internal/scheduler"
)

// App is the application container (immutable dependencies + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config *config.Config
	Dao    database.VideoDao
	Source network.PlaylistSource
	Repo   *repository.VideosRepository

	BaseCtx context.Context
	Cancel  context.CancelFunc

	streamCtx     context.Context
	stopStreams   context.CancelFunc
	schedulerDone <-chan struct{}
}

// New wires the repository over dao and source. Refreshes run on a
// dispatcher sized by remote.io_parallelism.
func New(cfg *config.Config, dao database.VideoDao, source network.PlaylistSource) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if dao == nil {
		return nil, errors.New("video dao is nil")
	}
	if source == nil {
		return nil, errors.New("playlist source is nil")
	}

	ioDispatcher := dispatch.NewDispatcher("io", int64(cfg.Remote.IOParallelism))
	repo, err := repository.NewVideosRepository(dao, source, repository.WithDispatcher(ioDispatcher))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	streamCtx, stopStreams := context.WithCancel(ctx)
	return &App{
		Config:      cfg,
		Dao:         dao,
		Source:      source,
		Repo:        repo,
		BaseCtx:     ctx,
		Cancel:      cancel,
		streamCtx:   streamCtx,
		stopStreams: stopStreams,
	}, nil
}

// StreamsDone is closed once StopStreams or Cancel is called.
func (a *App) StreamsDone() <-chan struct{} {
	return a.streamCtx.Done()
}

// StopStreams ends the open video streams. Requests in flight and background work keep BaseCtx.
func (a *App) StopStreams() {
	a.stopStreams()
}

// StartBackground starts the store watcher, when the store has one, and the refresh scheduler.
func (a *App) StartBackground() error {
	if w, ok := a.Dao.(database.Watcher); ok {
		if err := w.StartWatcher(a.BaseCtx); err != nil {
			return fmt.Errorf("cannot start store watcher: %w", err)
		}
	}

	s := scheduler.NewRefreshScheduler(a.Repo, a.Config.Remote.RefreshInterval, a.Config.Server.RefreshTimeout, a.Config.Remote.RefreshOnStart)
	a.schedulerDone = s.Start(a.BaseCtx)
	return nil
}

// Shutdown stops background work, waiting up to timeout for the scheduler, then closes the store.
func (a *App) Shutdown(timeout time.Duration) {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()

	if a.schedulerDone != nil {
		select {
		case <-a.schedulerDone:
		case <-time.After(timeout):
			logger.WithComponent("app").Warnf("refresh scheduler did not stop within %v", timeout)
		}
	}

	if err := a.Dao.Close(); err != nil {
		logger.WithComponent("app").Errorf("failed to close video store: %v", err)
	}
}

// Package repository hides where videos come from. Observers read the
// local store through Videos; RefreshVideos pulls the remote playlist into
// the store, and the store's own notification updates Videos.
package repository

import (
	"context"
	"errors"

	"github.com/cerodriguez46/devbyte/internal/database"
	"github.com/cerodriguez46/devbyte/internal/dispatch"
	"github.com/cerodriguez46/devbyte/internal/domain"
	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/cerodriguez46/devbyte/internal/network"
	"github.com/cerodriguez46/devbyte/internal/observable"
)

// VideosRepository is a read-through cache of the remote playlist.
type VideosRepository struct {
	dao        database.VideoDao
	source     network.PlaylistSource
	dispatcher *dispatch.Dispatcher
	videos     observable.Observable[[]domain.Video]
}

// Option customizes a VideosRepository.
type Option func(*VideosRepository)

// WithDispatcher runs refreshes on d instead of dispatch.IO.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(r *VideosRepository) {
		if d != nil {
			r.dispatcher = d
		}
	}
}

func NewVideosRepository(dao database.VideoDao, source network.PlaylistSource, opts ...Option) (*VideosRepository, error) {
	if dao == nil {
		return nil, errors.New("video dao is nil")
	}
	if source == nil {
		return nil, errors.New("playlist source is nil")
	}

	r := &VideosRepository{
		dao:        dao,
		source:     source,
		dispatcher: dispatch.IO,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.videos = observable.Map(dao.Videos(), database.AsDomainModel)
	return r, nil
}

// Videos is the playlist as currently held by the local store.
func (r *VideosRepository) Videos() observable.Observable[[]domain.Video] {
	return r.videos
}

// RefreshVideos replaces the cached playlist with the remote one.
//
// The fetch and the store write run on the I/O dispatcher; the call blocks
// until both are done, so it is safe from any goroutine. Errors from the
// source or the store are returned unchanged; a failed fetch writes nothing.
// Observe Videos to see the result.
func (r *VideosRepository) RefreshVideos(ctx context.Context) error {
	return r.dispatcher.Run(ctx, func(ctx context.Context) error {
		playlist, err := r.source.GetPlaylist(ctx)
		if err != nil {
			logger.WithComponent("repository").Debugf("playlist fetch failed: %v", err)
			return err
		}
		logger.WithComponent("repository").Debugf("writing %d videos to the local store", len(playlist.Videos))
		return r.dao.InsertAll(ctx, playlist.AsDatabaseModel()...)
	})
}

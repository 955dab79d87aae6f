package database

import (
	"context"
	"slices"
	"sync"

	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/cerodriguez46/devbyte/internal/observable"
	"github.com/go-playground/validator/v10"
)

// MemoryDao keeps the videos table in memory. Content is lost on exit.
type MemoryDao struct {
	mu        sync.Mutex
	videos    []DatabaseVideo
	mode      WriteMode
	validator *validator.Validate
	live      *observable.Live[[]DatabaseVideo]
}

// NewMemoryDao creates a store holding initial, deduplicated by URL.
func NewMemoryDao(mode WriteMode, initial ...DatabaseVideo) *MemoryDao {
	videos := mergeVideos(nil, initial, WriteReplace)
	return &MemoryDao{
		videos:    videos,
		mode:      mode,
		validator: validator.New(),
		live:      observable.NewLive(slices.Clone(videos)),
	}
}

func (m *MemoryDao) Videos() observable.Observable[[]DatabaseVideo] {
	return m.live
}

func (m *MemoryDao) InsertAll(ctx context.Context, videos ...DatabaseVideo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateVideos(m.validator, videos); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.videos = mergeVideos(m.videos, videos, m.mode)
	logger.WithComponent("memory-dao").Debugf("bulk write of %d videos (%s), table now has %d", len(videos), m.mode, len(m.videos))

	// publish while holding mu so observers see writes in the order they were applied
	m.live.Publish(slices.Clone(m.videos))
	return nil
}

func (m *MemoryDao) Close() error {
	return nil
}

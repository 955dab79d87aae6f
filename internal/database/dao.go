package database

import (
	"context"

	"github.com/cerodriguez46/devbyte/internal/observable"
)

// VideoDao is the local video store.
//
// Videos is the live table content in table order. InsertAll writes the
// whole batch or nothing; on success the store publishes its new content,
// even when nothing changed. Published slices are shared and must not be
// modified.
type VideoDao interface {
	Videos() observable.Observable[[]DatabaseVideo]
	InsertAll(ctx context.Context, videos ...DatabaseVideo) error
	Close() error
}

// Watcher is implemented by stores that can pick up changes made outside
// the process.
type Watcher interface {
	StartWatcher(ctx context.Context) error
}

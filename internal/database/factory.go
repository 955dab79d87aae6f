package database

import (
	"context"
	"errors"
	"fmt"
)

const (
	StoreTypeMemory   = "memory"
	StoreTypeJSON     = "json"
	StoreTypePostgres = "postgres"
	StoreTypeMySQL    = "mysql"
)

var ErrUnknownStoreType = errors.New("unknown store type")

// Options selects and configures a VideoDao.
type Options struct {
	Type      string
	FilePath  string
	DSN       string
	WriteMode WriteMode
}

// NewVideoDao creates the store named by opts.Type.
// SQL stores are pinged before the schema is created.
func NewVideoDao(ctx context.Context, opts Options) (VideoDao, error) {
	mode := opts.WriteMode
	if mode == "" {
		mode = WriteReplace
	}

	switch opts.Type {
	case StoreTypeMemory:
		return NewMemoryDao(mode), nil
	case StoreTypeJSON, "":
		return NewJSONDao(opts.FilePath, mode)
	case StoreTypePostgres, StoreTypeMySQL:
		dialect := Dialect(opts.Type)
		db, err := OpenSQL(dialect, opts.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("connect to %s: %w", opts.Type, err)
		}
		dao, err := NewSQLDao(ctx, db, dialect, mode)
		if err != nil {
			db.Close()
			return nil, err
		}
		return dao, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s, %s, %s, %s)", ErrUnknownStoreType, opts.Type,
			StoreTypeMemory, StoreTypeJSON, StoreTypePostgres, StoreTypeMySQL)
	}
}

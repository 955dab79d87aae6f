package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/cerodriguez46/devbyte/internal/observable"
	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Dialect is the SQL flavour spoken by a SQLDao.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

var schemas = map[Dialect]string{
	DialectPostgres: `
		CREATE TABLE IF NOT EXISTS videos (
			url TEXT PRIMARY KEY,
			updated TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			thumbnail TEXT NOT NULL,
			position BIGINT NOT NULL
		)`,
	DialectMySQL: `
		CREATE TABLE IF NOT EXISTS videos (
			url VARCHAR(768) NOT NULL PRIMARY KEY,
			updated VARCHAR(64) NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			thumbnail TEXT NOT NULL,
			position BIGINT NOT NULL
		)`,
}

// OpenSQL opens a connection pool for dialect. It does not contact the server.
func OpenSQL(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case DialectPostgres:
		connector, err := pq.NewConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		return sql.OpenDB(connector), nil
	case DialectMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("create mysql connector: %w", err)
		}
		return sql.OpenDB(connector), nil
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %q", dialect)
	}
}

// SQLDao stores the videos table in Postgres or MySQL.
// Table order is kept in the position column.
type SQLDao struct {
	db        *sql.DB
	dialect   Dialect
	mode      WriteMode
	validator *validator.Validate

	mu   sync.Mutex
	live *observable.Live[[]DatabaseVideo]
}

// NewSQLDao creates the table if needed and loads its current content.
// The DAO takes ownership of db and closes it on Close.
func NewSQLDao(ctx context.Context, db *sql.DB, dialect Dialect, mode WriteMode) (*SQLDao, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if _, ok := schemas[dialect]; !ok {
		return nil, fmt.Errorf("unsupported sql dialect: %q", dialect)
	}

	d := &SQLDao{
		db:        db,
		dialect:   dialect,
		mode:      mode,
		validator: validator.New(),
	}
	if err := d.InitSchema(ctx); err != nil {
		return nil, err
	}

	videos, err := d.queryAll(ctx, d.db)
	if err != nil {
		return nil, err
	}
	d.live = observable.NewLive(videos)
	return d, nil
}

func (d *SQLDao) InitSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schemas[d.dialect]); err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}
	return nil
}

func (d *SQLDao) Videos() observable.Observable[[]DatabaseVideo] {
	return d.live
}

// InsertAll applies the batch in one transaction and publishes the table as read
// back inside it, once the commit succeeded.
func (d *SQLDao) InsertAll(ctx context.Context, videos ...DatabaseVideo) error {
	if err := validateVideos(d.validator, videos); err != nil {
		return err
	}
	batch := mergeVideos(nil, videos, WriteReplace)

	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch d.mode {
	case WriteUpsert:
		err = d.upsertTx(ctx, tx, batch)
	default:
		err = d.replaceTx(ctx, tx, batch)
	}
	if err != nil {
		return err
	}

	// the snapshot is read inside the transaction so a committed write is always published
	current, err := d.queryAll(ctx, tx)
	if err != nil {
		return fmt.Errorf("read back written videos: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	logger.WithComponent("sql-dao").Debugf("bulk write of %d videos (%s, %s), table now has %d", len(videos), d.dialect, d.mode, len(current))
	d.live.Publish(current)
	return nil
}

func (d *SQLDao) replaceTx(ctx context.Context, tx *sql.Tx, batch []DatabaseVideo) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM videos"); err != nil {
		return fmt.Errorf("clear videos: %w", err)
	}
	for i, v := range batch {
		if err := d.insertTx(ctx, tx, v, int64(i)); err != nil {
			return err
		}
	}
	return nil
}

func (d *SQLDao) upsertTx(ctx context.Context, tx *sql.Tx, batch []DatabaseVideo) error {
	var maxPos sql.NullInt64
	if err := tx.QueryRowContext(ctx, "SELECT MAX(position) FROM videos").Scan(&maxPos); err != nil {
		return fmt.Errorf("read max position: %w", err)
	}
	next := int64(0)
	if maxPos.Valid {
		next = maxPos.Int64 + 1
	}

	for _, v := range batch {
		var pos int64
		err := tx.QueryRowContext(ctx, d.bind("SELECT position FROM videos WHERE url = ?"), v.URL).Scan(&pos)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := d.insertTx(ctx, tx, v, next); err != nil {
				return err
			}
			next++
		case err != nil:
			return fmt.Errorf("lookup video %s: %w", v.URL, err)
		default:
			_, err := tx.ExecContext(ctx,
				d.bind("UPDATE videos SET updated = ?, title = ?, description = ?, thumbnail = ? WHERE url = ?"),
				v.Updated, v.Title, v.Description, v.Thumbnail, v.URL)
			if err != nil {
				return fmt.Errorf("update video %s: %w", v.URL, err)
			}
		}
	}
	return nil
}

func (d *SQLDao) insertTx(ctx context.Context, tx *sql.Tx, v DatabaseVideo, position int64) error {
	_, err := tx.ExecContext(ctx,
		d.bind("INSERT INTO videos (url, updated, title, description, thumbnail, position) VALUES (?, ?, ?, ?, ?, ?)"),
		v.URL, v.Updated, v.Title, v.Description, v.Thumbnail, position)
	if err != nil {
		return fmt.Errorf("insert video %s: %w", v.URL, err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (d *SQLDao) queryAll(ctx context.Context, q queryer) ([]DatabaseVideo, error) {
	rows, err := q.QueryContext(ctx, "SELECT url, updated, title, description, thumbnail FROM videos ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	videos := []DatabaseVideo{}
	for rows.Next() {
		var v DatabaseVideo
		if err := rows.Scan(&v.URL, &v.Updated, &v.Title, &v.Description, &v.Thumbnail); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// bind rewrites ? placeholders into the dialect's syntax.
func (d *SQLDao) bind(query string) string {
	return bindPlaceholders(d.dialect, query)
}

func bindPlaceholders(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *SQLDao) Close() error {
	return d.db.Close()
}

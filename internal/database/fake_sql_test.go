package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
)

// fakeVideoTable is an in-memory videos table behind a database/sql driver.
// It understands exactly the statements SQLDao issues with the mysql dialect.
type fakeVideoTable struct {
	mu      sync.Mutex
	rows    []fakeRow
	commits int

	// failReadsAfterCommit breaks every read outside a transaction once something was committed.
	failReadsAfterCommit bool
	commitErr            error
}

type fakeRow struct {
	video    DatabaseVideo
	position int64
}

func (t *fakeVideoTable) committed() []DatabaseVideo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedVideos(t.rows)
}

func sortedVideos(rows []fakeRow) []DatabaseVideo {
	sorted := append([]fakeRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].position < sorted[j].position })
	out := make([]DatabaseVideo, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, r.video)
	}
	return out
}

type fakeConnector struct {
	table *fakeVideoTable
}

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) {
	return &fakeConn{table: c.table}, nil
}

func (c fakeConnector) Driver() driver.Driver {
	return fakeDriver{}
}

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type fakeConn struct {
	table *fakeVideoTable
	tx    *fakeTx
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements not supported")
}

func (c *fakeConn) Close() error {
	return nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *fakeConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	c.table.mu.Lock()
	defer c.table.mu.Unlock()
	c.tx = &fakeTx{conn: c, rows: append([]fakeRow(nil), c.table.rows...)}
	return c.tx, nil
}

// view returns the rows visible to this connection.
func (c *fakeConn) view() ([]fakeRow, error) {
	if c.tx != nil {
		return c.tx.rows, nil
	}
	c.table.mu.Lock()
	defer c.table.mu.Unlock()
	if c.table.failReadsAfterCommit && c.table.commits > 0 {
		return nil, errors.New("connection reset after commit")
	}
	return append([]fakeRow(nil), c.table.rows...), nil
}

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	switch {
	case strings.Contains(query, "CREATE TABLE"):
		return driver.RowsAffected(0), nil
	case c.tx == nil:
		return nil, errors.New("writes must run in a transaction")
	case strings.HasPrefix(query, "DELETE FROM videos"):
		n := len(c.tx.rows)
		c.tx.rows = nil
		return driver.RowsAffected(n), nil
	case strings.HasPrefix(query, "INSERT INTO videos"):
		c.tx.rows = append(c.tx.rows, fakeRow{
			video: DatabaseVideo{
				URL:         args[0].Value.(string),
				Updated:     args[1].Value.(string),
				Title:       args[2].Value.(string),
				Description: args[3].Value.(string),
				Thumbnail:   args[4].Value.(string),
			},
			position: args[5].Value.(int64),
		})
		return driver.RowsAffected(1), nil
	case strings.HasPrefix(query, "UPDATE videos"):
		url := args[4].Value.(string)
		for i := range c.tx.rows {
			if c.tx.rows[i].video.URL == url {
				v := &c.tx.rows[i].video
				v.Updated, v.Title, v.Description, v.Thumbnail = args[0].Value.(string), args[1].Value.(string), args[2].Value.(string), args[3].Value.(string)
				return driver.RowsAffected(1), nil
			}
		}
		return driver.RowsAffected(0), nil
	default:
		return nil, errors.New("unexpected statement: " + query)
	}
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	rows, err := c.view()
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(query, "SELECT url, updated, title, description, thumbnail FROM videos"):
		out := &fakeRows{columns: []string{"url", "updated", "title", "description", "thumbnail"}}
		for _, v := range sortedVideos(rows) {
			out.values = append(out.values, []driver.Value{v.URL, v.Updated, v.Title, v.Description, v.Thumbnail})
		}
		return out, nil
	case strings.HasPrefix(query, "SELECT MAX(position)"):
		var max driver.Value
		for _, r := range rows {
			if max == nil || r.position > max.(int64) {
				max = r.position
			}
		}
		return &fakeRows{columns: []string{"max"}, values: [][]driver.Value{{max}}}, nil
	case strings.HasPrefix(query, "SELECT position FROM videos WHERE url"):
		out := &fakeRows{columns: []string{"position"}}
		for _, r := range rows {
			if r.video.URL == args[0].Value.(string) {
				out.values = append(out.values, []driver.Value{r.position})
			}
		}
		return out, nil
	default:
		return nil, errors.New("unexpected query: " + query)
	}
}

type fakeTx struct {
	conn *fakeConn
	rows []fakeRow
}

func (t *fakeTx) Commit() error {
	table := t.conn.table
	t.conn.tx = nil
	table.mu.Lock()
	defer table.mu.Unlock()
	if table.commitErr != nil {
		return table.commitErr
	}
	table.rows = t.rows
	table.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.conn.tx = nil
	return nil
}

type fakeRows struct {
	columns []string
	values  [][]driver.Value
	next    int
}

func (r *fakeRows) Columns() []string {
	return r.columns
}

func (r *fakeRows) Close() error {
	return nil
}

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.next >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.next])
	r.next++
	return nil
}

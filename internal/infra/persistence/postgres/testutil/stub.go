// Package testutil provides a stub database/sql driver that understands the
// statements issued by the postgres persister.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
)

var stubSeq uint64

// StubConn keeps the state table in memory. Writes issued inside a
// transaction are staged and only applied on commit.
type StubConn struct {
	Execs       []string
	State       map[string][]byte
	FailPing    bool
	FailExec    bool
	FailBegin   bool
	FailCommit  bool
	FailBuckets map[string]bool
	RowsErr     error

	staged []func()
	inTx   bool
}

// NewStubDB registers a sql.DB backed by a fresh stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{State: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", atomic.AddUint64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	c.inTx = true
	c.staged = nil
	return &stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	verb := strings.ToUpper(strings.Fields(query)[0])
	switch verb {
	case "CREATE":
		return driver.RowsAffected(0), nil
	case "INSERT":
		if len(args) != 2 {
			return nil, fmt.Errorf("insert expects bucket and payload, got %d args", len(args))
		}
		bucket, _ := args[0].Value.(string)
		if c.FailBuckets[bucket] {
			return nil, fmt.Errorf("exec fail for %s", bucket)
		}
		payload := toBytes(args[1].Value)
		c.apply(func() { c.State[bucket] = payload })
	case "DELETE":
		if len(args) != 1 {
			return nil, fmt.Errorf("delete expects a bucket arg")
		}
		bucket, _ := args[0].Value.(string)
		c.apply(func() { delete(c.State, bucket) })
	default:
		return nil, fmt.Errorf("unsupported statement: %s", query)
	}
	return driver.RowsAffected(1), nil
}

func (c *StubConn) apply(fn func()) {
	if c.inTx {
		c.staged = append(c.staged, fn)
		return
	}
	fn()
}

// QueryContext implements driver.QueryerContext for SELECT bucket, payload FROM state.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), "select bucket, payload from state") {
		return nil, fmt.Errorf("unsupported query: %s", query)
	}
	buckets := make([]string, 0, len(c.State))
	for name := range c.State {
		buckets = append(buckets, name)
	}
	sort.Strings(buckets)
	rows := make([][]driver.Value, 0, len(buckets))
	for _, name := range buckets {
		rows = append(rows, []driver.Value{name, c.State[name]})
	}
	return &stubRows{cols: []string{"bucket", "payload"}, rows: rows, err: c.RowsErr}, nil
}

func toBytes(v driver.Value) []byte {
	switch t := v.(type) {
	case []byte:
		return append([]byte(nil), t...)
	case string:
		return []byte(t)
	default:
		return []byte(fmt.Sprint(t))
	}
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	defer func() {
		t.conn.inTx = false
		t.conn.staged = nil
	}()
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	for _, fn := range t.conn.staged {
		fn()
	}
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.inTx = false
	t.conn.staged = nil
	return nil
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

// Package testutil provides a stub database/sql driver for postgres store tests.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

var stubSeq atomic.Uint64

// StubConn understands the statements issued by the document store: the
// documents DDL, the upsert and the select by name. Upserts made inside a
// transaction only become visible on commit.
type StubConn struct {
	Execs     []string
	Documents map[string][]byte

	FailPing   bool
	FailExec   bool
	FailBegin  bool
	FailQuery  bool
	FailCommit bool
	Rollbacks  int

	pending map[string][]byte
}

// NewStubDB registers a sql.DB backed by a fresh stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Documents: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
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

func (c *StubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *StubConn) Close() error { return nil }

func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return errors.New("ping fail")
	}
	return nil
}

func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, errors.New("begin fail")
	}
	c.pending = make(map[string][]byte)
	return &stubTx{conn: c}, nil
}

func normalize(query string) string {
	return strings.ToUpper(strings.Join(strings.Fields(query), " "))
}

func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, errors.New("exec fail")
	}
	q := normalize(query)
	switch {
	case strings.HasPrefix(q, "CREATE TABLE"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(q, "INSERT INTO DOCUMENTS"):
		if len(args) != 2 {
			return nil, fmt.Errorf("upsert wants name and payload, got %d args", len(args))
		}
		name, _ := args[0].Value.(string)
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload is %T, want []byte", args[1].Value)
		}
		target := c.Documents
		if c.pending != nil {
			target = c.pending
		}
		target[name] = append([]byte(nil), payload...)
		return driver.RowsAffected(1), nil
	}
	return nil, fmt.Errorf("unexpected statement: %s", query)
}

func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if c.FailQuery {
		return nil, errors.New("query fail")
	}
	if !strings.HasPrefix(normalize(query), "SELECT PAYLOAD FROM DOCUMENTS") || len(args) != 1 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	name, _ := args[0].Value.(string)
	rows := &stubRows{}
	if payload, ok := c.Documents[name]; ok {
		rows.values = [][]byte{payload}
	}
	return rows, nil
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	pending := t.conn.pending
	t.conn.pending = nil
	if t.conn.FailCommit {
		return errors.New("commit fail")
	}
	for name, payload := range pending {
		t.conn.Documents[name] = payload
	}
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.pending = nil
	t.conn.Rollbacks++
	return nil
}

// stubRows yields a single payload column.
type stubRows struct {
	values [][]byte
	idx    int
}

func (r *stubRows) Columns() []string { return []string{"payload"} }

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.values) {
		return io.EOF
	}
	dest[0] = r.values[r.idx]
	r.idx++
	return nil
}

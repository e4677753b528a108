package shared

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// MockConnection is a Connector that records the SQL it is given.
// Queries are answered from QueryResults where the map key is a substring of the query.
// Statements containing a key of FailOn return the matching error.
type MockConnection struct {
	DbType       string
	QueryResults map[string]*MockRows
	FailOn       map[string]error
	mu           sync.Mutex
	statements   []string
	args         [][]interface{}
	commits      int
	rollbacks    int
	closed       bool
}

func NewMockConnection(dbType string) *MockConnection {
	return &MockConnection{
		DbType:       dbType,
		QueryResults: make(map[string]*MockRows),
		FailOn:       make(map[string]error),
	}
}

func (c *MockConnection) Begin(ctx context.Context) (Transacter, error) {
	if err := c.match("BEGIN"); err != nil {
		return nil, err
	}
	return &MockTx{conn: c}, nil
}

func (c *MockConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	c.record(query, args)
	if err := c.match(query); err != nil {
		return nil, err
	}
	return MockResult(0), nil
}

func (c *MockConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	c.record(query, args)
	if err := c.match(query); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.QueryResults {
		if strings.Contains(query, k) {
			return v.clone(), nil
		}
	}
	return &MockRows{}, nil
}

func (c *MockConnection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockConnection) GetType() string {
	return c.DbType
}

// Statements returns a copy of all SQL received so far.
func (c *MockConnection) Statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.statements...)
}

// Args returns a copy of the bind arguments received with each statement.
func (c *MockConnection) Args() [][]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]interface{}(nil), c.args...)
}

func (c *MockConnection) Commits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}

func (c *MockConnection) Rollbacks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollbacks
}

func (c *MockConnection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *MockConnection) record(query string, args []interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements = append(c.statements, query)
	c.args = append(c.args, args)
}

func (c *MockConnection) match(query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.FailOn {
		if strings.Contains(query, k) {
			return v
		}
	}
	return nil
}

type MockTx struct {
	conn *MockConnection
}

func (t *MockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return t.conn.ExecContext(ctx, query, args...)
}

func (t *MockTx) Commit() error {
	if err := t.conn.match("COMMIT"); err != nil {
		return err
	}
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.commits++
	return nil
}

func (t *MockTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.rollbacks++
	return nil
}

type MockResult int64

func (r MockResult) LastInsertId() (int64, error) { return 0, nil }
func (r MockResult) RowsAffected() (int64, error) { return int64(r), nil }

// MockRows serves Data one row at a time.
// Scan supports destinations of type *string, *int, *int64, *bool, *time.Time, *sql.NullString,
// *sql.NullInt64 and *interface{}.
type MockRows struct {
	Data [][]interface{}
	Fail error // returned by Err() once all rows are read.
	pos  int
}

func (r *MockRows) clone() *MockRows {
	return &MockRows{Data: r.Data, Fail: r.Fail}
}

func (r *MockRows) Next() bool {
	if r.pos >= len(r.Data) {
		return false
	}
	r.pos++
	return true
}

func (r *MockRows) Err() error   { return r.Fail }
func (r *MockRows) Close() error { return nil }

func (r *MockRows) Scan(dest ...interface{}) error {
	if r.pos == 0 || r.pos > len(r.Data) {
		return fmt.Errorf("scan called without a current row")
	}
	row := r.Data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %v destination arguments in Scan, not %v", len(row), len(dest))
	}
	for i, v := range row {
		if err := assignMockValue(dest[i], v); err != nil {
			return fmt.Errorf("column %v: %v", i, err)
		}
	}
	return nil
}

func assignMockValue(dest interface{}, v interface{}) error {
	switch d := dest.(type) {
	case *interface{}:
		*d = v
		return nil
	case *sql.NullString:
		if v == nil {
			*d = sql.NullString{}
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T into *sql.NullString", v)
		}
		*d = sql.NullString{String: s, Valid: true}
		return nil
	case *sql.NullInt64:
		if v == nil {
			*d = sql.NullInt64{}
			return nil
		}
		i, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("cannot scan %T into *sql.NullInt64", v)
		}
		*d = sql.NullInt64{Int64: i, Valid: true}
		return nil
	case *int64:
		i, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("cannot scan %T into *int64", v)
		}
		*d = i
		return nil
	case *int:
		i, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("cannot scan %T into *int", v)
		}
		*d = int(i)
		return nil
	case *string, *bool, *time.Time:
		dv := reflect.ValueOf(dest).Elem()
		sv := reflect.ValueOf(v)
		if !sv.IsValid() || !sv.Type().AssignableTo(dv.Type()) {
			return fmt.Errorf("cannot scan %T into %T", v, dest)
		}
		dv.Set(sv)
		return nil
	}
	return fmt.Errorf("unsupported scan destination %T", dest)
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

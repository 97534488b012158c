/*
Copyright 2024 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// testing fake driver

package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync/atomic"
)

func init() {
	sql.Register("fake", &fakeDriver{})
}

// errFakeQuery is returned by the fake connection for queries containing "fail".
var errFakeQuery = errors.New("fake query failed")

// fakeQueries counts the queries the fake driver received.
var fakeQueries atomic.Int64

// fakeDriver is a fake database driver for testing.
// Every query returns the accounts table below, encoded like a text protocol would.
type fakeDriver struct{}

// Open returns a new fake connection.
func (d *fakeDriver) Open(name string) (driver.Conn, error) {
	return &fakeConn{}, nil
}

// fakeConn is a fake database connection.
type fakeConn struct {
	closed bool
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare is not supported")
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions are not supported")
}

// QueryContext implements driver.QueryerContext
func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if c.closed {
		return nil, driver.ErrBadConn
	}
	fakeQueries.Add(1)
	if strings.Contains(query, "fail") {
		return nil, errFakeQuery
	}
	if strings.Contains(query, "empty") {
		return &fakeRows{}, nil
	}
	return &fakeRows{data: fakeAccounts}, nil
}

// Ping implements driver.Pinger
func (c *fakeConn) Ping(ctx context.Context) error {
	if c.closed {
		return driver.ErrBadConn
	}
	return nil
}

var fakeColumns = []struct {
	name     string
	typeName string
}{
	{"id", "BIGINT"},
	{"name", "VARCHAR"},
	{"balance", "DOUBLE"},
	{"active", "BOOL"},
	{"visits", "UNSIGNED INT"},
}

var fakeAccounts = [][]driver.Value{
	{[]byte("1"), []byte("alice"), []byte("10.5"), []byte("1"), []byte("7")},
	{[]byte("2"), []byte("bob"), []byte("-3"), []byte("0"), nil},
}

// fakeRows is a fake rows implementation.
type fakeRows struct {
	data       [][]driver.Value
	currentRow int
	closed     bool
}

func (r *fakeRows) Columns() []string {
	names := make([]string, len(fakeColumns))
	for i, column := range fakeColumns {
		names[i] = column.name
	}
	return names
}

// ColumnTypeDatabaseTypeName implements driver.RowsColumnTypeDatabaseTypeName
func (r *fakeRows) ColumnTypeDatabaseTypeName(index int) string {
	return fakeColumns[index].typeName
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.closed {
		return driver.ErrBadConn
	}
	if r.currentRow >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.currentRow])
	r.currentRow++
	return nil
}

// Ensure all interfaces are implemented
var (
	_ driver.Driver                         = (*fakeDriver)(nil)
	_ driver.Conn                           = (*fakeConn)(nil)
	_ driver.QueryerContext                 = (*fakeConn)(nil)
	_ driver.Pinger                         = (*fakeConn)(nil)
	_ driver.Rows                           = (*fakeRows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*fakeRows)(nil)
)

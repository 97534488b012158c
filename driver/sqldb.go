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

// Package driver provides worm executors for PostgreSQL, MySQL and any
// database/sql driver. Importing it registers the "postgres", "pgx" and
// "mysql" drivers.
package driver

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/eatmoreapple/worm"
)

// SQLDriver opens executors on a database/sql driver.
type SQLDriver struct {
	// Name is the name the database/sql driver is registered under.
	Name string

	// Options configure the database/sql connection pool of every executor.
	Options []ConnectOptionFunc
}

// Connect implements worm.Driver. The connection is checked with a ping.
func (d SQLDriver) Connect(ctx context.Context, dataSource string) (worm.Executor, error) {
	db, err := sqlx.Open(d.Name, dataSource)
	if err != nil {
		return nil, worm.NewConnectionError(dataSource, err)
	}
	var option connectOption
	for _, opt := range d.Options {
		opt(&option)
	}
	option.apply(db)
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, worm.NewConnectionError(dataSource, err)
	}
	return NewSQLExecutor(db), nil
}

// RegisterSQLDriver makes the database/sql driver called name available to worm under the same name.
func RegisterSQLDriver(name string, opts ...ConnectOptionFunc) error {
	return worm.Register(name, SQLDriver{Name: name, Options: opts})
}

// SQLExecutor runs scripts on a database/sql handle.
type SQLExecutor struct {
	db *sqlx.DB
}

// NewSQLExecutor wraps db.
func NewSQLExecutor(db *sqlx.DB) *SQLExecutor {
	return &SQLExecutor{db: db}
}

// DB returns the wrapped handle.
func (e *SQLExecutor) DB() *sqlx.DB { return e.db }

// ExecuteSQL implements worm.Executor.
func (e *SQLExecutor) ExecuteSQL(ctx context.Context, query string) (worm.Rows, error) {
	rows, err := e.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, &worm.ExecutionError{SQL: query, Err: err}
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		_ = rows.Close()
		return nil, &worm.ExecutionError{SQL: query, Err: err}
	}
	return &sqlRows{rows: rows, types: types}, nil
}

// Close implements worm.Executor.
func (e *SQLExecutor) Close() error {
	return e.db.Close()
}

// sqlRows adapts sqlx.Rows to worm.Rows.
type sqlRows struct {
	rows  *sqlx.Rows
	types []*sql.ColumnType
	// err is the terminal error of the cursor, reported as one extra failed row.
	err     error
	errDone bool
}

func (r *sqlRows) Next() bool {
	if r.rows.Next() {
		return true
	}
	if r.errDone {
		return false
	}
	r.errDone = true
	r.err = r.rows.Err()
	return r.err != nil
}

func (r *sqlRows) Row() (*worm.Row, error) {
	if r.err != nil {
		return nil, r.err
	}
	columns, err := r.rows.SliceScan()
	if err != nil {
		return nil, err
	}
	values := make([]worm.Value, len(columns))
	for i, column := range columns {
		if values[i], err = decodeColumn(r.types[i], column); err != nil {
			return nil, err
		}
	}
	return worm.NewRow(values...), nil
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}

// decodeColumn converts a scanned column into a Value.
// Drivers that use a text protocol hand back []byte for every column, so the
// database type name decides how the bytes are read.
func decodeColumn(columnType *sql.ColumnType, column any) (worm.Value, error) {
	raw, ok := column.([]byte)
	if !ok {
		return worm.ValueOf(column)
	}
	if raw == nil {
		return worm.Null(), nil
	}
	text := string(raw)
	typeName := strings.ToUpper(columnType.DatabaseTypeName())
	switch {
	case strings.HasPrefix(typeName, "UNSIGNED "):
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return worm.Value{}, err
		}
		return worm.Uint(n), nil
	case isIntegerType(typeName):
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return worm.Value{}, err
		}
		return worm.Int(n), nil
	case typeName == "FLOAT" || typeName == "REAL" || typeName == "FLOAT4":
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return worm.Value{}, err
		}
		return worm.Float32(float32(f)), nil
	case typeName == "DOUBLE" || typeName == "FLOAT8" || typeName == "DOUBLE PRECISION":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return worm.Value{}, err
		}
		return worm.Float64(f), nil
	case typeName == "BOOL" || typeName == "BOOLEAN":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return worm.Value{}, err
		}
		return worm.Bool(b), nil
	}
	return worm.String(text), nil
}

func isIntegerType(typeName string) bool {
	switch typeName {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "INT2", "INT4", "INT8", "YEAR":
		return true
	}
	return false
}

// ErrInvalidDataSource is returned when a data source cannot be parsed.
var ErrInvalidDataSource = errors.New("worm: invalid data source")

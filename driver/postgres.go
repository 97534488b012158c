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

package driver

import (
	"context"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/eatmoreapple/worm"
)

// PostgresDriver is a driver of PostgreSQL built on pgx.
// Data sources are pgx connection strings, URL or key=value.
type PostgresDriver struct{}

// Connect implements worm.Driver.
func (d PostgresDriver) Connect(ctx context.Context, dataSource string) (worm.Executor, error) {
	cfg, err := pgx.ParseConfig(dataSource)
	if err != nil {
		return nil, worm.NewConnectionError(dataSource, fmt.Errorf("%w: %w", ErrInvalidDataSource, err))
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, worm.NewConnectionError(dataSource, err)
	}
	return NewPostgresExecutor(conn), nil
}

func (d PostgresDriver) String() string {
	return "postgres"
}

// PostgresExecutor runs scripts on a single pgx connection.
// Scripts are sent with the simple protocol, since they carry no parameters.
type PostgresExecutor struct {
	conn *pgx.Conn
}

// NewPostgresExecutor wraps conn.
func NewPostgresExecutor(conn *pgx.Conn) *PostgresExecutor {
	return &PostgresExecutor{conn: conn}
}

// ExecuteSQL implements worm.Executor.
func (e *PostgresExecutor) ExecuteSQL(ctx context.Context, query string) (worm.Rows, error) {
	rows, err := e.conn.Query(ctx, query, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, &worm.ExecutionError{SQL: query, Err: err}
	}
	return &pgxRows{rows: rows}, nil
}

// Close implements worm.Executor.
func (e *PostgresExecutor) Close() error {
	return e.conn.Close(context.Background())
}

// pgxRows adapts pgx.Rows to worm.Rows.
type pgxRows struct {
	rows    pgx.Rows
	err     error
	errDone bool
}

func (r *pgxRows) Next() bool {
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

func (r *pgxRows) Row() (*worm.Row, error) {
	if r.err != nil {
		return nil, r.err
	}
	columns, err := r.rows.Values()
	if err != nil {
		return nil, err
	}
	values := make([]worm.Value, len(columns))
	for i, column := range columns {
		if values[i], err = pgValue(column); err != nil {
			return nil, fmt.Errorf("column %s: %w", r.rows.FieldDescriptions()[i].Name, err)
		}
	}
	return worm.NewRow(values...), nil
}

func (r *pgxRows) Close() error {
	r.rows.Close()
	return nil
}

// pgValue converts a value decoded by pgx into a Value.
func pgValue(column any) (worm.Value, error) {
	switch v := column.(type) {
	case pgtype.Numeric:
		return numericValue(v)
	case [16]byte:
		return worm.String(fmt.Sprintf("%x-%x-%x-%x-%x", v[0:4], v[4:6], v[6:8], v[8:10], v[10:16])), nil
	}
	value, err := worm.ValueOf(column)
	if err != nil {
		if s, ok := column.(fmt.Stringer); ok {
			return worm.String(s.String()), nil
		}
	}
	return value, err
}

// numericValue keeps integral numerics exact and turns the rest into floats.
func numericValue(n pgtype.Numeric) (worm.Value, error) {
	if !n.Valid {
		return worm.Null(), nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite || n.Exp < 0 {
		f, err := n.Float64Value()
		if err != nil {
			return worm.Value{}, err
		}
		return worm.Float64(f.Float64), nil
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
	return worm.BigInt(new(big.Int).Mul(n.Int, scale))
}

func init() {
	_ = worm.Register("postgres", PostgresDriver{})
	_ = worm.Register("pgx", PostgresDriver{})
}

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

package worm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Rows is a cursor over the rows an executor produced.
type Rows interface {
	// Next advances to the next row. It returns false once the rows are exhausted.
	Next() bool

	// Row returns the current row, or the failure that replaced it.
	// A failed row does not end the cursor.
	Row() (*Row, error)

	// Close releases the cursor. It is safe to call more than once.
	Close() error
}

// Executor runs rendered SQL against a database.
type Executor interface {
	// ExecuteSQL runs sql and returns its rows.
	// A statement that produces no rows returns empty Rows.
	ExecuteSQL(ctx context.Context, sql string) (Rows, error)

	// Close releases the underlying connection.
	Close() error
}

// Driver opens executors for a data source.
type Driver interface {
	Connect(ctx context.Context, dataSource string) (Executor, error)
}

// DriverFunc adapts a function to Driver.
type DriverFunc func(ctx context.Context, dataSource string) (Executor, error)

// Connect implements Driver.
func (f DriverFunc) Connect(ctx context.Context, dataSource string) (Executor, error) {
	return f(ctx, dataSource)
}

var (
	// registeredDrivers maps a driver name to its implementation.
	registeredDrivers = make(map[string]Driver)

	driverLock sync.RWMutex
)

// ErrDriverNotFound is returned when no driver is registered under a name.
var ErrDriverNotFound = errors.New("worm: driver not found")

// Register makes a driver available under name.
// Registering the same name twice is an error.
func Register(name string, driver Driver) error {
	if driver == nil {
		return fmt.Errorf("worm: driver %s is nil", name)
	}
	driverLock.Lock()
	defer driverLock.Unlock()
	if _, ok := registeredDrivers[name]; ok {
		return fmt.Errorf("worm: driver %s already registered", name)
	}
	registeredDrivers[name] = driver
	return nil
}

// GetDriver returns the driver registered under name.
func GetDriver(name string) (Driver, error) {
	driverLock.RLock()
	defer driverLock.RUnlock()
	driver, ok := registeredDrivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDriverNotFound, name)
	}
	return driver, nil
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	driverLock.RLock()
	defer driverLock.RUnlock()
	names := make([]string, 0, len(registeredDrivers))
	for name := range registeredDrivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Connect opens an executor through the driver registered under name.
// Failures other than an unknown driver are reported as *ConnectionError.
func Connect(ctx context.Context, name, dataSource string) (Executor, error) {
	driver, err := GetDriver(name)
	if err != nil {
		return nil, err
	}
	executor, err := driver.Connect(ctx, dataSource)
	if err != nil {
		var connErr *ConnectionError
		if errors.As(err, &connErr) {
			return nil, err
		}
		return nil, NewConnectionError(dataSource, err)
	}
	return executor, nil
}

// Open connects through the driver registered under name and wraps the
// executor in a Connection using the given middlewares.
func Open(ctx context.Context, name, dataSource string, middlewares ...Middleware) (*Connection, error) {
	executor, err := Connect(ctx, name, dataSource)
	if err != nil {
		return nil, err
	}
	return NewConnection(executor, middlewares...), nil
}

// RowResult is one entry of a SliceRows: a row's values or its failure.
type RowResult struct {
	Values []Value
	Err    error
}

// Ok returns a successful RowResult.
func Ok(values ...Value) RowResult { return RowResult{Values: values} }

// Fail returns a failed RowResult.
func Fail(err error) RowResult { return RowResult{Err: err} }

// SliceRows is an in-memory Rows.
type SliceRows struct {
	results []RowResult
	current int
	closed  bool
}

// NewSliceRows returns Rows that yields results in order.
func NewSliceRows(results ...RowResult) *SliceRows {
	return &SliceRows{results: results, current: -1}
}

// Next implements Rows.
func (s *SliceRows) Next() bool {
	if s.closed || s.current+1 >= len(s.results) {
		return false
	}
	s.current++
	return true
}

// Row implements Rows. Every call returns a fresh Row.
func (s *SliceRows) Row() (*Row, error) {
	if s.closed {
		return nil, ErrResultsClosed
	}
	if s.current < 0 || s.current >= len(s.results) {
		return nil, errors.New("worm: Row called without a successful Next")
	}
	result := s.results[s.current]
	if result.Err != nil {
		return nil, result.Err
	}
	return NewRow(slices.Clone(result.Values)...), nil
}

// Close implements Rows.
func (s *SliceRows) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceRows) Closed() bool { return s.closed }

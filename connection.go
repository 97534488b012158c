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
	"sync"

	"github.com/eatmoreapple/worm/session"
)

// ErrConnectionClosed is returned when a closed connection is used.
var ErrConnectionClosed = errors.New("worm: connection closed")

// Connection runs scripts on one executor through a middleware chain.
// It is safe for concurrent use when its executor is.
type Connection struct {
	executor    Executor
	middlewares MiddlewareGroup
	mu          sync.RWMutex
	closed      bool
}

// NewConnection wraps executor.
func NewConnection(executor Executor, middlewares ...Middleware) *Connection {
	return &Connection{executor: executor, middlewares: middlewares}
}

// Use appends middlewares to the chain.
func (c *Connection) Use(middlewares ...Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, middlewares...)
}

// Executor returns the wrapped executor.
func (c *Connection) Executor() Executor { return c.executor }

// QueryContext runs already rendered sql, logged under name.
func (c *Connection) QueryContext(ctx context.Context, name, sql string) (Rows, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrConnectionClosed
	}
	handler := CombineQueryHandler(name, c.executor, c.middlewares...)
	c.mu.RUnlock()
	return handler(ctx, sql)
}

// Close closes the executor. Closing twice is a no-op.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.executor.Close()
}

// Query compiles script, runs it on conn and maps every returned row into T.
// *T's ScanRow is used when present, otherwise the mapper is derived.
func Query[T any](ctx context.Context, conn *Connection, script Script) (*Results[T], error) {
	mapper, err := MapperFor[T]()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, scriptName(script), script.Compile())
	if err != nil {
		return nil, err
	}
	return NewResults(rows, mapper), nil
}

// Exec runs a script whose rows are not needed, such as an insert.
// It drains the rows and returns the first failure.
func Exec(ctx context.Context, conn *Connection, script Script) error {
	results, err := Query[Unit](ctx, conn, script)
	if err != nil {
		return err
	}
	for _, err := range results.All() {
		if err != nil {
			return err
		}
	}
	return nil
}

// ContextWithConnection returns a context carrying conn.
func ContextWithConnection(ctx context.Context, conn *Connection) context.Context {
	return session.WithContext(ctx, conn)
}

// ConnectionFromContext returns the connection carried by ctx.
// It fails with session.ErrNoSession when there is none.
func ConnectionFromContext(ctx context.Context) (*Connection, error) {
	return session.FromContext[*Connection](ctx)
}

// QueryContext runs script on the connection carried by ctx.
func QueryContext[T any](ctx context.Context, script Script) (*Results[T], error) {
	conn, err := ConnectionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return Query[T](ctx, conn, script)
}

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
	"log"
	"time"
)

// Middleware wraps the QueryHandler of a script.
type Middleware interface {
	// QueryContext wraps next for the script called name.
	QueryContext(name string, next QueryHandler) QueryHandler
}

// ensure MiddlewareGroup implements Middleware.
var _ Middleware = MiddlewareGroup(nil) // compile time check

// MiddlewareGroup is a group of Middleware.
// The first middleware of the group wraps the handler first, so it runs innermost.
type MiddlewareGroup []Middleware

// QueryContext implements Middleware.
func (m MiddlewareGroup) QueryContext(name string, next QueryHandler) QueryHandler {
	for _, middleware := range m {
		next = middleware.QueryContext(name, next)
	}
	return next
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(name string, next QueryHandler) QueryHandler

// QueryContext implements Middleware.
func (f MiddlewareFunc) QueryContext(name string, next QueryHandler) QueryHandler {
	return f(name, next)
}

// logger is a default logger for debug.
var logger = log.New(log.Writer(), "[worm] ", log.Flags())

// ensure DebugMiddleware implements Middleware.
var _ Middleware = (*DebugMiddleware)(nil) // compile time check

// DebugMiddleware prints the rendered SQL of every script and the time it took to execute.
type DebugMiddleware struct {
	// Logger defaults to a logger writing to the standard logger's output.
	Logger *log.Logger
}

// QueryContext implements Middleware.
func (m *DebugMiddleware) QueryContext(name string, next QueryHandler) QueryHandler {
	output := m.Logger
	if output == nil {
		output = logger
	}
	return func(ctx context.Context, sql string) (Rows, error) {
		start := time.Now()
		rows, err := next(ctx, sql)
		spent := time.Since(start)
		if err != nil {
			output.Printf("\x1b[33m[%s]\x1b[0m \x1b[32m %s\x1b[0m \x1b[31m %v\x1b[0m \x1b[31m %v\x1b[0m\n", name, sql, spent, err)
			return rows, err
		}
		output.Printf("\x1b[33m[%s]\x1b[0m \x1b[32m %s\x1b[0m \x1b[31m %v\x1b[0m\n", name, sql, spent)
		return rows, err
	}
}

// ensure TimeoutMiddleware implements Middleware
var _ Middleware = (*TimeoutMiddleware)(nil) // compile time check

// TimeoutMiddleware bounds the execution of every script.
// The deadline stays in force until the returned rows are closed.
type TimeoutMiddleware struct {
	Timeout time.Duration
}

// QueryContext implements Middleware.
func (t TimeoutMiddleware) QueryContext(_ string, next QueryHandler) QueryHandler {
	if t.Timeout <= 0 {
		return next
	}
	return func(ctx context.Context, sql string) (Rows, error) {
		ctx, cancel := context.WithTimeout(ctx, t.Timeout)
		rows, err := next(ctx, sql)
		if err != nil {
			cancel()
			return nil, err
		}
		return &cancelRows{Rows: rows, cancel: cancel}, nil
	}
}

// cancelRows releases a context once its rows are closed.
type cancelRows struct {
	Rows
	cancel context.CancelFunc
}

func (c *cancelRows) Close() error {
	defer c.cancel()
	return c.Rows.Close()
}

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
)

// Engine ties a configuration to a pool of connections on its default environment.
type Engine struct {
	// Configuration is the configuration the engine was built from.
	Configuration *Configuration

	// Environment is the environment in use.
	Environment *Environment

	// Pool hands out the engine's connections.
	Pool *Pool

	// Logger is the logger used by the engine and its DebugMiddleware.
	Logger *log.Logger
}

// NewEngine resolves the default environment of cfg and prepares a pool on it.
// The debug and timeout settings add a DebugMiddleware and a TimeoutMiddleware
// after the given middlewares; poolSize overrides the environment's maxOpenConnNum.
func NewEngine(cfg *Configuration, middlewares ...Middleware) (*Engine, error) {
	env, err := cfg.Environments.DefaultEnv()
	if err != nil {
		return nil, err
	}
	engine := &Engine{
		Configuration: cfg,
		Environment:   env,
		Logger:        log.New(log.Writer(), "[worm] ", log.Flags()),
	}
	if cfg.Settings.Debug() {
		middlewares = append(middlewares, &DebugMiddleware{Logger: engine.Logger})
	}
	if timeout := cfg.Settings.Timeout(); timeout > 0 {
		middlewares = append(middlewares, TimeoutMiddleware{Timeout: timeout})
	}
	maxOpen := env.MaxOpenConnNum
	if size := cfg.Settings.PoolSize(); size > 0 {
		maxOpen = size
	}
	engine.Pool, err = NewDriverPool(env.Driver, env.DataSource, WithMaxOpen(maxOpen), WithPoolMiddlewares(middlewares...))
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// OpenEngine reads the configuration file at filename and builds an engine from it.
func OpenEngine(filename string, middlewares ...Middleware) (*Engine, error) {
	cfg, err := NewXMLConfiguration(filename)
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg, middlewares...)
}

// Acquire takes a connection from the pool.
func (e *Engine) Acquire(ctx context.Context) (*Connection, error) {
	return e.Pool.Get(ctx)
}

// Release gives a connection back to the pool.
func (e *Engine) Release(conn *Connection) {
	e.Pool.Put(conn)
}

// Do runs fn on a pooled connection and releases it afterwards.
// The connection is also carried by the context handed to fn.
func (e *Engine) Do(ctx context.Context, fn func(ctx context.Context, conn *Connection) error) error {
	conn, err := e.Acquire(ctx)
	if err != nil {
		return err
	}
	defer e.Release(conn)
	return fn(ContextWithConnection(ctx, conn), conn)
}

// Close closes the pool.
func (e *Engine) Close() error {
	return e.Pool.Close()
}

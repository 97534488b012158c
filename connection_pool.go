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
)

// DefaultMaxOpen is the number of connections a Pool opens when no limit is given.
const DefaultMaxOpen = 10

// validityCheck is run on an idle connection before it is handed out again.
const validityCheck = "SELECT 1;"

// ErrPoolClosed is returned by Get once the pool is closed.
var ErrPoolClosed = errors.New("worm: pool closed")

// ConnectFunc opens a new executor for a Pool.
type ConnectFunc func(ctx context.Context) (Executor, error)

// PoolStats describes the connections of a Pool.
type PoolStats struct {
	// Open is the number of connections, idle or in use.
	Open int
	// Idle is the number of connections waiting in the pool.
	Idle int
	// InUse is the number of connections handed out.
	InUse int
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithMaxOpen bounds the number of open connections. n <= 0 means DefaultMaxOpen.
func WithMaxOpen(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.maxOpen = n
		}
	}
}

// WithPoolMiddlewares sets the middlewares of every connection the pool opens.
func WithPoolMiddlewares(middlewares ...Middleware) PoolOption {
	return func(p *Pool) { p.middlewares = middlewares }
}

// WithValidation turns the validity check of idle connections on or off. It is on by default.
func WithValidation(enabled bool) PoolOption {
	return func(p *Pool) { p.validate = enabled }
}

// Pool hands out connections and takes them back for reuse.
// An idle connection is checked with "SELECT 1;" before it is reused and
// discarded when the check fails.
type Pool struct {
	connect     ConnectFunc
	middlewares []Middleware
	maxOpen     int
	validate    bool

	// slots holds one token per connection that may still be opened.
	slots  chan struct{}
	mu     sync.Mutex
	idle   []*Connection
	inUse  int
	closed bool
}

// NewPool returns a pool opening connections with connect.
func NewPool(connect ConnectFunc, opts ...PoolOption) *Pool {
	pool := &Pool{connect: connect, maxOpen: DefaultMaxOpen, validate: true}
	for _, opt := range opts {
		opt(pool)
	}
	pool.slots = make(chan struct{}, pool.maxOpen)
	for i := 0; i < pool.maxOpen; i++ {
		pool.slots <- struct{}{}
	}
	return pool
}

// NewDriverPool returns a pool opening connections through the driver registered under name.
func NewDriverPool(name, dataSource string, opts ...PoolOption) (*Pool, error) {
	if _, err := GetDriver(name); err != nil {
		return nil, err
	}
	connect := func(ctx context.Context) (Executor, error) {
		return Connect(ctx, name, dataSource)
	}
	return NewPool(connect, opts...), nil
}

// Get returns an idle connection, or opens a new one.
// It blocks while MaxOpen connections are in use, until ctx is done.
func (p *Pool) Get(ctx context.Context) (*Connection, error) {
	select {
	case <-p.slots:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	for {
		conn, err := p.popIdle()
		if err != nil {
			p.slots <- struct{}{}
			return nil, err
		}
		if conn == nil {
			break
		}
		if p.isValid(ctx, conn) {
			return conn, nil
		}
		_ = conn.Close()
		p.mu.Lock()
		p.inUse--
		p.mu.Unlock()
	}
	executor, err := p.connect(ctx)
	if err != nil {
		p.slots <- struct{}{}
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = executor.Close()
		p.slots <- struct{}{}
		return nil, ErrPoolClosed
	}
	p.inUse++
	return NewConnection(executor, p.middlewares...), nil
}

// popIdle takes the most recently returned idle connection, or nil.
func (p *Pool) popIdle() (*Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if len(p.idle) == 0 {
		return nil, nil
	}
	conn := p.idle[len(p.idle)-1]
	p.idle = p.idle[:len(p.idle)-1]
	p.inUse++
	return conn, nil
}

// isValid runs the validity check directly on the executor, bypassing middlewares.
func (p *Pool) isValid(ctx context.Context, conn *Connection) bool {
	if !p.validate {
		return true
	}
	rows, err := conn.Executor().ExecuteSQL(ctx, validityCheck)
	if err != nil {
		return false
	}
	for rows.Next() {
		if _, err = rows.Row(); err != nil {
			break
		}
	}
	return errors.Join(err, rows.Close()) == nil
}

// Put returns conn to the pool.
func (p *Pool) Put(conn *Connection) {
	p.mu.Lock()
	p.inUse--
	if p.closed {
		p.mu.Unlock()
		_ = conn.Close()
	} else {
		p.idle = append(p.idle, conn)
		p.mu.Unlock()
	}
	p.slots <- struct{}{}
}

// Discard closes conn instead of returning it, for connections known to be broken.
func (p *Pool) Discard(conn *Connection) error {
	p.mu.Lock()
	p.inUse--
	p.mu.Unlock()
	p.slots <- struct{}{}
	return conn.Close()
}

// Stats returns the current connection counts.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{Open: len(p.idle) + p.inUse, Idle: len(p.idle), InUse: p.inUse}
}

// Close closes every idle connection. Connections in use are closed when they are put back.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	var errs []error
	for _, conn := range p.idle {
		errs = append(errs, conn.Close())
	}
	p.idle = nil
	return errors.Join(errs...)
}

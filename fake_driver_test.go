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

package worm

import (
	"context"
	"errors"
	"sync"
)

func init() {
	if err := Register("fake", fakeDriver{}); err != nil {
		panic(err)
	}
}

// errFakeConnect is returned by the fake driver for the "unreachable" data source.
var errFakeConnect = errors.New("fake: connection refused")

// errFakeQuery is returned by the fake executor for scripts it has no answer for
// when it runs in strict mode.
var errFakeQuery = errors.New("fake: query failed")

// fakeDriver opens fake executors.
type fakeDriver struct{}

func (fakeDriver) Connect(ctx context.Context, dataSource string) (Executor, error) {
	if dataSource == "unreachable" {
		return nil, errFakeConnect
	}
	return newFakeExecutor(), nil
}

// fakeExecutor answers scripts from a table of canned rows and records what it ran.
type fakeExecutor struct {
	mu       sync.Mutex
	answers  map[string][]RowResult
	failures map[string]error
	executed []string
	opened   []*SliceRows
	closed   bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		answers:  make(map[string][]RowResult),
		failures: make(map[string]error),
	}
}

// answer makes sql return results.
func (e *fakeExecutor) answer(sql string, results ...RowResult) *fakeExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.answers[sql] = results
	return e
}

// fail makes sql fail with err.
func (e *fakeExecutor) fail(sql string, err error) *fakeExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[sql] = err
	return e
}

func (e *fakeExecutor) ExecuteSQL(ctx context.Context, sql string) (Rows, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.New("fake: executor closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.executed = append(e.executed, sql)
	if err, ok := e.failures[sql]; ok {
		return nil, err
	}
	rows := NewSliceRows(e.answers[sql]...)
	e.opened = append(e.opened, rows)
	return rows, nil
}

func (e *fakeExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// queries returns the scripts run so far.
func (e *fakeExecutor) queries() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.executed...)
}

// lastRows returns the rows handed out by the last successful query.
func (e *fakeExecutor) lastRows() *SliceRows {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.opened) == 0 {
		return nil
	}
	return e.opened[len(e.opened)-1]
}

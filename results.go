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
	"errors"
	"iter"
)

// Results is the lazy stream of typed rows returned by a query.
// It holds at most one row at a time. Every executor row yields exactly one
// element; a row that fails to convert yields its error and the stream goes on.
type Results[T any] struct {
	rows    Rows
	mapper  RowMapper[T]
	current T
	err     error
	closed  bool
}

// NewResults wraps rows, mapping each of them with mapper.
func NewResults[T any](rows Rows, mapper RowMapper[T]) *Results[T] {
	return &Results[T]{rows: rows, mapper: mapper}
}

// Next advances to the next row.
// It returns false when the rows are exhausted or the results are closed,
// and closes the underlying rows in the first case.
func (r *Results[T]) Next() bool {
	var zero T
	r.current, r.err = zero, nil
	if r.closed {
		return false
	}
	if !r.rows.Next() {
		_ = r.Close()
		return false
	}
	row, err := r.rows.Row()
	if err != nil {
		r.err = rawRowError(err)
		return true
	}
	r.current, r.err = r.mapper(row)
	if r.err != nil {
		r.current = zero
		var rowErr *RowConversionError
		if !errors.As(r.err, &rowErr) {
			r.err = &RowConversionError{Err: r.err}
		}
	}
	return true
}

// Result returns the current row or its conversion failure.
func (r *Results[T]) Result() (T, error) {
	if r.closed && r.err == nil {
		var zero T
		return zero, ErrResultsClosed
	}
	return r.current, r.err
}

// Close stops the stream and releases the executor's rows.
func (r *Results[T]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rows.Close()
}

// All returns an iterator over the remaining rows.
// The rows are closed when the loop ends, including on break.
// Ranging over closed results yields ErrResultsClosed once.
func (r *Results[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if r.closed {
			var zero T
			yield(zero, ErrResultsClosed)
			return
		}
		defer r.Close()
		for r.Next() {
			if !yield(r.current, r.err) {
				return
			}
		}
	}
}

// Collect drains the results into a slice.
// It stops at, and returns, the first failed row.
func (r *Results[T]) Collect() ([]T, error) {
	var items []T
	for item, err := range r.All() {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

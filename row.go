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

// Row is a raw SQL row: one value per selected column, in column order.
// A Row is read once. Every value taken with Next is handed over to the caller
// and the row cannot be rewound.
type Row struct {
	values []Value
}

// NewRow returns a row holding values.
func NewRow(values ...Value) *Row {
	return &Row{values: values}
}

// Next takes the next value off the row.
// It returns false once the row is spent.
func (r *Row) Next() (Value, bool) {
	if r == nil || len(r.values) == 0 {
		return Value{}, false
	}
	value := r.values[0]
	// release the reference held by the backing array
	r.values[0] = Value{}
	r.values = r.values[1:]
	return value, true
}

// Len returns the number of values not yet taken.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.values)
}

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
	"fmt"
	"reflect"

	"github.com/eatmoreapple/worm/cache"
	"github.com/eatmoreapple/worm/internal/reflectlite"
)

// RowScanner is implemented by result types that read themselves from a row.
// The code generator emits it for every //worm:result struct.
//
// ScanRow consumes the row positionally, one value per field in declaration
// order. A row that runs out of values fails with MissingField, a value that
// does not convert fails with FieldError.
type RowScanner interface {
	ScanRow(row *Row) error
}

// RowMapper turns a row into a T.
type RowMapper[T any] func(row *Row) (T, error)

// fieldPlan reads one struct field from a row.
type fieldPlan struct {
	name   string
	index  int
	decode decoder
}

// rowPlans holds the derived plan of every result type seen so far.
var rowPlans = cache.InMemory[reflect.Type, []fieldPlan]()

// planFor derives the row plan of the struct type rt.
func planFor(rt reflect.Type) ([]fieldPlan, error) {
	if plan, ok := rowPlans.Get(rt); ok {
		return plan, nil
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: result type %s is not a struct", ErrUnsupportedShape, rt)
	}
	plan := make([]fieldPlan, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			return nil, unsupportedField(rt, field)
		}
		decode, ok := decoderFor(field.Type)
		if !ok {
			return nil, unsupportedField(rt, field)
		}
		plan = append(plan, fieldPlan{name: field.Name, index: i, decode: decode})
	}
	rowPlans.Set(rt, plan)
	return plan, nil
}

// Derive returns a RowMapper that fills the exported fields of T from a row,
// in declaration order. It is the runtime counterpart of a generated ScanRow.
//
// The first failing field aborts the row and the mapper returns the zero T.
// Values left in the row after the last field are ignored.
func Derive[T any]() (RowMapper[T], error) {
	plan, err := planFor(reflectlite.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return func(row *Row) (T, error) {
		var result T
		rv := reflect.ValueOf(&result).Elem()
		for _, field := range plan {
			value, ok := row.Next()
			if !ok {
				var zero T
				return zero, MissingField(field.name)
			}
			if err := field.decode(rv.Field(field.index), value); err != nil {
				var zero T
				return zero, FieldError(field.name, err)
			}
		}
		return result, nil
	}, nil
}

// MustDerive is like Derive but panics if T cannot be derived.
func MustDerive[T any]() RowMapper[T] {
	mapper, err := Derive[T]()
	if err != nil {
		panic(err)
	}
	return mapper
}

// scannerMapper maps rows through the RowScanner of *T.
func scannerMapper[T any]() RowMapper[T] {
	return func(row *Row) (T, error) {
		var result T
		if err := any(&result).(RowScanner).ScanRow(row); err != nil {
			var zero T
			return zero, err
		}
		return result, nil
	}
}

// MapperFor returns the RowMapper of T: its generated ScanRow when *T has
// one, otherwise a derived mapper.
func MapperFor[T any]() (RowMapper[T], error) {
	if _, ok := any((*T)(nil)).(RowScanner); ok {
		return scannerMapper[T](), nil
	}
	return Derive[T]()
}

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
	"math"
	"math/big"
	"strconv"
	"time"
)

// Scalar is the set of Go types that convert to and from a Value.
type Scalar interface {
	bool | float32 | float64 | string |
		int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64
}

// Valuer is implemented by types that render themselves as a Value.
type Valuer interface {
	SQLValue() Value
}

// Scanner is implemented by types that can be read from a Value.
type Scanner interface {
	ScanSQL(value Value) error
}

// IntoSQL wraps v in its matching Value.
// Integers are widened into the 128-bit signed or unsigned carrier.
func IntoSQL[T Scalar](v T) Value {
	switch x := any(v).(type) {
	case bool:
		return Bool(x)
	case float32:
		return Float32(x)
	case float64:
		return Float64(x)
	case string:
		return String(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	}
	// unreachable: the type set is closed
	return Null()
}

// FromSQL converts value into T.
// It fails with ErrIncorrectType when the value's kind family does not match T,
// and with ErrValueOutOfBounds when an integer does not fit T.
// Integers are accepted from either carrier as long as they are in range.
func FromSQL[T Scalar](value Value) (T, error) {
	var zero T
	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case bool:
		out, err = value.toBool()
	case float32:
		out, err = value.toFloat32()
	case float64:
		out, err = value.toFloat64()
	case string:
		out, err = value.toString()
	case int:
		var n int64
		n, err = value.toInt(signedKind(strconv.IntSize), "int")
		out = int(n)
	case int8:
		var n int64
		n, err = value.toInt(KindInt8, "int8")
		out = int8(n)
	case int16:
		var n int64
		n, err = value.toInt(KindInt16, "int16")
		out = int16(n)
	case int32:
		var n int64
		n, err = value.toInt(KindInt32, "int32")
		out = int32(n)
	case int64:
		out, err = value.toInt(KindInt64, "int64")
	case uint:
		var n uint64
		n, err = value.toUint(unsignedKind(strconv.IntSize), "uint")
		out = uint(n)
	case uint8:
		var n uint64
		n, err = value.toUint(KindUint8, "uint8")
		out = uint8(n)
	case uint16:
		var n uint64
		n, err = value.toUint(KindUint16, "uint16")
		out = uint16(n)
	case uint32:
		var n uint64
		n, err = value.toUint(KindUint32, "uint32")
		out = uint32(n)
	case uint64:
		out, err = value.toUint(KindUint64, "uint64")
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// PtrIntoSQL is IntoSQL for optional values, a nil pointer is NULL.
func PtrIntoSQL[T Scalar](v *T) Value {
	if v == nil {
		return Null()
	}
	return IntoSQL(*v)
}

// PtrFromSQL is FromSQL for optional values, NULL yields a nil pointer.
func PtrFromSQL[T Scalar](value Value) (*T, error) {
	if value.IsNull() {
		return nil, nil
	}
	v, err := FromSQL[T](value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Nullable represents a T that may be NULL.
type Nullable[T Scalar] struct {
	V     T
	Valid bool
}

// SQLValue implements Valuer.
func (n Nullable[T]) SQLValue() Value {
	if !n.Valid {
		return Null()
	}
	return IntoSQL(n.V)
}

// ScanSQL implements Scanner.
func (n *Nullable[T]) ScanSQL(value Value) error {
	if value.IsNull() {
		var zero T
		n.V, n.Valid = zero, false
		return nil
	}
	v, err := FromSQL[T](value)
	if err != nil {
		return err
	}
	n.V, n.Valid = v, true
	return nil
}

// ValueOf converts a Go value into a Value.
// It is used by executor adapters and by statements built at runtime.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case Valuer:
		return x.SQLValue(), nil
	case bool:
		return Bool(x), nil
	case float32:
		return Float32(x), nil
	case float64:
		return Float64(x), nil
	case string:
		return String(x), nil
	case []byte:
		if x == nil {
			return Null(), nil
		}
		return String(string(x)), nil
	case int:
		return IntoSQL(x), nil
	case int8:
		return IntoSQL(x), nil
	case int16:
		return IntoSQL(x), nil
	case int32:
		return IntoSQL(x), nil
	case int64:
		return IntoSQL(x), nil
	case uint:
		return IntoSQL(x), nil
	case uint8:
		return IntoSQL(x), nil
	case uint16:
		return IntoSQL(x), nil
	case uint32:
		return IntoSQL(x), nil
	case uint64:
		return IntoSQL(x), nil
	case *big.Int:
		return BigInt(x)
	case time.Time:
		return String(x.Format(time.RFC3339Nano)), nil
	case *bool:
		return PtrIntoSQL(x), nil
	case *float32:
		return PtrIntoSQL(x), nil
	case *float64:
		return PtrIntoSQL(x), nil
	case *string:
		return PtrIntoSQL(x), nil
	case *int:
		return PtrIntoSQL(x), nil
	case *int8:
		return PtrIntoSQL(x), nil
	case *int16:
		return PtrIntoSQL(x), nil
	case *int32:
		return PtrIntoSQL(x), nil
	case *int64:
		return PtrIntoSQL(x), nil
	case *uint:
		return PtrIntoSQL(x), nil
	case *uint8:
		return PtrIntoSQL(x), nil
	case *uint16:
		return PtrIntoSQL(x), nil
	case *uint32:
		return PtrIntoSQL(x), nil
	case *uint64:
		return PtrIntoSQL(x), nil
	case *time.Time:
		if x == nil {
			return Null(), nil
		}
		return ValueOf(*x)
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// signedKind returns the signed integer kind of the given width.
func signedKind(bits int) Kind {
	switch bits {
	case 8:
		return KindInt8
	case 16:
		return KindInt16
	case 32:
		return KindInt32
	}
	return KindInt64
}

// unsignedKind returns the unsigned integer kind of the given width.
func unsignedKind(bits int) Kind {
	switch bits {
	case 8:
		return KindUint8
	case 16:
		return KindUint16
	case 32:
		return KindUint32
	}
	return KindUint64
}

func (v Value) incorrectType(target string) error {
	return &FieldConversionError{Target: target, Kind: v.kind, Err: ErrIncorrectType}
}

func (v Value) outOfBounds(target string) error {
	return &FieldConversionError{Target: target, Kind: v.kind, Err: ErrValueOutOfBounds}
}

func (v Value) toBool() (bool, error) {
	if v.kind != KindBool {
		return false, v.incorrectType("bool")
	}
	return v.b, nil
}

func (v Value) toString() (string, error) {
	if v.kind != KindString {
		return "", v.incorrectType("string")
	}
	return v.s, nil
}

func (v Value) toFloat64() (float64, error) {
	if !v.kind.IsFloat() {
		return 0, v.incorrectType("float64")
	}
	return v.f, nil
}

func (v Value) toFloat32() (float32, error) {
	switch v.kind {
	case KindFloat32:
		return float32(v.f), nil
	case KindFloat64:
		f := float32(v.f)
		// NaN never equals itself, so it is checked separately
		if float64(f) != v.f && !math.IsNaN(v.f) {
			return 0, v.outOfBounds("float32")
		}
		return f, nil
	}
	return 0, v.incorrectType("float32")
}

// toInt narrows an integer of either carrier into the range of kind.
func (v Value) toInt(kind Kind, target string) (int64, error) {
	if !v.kind.IsInteger() {
		return 0, v.incorrectType(target)
	}
	if !boundsOf(kind).contains(v.n) {
		return 0, v.outOfBounds(target)
	}
	return v.n.Int64(), nil
}

// toUint narrows an integer of either carrier into the range of kind.
func (v Value) toUint(kind Kind, target string) (uint64, error) {
	if !v.kind.IsInteger() {
		return 0, v.incorrectType(target)
	}
	if !boundsOf(kind).contains(v.n) {
		return 0, v.outOfBounds(target)
	}
	return v.n.Uint64(), nil
}

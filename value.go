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
	"strings"
)

// Kind is the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindFloat32
	KindFloat64
	KindString
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint128
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindInt128:  "int128",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindUint128: "uint128",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsSigned reports whether the kind is a signed integer.
func (k Kind) IsSigned() bool { return k >= KindInt8 && k <= KindInt128 }

// IsUnsigned reports whether the kind is an unsigned integer.
func (k Kind) IsUnsigned() bool { return k >= KindUint8 && k <= KindUint128 }

// IsInteger reports whether the kind is a signed or unsigned integer.
func (k Kind) IsInteger() bool { return k.IsSigned() || k.IsUnsigned() }

// IsFloat reports whether the kind is a floating point number.
func (k Kind) IsFloat() bool { return k == KindFloat32 || k == KindFloat64 }

// bits returns the width of an integer kind.
func (k Kind) bits() uint {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32:
		return 32
	case KindInt64, KindUint64:
		return 64
	case KindInt128, KindUint128:
		return 128
	}
	return 0
}

// integer bounds, indexed by bit width.
type bounds struct {
	min, max *big.Int
}

var (
	signedBounds   = make(map[uint]bounds)
	unsignedBounds = make(map[uint]bounds)
)

func init() {
	for _, bits := range []uint{8, 16, 32, 64, 128} {
		one := big.NewInt(1)
		// [-2^(n-1), 2^(n-1)-1]
		smax := new(big.Int).Sub(new(big.Int).Lsh(one, bits-1), one)
		smin := new(big.Int).Neg(new(big.Int).Lsh(one, bits-1))
		signedBounds[bits] = bounds{min: smin, max: smax}
		// [0, 2^n-1]
		umax := new(big.Int).Sub(new(big.Int).Lsh(one, bits), one)
		unsignedBounds[bits] = bounds{min: new(big.Int), max: umax}
	}
}

// boundsOf returns the representable range of an integer kind.
func boundsOf(k Kind) bounds {
	if k.IsSigned() {
		return signedBounds[k.bits()]
	}
	return unsignedBounds[k.bits()]
}

func (b bounds) contains(n *big.Int) bool {
	return n.Cmp(b.min) >= 0 && n.Cmp(b.max) <= 0
}

// Value is a raw SQL value.
// A Value carries exactly one kind's payload and never changes once built.
// The zero Value is NULL.
type Value struct {
	kind Kind
	b    bool
	f    float64
	s    string
	// n holds every integer kind; it is never shared with callers.
	n *big.Int
}

// Null returns the NULL value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Float32 returns a 4-byte floating point value.
func Float32(f float32) Value { return Value{kind: KindFloat32, f: float64(f)} }

// Float64 returns an 8-byte floating point value.
func Float64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// String returns a text value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns v in the signed 128-bit carrier.
func Int(v int64) Value { return Value{kind: KindInt128, n: big.NewInt(v)} }

// Uint returns v in the unsigned 128-bit carrier.
func Uint(v uint64) Value { return Value{kind: KindUint128, n: new(big.Int).SetUint64(v)} }

// NewInt returns an integer value of the given kind.
// It fails with ErrValueOutOfBounds when n does not fit the kind's width,
// and with ErrIncorrectType when kind is not an integer kind.
func NewInt(kind Kind, n *big.Int) (Value, error) {
	if !kind.IsInteger() {
		return Value{}, fmt.Errorf("%w: %s is not an integer kind", ErrIncorrectType, kind)
	}
	if n == nil {
		return Null(), nil
	}
	if !boundsOf(kind).contains(n) {
		return Value{}, &FieldConversionError{Target: kind.String(), Kind: kind, Err: ErrValueOutOfBounds}
	}
	return Value{kind: kind, n: new(big.Int).Set(n)}, nil
}

// BigInt returns n in a 128-bit carrier: the signed carrier when it fits,
// otherwise the unsigned one. A nil n is NULL.
func BigInt(n *big.Int) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	if signedBounds[128].contains(n) {
		return Value{kind: KindInt128, n: new(big.Int).Set(n)}, nil
	}
	if unsignedBounds[128].contains(n) {
		return Value{kind: KindUint128, n: new(big.Int).Set(n)}, nil
	}
	return Value{}, &FieldConversionError{Target: "*big.Int", Kind: KindInt128, Err: ErrValueOutOfBounds}
}

// Kind returns the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BigInt returns a copy of the integer payload.
func (v Value) BigInt() (*big.Int, error) {
	if !v.kind.IsInteger() {
		return nil, v.incorrectType("*big.Int")
	}
	return new(big.Int).Set(v.n), nil
}

// String returns the SQL literal form of the value.
// Text is single quoted with embedded quotes doubled, NULL is the keyword NULL.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindFloat32:
		return formatFloat(v.f, 32)
	case KindFloat64:
		return formatFloat(v.f, 64)
	case KindString:
		return quote(v.s)
	}
	if v.kind.IsInteger() {
		return v.n.String()
	}
	return "NULL"
}

// GoString implements fmt.GoStringer, used by debug logging.
func (v Value) GoString() string {
	return v.kind.String() + "(" + v.String() + ")"
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "'NaN'"
	case math.IsInf(f, 1):
		return "'Infinity'"
	case math.IsInf(f, -1):
		return "'-Infinity'"
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

func quote(s string) string {
	builder := getStringBuilder()
	defer putStringBuilder(builder)
	builder.Grow(len(s) + 2)
	builder.WriteByte('\'')
	builder.WriteString(strings.ReplaceAll(s, "'", "''"))
	builder.WriteByte('\'')
	return builder.String()
}

// Equal reports whether v and other have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch {
	case v.kind == KindBool:
		return v.b == other.b
	case v.kind.IsFloat():
		return v.f == other.f || (math.IsNaN(v.f) && math.IsNaN(other.f))
	case v.kind == KindString:
		return v.s == other.s
	case v.kind.IsInteger():
		return v.n.Cmp(other.n) == 0
	}
	return true
}

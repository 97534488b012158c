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
	"math/big"
	"reflect"
	"time"

	"github.com/eatmoreapple/worm/internal/reflectlite"
)

var (
	bigIntType  = reflect.TypeOf((*big.Int)(nil))
	timeType    = reflect.TypeOf(time.Time{})
	valueType   = reflect.TypeOf(Value{})
	valuerType  = reflectlite.TypeFor[Valuer]()
	scannerType = reflectlite.TypeFor[Scanner]()
)

// encoder reads a struct field into a Value.
type encoder func(field reflect.Value) (Value, error)

// decoder stores a Value into an addressable struct field.
type decoder func(field reflect.Value, value Value) error

func unsupportedField(owner reflect.Type, field reflect.StructField) error {
	return fmt.Errorf("%w: field %s.%s of type %s", ErrUnsupportedShape, owner.Name(), field.Name, field.Type)
}

// encoderFor returns the encoder of a field type, or false when the type has no SQL form.
func encoderFor(rt reflect.Type) (encoder, bool) {
	switch {
	case rt == valueType:
		return func(field reflect.Value) (Value, error) {
			return field.Interface().(Value), nil
		}, true
	case rt.Implements(valuerType):
		return func(field reflect.Value) (Value, error) {
			if field.Kind() == reflect.Pointer && field.IsNil() {
				return Null(), nil
			}
			return field.Interface().(Valuer).SQLValue(), nil
		}, true
	case rt == bigIntType:
		return func(field reflect.Value) (Value, error) {
			return BigInt(field.Interface().(*big.Int))
		}, true
	case rt == timeType:
		return func(field reflect.Value) (Value, error) {
			return ValueOf(field.Interface())
		}, true
	case rt.Kind() == reflect.Pointer:
		elem, ok := encoderFor(rt.Elem())
		if !ok {
			return nil, false
		}
		return func(field reflect.Value) (Value, error) {
			if field.IsNil() {
				return Null(), nil
			}
			return elem(field.Elem())
		}, true
	}
	switch rt.Kind() {
	case reflect.Bool:
		return func(field reflect.Value) (Value, error) { return Bool(field.Bool()), nil }, true
	case reflect.String:
		return func(field reflect.Value) (Value, error) { return String(field.String()), nil }, true
	case reflect.Float32:
		return func(field reflect.Value) (Value, error) { return Float32(float32(field.Float())), nil }, true
	case reflect.Float64:
		return func(field reflect.Value) (Value, error) { return Float64(field.Float()), nil }, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(field reflect.Value) (Value, error) { return Int(field.Int()), nil }, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(field reflect.Value) (Value, error) { return Uint(field.Uint()), nil }, true
	}
	return nil, false
}

// decoderFor returns the decoder of a field type, or false when the type cannot be read from a Value.
func decoderFor(rt reflect.Type) (decoder, bool) {
	switch {
	case rt == valueType:
		return func(field reflect.Value, value Value) error {
			field.Set(reflect.ValueOf(value))
			return nil
		}, true
	case reflect.PointerTo(rt).Implements(scannerType):
		return func(field reflect.Value, value Value) error {
			return field.Addr().Interface().(Scanner).ScanSQL(value)
		}, true
	case rt == bigIntType:
		return func(field reflect.Value, value Value) error {
			if value.IsNull() {
				field.SetZero()
				return nil
			}
			n, err := value.BigInt()
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(n))
			return nil
		}, true
	case rt == timeType:
		return func(field reflect.Value, value Value) error {
			s, err := value.toString()
			if err != nil {
				return value.incorrectType("time.Time")
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return &FieldConversionError{Target: "time.Time", Kind: value.Kind(), Err: fmt.Errorf("%w: %w", ErrIncorrectType, err)}
			}
			field.Set(reflect.ValueOf(t))
			return nil
		}, true
	case rt.Kind() == reflect.Pointer:
		elem, ok := decoderFor(rt.Elem())
		if !ok {
			return nil, false
		}
		return func(field reflect.Value, value Value) error {
			if value.IsNull() {
				field.SetZero()
				return nil
			}
			ptr := reflect.New(rt.Elem())
			if err := elem(ptr.Elem(), value); err != nil {
				return err
			}
			field.Set(ptr)
			return nil
		}, true
	}
	target := rt.String()
	switch rt.Kind() {
	case reflect.Bool:
		return func(field reflect.Value, value Value) error {
			b, err := value.toBool()
			if err == nil {
				field.SetBool(b)
			}
			return err
		}, true
	case reflect.String:
		return func(field reflect.Value, value Value) error {
			s, err := value.toString()
			if err == nil {
				field.SetString(s)
			}
			return err
		}, true
	case reflect.Float32:
		return func(field reflect.Value, value Value) error {
			f, err := value.toFloat32()
			if err == nil {
				field.SetFloat(float64(f))
			}
			return err
		}, true
	case reflect.Float64:
		return func(field reflect.Value, value Value) error {
			f, err := value.toFloat64()
			if err == nil {
				field.SetFloat(f)
			}
			return err
		}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		kind := signedKind(rt.Bits())
		return func(field reflect.Value, value Value) error {
			n, err := value.toInt(kind, target)
			if err == nil {
				field.SetInt(n)
			}
			return err
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		kind := unsignedKind(rt.Bits())
		return func(field reflect.Value, value Value) error {
			n, err := value.toUint(kind, target)
			if err == nil {
				field.SetUint(n)
			}
			return err
		}, true
	}
	return nil, false
}

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
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrIncorrectType is returned when a value's kind does not match the requested type.
	ErrIncorrectType = errors.New("worm: incorrect type")

	// ErrValueOutOfBounds is returned when an integer does not fit the requested width.
	ErrValueOutOfBounds = errors.New("worm: value out of bounds")

	// ErrUnsupportedValue is returned when a Go value has no SQL representation.
	ErrUnsupportedValue = errors.New("worm: unsupported value")

	// ErrMissingFieldValue is returned when a row has fewer values than the result has fields.
	ErrMissingFieldValue = errors.New("worm: missing field value")

	// ErrRawRow marks a row the executor failed to produce.
	ErrRawRow = errors.New("worm: raw row conversion failed")

	// ErrUnresolvedParameter is returned when a template names a field the struct does not have.
	ErrUnresolvedParameter = errors.New("worm: unresolved parameter")

	// ErrEmptyParameter is returned when a '$' is not followed by a parameter name.
	ErrEmptyParameter = errors.New("worm: empty parameter name")

	// ErrScriptNotFound is returned when the template file cannot be read.
	ErrScriptNotFound = errors.New("worm: script not found")

	// ErrUnsupportedShape is returned when a type cannot be used as a script or a result.
	ErrUnsupportedShape = errors.New("worm: unsupported shape")

	// ErrResultsClosed is returned when a closed Results is iterated again.
	ErrResultsClosed = errors.New("worm: results closed")
)

// FieldConversionError describes a failed conversion between a Value and a Go type.
type FieldConversionError struct {
	// Target is the Go type that was requested.
	Target string
	// Kind is the kind of the source value.
	Kind Kind
	// Err is ErrIncorrectType or ErrValueOutOfBounds.
	Err error
}

func (e *FieldConversionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %s value to %s", e.Err, e.Kind, e.Target)
}

func (e *FieldConversionError) Unwrap() error { return e.Err }

// RowConversionError describes a row that could not be turned into a result.
type RowConversionError struct {
	// Field is the result field that failed, empty for executor failures.
	Field string
	Err   error
}

func (e *RowConversionError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("field %s: %s", e.Field, e.Err)
}

func (e *RowConversionError) Unwrap() error { return e.Err }

// MissingField returns the error for a row that ran out of values before field.
func MissingField(field string) error {
	return &RowConversionError{Field: field, Err: ErrMissingFieldValue}
}

// FieldError annotates a conversion failure with the field it happened on.
func FieldError(field string, err error) error {
	return &RowConversionError{Field: field, Err: err}
}

// rawRowError wraps a row-level failure reported by the executor.
func rawRowError(err error) error {
	return &RowConversionError{Err: fmt.Errorf("%w: %w", ErrRawRow, err)}
}

// TemplateError is a template compilation failure. It is terminal for the type it names.
type TemplateError struct {
	// Type is the name of the annotated struct.
	Type string
	// Script is the template source, or its path when it could not be read.
	Script string
	// Param is the offending parameter name, if any.
	Param string
	Err   error
}

func (e *TemplateError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnresolvedParameter):
		return fmt.Sprintf("worm: the type '%s' has no field with the name '%s' (template %q)", e.Type, e.Param, e.Script)
	case errors.Is(e.Err, ErrScriptNotFound):
		return fmt.Sprintf("worm: unable to open the script file at '%s' for type '%s': %s", e.Script, e.Type, e.Err)
	}
	return fmt.Sprintf("worm: type '%s': %s", e.Type, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// ConnectionError is returned when an executor cannot connect.
type ConnectionError struct {
	// DataSource is the connection descriptor with its password removed.
	DataSource string
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("worm: unable to connect to %s: %s", e.DataSource, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NewConnectionError returns a ConnectionError for dataSource.
func NewConnectionError(dataSource string, err error) error {
	return &ConnectionError{DataSource: redact(dataSource), Err: err}
}

// ExecutionError is returned when an executor cannot run a script.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("worm: unable to execute %q: %s", e.SQL, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// keywordPassword matches the password of key=value data sources.
var keywordPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// redact removes the password from a data source.
// URL, user:password@host and key=value forms are understood.
func redact(dataSource string) string {
	if u, err := url.Parse(dataSource); err == nil && u.User != nil {
		return u.Redacted()
	}
	prefix, rest := "", dataSource
	if i := strings.Index(dataSource, "://"); i >= 0 {
		prefix, rest = dataSource[:i+3], dataSource[i+3:]
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		credentials := rest[:at]
		if i := strings.Index(credentials, ":"); i >= 0 && !strings.Contains(credentials, "/") {
			return prefix + credentials[:i] + ":xxxxx" + rest[at:]
		}
	}
	return keywordPassword.ReplaceAllString(dataSource, "${1}xxxxx")
}

// asExecutionError wraps err in an *ExecutionError unless it already is one.
func asExecutionError(sql string, err error) error {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return err
	}
	return &ExecutionError{SQL: sql, Err: err}
}

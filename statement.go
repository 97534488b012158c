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
	"fmt"
	"io/fs"
	"reflect"

	"github.com/eatmoreapple/worm/cache"
	"github.com/eatmoreapple/worm/internal/reflectlite"
)

// DefaultStatementCacheSize bounds the number of compiled statements kept in memory.
const DefaultStatementCacheSize = 256

// statementKey identifies a compiled statement.
// fsys is only set when the file system is comparable.
type statementKey struct {
	typ    reflect.Type
	path   string
	source string
	fsys   fs.FS
}

// paramPlan reads the field behind one template parameter.
type paramPlan struct {
	index  int
	encode encoder
}

// compiledStatement is the type independent part of a Statement.
type compiledStatement struct {
	name     string
	template *Template
	params   []paramPlan
}

// statements caches compiled statements across NewStatement calls.
var statements = cache.LRU[statementKey, *compiledStatement](DefaultStatementCacheSize, 0)

type statementOptions struct {
	fsys   fs.FS
	config ScriptConfig
	source *string
}

// StatementOption configures NewStatement.
type StatementOption func(*statementOptions)

// WithScriptFS reads templates from fsys. Paths are resolved as
// scripts/<name>.sql inside it, so fsys stands for the project root.
func WithScriptFS(fsys fs.FS) StatementOption {
	return func(o *statementOptions) { o.fsys = fsys }
}

// WithRoot reads templates from the local directory root.
func WithRoot(root string) StatementOption {
	return WithScriptFS(LocalFS{BaseDir: root})
}

// WithScriptPath overrides the template path, relative to the scripts directory.
func WithScriptPath(path string) StatementOption {
	return func(o *statementOptions) { o.config.Path = path }
}

// WithSource uses source as the template instead of reading a file.
func WithSource(source string) StatementOption {
	return func(o *statementOptions) { o.source = &source }
}

// Statement binds values of the struct S into a compiled template whose rows are read as T.
// It is the runtime counterpart of the code generator.
type Statement[S, T any] struct {
	compiled *compiledStatement
	mapper   RowMapper[T]
}

// NewStatement reflects over S once, loads and compiles its template and
// checks that every referenced field can be rendered.
// Compiled templates are cached, so repeated calls for the same S are cheap.
func NewStatement[S, T any](opts ...StatementOption) (*Statement[S, T], error) {
	var options statementOptions
	for _, opt := range opts {
		opt(&options)
	}
	rt := reflectlite.TypeFor[S]()
	if rt.Kind() != reflect.Struct {
		return nil, &TemplateError{
			Type: rt.String(),
			Err:  fmt.Errorf("%w: script type is not a struct", ErrUnsupportedShape),
		}
	}
	mapper, err := MapperFor[T]()
	if err != nil {
		return nil, err
	}
	compiled, err := compileStatement(rt, options)
	if err != nil {
		return nil, err
	}
	return &Statement[S, T]{compiled: compiled, mapper: mapper}, nil
}

// MustStatement is like NewStatement but panics on error.
func MustStatement[S, T any](opts ...StatementOption) *Statement[S, T] {
	stmt, err := NewStatement[S, T](opts...)
	if err != nil {
		panic(err)
	}
	return stmt
}

func compileStatement(rt reflect.Type, options statementOptions) (*compiledStatement, error) {
	typeName := rt.Name()
	if options.source == nil && options.fsys == nil {
		wd, err := WorkingDirFS()
		if err != nil {
			return nil, &TemplateError{Type: typeName, Err: fmt.Errorf("%w: %w", ErrScriptNotFound, err)}
		}
		options.fsys = wd
	}

	key := statementKey{typ: rt, path: options.config.Path}
	cacheable := true
	switch {
	case options.source != nil:
		key.source = *options.source
	case reflect.TypeOf(options.fsys).Comparable():
		key.fsys = options.fsys
	default:
		cacheable = false
	}
	if cacheable {
		if compiled, ok := statements.Get(key); ok {
			return compiled, nil
		}
	}

	source := key.source
	if options.source == nil {
		var err error
		if source, err = LoadScript(options.fsys, typeName, options.config.ScriptPath(typeName)); err != nil {
			return nil, err
		}
	}
	tpl, err := CompileTemplate(typeName, source, reflectlite.FieldNames(rt))
	if err != nil {
		return nil, err
	}
	compiled := &compiledStatement{name: typeName, template: tpl}
	for _, param := range tpl.params {
		field, _ := rt.FieldByName(param.Name)
		encode, ok := encoderFor(field.Type)
		if !ok || !field.IsExported() {
			return nil, &TemplateError{Type: typeName, Script: source, Param: param.Name, Err: unsupportedField(rt, field)}
		}
		compiled.params = append(compiled.params, paramPlan{index: field.Index[0], encode: encode})
	}
	if cacheable {
		statements.Set(key, compiled)
	}
	return compiled, nil
}

// Template returns the compiled template.
func (s *Statement[S, T]) Template() *Template { return s.compiled.template }

// Bind renders the fields of script into the template.
func (s *Statement[S, T]) Bind(script S) (Script, error) {
	rv := reflect.ValueOf(script)
	values := make([]Value, len(s.compiled.params))
	for i, param := range s.compiled.params {
		value, err := param.encode(rv.Field(param.index))
		if err != nil {
			return nil, &TemplateError{Type: s.compiled.name, Script: s.compiled.template.Source(), Param: s.compiled.template.params[i].Name, Err: err}
		}
		values[i] = value
	}
	return &boundScript{name: s.compiled.name, template: s.compiled.template, values: values}, nil
}

// Query binds script and runs it on conn.
func (s *Statement[S, T]) Query(ctx context.Context, conn *Connection, script S) (*Results[T], error) {
	bound, err := s.Bind(script)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, s.compiled.name, bound.Compile())
	if err != nil {
		return nil, err
	}
	return NewResults(rows, s.mapper), nil
}

// boundScript is a template together with the values of one struct.
type boundScript struct {
	name     string
	template *Template
	values   []Value
}

// Compile implements Script.
func (b *boundScript) Compile() string { return b.template.Render(b.values...) }

// ScriptName implements Named.
func (b *boundScript) ScriptName() string { return b.name }

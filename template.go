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
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// paramSigil marks the start of a parameter token.
const paramSigil = '$'

// placeholder is the positional marker used by Template.Pattern.
const placeholder = "{}"

// Param is a parameter token found in a template.
type Param struct {
	// Name is the token without its sigil.
	Name string
	// Offset is the byte offset of the sigil in the template.
	Offset int
}

// Template is a SQL template split into literal chunks and parameters.
// There is always one more chunk than there are parameters: chunk i is
// written before parameter i, and the last chunk closes the statement.
type Template struct {
	source string
	chunks []string
	params []Param
}

// ParseTemplate splits script into literal chunks and parameter tokens.
//
// A parameter is '$' followed by a run of letters. "$$" is not a parameter
// start: the pair is kept verbatim in the surrounding chunk. A '$' that is
// not followed by a letter fails with ErrEmptyParameter.
func ParseTemplate(script string) (*Template, error) {
	tpl := &Template{source: script}
	literalStart := 0
	for i := 0; i < len(script); i++ {
		if script[i] != paramSigil {
			continue
		}
		if i+1 < len(script) && script[i+1] == paramSigil {
			i++
			continue
		}
		end := i + 1
		for end < len(script) {
			r, size := utf8.DecodeRuneInString(script[end:])
			if !unicode.IsLetter(r) {
				break
			}
			end += size
		}
		if end == i+1 {
			return nil, &TemplateError{
				Script: script,
				Err:    fmt.Errorf("%w at offset %d", ErrEmptyParameter, i),
			}
		}
		tpl.chunks = append(tpl.chunks, script[literalStart:i])
		tpl.params = append(tpl.params, Param{Name: script[i+1 : end], Offset: i})
		literalStart = end
		i = end - 1
	}
	tpl.chunks = append(tpl.chunks, script[literalStart:])
	return tpl, nil
}

// CompileTemplate parses script and checks every parameter against the
// named fields of typeName. An unknown parameter fails with a TemplateError
// naming the type, the template and the parameter.
func CompileTemplate(typeName, script string, fields []string) (*Template, error) {
	tpl, err := ParseTemplate(script)
	if err != nil {
		var tplErr *TemplateError
		if errors.As(err, &tplErr) {
			tplErr.Type = typeName
		}
		return nil, err
	}
	for _, param := range tpl.params {
		if !slices.Contains(fields, param.Name) {
			return nil, &TemplateError{
				Type:   typeName,
				Script: script,
				Param:  param.Name,
				Err:    ErrUnresolvedParameter,
			}
		}
	}
	return tpl, nil
}

// Source returns the template as it was parsed.
func (t *Template) Source() string { return t.source }

// Chunks returns the literal chunks in order.
func (t *Template) Chunks() []string { return slices.Clone(t.chunks) }

// Params returns the parameter tokens in order of appearance.
// A field referenced twice appears twice.
func (t *Template) Params() []Param { return slices.Clone(t.params) }

// Names returns the parameter names in order of appearance.
func (t *Template) Names() []string {
	names := make([]string, len(t.params))
	for i, param := range t.params {
		names[i] = param.Name
	}
	return names
}

// Pattern returns the template with every parameter replaced by "{}".
func (t *Template) Pattern() string {
	return strings.Join(t.chunks, placeholder)
}

// Render interleaves the literal chunks with the SQL literal of each value.
// values must line up with Params one to one.
func (t *Template) Render(values ...Value) string {
	if len(values) != len(t.params) {
		panic(fmt.Sprintf("worm: template expects %d values, got %d", len(t.params), len(values)))
	}
	builder := getStringBuilder()
	defer putStringBuilder(builder)
	builder.Grow(len(t.source))
	for i, value := range values {
		builder.WriteString(t.chunks[i])
		builder.WriteString(value.String())
	}
	builder.WriteString(t.chunks[len(t.chunks)-1])
	return builder.String()
}

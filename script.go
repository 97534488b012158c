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
	"io/fs"
	"path"
	"reflect"
	"strings"

	"github.com/eatmoreapple/worm/internal/reflectlite"
)

const (
	// ScriptDir is the directory, relative to the project root, that holds script templates.
	ScriptDir = "scripts"

	// ScriptExt is the extension every script template carries.
	ScriptExt = ".sql"

	// UnitResult is the result type of scripts that do not declare one.
	UnitResult = "worm.Unit"
)

// Script is a templated SQL statement.
type Script interface {
	// Compile renders the script into its SQL form.
	Compile() string
}

// Named is implemented by scripts that report their own name to middlewares.
type Named interface {
	ScriptName() string
}

// Unit is the result of scripts that return no rows, such as inserts.
// Every row maps to Unit{}.
type Unit struct{}

// ScriptConfig locates the template of a script and names its result type.
type ScriptConfig struct {
	// Path is relative to ScriptDir. It defaults to the struct name.
	// The extension is always replaced with ScriptExt.
	Path string

	// Result is the Go type rows are read into. It defaults to UnitResult.
	Result string
}

// ScriptPath returns the slash separated location of the template for typeName,
// relative to the project root.
func (c ScriptConfig) ScriptPath(typeName string) string {
	name := c.Path
	if name == "" {
		name = typeName
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))
	name = strings.TrimSuffix(name, path.Ext(name)) + ScriptExt
	return path.Join(ScriptDir, name)
}

// ResultType returns the declared result type, or UnitResult.
func (c ScriptConfig) ResultType() string {
	if c.Result == "" {
		return UnitResult
	}
	return c.Result
}

// LoadScript reads the template for typeName from fsys.
// A failure is a TemplateError wrapping ErrScriptNotFound.
func LoadScript(fsys fs.FS, typeName, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", &TemplateError{
			Type:   typeName,
			Script: name,
			Err:    fmt.Errorf("%w: %w", ErrScriptNotFound, err),
		}
	}
	return string(data), nil
}

// scriptName returns the name middlewares log a script under.
func scriptName(script Script) string {
	if named, ok := script.(Named); ok {
		return named.ScriptName()
	}
	typ := reflect.TypeOf(script)
	if typ == nil {
		return "<nil>"
	}
	return reflectlite.Indirect(typ).String()
}

// RawScript is a script whose SQL is already rendered.
type RawScript string

// Compile implements Script.
func (s RawScript) Compile() string { return string(s) }

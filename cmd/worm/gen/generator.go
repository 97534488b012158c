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

package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/eatmoreapple/worm"
)

// DefaultOutput is the file generated methods are written to.
const DefaultOutput = "worm_gen.go"

// ErrNoDirectives is returned when a package declares no worm directives.
var ErrNoDirectives = errors.New("no worm directives found")

// Generator writes the methods of every directive-carrying struct in a package.
type Generator struct {
	// Dir is the package directory.
	Dir string
	// Root is the project root. Scripts are read from Root/scripts.
	Root string
	// Output is the file name, inside Dir, the methods are written to.
	Output string
}

// IsScalar and the predicates below drive the code template.
func (f field) IsScalar() bool    { return f.Kind == fieldScalar }
func (f field) IsScalarPtr() bool { return f.Kind == fieldScalarPtr }
func (f field) IsValue() bool     { return f.Kind == fieldValue }
func (f field) IsCustomPtr() bool { return f.Kind == fieldCustomPtr }
func (f field) IsBlank() bool     { return f.Name == "_" }

// part is either a literal chunk or a field reference of a compiled template.
type part struct {
	Literal string
	Field   *field
}

type scriptView struct {
	Name   string
	Path   string
	Result string
	Size   int
	Parts  []part
}

type resultView struct {
	Name   string
	Fields []field
}

type fileView struct {
	Package string
	Imports []string
	Scripts []scriptView
	Results []resultView
}

var codeTemplate = template.Must(template.New("worm").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`// Code generated by worm gen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)
{{range .Scripts}}
// Compile implements worm.Script. It renders {{.Path}}.
func (s {{.Name}}) Compile() string {
	var builder strings.Builder
	builder.Grow({{.Size}})
{{- range .Parts}}
{{- if .Field}}{{template "param" .Field}}{{else}}
	builder.WriteString({{quote .Literal}})
{{- end}}
{{- end}}
	return builder.String()
}

// Query runs the script on conn and reads every row as {{.Result}}.
func (s {{.Name}}) Query(ctx context.Context, conn *worm.Connection) (*worm.Results[{{.Result}}], error) {
	return worm.Query[{{.Result}}](ctx, conn, s)
}
{{end}}
{{- range .Results}}
// ScanRow implements worm.RowScanner.
func (r *{{.Name}}) ScanRow(row *worm.Row) error {
{{- range .Fields}}{{template "scan" .}}{{end}}
	return nil
}
{{end}}

{{- define "param"}}
{{- if .IsScalar}}
	builder.WriteString(worm.IntoSQL(s.{{.Name}}).String())
{{- else if .IsScalarPtr}}
	builder.WriteString(worm.PtrIntoSQL(s.{{.Name}}).String())
{{- else if .IsValue}}
	builder.WriteString(s.{{.Name}}.String())
{{- else if .IsCustomPtr}}
	if s.{{.Name}} == nil {
		builder.WriteString(worm.Null().String())
	} else {
		builder.WriteString(s.{{.Name}}.SQLValue().String())
	}
{{- else}}
	builder.WriteString(s.{{.Name}}.SQLValue().String())
{{- end}}
{{- end}}

{{- define "scan"}}
{{- if .IsBlank}}
	if _, ok := row.Next(); !ok {
		return worm.MissingField("_")
	}
{{- else}}
	if value, ok := row.Next(); !ok {
		return worm.MissingField({{quote .Name}})
{{- if .IsScalar}}
	} else if v, err := worm.FromSQL[{{.Type}}](value); err != nil {
		return worm.FieldError({{quote .Name}}, err)
	} else {
		r.{{.Name}} = v
	}
{{- else if .IsScalarPtr}}
	} else if v, err := worm.PtrFromSQL[{{.Elem}}](value); err != nil {
		return worm.FieldError({{quote .Name}}, err)
	} else {
		r.{{.Name}} = v
	}
{{- else if .IsValue}}
	} else {
		r.{{.Name}} = value
	}
{{- else if .IsCustomPtr}}
	} else if value.IsNull() {
		r.{{.Name}} = nil
	} else {
		r.{{.Name}} = new({{.Elem}})
		if err := r.{{.Name}}.ScanSQL(value); err != nil {
			return worm.FieldError({{quote .Name}}, err)
		}
	}
{{- else}}
	} else if err := r.{{.Name}}.ScanSQL(value); err != nil {
		return worm.FieldError({{quote .Name}}, err)
	}
{{- end}}
{{- end}}
{{- end}}
`))

// Render parses the package and returns the formatted source of the generated file.
func (g *Generator) Render() ([]byte, error) {
	pkg, err := parsePackage(g.Dir, g.output())
	if err != nil {
		return nil, err
	}
	if len(pkg.Types) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDirectives, g.Dir)
	}
	view := fileView{Package: pkg.Name}
	scripts := worm.LocalFS{BaseDir: g.Root}
	imports := newImportSet()
	for _, decl := range pkg.Types {
		if decl.Script != nil {
			script, err := g.script(scripts, decl)
			if err != nil {
				return nil, err
			}
			view.Scripts = append(view.Scripts, script)
			imports.add(strconv.Quote("context"), strconv.Quote("strings"))
		}
		if decl.Result {
			if len(decl.Embedded) > 0 {
				return nil, fmt.Errorf("%s: type %s: embedded field %s cannot be read from a row", decl.pos, decl.Name, decl.Embedded[0])
			}
			view.Results = append(view.Results, resultView{Name: decl.Name, Fields: decl.Fields})
		}
		for _, imp := range decl.Imports {
			if imp.Path == wormImportPath && imp.usage() == "worm" {
				continue
			}
			imports.add(imp.String())
		}
	}
	imports.add(strconv.Quote(wormImportPath))
	view.Imports = imports.list

	var buf bytes.Buffer
	if err = codeTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	source, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w\n%s", err, buf.Bytes())
	}
	return source, nil
}

// script loads and compiles the template of a script type.
func (g *Generator) script(scripts worm.LocalFS, decl *typeDecl) (scriptView, error) {
	path := decl.Script.ScriptPath(decl.Name)
	source, err := worm.LoadScript(scripts, decl.Name, path)
	if err != nil {
		return scriptView{}, err
	}
	tpl, err := worm.CompileTemplate(decl.Name, source, decl.FieldNames())
	if err != nil {
		return scriptView{}, err
	}
	view := scriptView{
		Name:   decl.Name,
		Path:   path,
		Result: decl.Script.ResultType(),
		Size:   len(source),
	}
	chunks := tpl.Chunks()
	for i, param := range tpl.Params() {
		if chunks[i] != "" {
			view.Parts = append(view.Parts, part{Literal: chunks[i]})
		}
		f, _ := decl.field(param.Name)
		view.Parts = append(view.Parts, part{Field: &f})
	}
	if last := chunks[len(chunks)-1]; last != "" {
		view.Parts = append(view.Parts, part{Literal: last})
	}
	return view, nil
}

// Generate renders the package and writes the result to Dir/Output.
// It returns the path of the written file.
func (g *Generator) Generate() (string, error) {
	source, err := g.Render()
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.Dir, g.output())
	if err = os.WriteFile(path, source, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (g *Generator) output() string {
	if g.Output == "" {
		return DefaultOutput
	}
	return g.Output
}

// importSet keeps import lines unique and in insertion order.
type importSet struct {
	seen map[string]bool
	list []string
}

func newImportSet() *importSet {
	return &importSet{seen: make(map[string]bool)}
}

func (s *importSet) add(lines ...string) {
	for _, line := range lines {
		if !s.seen[line] {
			s.seen[line] = true
			s.list = append(s.list, line)
		}
	}
}

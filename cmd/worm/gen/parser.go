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
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/eatmoreapple/worm"
)

// wormImportPath is the import path generated code refers to as "worm".
const wormImportPath = "github.com/eatmoreapple/worm"

// fieldKind decides how a field is written into and read out of SQL.
type fieldKind int

const (
	// fieldScalar is a builtin type of the worm.Scalar set.
	fieldScalar fieldKind = iota
	// fieldScalarPtr is a pointer to a builtin scalar, nil is NULL.
	fieldScalarPtr
	// fieldValue is worm.Value itself.
	fieldValue
	// fieldCustom is any other named type, expected to implement
	// worm.Valuer and, on its pointer, worm.Scanner.
	fieldCustom
	// fieldCustomPtr is a pointer to a custom type, nil is NULL.
	fieldCustomPtr
)

var scalarTypes = []string{
	"bool", "float32", "float64", "string",
	"int", "int8", "int16", "int32", "int64",
	"uint", "uint8", "uint16", "uint32", "uint64",
	"byte", "rune",
}

func isScalar(name string) bool { return slices.Contains(scalarTypes, name) }

// field is one named struct field.
type field struct {
	Name string
	// Type is the field type as written in source.
	Type string
	// Elem is the pointed-to type of pointer fields.
	Elem string
	Kind fieldKind
}

// typeDecl is a struct type carrying worm directives.
type typeDecl struct {
	Name   string
	Fields []field
	// Embedded names embedded fields, which cannot be read positionally.
	Embedded []string
	Script   *worm.ScriptConfig
	Result   bool
	// Imports are the imports of the declaring file the generated methods refer to.
	Imports []importSpec
	pos     token.Position
}

// FieldNames returns the named fields in declaration order.
func (t *typeDecl) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

func (t *typeDecl) field(name string) (field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return field{}, false
}

type importSpec struct {
	Name string
	Path string
}

// String returns the spec as written inside an import block.
func (i importSpec) String() string {
	if i.Name == "" || i.Name == filepath.Base(i.Path) {
		return strconv.Quote(i.Path)
	}
	return i.Name + " " + strconv.Quote(i.Path)
}

// usage returns the identifier the import is referred to by.
func (i importSpec) usage() string {
	if i.Name != "" {
		return i.Name
	}
	return filepath.Base(i.Path)
}

// parsedPackage is the result of parsing one package directory.
type parsedPackage struct {
	Name  string
	Types []*typeDecl
}

// parsePackage parses the non-test Go files of dir, skipping the files in skip,
// and collects every struct carrying a worm directive.
func parsePackage(dir string, skip ...string) (*parsedPackage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	pkg := &parsedPackage{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if slices.Contains(skip, name) {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		if pkg.Name == "" {
			pkg.Name = file.Name.Name
		} else if pkg.Name != file.Name.Name {
			return nil, fmt.Errorf("found packages %s and %s in %s", pkg.Name, file.Name.Name, dir)
		}
		decls, err := inspect(fset, file)
		if err != nil {
			return nil, err
		}
		pkg.Types = append(pkg.Types, decls...)
	}
	return pkg, nil
}

// inspect collects the directive-carrying type declarations of one file.
func inspect(fset *token.FileSet, file *ast.File) ([]*typeDecl, error) {
	var decls []*typeDecl
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			groups := []*ast.CommentGroup{typeSpec.Doc}
			// a lone declaration carries its doc on the GenDecl
			if len(gen.Specs) == 1 {
				groups = append(groups, gen.Doc)
			}
			found, err := parseDirectives(groups...)
			if err != nil {
				return nil, fmt.Errorf("%s: type %s: %w", fset.Position(typeSpec.Pos()), typeSpec.Name.Name, err)
			}
			if found.empty() {
				continue
			}
			decl, err := newTypeDecl(file, typeSpec, found)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fset.Position(typeSpec.Pos()), err)
			}
			decl.pos = fset.Position(typeSpec.Pos())
			decls = append(decls, decl)
		}
	}
	return decls, nil
}

func newTypeDecl(file *ast.File, spec *ast.TypeSpec, found directives) (*typeDecl, error) {
	name := spec.Name.Name
	if spec.TypeParams != nil && spec.TypeParams.NumFields() > 0 {
		return nil, fmt.Errorf("type %s: generic types are not supported", name)
	}
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("type %s: %w: worm directives can only be used on a struct", name, worm.ErrUnsupportedShape)
	}
	decl := &typeDecl{Name: name, Script: found.script, Result: found.result}
	resolver := &importResolver{file: file}
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			decl.Embedded = append(decl.Embedded, types.ExprString(f.Type))
			continue
		}
		kind, elem, err := classify(f.Type, resolver)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		// ScanRow allocates the element of custom pointers by name
		if found.result && kind == fieldCustomPtr {
			resolver.use(f.Type)
		}
		for _, ident := range f.Names {
			decl.Fields = append(decl.Fields, field{
				Name: ident.Name,
				Type: types.ExprString(f.Type),
				Elem: elem,
				Kind: kind,
			})
		}
	}
	if found.script != nil {
		if result := found.script.ResultType(); result != worm.UnitResult {
			expr, err := parser.ParseExpr(result)
			if err != nil {
				return nil, fmt.Errorf("type %s: invalid result type %q: %w", name, result, err)
			}
			resolver.use(expr)
		}
	}
	decl.Imports = resolver.used
	return decl, nil
}

// classify returns the kind of a field type and, for pointers, the element type.
func classify(expr ast.Expr, resolver *importResolver) (fieldKind, string, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		if isScalar(t.Name) {
			return fieldScalar, "", nil
		}
		return fieldCustom, "", nil
	case *ast.SelectorExpr:
		if resolver.isWorm(t) && t.Sel.Name == "Value" {
			return fieldValue, "", nil
		}
		return fieldCustom, "", nil
	case *ast.IndexExpr, *ast.IndexListExpr:
		return fieldCustom, "", nil
	case *ast.StarExpr:
		kind, _, err := classify(t.X, resolver)
		if err != nil {
			return 0, "", err
		}
		elem := types.ExprString(t.X)
		switch kind {
		case fieldScalar:
			return fieldScalarPtr, elem, nil
		case fieldCustom:
			return fieldCustomPtr, elem, nil
		}
		return 0, "", fmt.Errorf("%w: %s", worm.ErrUnsupportedShape, types.ExprString(expr))
	case *ast.ParenExpr:
		return classify(t.X, resolver)
	}
	return 0, "", fmt.Errorf("%w: %s has no SQL representation", worm.ErrUnsupportedShape, types.ExprString(expr))
}

// importResolver records which imports of a file a set of type expressions refers to.
type importResolver struct {
	file *ast.File
	used []importSpec
}

func (r *importResolver) lookup(name string) (importSpec, bool) {
	for _, imp := range r.file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		spec := importSpec{Path: path}
		if imp.Name != nil {
			spec.Name = imp.Name.Name
		}
		if spec.usage() == name {
			return spec, true
		}
	}
	return importSpec{}, false
}

// isWorm reports whether sel is qualified by the worm package.
func (r *importResolver) isWorm(sel *ast.SelectorExpr) bool {
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	spec, ok := r.lookup(ident.Name)
	return ok && spec.Path == wormImportPath
}

// use records every package qualifier found in expr.
func (r *importResolver) use(expr ast.Expr) {
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		spec, ok := r.lookup(ident.Name)
		if !ok {
			return false
		}
		if !slices.Contains(r.used, spec) {
			r.used = append(r.used, spec)
		}
		return false
	})
}

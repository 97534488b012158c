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

// Package gen implements "worm gen", which writes the Compile, Query and
// ScanRow methods of structs annotated with worm directives:
//
//	//worm:script path=accounts/all result=Account
//	type GetAllAccounts struct{}
//
//	//worm:result
//	type Account struct {
//		ID      int64
//		Balance float64
//	}
//
// The template of a script is read from <root>/scripts/<path>.sql, where path
// defaults to the type name and root to the directory holding go.mod.
package gen

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eatmoreapple/worm/cmd/worm/internal/colorformat"
	"github.com/eatmoreapple/worm/cmd/worm/internal/module"
)

// Generate is the "gen" command.
type Generate struct {
	// Stdout receives progress messages, os.Stdout when nil.
	Stdout io.Writer
}

func (g *Generate) Name() string {
	return "gen"
}

func (g *Generate) Description() string {
	return "generate script and result methods from worm directives"
}

func (g *Generate) Help() string {
	var builder strings.Builder
	builder.WriteString("gen writes Compile, Query and ScanRow methods for annotated structs.\n")
	builder.WriteString("  Usage: worm gen [options]\n")
	builder.WriteString("  Options:\n")
	builder.WriteString("    -dir string\n")
	builder.WriteString("      package directory, default is the working directory\n")
	builder.WriteString("    -root string\n")
	builder.WriteString("      project root holding the scripts directory, default is the directory of go.mod\n")
	builder.WriteString("    -output string\n")
	builder.WriteString("      output file name, default is " + DefaultOutput)
	return builder.String()
}

func (g *Generate) Do(args []string) error {
	generator, err := parseFlags(args)
	if err != nil {
		return err
	}
	importPath, err := module.ImportPath(generator.Root, generator.Dir)
	if err != nil {
		// packages outside the module still generate, they are named by directory
		importPath = generator.Dir
	}
	path, err := generator.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", colorformat.Red(importPath), err)
	}
	_, err = fmt.Fprintf(g.stdout(), "%s %s\n", colorformat.Green("generated"), colorformat.Cyan(path))
	return err
}

func (g *Generate) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// parseFlags builds a Generator from the command line, filling in the defaults.
func parseFlags(args []string) (*Generator, error) {
	cmd := flag.NewFlagSet("gen", flag.ContinueOnError)
	cmd.SetOutput(io.Discard)
	generator := &Generator{}
	cmd.StringVar(&generator.Dir, "dir", ".", "package directory")
	cmd.StringVar(&generator.Root, "root", "", "project root")
	cmd.StringVar(&generator.Output, "output", DefaultOutput, "output file name")
	if err := cmd.Parse(args); err != nil {
		return nil, err
	}
	if cmd.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(cmd.Args(), " "))
	}
	generator.Output = strings.TrimPrefix(generator.Output, "./")
	if generator.Output != filepath.Base(generator.Output) {
		return nil, errors.New("output path only support file name")
	}
	if !strings.HasSuffix(generator.Output, ".go") {
		return nil, errors.New("output file must have the .go extension")
	}
	if generator.Root == "" {
		root, err := module.FindGoModPath(generator.Dir)
		if err != nil {
			return nil, err
		}
		generator.Root = root
	}
	return generator, nil
}

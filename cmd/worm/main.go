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

// Command worm generates the SQL methods of annotated structs.
//
//	go run github.com/eatmoreapple/worm/cmd/worm gen
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/eatmoreapple/worm/cmd/worm/gen"
	"github.com/eatmoreapple/worm/cmd/worm/internal/colorformat"
)

// Command defines a command which can be executed by worm.
type Command interface {
	// Name returns the name of the command.
	// For example, if the name is "gen", the command is executed by "worm gen".
	// The name must be unique.
	Name() string

	// Do executes the command with the arguments following its name.
	Do(args []string) error

	// Help returns the help message of the command.
	Help() string

	// Description returns the description of the command.
	Description() string
}

// cmdLibraries is a map of commands which can be executed by worm.
var cmdLibraries = make(map[string]Command)

// Register registers a command.
func Register(cmd Command) error {
	if cmd == nil {
		return errors.New("cmd is nil")
	}
	if _, ok := cmdLibraries[cmd.Name()]; ok {
		return errors.New("cmd: duplicate command " + cmd.Name())
	}
	cmdLibraries[cmd.Name()] = cmd
	return nil
}

func isHelp(arg string) bool { return arg == "--help" || arg == "-h" }

// usage returns the top level help message.
func usage() string {
	var builder strings.Builder
	builder.WriteString("Worm is a command line tool for generating SQL script methods.\n\n")
	builder.WriteString("Usage:\n")
	builder.WriteString("  worm [command]\n\n")
	builder.WriteString("Available Commands:\n")
	for _, cmd := range commands {
		builder.WriteString(fmt.Sprintf("  %-10s %s\n", colorformat.Red(cmd.Name()), colorformat.Magenta(cmd.Description())))
	}
	builder.WriteString("\nFlags:\n")
	builder.WriteString("  -h, --help\t")
	builder.WriteString("help for worm\n")
	builder.WriteString("\nUse \"worm [command] --help\" for more information about a command.")
	return builder.String()
}

// Do executes the command named by args[0].
func Do(stdout io.Writer, args []string) error {
	if len(args) == 0 || isHelp(args[0]) {
		_, err := fmt.Fprintln(stdout, usage())
		return err
	}
	name := args[0]
	cmd, ok := cmdLibraries[name]
	if !ok {
		return errors.New("worm: unknown command " + name)
	}
	if len(args) > 1 && isHelp(args[1]) {
		_, err := fmt.Fprintln(stdout, cmd.Help())
		return err
	}
	return cmd.Do(args[1:])
}

var commands = []Command{
	&gen.Generate{},
}

func init() {
	for _, cmd := range commands {
		if err := Register(cmd); err != nil {
			log.Fatal(err)
		}
	}
}

func main() {
	if err := Do(os.Stdout, os.Args[1:]); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

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
	"errors"
	"fmt"
	"go/ast"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/eatmoreapple/worm"
)

const (
	scriptDirective = "//worm:script"
	resultDirective = "//worm:result"
)

const (
	pathKey   = "path"
	resultKey = "result"
)

var errMalformedDirective = errors.New("malformed directive")

// keyFolder folds directive keys, so PATH=, Path= and path= are the same key.
var keyFolder = cases.Fold()

// directives is what the comments above one type declare.
type directives struct {
	// script is set when the type carries //worm:script.
	script *worm.ScriptConfig
	// result is set when the type carries //worm:result.
	result bool
}

func (d directives) empty() bool { return d.script == nil && !d.result }

// parseDirectives reads the worm directives out of the comment groups of a
// type declaration. Groups are read in order and may both be nil.
func parseDirectives(groups ...*ast.CommentGroup) (directives, error) {
	var found directives
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, comment := range group.List {
			text := strings.TrimSpace(comment.Text)
			switch {
			case hasDirective(text, scriptDirective):
				if found.script != nil {
					return found, fmt.Errorf("%w: duplicate %s", errMalformedDirective, scriptDirective)
				}
				config, err := parseScriptArgs(strings.TrimPrefix(text, scriptDirective))
				if err != nil {
					return found, err
				}
				found.script = &config
			case hasDirective(text, resultDirective):
				if args := strings.TrimSpace(strings.TrimPrefix(text, resultDirective)); args != "" {
					return found, fmt.Errorf("%w: %s takes no arguments, got %q", errMalformedDirective, resultDirective, args)
				}
				found.result = true
			}
		}
	}
	return found, nil
}

// hasDirective reports whether text is the directive itself, optionally
// followed by arguments. "//worm:scripts" is not "//worm:script".
func hasDirective(text, directive string) bool {
	rest, ok := strings.CutPrefix(text, directive)
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

// parseScriptArgs parses the key=value arguments of //worm:script.
// Values may be double quoted. Unknown and repeated keys are errors.
func parseScriptArgs(args string) (worm.ScriptConfig, error) {
	var config worm.ScriptConfig
	seen := make(map[string]bool)
	for _, arg := range strings.Fields(args) {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return config, fmt.Errorf("%w: expected key=value, got %q", errMalformedDirective, arg)
		}
		key = keyFolder.String(key)
		if seen[key] {
			return config, fmt.Errorf("%w: duplicate key %q", errMalformedDirective, key)
		}
		seen[key] = true
		if strings.HasPrefix(value, `"`) {
			unquoted, err := strconv.Unquote(value)
			if err != nil {
				return config, fmt.Errorf("%w: bad value for %s: %w", errMalformedDirective, key, err)
			}
			value = unquoted
		}
		if value == "" {
			return config, fmt.Errorf("%w: empty value for %s", errMalformedDirective, key)
		}
		switch key {
		case pathKey:
			config.Path = value
		case resultKey:
			config.Result = value
		default:
			return config, fmt.Errorf("%w: unknown key %q", errMalformedDirective, key)
		}
	}
	return config, nil
}

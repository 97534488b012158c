package gen

import (
	"bytes"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eatmoreapple/worm"
)

// project lays out a module with one package and its scripts.
func project(t *testing.T, files map[string]string) (root, dir string) {
	t.Helper()
	root = t.TempDir()
	dir = filepath.Join(root, "bank")
	files["go.mod"] = "module example.com/bank\n\ngo 1.23\n"
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root, dir
}

const accountsSource = `package bank

import "math/big"

//worm:script result=Account
type GetAccount struct {
	ID    int64
	Owner *string
	Limit Money
}

//worm:script path=accounts/all.sql result=Account
type GetAllAccounts struct{}

//worm:script
type Touch struct {
	ID int64
}

//worm:result
type Account struct {
	ID      int64
	Balance *float64
	Limit   Money
	Total   *big.Int
	_       string
}

type Money struct{ cents int64 }
`

func TestGenerator_Render(t *testing.T) {
	root, dir := project(t, map[string]string{
		"bank/accounts.go":         accountsSource,
		"scripts/GetAccount.sql":   "SELECT * FROM accounts WHERE id = $ID AND owner = $Owner AND credit < $Limit AND note = 'costs $$5';",
		"scripts/accounts/all.sql": "SELECT * FROM accounts;",
		"scripts/Touch.sql":        "UPDATE accounts SET touched = now() WHERE id = $ID",
	})
	generator := &Generator{Dir: dir, Root: root}
	source, err := generator.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if _, err = parser.ParseFile(token.NewFileSet(), DefaultOutput, source, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, source)
	}
	code := string(source)
	for _, want := range []string{
		"// Code generated by worm gen. DO NOT EDIT.",
		"package bank",
		`"context"`,
		`"math/big"`,
		`"github.com/eatmoreapple/worm"`,
		"func (s GetAccount) Compile() string {",
		`builder.WriteString("SELECT * FROM accounts WHERE id = ")`,
		"builder.WriteString(worm.IntoSQL(s.ID).String())",
		"builder.WriteString(worm.PtrIntoSQL(s.Owner).String())",
		"builder.WriteString(s.Limit.SQLValue().String())",
		`builder.WriteString(" AND note = 'costs $$5';")`,
		"func (s GetAccount) Query(ctx context.Context, conn *worm.Connection) (*worm.Results[Account], error) {",
		"return worm.Query[Account](ctx, conn, s)",
		`builder.WriteString("SELECT * FROM accounts;")`,
		"(*worm.Results[worm.Unit], error)",
		"func (r *Account) ScanRow(row *worm.Row) error {",
		`return worm.MissingField("ID")`,
		"worm.FromSQL[int64](value)",
		"worm.PtrFromSQL[float64](value)",
		"r.Limit.ScanSQL(value)",
		"r.Total = new(big.Int)",
		`return worm.MissingField("_")`,
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code is missing %q\n%s", want, code)
		}
	}
	if strings.Contains(code, "func (r *GetAccount) ScanRow") {
		t.Error("scripts without //worm:result must not get ScanRow")
	}
}

func TestGenerator_RenderErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  error
		text  string
	}{
		{
			name: "unresolved parameter",
			files: map[string]string{
				"bank/a.go":              "package bank\n\n//worm:script\ntype GetAccount struct{ ID int64 }\n",
				"scripts/GetAccount.sql": "SELECT * FROM accounts WHERE id = $Id",
			},
			want: worm.ErrUnresolvedParameter,
			text: "the type 'GetAccount' has no field with the name 'Id'",
		},
		{
			name:  "missing script",
			files: map[string]string{"bank/a.go": "package bank\n\n//worm:script\ntype GetAccount struct{}\n"},
			want:  worm.ErrScriptNotFound,
			text:  "GetAccount",
		},
		{
			name: "empty parameter",
			files: map[string]string{
				"bank/a.go":              "package bank\n\n//worm:script\ntype GetAccount struct{}\n",
				"scripts/GetAccount.sql": "SELECT $ 1",
			},
			want: worm.ErrEmptyParameter,
			text: "GetAccount",
		},
		{
			name:  "no directives",
			files: map[string]string{"bank/a.go": "package bank\n\ntype Account struct{}\n"},
			want:  ErrNoDirectives,
		},
		{
			name:  "embedded result field",
			files: map[string]string{"bank/a.go": "package bank\n\ntype Base struct{}\n\n//worm:result\ntype Account struct {\n\tBase\n\tID int64\n}\n"},
			text:  "embedded field Base",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, dir := project(t, tt.files)
			_, err := (&Generator{Dir: dir, Root: root}).Render()
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !strings.Contains(err.Error(), tt.text) {
				t.Errorf("error %q does not mention %q", err, tt.text)
			}
		})
	}
}

func TestGenerate_Do(t *testing.T) {
	root, dir := project(t, map[string]string{
		"bank/a.go":              "package bank\n\n//worm:script\ntype GetAccount struct{ ID int64 }\n",
		"scripts/GetAccount.sql": "SELECT * FROM accounts WHERE id = $ID",
		// a stale file from an earlier run is replaced, not parsed
		"bank/queries_gen.go": "package stale",
	})
	var out bytes.Buffer
	cmd := &Generate{Stdout: &out}
	if err := cmd.Do([]string{"-dir", dir, "-root", root, "-output", "queries_gen.go"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "queries_gen.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "func (s GetAccount) Compile() string") {
		t.Errorf("unexpected output file\n%s", data)
	}
	if !strings.Contains(out.String(), "queries_gen.go") {
		t.Errorf("unexpected progress message %q", out.String())
	}
}

func TestGenerate_DefaultRoot(t *testing.T) {
	_, dir := project(t, map[string]string{
		"bank/a.go":              "package bank\n\n//worm:script\ntype GetAccount struct{ ID int64 }\n",
		"scripts/GetAccount.sql": "SELECT $ID",
	})
	generator, err := parseFlags([]string{"-dir", dir})
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(filepath.Dir(dir))
	if generator.Root != want {
		t.Errorf("root = %q, want %q", generator.Root, want)
	}
	if generator.Output != DefaultOutput {
		t.Errorf("output = %q, want %q", generator.Output, DefaultOutput)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	for _, args := range [][]string{
		{"-output", "sub/worm_gen.go"},
		{"-output", "worm_gen.txt"},
		{"-unknown"},
		{"extra"},
	} {
		if _, err := parseFlags(append(args, "-root", t.TempDir())); err == nil {
			t.Errorf("parseFlags(%v) expected an error", args)
		}
	}
}

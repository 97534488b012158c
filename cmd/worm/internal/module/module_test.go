package module

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestParseGoModuleName(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "plain", content: "module github.com/acme/bank\n\ngo 1.23\n", want: "github.com/acme/bank"},
		{name: "leading comment", content: "// bank service\nmodule example.com/bank\n", want: "example.com/bank"},
		{name: "quoted", content: "module \"example.com/quoted\"\n", want: "example.com/quoted"},
		{name: "prefix only", content: "modulex example.com/nope\n", wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGoModuleName(strings.NewReader(tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGoModuleName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseGoModuleName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindGoModPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/bank\n")
	nested := filepath.Join(root, "internal", "accounts")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindGoModPath(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindGoModPath() = %q, want %q", got, want)
	}
}

func TestFindGoModPath_NotFound(t *testing.T) {
	dir := t.TempDir()
	// skip when the temp dir sits inside a module
	if _, err := FindGoModPath(filepath.Dir(dir)); err == nil {
		t.Skip("temp dir is inside a module")
	}
	_, err := FindGoModPath(dir)
	if !errors.Is(err, ErrGoModNotFound) {
		t.Errorf("expected ErrGoModNotFound, got %v", err)
	}
}

func TestImportPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/bank\n")

	tests := []struct {
		name    string
		dir     string
		want    string
		wantErr bool
	}{
		{name: "root", dir: root, want: "example.com/bank"},
		{name: "nested", dir: filepath.Join(root, "internal", "accounts"), want: "example.com/bank/internal/accounts"},
		{name: "outside", dir: filepath.Dir(root), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImportPath(root, tt.dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ImportPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ImportPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImportPath_NoGoMod(t *testing.T) {
	if _, err := ImportPath(t.TempDir(), "."); err == nil {
		t.Error("expected an error without go.mod")
	}
}

package gen

import (
	"errors"
	"go/ast"
	"testing"
)

func comments(lines ...string) *ast.CommentGroup {
	group := &ast.CommentGroup{}
	for _, line := range lines {
		group.List = append(group.List, &ast.Comment{Text: line})
	}
	return group
}

func TestParseDirectives(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantPath   string
		wantResult string
		wantScript bool
		wantRow    bool
		wantErr    bool
	}{
		{name: "none", lines: []string{"// GetAccount reads one account."}},
		{name: "bare script", lines: []string{"//worm:script"}, wantScript: true},
		{
			name:       "script args",
			lines:      []string{"// GetAccount reads one account.", "//worm:script path=accounts/get result=Account"},
			wantScript: true, wantPath: "accounts/get", wantResult: "Account",
		},
		{name: "folded keys", lines: []string{"//worm:script PATH=get Result=Account"}, wantScript: true, wantPath: "get", wantResult: "Account"},
		{name: "quoted value", lines: []string{`//worm:script path="accounts/get.sql"`}, wantScript: true, wantPath: "accounts/get.sql"},
		{name: "result", lines: []string{"//worm:result"}, wantRow: true},
		{name: "both", lines: []string{"//worm:script", "//worm:result"}, wantScript: true, wantRow: true},
		{name: "lookalike", lines: []string{"//worm:scripts path=x"}},
		{name: "unknown key", lines: []string{"//worm:script table=accounts"}, wantErr: true},
		{name: "missing value", lines: []string{"//worm:script path"}, wantErr: true},
		{name: "empty value", lines: []string{"//worm:script path="}, wantErr: true},
		{name: "duplicate key", lines: []string{"//worm:script path=a PATH=b"}, wantErr: true},
		{name: "duplicate directive", lines: []string{"//worm:script", "//worm:script"}, wantErr: true},
		{name: "result args", lines: []string{"//worm:result Account"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDirectives(comments(tt.lines...))
			if tt.wantErr {
				if !errors.Is(err, errMalformedDirective) {
					t.Fatalf("expected errMalformedDirective, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got.script != nil) != tt.wantScript {
				t.Fatalf("script = %v, want %v", got.script != nil, tt.wantScript)
			}
			if got.result != tt.wantRow {
				t.Errorf("result = %v, want %v", got.result, tt.wantRow)
			}
			if got.script != nil {
				if got.script.Path != tt.wantPath {
					t.Errorf("path = %q, want %q", got.script.Path, tt.wantPath)
				}
				if got.script.Result != tt.wantResult {
					t.Errorf("result type = %q, want %q", got.script.Result, tt.wantResult)
				}
			}
		})
	}
}

func TestParseDirectives_NilGroups(t *testing.T) {
	got, err := parseDirectives(nil, comments("//worm:result"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got.result {
		t.Error("expected the result directive to be found")
	}
}

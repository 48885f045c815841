package lsp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
)

func TestDiagnostics_ValidCode(t *testing.T) {
	diags := diagnostics("file:///a.krill", "echo hello\n$x = 1 + 2\n")
	if len(diags) != 0 {
		t.Errorf("got %d diagnostics, want 0", len(diags))
	}
}

func TestDiagnostics_SyntaxError(t *testing.T) {
	diags := diagnostics("file:///a.krill", "echo ok\n1 +\n")
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Severity != lsp.Error || d.Source != "parse" {
		t.Errorf("got severity %v source %q", d.Severity, d.Source)
	}
	if d.Range.Start.Line != 1 {
		t.Errorf("error on line %d, want line 1", d.Range.Start.Line)
	}
	if d.Message == "" {
		t.Error("empty diagnostic message")
	}
}

func TestLspPositionFromIdx(t *testing.T) {
	src := "ab\ncd\n"
	tests := []struct {
		idx  int
		want lsp.Position
	}{
		{0, lsp.Position{Line: 0, Character: 0}},
		{1, lsp.Position{Line: 0, Character: 1}},
		{3, lsp.Position{Line: 1, Character: 0}},
		{4, lsp.Position{Line: 1, Character: 1}},
		{6, lsp.Position{Line: 2, Character: 0}},
	}
	for _, test := range tests {
		got := lspPositionFromIdx(src, test.idx)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("position of %d (-want +got):\n%s", test.idx, diff)
		}
	}
}

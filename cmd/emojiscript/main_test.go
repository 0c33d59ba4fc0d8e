package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	valid := writeFile(t, "valid.emoji", "📦 x ⬅️ 1🔚 📦 y ⬅️ 2🔚 📢 x ➕ y🔚\n")
	invalid := writeFile(t, "invalid.emoji", "📦 x ⬅️ 🔚\n")
	overlay := writeFile(t, "symbols.yaml", "symbols:\n  Print:\n    - \"🖨️\"\n")
	overlaid := writeFile(t, "overlaid.emoji", "🖨️ 1🔚\n")
	broken := writeFile(t, "broken.yaml", "symbols:\n  Unknown:\n    - \"🖨️\"\n")

	for _, tt := range []struct {
		name     string
		args     []string
		expected int
	}{
		{name: "Help", args: []string{"--help"}, expected: 0},
		{name: "NoFiles", args: []string{}, expected: 1},
		{name: "UnknownEmit", args: []string{"--emit", "wasm", valid}, expected: 1},
		{name: "Run", args: []string{valid}, expected: 0},
		{name: "EmitJS", args: []string{"--emit", "js", valid}, expected: 0},
		{name: "EmitAST", args: []string{"--emit", "ast", valid}, expected: 0},
		{name: "EmitASTYAML", args: []string{"--emit", "ast-yaml", valid}, expected: 0},
		{name: "EmitTokens", args: []string{"--emit", "tokens", valid}, expected: 0},
		{name: "MultipleFiles", args: []string{"--emit", "js", valid, valid}, expected: 0},
		{name: "ParseError", args: []string{invalid}, expected: 1},
		{name: "MissingFile", args: []string{filepath.Join(t.TempDir(), "missing.emoji")}, expected: 1},
		{name: "Overlay", args: []string{"--symbols", overlay, overlaid}, expected: 0},
		{name: "WithoutOverlay", args: []string{overlaid}, expected: 1},
		{name: "BrokenOverlay", args: []string{"--symbols", broken, valid}, expected: 1},
		{name: "ListSymbols", args: []string{"--list-symbols"}, expected: 0},
		{name: "ListenWithFiles", args: []string{"--listen", ":0", valid}, expected: 1},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if code := run(tt.args); code != tt.expected {
				t.Errorf("expect to exit with %d but got %d", tt.expected, code)
			}
		})
	}
}

package defaults_test

import (
	"testing"

	"github.com/karupanerura/emojiscript/internal/defaults"
	"github.com/karupanerura/emojiscript/internal/symbols"
)

func TestDefaultSymbolTable(t *testing.T) {
	t.Parallel()

	for terminal := symbols.EOF; terminal <= symbols.Comment; terminal++ {
		if !terminal.Bindable() {
			continue
		}
		if lexemes := defaults.DefaultSymbolTable.Lexemes(terminal); len(lexemes) == 0 {
			t.Errorf("no lexeme for %s", terminal)
		}
	}

	if got, expected := len(defaults.DefaultSymbolTable.Entries()), len(defaults.Entries); got != expected {
		t.Errorf("expect %d entries but got %d", expected, got)
	}
}

package lexer

import (
	"fmt"

	"github.com/karupanerura/emojiscript/internal/symbols"
	"github.com/karupanerura/emojiscript/internal/types"
)

type Token struct {
	Kind symbols.Terminal `json:"kind"`
	// Lexeme is the raw source text of the token.
	Lexeme string `json:"lexeme"`
	// Text is the canonical spelling: the JavaScript operator or keyword, the identifier
	// name, the decoded string value or the normalized number.
	Text string `json:"text"`
	Span types.Span `json:"span"`
}

func (t Token) String() string {
	if t.Kind == symbols.EOF {
		return fmt.Sprintf("EOF@%s", t.Span.Loc.Start)
	}
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Lexeme, t.Span.Loc.Start)
}

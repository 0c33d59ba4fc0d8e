package symbols

import (
	"fmt"

	"github.com/samber/lo"
)

// Terminal is a lexical category of the grammar.
type Terminal int

const (
	EOF Terminal = iota
	Identifier
	NumberLiteral
	StringLiteral
	BooleanLiteral
	NullLiteral

	// keywords
	Var
	Let
	Const
	Function
	Return
	If
	Else
	While
	For
	Break
	Continue
	Print

	// operators
	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	Equal
	NotEqual
	Not
	Less
	LessEqual
	Greater
	GreaterEqual
	And
	Or
	Dot

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon

	// Comment starts a comment running to the end of the line. It is never emitted.
	Comment
)

var terminalNameMap = map[Terminal]string{
	EOF:            "EOF",
	Identifier:     "Identifier",
	NumberLiteral:  "NumberLiteral",
	StringLiteral:  "StringLiteral",
	BooleanLiteral: "BooleanLiteral",
	NullLiteral:    "NullLiteral",
	Var:            "Var",
	Let:            "Let",
	Const:          "Const",
	Function:       "Function",
	Return:         "Return",
	If:             "If",
	Else:           "Else",
	While:          "While",
	For:            "For",
	Break:          "Break",
	Continue:       "Continue",
	Print:          "Print",
	Plus:           "Plus",
	Minus:          "Minus",
	Star:           "Star",
	Slash:          "Slash",
	Percent:        "Percent",
	Assign:         "Assign",
	PlusAssign:     "PlusAssign",
	MinusAssign:    "MinusAssign",
	StarAssign:     "StarAssign",
	SlashAssign:    "SlashAssign",
	Equal:          "Equal",
	NotEqual:       "NotEqual",
	Not:            "Not",
	Less:           "Less",
	LessEqual:      "LessEqual",
	Greater:        "Greater",
	GreaterEqual:   "GreaterEqual",
	And:            "And",
	Or:             "Or",
	Dot:            "Dot",
	LParen:         "LParen",
	RParen:         "RParen",
	LBrace:         "LBrace",
	RBrace:         "RBrace",
	LBracket:       "LBracket",
	RBracket:       "RBracket",
	Comma:          "Comma",
	Semicolon:      "Semicolon",
	Comment:        "Comment",
}

var terminalByNameMap = lo.Invert(terminalNameMap)

// canonicalTextMap holds the JavaScript spelling of every terminal whose text does not
// depend on the lexeme.
var canonicalTextMap = map[Terminal]string{
	Var:          "var",
	Let:          "let",
	Const:        "const",
	Function:     "function",
	Return:       "return",
	If:           "if",
	Else:         "else",
	While:        "while",
	For:          "for",
	Break:        "break",
	Continue:     "continue",
	Print:        "console.log",
	NullLiteral:  "null",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	Assign:       "=",
	PlusAssign:   "+=",
	MinusAssign:  "-=",
	StarAssign:   "*=",
	SlashAssign:  "/=",
	Equal:        "==",
	NotEqual:     "!=",
	Not:          "!",
	Less:         "<",
	LessEqual:    "<=",
	Greater:      ">",
	GreaterEqual: ">=",
	And:          "&&",
	Or:           "||",
	Dot:          ".",
	LParen:       "(",
	RParen:       ")",
	LBrace:       "{",
	RBrace:       "}",
	LBracket:     "[",
	RBracket:     "]",
	Comma:        ",",
	Semicolon:    ";",
	Comment:      "//",
}

func (t Terminal) String() string {
	if name, ok := terminalNameMap[t]; ok {
		return name
	}
	return fmt.Sprintf("Terminal(%d)", int(t))
}

// Text returns the canonical JavaScript spelling of t, or "" when it depends on the lexeme.
func (t Terminal) Text() string {
	return canonicalTextMap[t]
}

// Bindable reports whether lexemes may be registered for t in a Table.
// Identifiers and strings are produced by the lexer itself.
func (t Terminal) Bindable() bool {
	switch t {
	case EOF, Identifier, StringLiteral:
		return false
	default:
		_, ok := terminalNameMap[t]
		return ok
	}
}

func ParseTerminal(name string) (Terminal, bool) {
	t, ok := terminalByNameMap[name]
	return t, ok
}

func (t Terminal) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

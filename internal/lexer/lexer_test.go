package lexer_test

import (
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/emojiscript/internal/defaults"
	"github.com/karupanerura/emojiscript/internal/lexer"
	"github.com/karupanerura/emojiscript/internal/symbols"
	"github.com/karupanerura/emojiscript/internal/types"
)

type token struct {
	Kind   symbols.Terminal
	Lexeme string
	Text   string
}

func strip(tokens []lexer.Token) []token {
	stripped := make([]token, len(tokens))
	for i, tok := range tokens {
		stripped[i] = token{Kind: tok.Kind, Lexeme: tok.Lexeme, Text: tok.Text}
	}
	return stripped
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	eof := token{Kind: symbols.EOF}
	for _, tt := range []struct {
		name     string
		source   string
		expected []token
	}{
		{
			name:     "Empty",
			source:   "",
			expected: []token{eof},
		},
		{
			name:     "Spaces",
			source:   " \t\r\n　",
			expected: []token{eof},
		},
		{
			name:   "Declaration",
			source: "📦 x ⬅️ 1🔚",
			expected: []token{
				{Kind: symbols.Var, Lexeme: "📦", Text: "var"},
				{Kind: symbols.Identifier, Lexeme: "x", Text: "x"},
				{Kind: symbols.Assign, Lexeme: "⬅️", Text: "="},
				{Kind: symbols.NumberLiteral, Lexeme: "1", Text: "1"},
				{Kind: symbols.Semicolon, Lexeme: "🔚", Text: ";"},
				eof,
			},
		},
		{
			name:   "WithoutSelector",
			source: "x⬅1",
			expected: []token{
				{Kind: symbols.Identifier, Lexeme: "x", Text: "x"},
				{Kind: symbols.Assign, Lexeme: "⬅", Text: "="},
				{Kind: symbols.NumberLiteral, Lexeme: "1", Text: "1"},
				eof,
			},
		},
		{
			name:   "LongestMatch",
			source: "🚫🟰🚫 🟰➕⬅️➕",
			expected: []token{
				{Kind: symbols.NotEqual, Lexeme: "🚫🟰", Text: "!="},
				{Kind: symbols.Not, Lexeme: "🚫", Text: "!"},
				{Kind: symbols.Equal, Lexeme: "🟰", Text: "=="},
				{Kind: symbols.PlusAssign, Lexeme: "➕⬅️", Text: "+="},
				{Kind: symbols.Plus, Lexeme: "➕", Text: "+"},
				eof,
			},
		},
		{
			name:   "Literals",
			source: "👍👎🕳️🔟💯",
			expected: []token{
				{Kind: symbols.BooleanLiteral, Lexeme: "👍", Text: "true"},
				{Kind: symbols.BooleanLiteral, Lexeme: "👎", Text: "false"},
				{Kind: symbols.NullLiteral, Lexeme: "🕳️", Text: "null"},
				{Kind: symbols.NumberLiteral, Lexeme: "🔟", Text: "10"},
				{Kind: symbols.NumberLiteral, Lexeme: "💯", Text: "100"},
				eof,
			},
		},
		{
			name:   "Numbers",
			source: "0 12.50 1e3 2E-2 007",
			expected: []token{
				{Kind: symbols.NumberLiteral, Lexeme: "0", Text: "0"},
				{Kind: symbols.NumberLiteral, Lexeme: "12.50", Text: "12.5"},
				{Kind: symbols.NumberLiteral, Lexeme: "1e3", Text: "1000"},
				{Kind: symbols.NumberLiteral, Lexeme: "2E-2", Text: "0.02"},
				{Kind: symbols.NumberLiteral, Lexeme: "007", Text: "7"},
				eof,
			},
		},
		{
			name:   "Keycaps",
			source: "1️⃣2⃣ 3",
			expected: []token{
				{Kind: symbols.NumberLiteral, Lexeme: "1️⃣2⃣", Text: "12"},
				{Kind: symbols.NumberLiteral, Lexeme: "3", Text: "3"},
				eof,
			},
		},
		{
			name:   "Strings",
			source: `"a\"b" 'c\'d' "\n\t\\" "A\u{1F600}😀" "🍣"`,
			expected: []token{
				{Kind: symbols.StringLiteral, Lexeme: `"a\"b"`, Text: `a"b`},
				{Kind: symbols.StringLiteral, Lexeme: `'c\'d'`, Text: `c'd`},
				{Kind: symbols.StringLiteral, Lexeme: `"\n\t\\"`, Text: "\n\t\\"},
				{Kind: symbols.StringLiteral, Lexeme: `"A\u{1F600}😀"`, Text: "A😀😀"},
				{Kind: symbols.StringLiteral, Lexeme: `"🍣"`, Text: "🍣"},
				eof,
			},
		},
		{
			name:   "SurrogatePair",
			source: `"\uD83D\uDE00"`,
			expected: []token{
				{Kind: symbols.StringLiteral, Lexeme: `"\uD83D\uDE00"`, Text: "😀"},
				eof,
			},
		},
		{
			name:   "Identifiers",
			source: "_a $b c1 ünï if",
			expected: []token{
				{Kind: symbols.Identifier, Lexeme: "_a", Text: "_a"},
				{Kind: symbols.Identifier, Lexeme: "$b", Text: "$b"},
				{Kind: symbols.Identifier, Lexeme: "c1", Text: "c1"},
				{Kind: symbols.Identifier, Lexeme: "ünï", Text: "ünï"},
				{Kind: symbols.Identifier, Lexeme: "if", Text: "if"},
				eof,
			},
		},
		{
			name:   "Comment",
			source: "💭 📢 ignored 🐛\n📢 1🔚 💭 trailing",
			expected: []token{
				{Kind: symbols.Print, Lexeme: "📢", Text: "console.log"},
				{Kind: symbols.NumberLiteral, Lexeme: "1", Text: "1"},
				{Kind: symbols.Semicolon, Lexeme: "🔚", Text: ";"},
				eof,
			},
		},
		{
			name:   "Keywords",
			source: "📌🔒🔧🔙↩️🤔🙃🔁🔂🛑⏭️",
			expected: []token{
				{Kind: symbols.Let, Lexeme: "📌", Text: "let"},
				{Kind: symbols.Const, Lexeme: "🔒", Text: "const"},
				{Kind: symbols.Function, Lexeme: "🔧", Text: "function"},
				{Kind: symbols.Return, Lexeme: "🔙", Text: "return"},
				{Kind: symbols.Return, Lexeme: "↩️", Text: "return"},
				{Kind: symbols.If, Lexeme: "🤔", Text: "if"},
				{Kind: symbols.Else, Lexeme: "🙃", Text: "else"},
				{Kind: symbols.While, Lexeme: "🔁", Text: "while"},
				{Kind: symbols.For, Lexeme: "🔂", Text: "for"},
				{Kind: symbols.Break, Lexeme: "🛑", Text: "break"},
				{Kind: symbols.Continue, Lexeme: "⏭️", Text: "continue"},
				eof,
			},
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := lexer.Tokenize(defaults.DefaultSymbolTable, tt.source)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.expected, strip(tokens)); diff != "" {
				t.Errorf("(-expected, +actual)\n%s", diff)
			}
		})
	}
}

func TestTokenizeSpan(t *testing.T) {
	t.Parallel()

	source := "📦 x ⬅\uFE0F 1🔚\r\n🤔 🌛x🌜\n\t📢 \"\u00e9\"🔚"
	tokens, err := lexer.Tokenize(defaults.DefaultSymbolTable, source)
	if err != nil {
		t.Fatal(err)
	}

	expected := []types.SourceLocation{
		{Start: types.Position{Line: 1, Column: 0}, End: types.Position{Line: 1, Column: 1}},
		{Start: types.Position{Line: 1, Column: 2}, End: types.Position{Line: 1, Column: 3}},
		{Start: types.Position{Line: 1, Column: 4}, End: types.Position{Line: 1, Column: 6}},
		{Start: types.Position{Line: 1, Column: 7}, End: types.Position{Line: 1, Column: 8}},
		{Start: types.Position{Line: 1, Column: 8}, End: types.Position{Line: 1, Column: 9}},
		{Start: types.Position{Line: 2, Column: 0}, End: types.Position{Line: 2, Column: 1}},
		{Start: types.Position{Line: 2, Column: 2}, End: types.Position{Line: 2, Column: 3}},
		{Start: types.Position{Line: 2, Column: 3}, End: types.Position{Line: 2, Column: 4}},
		{Start: types.Position{Line: 2, Column: 4}, End: types.Position{Line: 2, Column: 5}},
		{Start: types.Position{Line: 3, Column: 1}, End: types.Position{Line: 3, Column: 2}},
		{Start: types.Position{Line: 3, Column: 3}, End: types.Position{Line: 3, Column: 6}},
		{Start: types.Position{Line: 3, Column: 6}, End: types.Position{Line: 3, Column: 7}},
		{Start: types.Position{Line: 3, Column: 7}, End: types.Position{Line: 3, Column: 7}},
	}
	actual := make([]types.SourceLocation, len(tokens))
	for i, tok := range tokens {
		actual[i] = tok.Span.Loc
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}
}

// assertCoverage checks that the tokens cover the source in order, with only spaces and
// comments between them.
func assertCoverage(t *testing.T, source string, tokens []lexer.Token) {
	t.Helper()

	prev := 0
	for _, tok := range tokens {
		if tok.Span.Start < prev || tok.Span.End < tok.Span.Start || tok.Span.End > len(source) {
			t.Fatalf("token %s has an invalid span %d-%d", tok, tok.Span.Start, tok.Span.End)
		}
		if got := source[tok.Span.Start:tok.Span.End]; got != tok.Lexeme {
			t.Errorf("token %s covers %q", tok, got)
		}

		gap := source[prev:tok.Span.Start]
		if i := strings.Index(gap, "💭"); i != -1 {
			gap = gap[:i]
		}
		if strings.TrimFunc(gap, unicode.IsSpace) != "" {
			t.Errorf("unexpected text %q before %s", gap, tok)
		}
		prev = tok.Span.End
	}
	if prev != len(source) {
		t.Errorf("tokens end at %d but source has %d bytes", prev, len(source))
	}
}

func TestTokenizeCoverage(t *testing.T) {
	t.Parallel()

	for _, source := range []string{
		"📦 x ⬅️ 1🔚 📦 y ⬅️ 2🔚 📢 x ➕ y🔚",
		"🔧 add🌛a 🔸 b🌜 📖 🔙 a ➕ b🔚 📕\n💭 comment\n📢 add🌛1 🔸 2🌜🔚\n",
		"🔂 🌛📌 i ⬅️ 0🔚 i ◀️🟰 🔟🔚 i ➕⬅️ 1🌜 📖 📢 \"i\" 🔸 i🔚 📕",
	} {
		source := source
		t.Run(source, func(t *testing.T) {
			t.Parallel()

			tokens, err := lexer.Tokenize(defaults.DefaultSymbolTable, source)
			if err != nil {
				t.Fatal(err)
			}
			assertCoverage(t, source, tokens)
		})
	}
}

func TestTokenizeError(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name     string
		source   string
		text     string
		reason   string
		position types.Position
	}{
		{
			name:     "Unrecognized",
			source:   "📦 x\n  🐛 ⬅️ 1🔚",
			text:     "🐛",
			reason:   "unrecognized symbol",
			position: types.Position{Line: 2, Column: 2},
		},
		{
			name:     "ZWJSequence",
			source:   "📢 🧑\u200D💻🔚",
			text:     "🧑\u200D💻",
			reason:   "unrecognized symbol",
			position: types.Position{Line: 1, Column: 2},
		},
		{
			name:     "SkinTone",
			source:   "🙋\U0001F3FD",
			text:     "🙋\U0001F3FD",
			reason:   "unrecognized symbol",
			position: types.Position{Line: 1, Column: 0},
		},
		{
			name:     "AfterCRLF",
			source:   "📢 1🔚\r\n#",
			text:     "#",
			reason:   "unrecognized symbol",
			position: types.Position{Line: 2, Column: 0},
		},
		{
			name:     "UnterminatedString",
			source:   "📢 \"abc",
			text:     "\"abc",
			reason:   "unterminated string literal",
			position: types.Position{Line: 1, Column: 2},
		},
		{
			name:     "NewlineInString",
			source:   "📢 'abc\n'",
			text:     "'abc",
			reason:   "unterminated string literal",
			position: types.Position{Line: 1, Column: 2},
		},
		{
			name:     "InvalidEscape",
			source:   `"a\qb"`,
			text:     `\q`,
			reason:   "invalid escape sequence",
			position: types.Position{Line: 1, Column: 2},
		},
		{
			name:     "LoneHighSurrogate",
			source:   `📢 "\uD83D"`,
			text:     `\uD83D`,
			reason:   "lone surrogate in escape sequence",
			position: types.Position{Line: 1, Column: 3},
		},
		{
			name:     "LoneLowSurrogate",
			source:   `"a\uDE00"`,
			text:     `\uDE00`,
			reason:   "lone surrogate in escape sequence",
			position: types.Position{Line: 1, Column: 2},
		},
		{
			name:     "HighSurrogateBeforeNonSurrogate",
			source:   `"\uD83D\u0041"`,
			text:     `\uD83D`,
			reason:   "lone surrogate in escape sequence",
			position: types.Position{Line: 1, Column: 1},
		},
		{
			name:     "BracedSurrogate",
			source:   `"\u{D800}"`,
			text:     `\u{D800}`,
			reason:   "lone surrogate in escape sequence",
			position: types.Position{Line: 1, Column: 1},
		},
		{
			name:     "MalformedFraction",
			source:   "1.x",
			text:     "1.x",
			reason:   "malformed number literal",
			position: types.Position{Line: 1, Column: 0},
		},
		{
			name:     "IdentifierAfterNumber",
			source:   "12ab",
			text:     "12a",
			reason:   "malformed number literal",
			position: types.Position{Line: 1, Column: 0},
		},
		{
			name:     "OutOfRange",
			source:   "1e400",
			text:     "1e400",
			reason:   "number literal out of range",
			position: types.Position{Line: 1, Column: 0},
		},
		{
			name:     "InvalidUTF8",
			source:   "📢 \xff",
			text:     "\xff",
			reason:   "invalid UTF-8 sequence",
			position: types.Position{Line: 1, Column: 2},
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := lexer.Tokenize(defaults.DefaultSymbolTable, tt.source)
			if err == nil {
				t.Fatalf("should be error but got %v", tokens)
			}
			if tokens != nil {
				t.Errorf("no tokens should be returned but got %v", tokens)
			}

			var lexErr *types.LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected LexError but got %v", err)
			}
			if lexErr.Text != tt.text || lexErr.Reason != tt.reason {
				t.Errorf("expect to %s %q but got %s %q", tt.reason, tt.text, lexErr.Reason, lexErr.Text)
			}
			if diff := cmp.Diff(tt.position, lexErr.Span.Loc.Start); diff != "" {
				t.Errorf("(-expected, +actual)\n%s", diff)
			}
			if got := tt.source[lexErr.Span.Start:lexErr.Span.End]; got != lexErr.Text {
				t.Errorf("span covers %q", got)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	t.Parallel()

	source := "🔧 f🌛n🌜 📖 🤔 🌛n ◀️ 2🌜 🔙 n🔚 🔙 f🌛n ➖ 1🌜 ➕ f🌛n ➖ 2🌜🔚 📕"
	first, err := lexer.Tokenize(defaults.DefaultSymbolTable, source)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		tokens, err := lexer.Tokenize(defaults.DefaultSymbolTable, source)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, tokens); diff != "" {
			t.Fatalf("(-first, +actual)\n%s", diff)
		}
	}
}

func FuzzTokenize(f *testing.F) {
	f.Add("📦 x ⬅️ 1🔚 📦 y ⬅️ 2🔚 📢 x ➕ y🔚")
	f.Add("💭 comment\n📢 \"a\\u{1F600}\"🔚")
	f.Add("1️⃣🚫🟰")

	f.Fuzz(func(t *testing.T, source string) {
		tokens, err := lexer.Tokenize(defaults.DefaultSymbolTable, source)
		if err != nil {
			var lexErr *types.LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("unexpected error type: %v", err)
			}
			t.Logf("INVALID: %q (%v)", source, err)
			return
		}

		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != symbols.EOF {
			t.Fatalf("missing EOF: %v", tokens)
		}
		assertCoverage(t, source, tokens)
	})
}

package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/karupanerura/emojiscript/internal/symbols"
	"github.com/karupanerura/emojiscript/internal/types"
)

const (
	zeroWidthJoiner       = '\u200D'
	combiningEnclosingKey = '\u20E3'
)

type lexer struct {
	table  *symbols.Table
	source string
	index  int
	line   int
	column int
}

func newLexer(table *symbols.Table, source string) *lexer {
	return &lexer{
		table:  table,
		source: source,
		index:  0,
		line:   1,
		column: 0,
	}
}

// Tokenize splits source into tokens using the lexemes of table. The returned slice
// always ends with an EOF token. No tokens are returned when an error occurs.
func Tokenize(table *symbols.Table, source string) ([]Token, error) {
	l := newLexer(table, source)

	var tokens []Token
	for {
		tok, err := l.consume()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == symbols.EOF {
			return tokens, nil
		}
	}
}

func (l *lexer) pos() types.Position {
	return types.Position{Line: l.line, Column: l.column}
}

func (l *lexer) peek(offset int) rune {
	if l.index+offset >= len(l.source) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.index+offset:])
	return r
}

// advance moves the cursor forward by n bytes, keeping line and column in sync.
func (l *lexer) advance(n int) {
	end := l.index + n
	for l.index < end {
		r, size := utf8.DecodeRuneInString(l.source[l.index:])
		l.index += size
		switch {
		case r == '\n':
			l.line++
			l.column = 0
		case r == '\r' && (l.index >= len(l.source) || l.source[l.index] != '\n'):
			l.line++
			l.column = 0
		default:
			l.column++
		}
	}
}

func (l *lexer) span(beginsIdx int, beginsPos types.Position) types.Span {
	return types.Span{
		Start: beginsIdx,
		End:   l.index,
		Loc: types.SourceLocation{
			Start: beginsPos,
			End:   l.pos(),
		},
	}
}

func (l *lexer) consume() (Token, error) {
	for l.index != len(l.source) {
		beginsIdx, beginsPos := l.index, l.pos()
		r, size := utf8.DecodeRuneInString(l.source[l.index:])
		switch {
		case r == utf8.RuneError && size == 1:
			l.advance(1)
			return Token{}, &types.LexError{
				Text:   l.source[beginsIdx:l.index],
				Reason: "invalid UTF-8 sequence",
				Span:   l.span(beginsIdx, beginsPos),
			}

		case unicode.IsSpace(r):
			l.advance(size) // just skip white spaces

		case symbols.IsIdentifierStart(r):
			end := l.index + size
			for end < len(l.source) {
				r, size := utf8.DecodeRuneInString(l.source[end:])
				if !symbols.IsIdentifierPart(r) {
					break
				}
				end += size
			}
			word := l.source[l.index:end]
			l.advance(end - l.index)

			if e, ok := l.table.LookupWord(word); ok {
				if e.Terminal == symbols.Comment {
					l.skipLine()
					continue
				}
				return Token{Kind: e.Terminal, Lexeme: word, Text: e.Text, Span: l.span(beginsIdx, beginsPos)}, nil
			}
			return Token{Kind: symbols.Identifier, Lexeme: word, Text: word, Span: l.span(beginsIdx, beginsPos)}, nil

		default:
			if m, ok := l.table.Lookup(l.source, l.index); ok {
				l.advance(m.Length)
				if m.Terminal == symbols.Comment {
					l.skipLine()
					continue
				}
				return Token{Kind: m.Terminal, Lexeme: l.source[beginsIdx:l.index], Text: m.Text, Span: l.span(beginsIdx, beginsPos)}, nil
			}

			switch {
			case '0' <= r && r <= '9':
				return l.consumeNumber()
			case r == '"', r == '\'':
				return l.consumeString(r)
			default:
				return Token{}, l.unrecognizedSymbolError()
			}
		}
	}

	return Token{Kind: symbols.EOF, Span: l.span(l.index, l.pos())}, nil
}

func (l *lexer) skipLine() {
	for l.index != len(l.source) {
		if c := l.source[l.index]; c == '\n' || c == '\r' {
			return
		}
		_, size := utf8.DecodeRuneInString(l.source[l.index:])
		l.advance(size)
	}
}

// consumeDigits reads ASCII digits, each optionally decorated as a keycap emoji
// ("1️⃣" or "1⃣"), and writes the bare digits into b.
func (l *lexer) consumeDigits(b *strings.Builder) int {
	count := 0
	for l.index != len(l.source) {
		c := l.source[l.index]
		if c < '0' || '9' < c {
			break
		}
		b.WriteByte(c)
		l.advance(1)
		count++

		switch {
		case l.peek(0) == symbols.VariationSelector16 && l.peek(utf8.RuneLen(symbols.VariationSelector16)) == combiningEnclosingKey:
			l.advance(utf8.RuneLen(symbols.VariationSelector16) + utf8.RuneLen(combiningEnclosingKey))
		case l.peek(0) == combiningEnclosingKey:
			l.advance(utf8.RuneLen(combiningEnclosingKey))
		}
	}
	return count
}

func (l *lexer) consumeNumber() (Token, error) {
	beginsIdx, beginsPos := l.index, l.pos()
	malformed := func() error {
		if l.index != len(l.source) {
			_, size := utf8.DecodeRuneInString(l.source[l.index:])
			l.advance(size)
		}
		return &types.LexError{
			Text:   l.source[beginsIdx:l.index],
			Reason: "malformed number literal",
			Span:   l.span(beginsIdx, beginsPos),
		}
	}

	var b strings.Builder
	l.consumeDigits(&b)

	if l.peek(0) == '.' {
		b.WriteByte('.')
		l.advance(1)
		if l.consumeDigits(&b) == 0 {
			return Token{}, malformed()
		}
	}

	if c := l.peek(0); c == 'e' || c == 'E' {
		b.WriteByte('e')
		l.advance(1)
		if c := l.peek(0); c == '+' || c == '-' {
			b.WriteRune(c)
			l.advance(1)
		}
		if l.consumeDigits(&b) == 0 {
			return Token{}, malformed()
		}
	}

	if r := l.peek(0); l.index != len(l.source) && (symbols.IsIdentifierPart(r) || r == '.') {
		return Token{}, malformed()
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return Token{}, &types.LexError{
			Text:   l.source[beginsIdx:l.index],
			Reason: "number literal out of range",
			Span:   l.span(beginsIdx, beginsPos),
		}
	}

	return Token{
		Kind:   symbols.NumberLiteral,
		Lexeme: l.source[beginsIdx:l.index],
		Text:   strconv.FormatFloat(v, 'f', -1, 64),
		Span:   l.span(beginsIdx, beginsPos),
	}, nil
}

func (l *lexer) consumeString(quote rune) (Token, error) {
	beginsIdx, beginsPos := l.index, l.pos()
	l.advance(1)

	var b strings.Builder
	for {
		if l.index == len(l.source) {
			return Token{}, &types.LexError{
				Text:   l.source[beginsIdx:l.index],
				Reason: "unterminated string literal",
				Span:   l.span(beginsIdx, beginsPos),
			}
		}

		r, size := utf8.DecodeRuneInString(l.source[l.index:])
		switch r {
		case quote:
			l.advance(size)
			return Token{
				Kind:   symbols.StringLiteral,
				Lexeme: l.source[beginsIdx:l.index],
				Text:   b.String(),
				Span:   l.span(beginsIdx, beginsPos),
			}, nil

		case '\n', '\r':
			return Token{}, &types.LexError{
				Text:   l.source[beginsIdx:l.index],
				Reason: "unterminated string literal",
				Span:   l.span(beginsIdx, beginsPos),
			}

		case '\\':
			escBeginsIdx, escBeginsPos := l.index, l.pos()
			l.advance(size)
			decoded, reason := l.consumeEscape()
			if reason != "" {
				return Token{}, &types.LexError{
					Text:   l.source[escBeginsIdx:l.index],
					Reason: reason,
					Span:   l.span(escBeginsIdx, escBeginsPos),
				}
			}
			b.WriteString(decoded)

		default:
			if r == utf8.RuneError && size == 1 {
				l.advance(1)
				return Token{}, &types.LexError{
					Text:   l.source[l.index-1 : l.index],
					Reason: "invalid UTF-8 sequence",
					Span:   l.span(l.index-1, types.Position{Line: l.line, Column: l.column - 1}),
				}
			}
			b.WriteRune(r)
			l.advance(size)
		}
	}
}

var simpleEscapeMap = map[rune]string{
	'n':  "\n",
	't':  "\t",
	'r':  "\r",
	'b':  "\b",
	'f':  "\f",
	'v':  "\v",
	'0':  "\x00",
	'\\': "\\",
	'"':  "\"",
	'\'': "'",
}

// consumeEscape decodes the escape sequence following a backslash. The reason is empty
// unless the sequence is rejected.
func (l *lexer) consumeEscape() (string, string) {
	const invalidEscape = "invalid escape sequence"
	if l.index == len(l.source) {
		return "", invalidEscape
	}

	r, size := utf8.DecodeRuneInString(l.source[l.index:])
	l.advance(size)
	if s, ok := simpleEscapeMap[r]; ok {
		return s, ""
	}
	if r != 'u' {
		return "", invalidEscape
	}

	cp, ok := l.consumeUnicodeEscape()
	if !ok {
		return "", invalidEscape
	}
	if !utf16.IsSurrogate(cp) {
		return string(cp), ""
	}
	if l.peek(0) == '\\' && l.peek(1) == 'u' {
		saved := *l
		l.advance(2)
		if low, ok := l.consumeUnicodeEscape(); ok {
			if combined := utf16.DecodeRune(cp, low); combined != utf8.RuneError {
				return string(combined), ""
			}
		}
		*l = saved
	}
	// a string holds UTF-8 text, which cannot carry half of a surrogate pair
	return "", "lone surrogate in escape sequence"
}

func (l *lexer) consumeUnicodeEscape() (rune, bool) {
	if l.peek(0) == '{' {
		l.advance(1)
		end := strings.IndexByte(l.source[l.index:], '}')
		if end <= 0 {
			return 0, false
		}
		v, err := strconv.ParseUint(l.source[l.index:l.index+end], 16, 32)
		l.advance(end + 1)
		if err != nil || v > unicode.MaxRune {
			return 0, false
		}
		return rune(v), true
	}

	if l.index+4 > len(l.source) {
		return 0, false
	}
	v, err := strconv.ParseUint(l.source[l.index:l.index+4], 16, 32)
	if err != nil {
		return 0, false
	}
	l.advance(4)
	return rune(v), true
}

// unrecognizedSymbolError reports the code point at the cursor together with the
// modifiers and joined code points that belong to the same emoji.
func (l *lexer) unrecognizedSymbolError() error {
	beginsIdx, beginsPos := l.index, l.pos()
	_, size := utf8.DecodeRuneInString(l.source[l.index:])
	l.advance(size)

	for l.index != len(l.source) {
		r, size := utf8.DecodeRuneInString(l.source[l.index:])
		switch {
		case r == symbols.VariationSelector16, r == combiningEnclosingKey, isEmojiModifier(r), isTagCharacter(r):
			l.advance(size)
		case r == zeroWidthJoiner:
			l.advance(size)
			if l.index != len(l.source) {
				_, size := utf8.DecodeRuneInString(l.source[l.index:])
				l.advance(size)
			}
		default:
			return l.newUnrecognizedSymbolError(beginsIdx, beginsPos)
		}
	}
	return l.newUnrecognizedSymbolError(beginsIdx, beginsPos)
}

func (l *lexer) newUnrecognizedSymbolError(beginsIdx int, beginsPos types.Position) error {
	return &types.LexError{
		Text:   l.source[beginsIdx:l.index],
		Reason: "unrecognized symbol",
		Span:   l.span(beginsIdx, beginsPos),
	}
}

func isEmojiModifier(r rune) bool {
	return 0x1F3FB <= r && r <= 0x1F3FF
}

func isTagCharacter(r rune) bool {
	return 0xE0020 <= r && r <= 0xE007F
}

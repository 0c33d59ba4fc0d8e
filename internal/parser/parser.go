package parser

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/karupanerura/emojiscript/internal/ast"
	"github.com/karupanerura/emojiscript/internal/lexer"
	"github.com/karupanerura/emojiscript/internal/symbols"
	"github.com/karupanerura/emojiscript/internal/types"
	"github.com/samber/lo"
)

const DefaultMaxDepth = 200

var prefixOperatorBindingPowerMap = map[symbols.Terminal]uint8{
	symbols.Not:   8,
	symbols.Minus: 8,
	symbols.Plus:  8,
}

var infixOperatorBindingPowerMap = map[symbols.Terminal]uint8{
	symbols.Assign:       1,
	symbols.PlusAssign:   1,
	symbols.MinusAssign:  1,
	symbols.StarAssign:   1,
	symbols.SlashAssign:  1,
	symbols.Or:           2,
	symbols.And:          3,
	symbols.Equal:        4,
	symbols.NotEqual:     4,
	symbols.Less:         5,
	symbols.LessEqual:    5,
	symbols.Greater:      5,
	symbols.GreaterEqual: 5,
	symbols.Plus:         6,
	symbols.Minus:        6,
	symbols.Star:         7,
	symbols.Slash:        7,
	symbols.Percent:      7,
}

var postfixOperatorBindingPowerMap = map[symbols.Terminal]uint8{
	symbols.LParen:   9,
	symbols.Dot:      9,
	symbols.LBracket: 9,
}

var assignmentOperatorSet = map[symbols.Terminal]bool{
	symbols.Assign:      true,
	symbols.PlusAssign:  true,
	symbols.MinusAssign: true,
	symbols.StarAssign:  true,
	symbols.SlashAssign: true,
}

var logicalOperatorSet = map[symbols.Terminal]bool{
	symbols.And: true,
	symbols.Or:  true,
}

// reservedWords holds JavaScript words that cannot be used as binding or reference
// names in the generated code.
var reservedWords = []string{
	"await", "break", "case", "catch", "class", "const", "continue", "debugger", "default",
	"delete", "do", "else", "enum", "export", "extends", "false", "finally", "for",
	"function", "if", "implements", "import", "in", "instanceof", "interface", "let", "new",
	"null", "package", "private", "protected", "public", "return", "static", "super",
	"switch", "this", "throw", "true", "try", "typeof", "var", "void", "while", "with",
	"yield",
}

var parserDebugLog = false

func init() {
	if v, err := strconv.ParseBool(os.Getenv("EMOJISCRIPT_PARSER_DEBUG")); v && err == nil {
		parserDebugLog = true
	}
}

type Option func(*parser)

// WithMaxDepth bounds the nesting of statements and expressions.
func WithMaxDepth(depth int) Option {
	return func(p *parser) {
		p.maxDepth = depth
	}
}

// WithDebugOutput traces parser decisions and checks the finished tree with ast.Validate.
func WithDebugOutput(debug bool) Option {
	return func(p *parser) {
		p.debug = debug
	}
}

type parser struct {
	source   string
	tokens   []lexer.Token
	index    int
	depth    int
	maxDepth int

	functionDepth int
	loopDepth     int

	// parenthesized keeps the span including the parentheses, which the node itself excludes.
	parenthesized map[ast.Expression]types.Span

	debug bool
}

// ParseSource tokenizes and parses source. A lexical error aborts before parsing starts.
func ParseSource(table *symbols.Table, source string, opts ...Option) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(table, source)
	if err != nil {
		return nil, err
	}
	return Parse(source, tokens, opts...)
}

// IsIncomplete reports whether err was caused by the source ending in the middle of a
// statement, so that appending more text could make it parse.
func IsIncomplete(err error) bool {
	var parseErr *types.ParseError
	return errors.As(err, &parseErr) && parseErr.Terminal == symbols.EOF.String()
}

// Parse builds a program from tokens produced by lexer.Tokenize for source.
func Parse(source string, tokens []lexer.Token, opts ...Option) (*ast.Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != symbols.EOF {
		return nil, fmt.Errorf("token sequence must be terminated by %s", symbols.EOF)
	}

	p := &parser{
		source:   source,
		tokens:   tokens,
		maxDepth: DefaultMaxDepth,
		debug:    parserDebugLog,

		parenthesized: map[ast.Expression]types.Span{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p.parse()
}

func (p *parser) parse() (*ast.Program, error) {
	if p.debug {
		pp.Println(p.source)
		pp.Println(p.tokens)
	}

	var body []ast.Statement
	for !p.check(symbols.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			if p.debug {
				log.Println("parse error: ", err)
			}
			return nil, err
		}
		body = append(body, stmt)
	}

	eof := p.peek()
	span := types.Span{
		Start: 0,
		End:   eof.Span.End,
		Loc: types.SourceLocation{
			Start: types.Position{Line: 1, Column: 0},
			End:   eof.Span.Loc.End,
		},
	}
	program, err := ast.NewProgram(body, span)
	if err != nil {
		return nil, err
	}

	if p.debug {
		pp.Println(program)

		nodes := 0
		ast.Walk(program, func(ast.Node) bool {
			nodes++
			return true
		})
		log.Println("parsed", nodes, "nodes")

		if err := ast.Validate(program); err != nil {
			return nil, fmt.Errorf("parser produced a malformed tree: %w", err)
		}
	}
	return program, nil
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.index]
}

func (p *parser) check(kind symbols.Terminal) bool {
	return p.peek().Kind == kind
}

func (p *parser) advance() lexer.Token {
	tok := p.tokens[p.index]
	if tok.Kind != symbols.EOF {
		p.index++
	}
	return tok
}

func (p *parser) expect(kind symbols.Terminal, production string) (lexer.Token, error) {
	if !p.check(kind) {
		return lexer.Token{}, p.createUnexpectedTokenError(p.peek(), production, kind.String())
	}
	return p.advance(), nil
}

// outerRange is the range an enclosing node starts or ends at.
func (p *parser) outerRange(expr ast.Expression) types.Span {
	if span, ok := p.parenthesized[expr]; ok {
		return span
	}
	return expr.Range()
}

func (p *parser) enter(production string) error {
	p.depth++
	if p.depth > p.maxDepth {
		if p.debug {
			log.Println("depth limit exceeded in", production)
		}
		return &types.LimitError{Limit: p.maxDepth, Span: p.peek().Span}
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) createUnexpectedTokenError(tok lexer.Token, production string, expected ...string) error {
	return &types.ParseError{
		Lexeme:     tok.Lexeme,
		Terminal:   tok.Kind.String(),
		Production: production,
		Expected:   strings.Join(expected, " or "),
		Span:       tok.Span,
	}
}

func (p *parser) createMisplacedTokenError(tok lexer.Token, production, message string) error {
	return &types.ParseError{
		Lexeme:     tok.Lexeme,
		Terminal:   tok.Kind.String(),
		Production: production,
		Message:    message,
		Span:       tok.Span,
	}
}

// wrapBuilderError attributes an AST construction failure to the token that produced it.
func (p *parser) wrapBuilderError(err error, tok lexer.Token, production string) error {
	return &types.ParseError{
		Lexeme:     tok.Lexeme,
		Terminal:   tok.Kind.String(),
		Production: production,
		Message:    err.Error(),
		Span:       tok.Span,
	}
}

func (p *parser) parseIdentifier(production string) (*ast.Identifier, error) {
	tok, err := p.expect(symbols.Identifier, production)
	if err != nil {
		return nil, err
	}
	if lo.Contains(reservedWords, tok.Text) {
		return nil, p.createMisplacedTokenError(tok, production, fmt.Sprintf("%q is a reserved word", tok.Text))
	}
	ident, err := ast.NewIdentifier(tok.Text, tok.Span)
	if err != nil {
		return nil, p.wrapBuilderError(err, tok, production)
	}
	return ident, nil
}

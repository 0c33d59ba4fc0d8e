// Package codegen turns an ESTree syntax tree back into JavaScript source text.
package codegen

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/karupanerura/emojiscript/internal/ast"
)

// ErrUnsupportedNode is wrapped when the tree holds a node the generator cannot print.
var ErrUnsupportedNode = errors.New("unsupported node")

const DefaultIndent = "    "

type precedence uint8

const (
	sequencePrecedence precedence = iota
	assignmentPrecedence
	_ // conditional
	logicalOrPrecedence
	logicalAndPrecedence
	_ // bitwise or
	_ // bitwise xor
	_ // bitwise and
	equalityPrecedence
	relationalPrecedence
	_ // bitwise shift
	additivePrecedence
	multiplicativePrecedence
	_ // exponentiation
	unaryPrecedence
	_ // postfix
	_ // new
	callPrecedence
	_ // new with arguments
	memberPrecedence
	primaryPrecedence
)

var binaryPrecedenceMap = map[string]precedence{
	"||":  logicalOrPrecedence,
	"&&":  logicalAndPrecedence,
	"==":  equalityPrecedence,
	"!=":  equalityPrecedence,
	"===": equalityPrecedence,
	"!==": equalityPrecedence,
	"<":   relationalPrecedence,
	"<=":  relationalPrecedence,
	">":   relationalPrecedence,
	">=":  relationalPrecedence,
	"+":   additivePrecedence,
	"-":   additivePrecedence,
	"*":   multiplicativePrecedence,
	"/":   multiplicativePrecedence,
	"%":   multiplicativePrecedence,
}

type Option func(*generator)

// WithIndent sets the string used for one level of indentation.
func WithIndent(indent string) Option {
	return func(g *generator) {
		g.indent = indent
	}
}

type generator struct {
	buf    strings.Builder
	indent string
	level  int
}

// Generate prints node as JavaScript. node is usually an *ast.Program, but any statement
// or expression is accepted.
func Generate(node ast.Node, opts ...Option) (string, error) {
	g := &generator{indent: DefaultIndent}
	for _, opt := range opts {
		opt(g)
	}

	switch n := node.(type) {
	case *ast.Program:
		if err := g.program(n); err != nil {
			return "", err
		}
	case ast.Statement:
		if err := g.statement(n); err != nil {
			return "", err
		}
	case ast.Expression:
		text, err := g.expression(n, sequencePrecedence)
		if err != nil {
			return "", err
		}
		g.buf.WriteString(text)
	default:
		return "", unsupportedNodeError(node)
	}
	return g.buf.String(), nil
}

func unsupportedNodeError(node ast.Node) error {
	if node == nil {
		return fmt.Errorf("%w: <nil>", ErrUnsupportedNode)
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedNode, node)
}

func (g *generator) newline() {
	g.buf.WriteByte('\n')
	for i := 0; i < g.level; i++ {
		g.buf.WriteString(g.indent)
	}
}

func (g *generator) program(p *ast.Program) error {
	for i, stmt := range p.Body {
		if i != 0 {
			g.newline()
		}
		if err := g.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		return g.functionDeclaration(s)
	case *ast.VariableDeclaration:
		if err := g.variableDeclaration(s); err != nil {
			return err
		}
		g.buf.WriteByte(';')
		return nil
	case *ast.BlockStatement:
		return g.block(s.Body)
	case *ast.EmptyStatement:
		g.buf.WriteByte(';')
		return nil
	case *ast.IfStatement:
		return g.ifStatement(s)
	case *ast.WhileStatement:
		test, err := g.expression(s.Test, sequencePrecedence)
		if err != nil {
			return err
		}
		g.buf.WriteString("while (" + test + ")")
		return g.body(s.Body)
	case *ast.ForStatement:
		return g.forStatement(s)
	case *ast.ReturnStatement:
		if s.Argument == nil {
			g.buf.WriteString("return;")
			return nil
		}
		argument, err := g.expression(s.Argument, sequencePrecedence)
		if err != nil {
			return err
		}
		g.buf.WriteString("return " + argument + ";")
		return nil
	case *ast.BreakStatement:
		g.buf.WriteString("break" + label(s.Label) + ";")
		return nil
	case *ast.ContinueStatement:
		g.buf.WriteString("continue" + label(s.Label) + ";")
		return nil
	case *ast.ExpressionStatement:
		expr, err := g.expression(s.Expression, sequencePrecedence)
		if err != nil {
			return err
		}
		g.buf.WriteString(expr + ";")
		return nil
	default:
		return unsupportedNodeError(stmt)
	}
}

func label(id *ast.Identifier) string {
	if id == nil {
		return ""
	}
	return " " + id.Name
}

func (g *generator) functionDeclaration(f *ast.FunctionDeclaration) error {
	params := make([]string, len(f.Params))
	for i, param := range f.Params {
		params[i] = param.Name
	}
	g.buf.WriteString("function " + f.ID.Name + "(" + strings.Join(params, ", ") + ") ")
	return g.block(f.Body.Body)
}

// variableDeclaration writes a declaration without the trailing semicolon.
func (g *generator) variableDeclaration(d *ast.VariableDeclaration) error {
	declarators := make([]string, len(d.Declarations))
	for i, decl := range d.Declarations {
		declarators[i] = decl.ID.Name
		if decl.Init == nil {
			continue
		}
		init, err := g.expression(decl.Init, assignmentPrecedence)
		if err != nil {
			return err
		}
		declarators[i] += " = " + init
	}
	g.buf.WriteString(d.Kind + " " + strings.Join(declarators, ", "))
	return nil
}

func (g *generator) block(body []ast.Statement) error {
	g.buf.WriteByte('{')
	g.level++
	for _, stmt := range body {
		g.newline()
		if err := g.statement(stmt); err != nil {
			return err
		}
	}
	g.level--
	g.newline()
	g.buf.WriteByte('}')
	return nil
}

// body writes the body of a compound statement after its head.
func (g *generator) body(stmt ast.Statement) error {
	if block, ok := stmt.(*ast.BlockStatement); ok {
		g.buf.WriteByte(' ')
		return g.block(block.Body)
	}

	g.level++
	g.newline()
	err := g.statement(stmt)
	g.level--
	return err
}

func (g *generator) ifStatement(s *ast.IfStatement) error {
	test, err := g.expression(s.Test, sequencePrecedence)
	if err != nil {
		return err
	}
	g.buf.WriteString("if (" + test + ")")

	if s.Alternate == nil {
		return g.body(s.Consequent)
	}

	// braces keep the else attached to this if
	g.buf.WriteByte(' ')
	if block, ok := s.Consequent.(*ast.BlockStatement); ok {
		err = g.block(block.Body)
	} else {
		err = g.block([]ast.Statement{s.Consequent})
	}
	if err != nil {
		return err
	}

	g.buf.WriteString(" else")
	if elseIf, ok := s.Alternate.(*ast.IfStatement); ok {
		g.buf.WriteByte(' ')
		return g.ifStatement(elseIf)
	}
	return g.body(s.Alternate)
}

func (g *generator) forStatement(s *ast.ForStatement) error {
	g.buf.WriteString("for (")
	switch init := s.Init.(type) {
	case nil:
	case *ast.VariableDeclaration:
		if err := g.variableDeclaration(init); err != nil {
			return err
		}
	case ast.Expression:
		text, err := g.expression(init, sequencePrecedence)
		if err != nil {
			return err
		}
		g.buf.WriteString(text)
	default:
		return unsupportedNodeError(init)
	}
	g.buf.WriteByte(';')

	if s.Test != nil {
		test, err := g.expression(s.Test, sequencePrecedence)
		if err != nil {
			return err
		}
		g.buf.WriteString(" " + test)
	}
	g.buf.WriteByte(';')

	if s.Update != nil {
		update, err := g.expression(s.Update, sequencePrecedence)
		if err != nil {
			return err
		}
		g.buf.WriteString(" " + update)
	}
	g.buf.WriteByte(')')
	return g.body(s.Body)
}

// expression prints e, parenthesized when it binds looser than required.
func (g *generator) expression(e ast.Expression, required precedence) (string, error) {
	text, actual, err := g.bareExpression(e)
	if err != nil {
		return "", err
	}
	if actual < required {
		return "(" + text + ")", nil
	}
	return text, nil
}

func (g *generator) bareExpression(e ast.Expression) (string, precedence, error) {
	switch x := e.(type) {
	case *ast.AssignmentExpression:
		left, err := g.expression(x.Left, callPrecedence)
		if err != nil {
			return "", 0, err
		}
		right, err := g.expression(x.Right, assignmentPrecedence)
		if err != nil {
			return "", 0, err
		}
		return left + " " + x.Operator + " " + right, assignmentPrecedence, nil

	case *ast.BinaryExpression:
		return g.binary(x.Operator, x.Left, x.Right)

	case *ast.LogicalExpression:
		return g.binary(x.Operator, x.Left, x.Right)

	case *ast.UnaryExpression:
		argument, err := g.expression(x.Argument, unaryPrecedence)
		if err != nil {
			return "", 0, err
		}
		// keep "- -x" from turning into a decrement
		if x.Operator != "!" && strings.HasPrefix(argument, x.Operator) {
			return x.Operator + " " + argument, unaryPrecedence, nil
		}
		return x.Operator + argument, unaryPrecedence, nil

	case *ast.CallExpression:
		callee, err := g.expression(x.Callee, callPrecedence)
		if err != nil {
			return "", 0, err
		}
		args, err := g.expressionList(x.Arguments)
		if err != nil {
			return "", 0, err
		}
		return callee + "(" + args + ")", callPrecedence, nil

	case *ast.MemberExpression:
		object, err := g.expression(x.Object, callPrecedence)
		if err != nil {
			return "", 0, err
		}
		if x.Computed {
			property, err := g.expression(x.Property, sequencePrecedence)
			if err != nil {
				return "", 0, err
			}
			return object + "[" + property + "]", memberPrecedence, nil
		}

		property, ok := x.Property.(*ast.Identifier)
		if !ok {
			return "", 0, unsupportedNodeError(x.Property)
		}
		// "1.x" would be read as a malformed number
		if lit, ok := x.Object.(*ast.Literal); ok {
			if _, isNumber := lit.Value.(float64); isNumber && !strings.HasPrefix(object, "(") {
				object = "(" + object + ")"
			}
		}
		return object + "." + property.Name, memberPrecedence, nil

	case *ast.ArrayExpression:
		elements, err := g.expressionList(x.Elements)
		if err != nil {
			return "", 0, err
		}
		return "[" + elements + "]", primaryPrecedence, nil

	case *ast.Identifier:
		return x.Name, primaryPrecedence, nil

	case *ast.Literal:
		return literal(x)

	default:
		return "", 0, unsupportedNodeError(e)
	}
}

// binary prints a left associative binary or logical operation.
func (g *generator) binary(operator string, l, r ast.Expression) (string, precedence, error) {
	prec, ok := binaryPrecedenceMap[operator]
	if !ok {
		return "", 0, fmt.Errorf("%w: operator %q", ErrUnsupportedNode, operator)
	}
	left, err := g.expression(l, prec)
	if err != nil {
		return "", 0, err
	}
	right, err := g.expression(r, prec+1)
	if err != nil {
		return "", 0, err
	}
	return left + " " + operator + " " + right, prec, nil
}

func (g *generator) expressionList(list []ast.Expression) (string, error) {
	texts := make([]string, len(list))
	for i, e := range list {
		text, err := g.expression(e, assignmentPrecedence)
		if err != nil {
			return "", err
		}
		texts[i] = text
	}
	return strings.Join(texts, ", "), nil
}

func literal(lit *ast.Literal) (string, precedence, error) {
	switch v := lit.Value.(type) {
	case nil:
		return "null", primaryPrecedence, nil
	case bool:
		return strconv.FormatBool(v), primaryPrecedence, nil
	case float64:
		text := formatNumber(v)
		if strings.HasPrefix(text, "-") {
			return text, unaryPrecedence, nil
		}
		return text, primaryPrecedence, nil
	case string:
		return quote(v), primaryPrecedence, nil
	default:
		return "", 0, fmt.Errorf("%w: literal of %T", ErrUnsupportedNode, v)
	}
}

func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	abs := math.Abs(v)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// quote returns s as a double quoted JavaScript string literal.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			if r < 0x20 || r == 0x7F {
				fmt.Fprintf(&b, `\x%02X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

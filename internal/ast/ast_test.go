package ast_test

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/emojiscript/internal/ast"
	"github.com/karupanerura/emojiscript/internal/types"
)

var zero types.Span

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ident(name string) *ast.Identifier {
	return must(ast.NewIdentifier(name, zero))
}

func number(v float64) *ast.Literal {
	return must(ast.NewLiteral(v, "", zero))
}

func TestConstructorError(t *testing.T) {
	t.Parallel()

	var nilIdent *ast.Identifier
	for _, tt := range []struct {
		name  string
		build func() error
	}{
		{
			name: "BinaryUnknownOperator",
			build: func() error {
				_, err := ast.NewBinaryExpression("**", ident("a"), ident("b"), zero)
				return err
			},
		},
		{
			name: "BinaryTypedNilOperand",
			build: func() error {
				_, err := ast.NewBinaryExpression("+", nilIdent, ident("b"), zero)
				return err
			},
		},
		{
			name: "LogicalWithBinaryOperator",
			build: func() error {
				_, err := ast.NewLogicalExpression("+", ident("a"), ident("b"), zero)
				return err
			},
		},
		{
			name: "AssignToLiteral",
			build: func() error {
				_, err := ast.NewAssignmentExpression("=", number(1), ident("b"), zero)
				return err
			},
		},
		{
			name: "ConstWithoutInit",
			build: func() error {
				d := must(ast.NewVariableDeclarator(ident("a"), nil, zero))
				_, err := ast.NewVariableDeclaration("const", []*ast.VariableDeclarator{d}, zero)
				return err
			},
		},
		{
			name: "UnknownDeclarationKind",
			build: func() error {
				d := must(ast.NewVariableDeclarator(ident("a"), nil, zero))
				_, err := ast.NewVariableDeclaration("auto", []*ast.VariableDeclarator{d}, zero)
				return err
			},
		},
		{
			name: "NoDeclarators",
			build: func() error {
				_, err := ast.NewVariableDeclaration("var", nil, zero)
				return err
			},
		},
		{
			name: "ForInitStatement",
			build: func() error {
				_, err := ast.NewForStatement(ast.NewBreakStatement(zero), nil, nil, ast.NewEmptyStatement(zero), zero)
				return err
			},
		},
		{
			name: "NonComputedLiteralProperty",
			build: func() error {
				_, err := ast.NewMemberExpression(ident("a"), number(0), false, zero)
				return err
			},
		},
		{
			name: "NilArgument",
			build: func() error {
				_, err := ast.NewCallExpression(ident("f"), []ast.Expression{ident("a"), nil}, zero)
				return err
			},
		},
		{
			name: "EmptyIdentifier",
			build: func() error {
				_, err := ast.NewIdentifier("", zero)
				return err
			},
		},
		{
			name: "UnsupportedLiteral",
			build: func() error {
				_, err := ast.NewLiteral(1, "1", zero)
				return err
			},
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.build()
			if !errors.Is(err, ast.ErrInvalidNode) {
				t.Errorf("expected ErrInvalidNode but got %v", err)
			}
		})
	}
}

func TestConstructorNormalizesOptionalChildren(t *testing.T) {
	t.Parallel()

	var nilExpr *ast.Identifier
	ret := ast.NewReturnStatement(nilExpr, zero)
	if ret.Argument != nil {
		t.Errorf("typed nil argument must be normalized: %#v", ret.Argument)
	}

	program := must(ast.NewProgram(nil, zero))
	if program.Body == nil || program.SourceType != "script" {
		t.Errorf("unexpected program: %+v", program)
	}
}

func newSampleProgram() *ast.Program {
	// var x = 1 + 2; console.log(x);
	decl := must(ast.NewVariableDeclaration("var", []*ast.VariableDeclarator{
		must(ast.NewVariableDeclarator(ident("x"), must(ast.NewBinaryExpression("+", number(1), number(2), zero)), zero)),
	}, zero))
	output := must(ast.NewExpressionStatement(must(ast.NewCallExpression(
		must(ast.NewMemberExpression(ident("console"), ident("log"), false, zero)),
		[]ast.Expression{ident("x")},
		zero,
	)), zero))
	return must(ast.NewProgram([]ast.Statement{decl, output}, zero))
}

func TestConstructorIdempotent(t *testing.T) {
	t.Parallel()

	build := func() *ast.Program { return newSampleProgram() }
	if diff := cmp.Diff(build(), build()); diff != "" {
		t.Errorf("(-first, +second)\n%s", diff)
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()

	var visited []string
	ast.Walk(newSampleProgram(), func(n ast.Node) bool {
		name := string(n.NodeType())
		if id, ok := n.(*ast.Identifier); ok {
			name += ":" + id.Name
		}
		visited = append(visited, name)
		return n.NodeType() != ast.BinaryExpressionType
	})

	expected := []string{
		"Program",
		"VariableDeclaration",
		"VariableDeclarator",
		"Identifier:x",
		"BinaryExpression",
		"ExpressionStatement",
		"CallExpression",
		"MemberExpression",
		"Identifier:console",
		"Identifier:log",
		"Identifier:x",
	}
	if diff := cmp.Diff(expected, visited); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	shared := ident("x")
	for _, tt := range []struct {
		name        string
		root        func() ast.Node
		expectToErr bool
	}{
		{
			name: "Valid",
			root: func() ast.Node { return newSampleProgram() },
		},
		{
			name: "NotProgram",
			root: func() ast.Node {
				return ident("x")
			},
			expectToErr: true,
		},
		{
			name: "MissingRequiredChild",
			root: func() ast.Node {
				stmt := must(ast.NewExpressionStatement(ident("x"), zero))
				stmt.Expression = nil
				return must(ast.NewProgram([]ast.Statement{stmt}, zero))
			},
			expectToErr: true,
		},
		{
			name: "SharedNode",
			root: func() ast.Node {
				bin := must(ast.NewBinaryExpression("+", shared, shared, zero))
				return must(ast.NewProgram([]ast.Statement{must(ast.NewExpressionStatement(bin, zero))}, zero))
			},
			expectToErr: true,
		},
		{
			name: "NestedProgram",
			root: func() ast.Node {
				loop := must(ast.NewForStatement(nil, nil, nil, ast.NewEmptyStatement(zero), zero))
				loop.Init = must(ast.NewProgram(nil, zero))
				return must(ast.NewProgram([]ast.Statement{loop}, zero))
			},
			expectToErr: true,
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ast.Validate(tt.root())
			if tt.expectToErr {
				if !errors.Is(err, ast.ErrInvalidNode) {
					t.Errorf("expected ErrInvalidNode but got %v", err)
				}
				return
			}
			if err != nil {
				t.Error(err)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	t.Parallel()

	span := types.Span{
		Start: 0,
		End:   1,
		Loc: types.SourceLocation{
			Start: types.Position{Line: 1, Column: 0},
			End:   types.Position{Line: 1, Column: 1},
		},
	}
	stmt := must(ast.NewExpressionStatement(must(ast.NewLiteral(true, "👍", span)), span))
	program := must(ast.NewProgram([]ast.Statement{stmt}, span))

	b, err := json.Marshal(program)
	if err != nil {
		t.Fatal(err)
	}
	var actual map[string]any
	if err := json.Unmarshal(b, &actual); err != nil {
		t.Fatal(err)
	}

	loc := map[string]any{
		"start": map[string]any{"line": float64(1), "column": float64(0)},
		"end":   map[string]any{"line": float64(1), "column": float64(1)},
	}
	expected := map[string]any{
		"type":       "Program",
		"start":      float64(0),
		"end":        float64(1),
		"loc":        loc,
		"sourceType": "script",
		"body": []any{
			map[string]any{
				"type":  "ExpressionStatement",
				"start": float64(0),
				"end":   float64(1),
				"loc":   loc,
				"expression": map[string]any{
					"type":  "Literal",
					"start": float64(0),
					"end":   float64(1),
					"loc":   loc,
					"value": true,
					"raw":   "👍",
				},
			},
		},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("(-expected, +actual)\n%s", diff)
	}
}

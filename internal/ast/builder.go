package ast

import (
	"errors"
	"fmt"

	"github.com/karupanerura/emojiscript/internal/types"
)

// ErrInvalidNode is wrapped by every error returned from the constructors.
var ErrInvalidNode = errors.New("invalid node")

var binaryOperatorSet = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "===": true, "!==": true,
	"<": true, "<=": true, ">": true, ">=": true,
}

var logicalOperatorSet = map[string]bool{
	"&&": true, "||": true,
}

var unaryOperatorSet = map[string]bool{
	"-": true, "+": true, "!": true,
}

var assignmentOperatorSet = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
}

var variableKindSet = map[string]bool{
	"var": true, "let": true, "const": true,
}

func invalidNodeError(typ NodeType, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidNode, typ, fmt.Sprintf(format, args...))
}

func requireChild(typ NodeType, field string, child Node) error {
	if isNilNode(child) {
		return invalidNodeError(typ, "%s is required", field)
	}
	return nil
}

func requireChildren[T Node](typ NodeType, field string, children []T) error {
	for i, child := range children {
		if isNilNode(child) {
			return invalidNodeError(typ, "%s[%d] is required", field, i)
		}
	}
	return nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func NewProgram(body []Statement, span types.Span) (*Program, error) {
	if err := requireChildren(ProgramType, "body", body); err != nil {
		return nil, err
	}
	return &Program{
		Base:       Base{Type: ProgramType, Span: span},
		Body:       nonNilSlice(body),
		SourceType: "script",
	}, nil
}

func NewFunctionDeclaration(id *Identifier, params []*Identifier, body *BlockStatement, span types.Span) (*FunctionDeclaration, error) {
	if err := requireChild(FunctionDeclarationType, "id", id); err != nil {
		return nil, err
	}
	if err := requireChildren(FunctionDeclarationType, "params", params); err != nil {
		return nil, err
	}
	if err := requireChild(FunctionDeclarationType, "body", body); err != nil {
		return nil, err
	}
	return &FunctionDeclaration{
		Base:   Base{Type: FunctionDeclarationType, Span: span},
		ID:     id,
		Params: nonNilSlice(params),
		Body:   body,
	}, nil
}

func NewVariableDeclaration(kind string, declarations []*VariableDeclarator, span types.Span) (*VariableDeclaration, error) {
	if !variableKindSet[kind] {
		return nil, invalidNodeError(VariableDeclarationType, "unknown kind %q", kind)
	}
	if len(declarations) == 0 {
		return nil, invalidNodeError(VariableDeclarationType, "at least one declarator is required")
	}
	if err := requireChildren(VariableDeclarationType, "declarations", declarations); err != nil {
		return nil, err
	}
	if kind == "const" {
		for i, d := range declarations {
			if isNilNode(d.Init) {
				return nil, invalidNodeError(VariableDeclarationType, "declarations[%d] of const requires init", i)
			}
		}
	}
	return &VariableDeclaration{
		Base:         Base{Type: VariableDeclarationType, Span: span},
		Declarations: declarations,
		Kind:         kind,
	}, nil
}

// NewVariableDeclarator builds a declarator. init may be nil.
func NewVariableDeclarator(id *Identifier, init Expression, span types.Span) (*VariableDeclarator, error) {
	if err := requireChild(VariableDeclaratorType, "id", id); err != nil {
		return nil, err
	}
	if isNilNode(init) {
		init = nil
	}
	return &VariableDeclarator{
		Base: Base{Type: VariableDeclaratorType, Span: span},
		ID:   id,
		Init: init,
	}, nil
}

func NewBlockStatement(body []Statement, span types.Span) (*BlockStatement, error) {
	if err := requireChildren(BlockStatementType, "body", body); err != nil {
		return nil, err
	}
	return &BlockStatement{
		Base: Base{Type: BlockStatementType, Span: span},
		Body: nonNilSlice(body),
	}, nil
}

func NewEmptyStatement(span types.Span) *EmptyStatement {
	return &EmptyStatement{Base: Base{Type: EmptyStatementType, Span: span}}
}

// NewIfStatement builds an if statement. alternate may be nil.
func NewIfStatement(test Expression, consequent, alternate Statement, span types.Span) (*IfStatement, error) {
	if err := requireChild(IfStatementType, "test", test); err != nil {
		return nil, err
	}
	if err := requireChild(IfStatementType, "consequent", consequent); err != nil {
		return nil, err
	}
	if isNilNode(alternate) {
		alternate = nil
	}
	return &IfStatement{
		Base:       Base{Type: IfStatementType, Span: span},
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}, nil
}

func NewWhileStatement(test Expression, body Statement, span types.Span) (*WhileStatement, error) {
	if err := requireChild(WhileStatementType, "test", test); err != nil {
		return nil, err
	}
	if err := requireChild(WhileStatementType, "body", body); err != nil {
		return nil, err
	}
	return &WhileStatement{
		Base: Base{Type: WhileStatementType, Span: span},
		Test: test,
		Body: body,
	}, nil
}

// NewForStatement builds a for statement. init, test and update may be nil; init must
// otherwise be a *VariableDeclaration or an Expression.
func NewForStatement(init Node, test, update Expression, body Statement, span types.Span) (*ForStatement, error) {
	if isNilNode(init) {
		init = nil
	} else {
		switch init.(type) {
		case *VariableDeclaration, Expression:
			// ok
		default:
			return nil, invalidNodeError(ForStatementType, "init must be a declaration or an expression but got %s", init.NodeType())
		}
	}
	if isNilNode(test) {
		test = nil
	}
	if isNilNode(update) {
		update = nil
	}
	if err := requireChild(ForStatementType, "body", body); err != nil {
		return nil, err
	}
	return &ForStatement{
		Base:   Base{Type: ForStatementType, Span: span},
		Init:   init,
		Test:   test,
		Update: update,
		Body:   body,
	}, nil
}

// NewReturnStatement builds a return statement. argument may be nil.
func NewReturnStatement(argument Expression, span types.Span) *ReturnStatement {
	if isNilNode(argument) {
		argument = nil
	}
	return &ReturnStatement{
		Base:     Base{Type: ReturnStatementType, Span: span},
		Argument: argument,
	}
}

func NewBreakStatement(span types.Span) *BreakStatement {
	return &BreakStatement{Base: Base{Type: BreakStatementType, Span: span}}
}

func NewContinueStatement(span types.Span) *ContinueStatement {
	return &ContinueStatement{Base: Base{Type: ContinueStatementType, Span: span}}
}

func NewExpressionStatement(expression Expression, span types.Span) (*ExpressionStatement, error) {
	if err := requireChild(ExpressionStatementType, "expression", expression); err != nil {
		return nil, err
	}
	return &ExpressionStatement{
		Base:       Base{Type: ExpressionStatementType, Span: span},
		Expression: expression,
	}, nil
}

func NewBinaryExpression(operator string, left, right Expression, span types.Span) (*BinaryExpression, error) {
	if !binaryOperatorSet[operator] {
		return nil, invalidNodeError(BinaryExpressionType, "unknown operator %q", operator)
	}
	if err := requireChild(BinaryExpressionType, "left", left); err != nil {
		return nil, err
	}
	if err := requireChild(BinaryExpressionType, "right", right); err != nil {
		return nil, err
	}
	return &BinaryExpression{
		Base:     Base{Type: BinaryExpressionType, Span: span},
		Operator: operator,
		Left:     left,
		Right:    right,
	}, nil
}

func NewLogicalExpression(operator string, left, right Expression, span types.Span) (*LogicalExpression, error) {
	if !logicalOperatorSet[operator] {
		return nil, invalidNodeError(LogicalExpressionType, "unknown operator %q", operator)
	}
	if err := requireChild(LogicalExpressionType, "left", left); err != nil {
		return nil, err
	}
	if err := requireChild(LogicalExpressionType, "right", right); err != nil {
		return nil, err
	}
	return &LogicalExpression{
		Base:     Base{Type: LogicalExpressionType, Span: span},
		Operator: operator,
		Left:     left,
		Right:    right,
	}, nil
}

func NewUnaryExpression(operator string, argument Expression, span types.Span) (*UnaryExpression, error) {
	if !unaryOperatorSet[operator] {
		return nil, invalidNodeError(UnaryExpressionType, "unknown operator %q", operator)
	}
	if err := requireChild(UnaryExpressionType, "argument", argument); err != nil {
		return nil, err
	}
	return &UnaryExpression{
		Base:     Base{Type: UnaryExpressionType, Span: span},
		Operator: operator,
		Prefix:   true,
		Argument: argument,
	}, nil
}

func NewAssignmentExpression(operator string, left, right Expression, span types.Span) (*AssignmentExpression, error) {
	if !assignmentOperatorSet[operator] {
		return nil, invalidNodeError(AssignmentExpressionType, "unknown operator %q", operator)
	}
	if err := requireChild(AssignmentExpressionType, "left", left); err != nil {
		return nil, err
	}
	if !IsAssignable(left) {
		return nil, invalidNodeError(AssignmentExpressionType, "cannot assign to %s", left.NodeType())
	}
	if err := requireChild(AssignmentExpressionType, "right", right); err != nil {
		return nil, err
	}
	return &AssignmentExpression{
		Base:     Base{Type: AssignmentExpressionType, Span: span},
		Operator: operator,
		Left:     left,
		Right:    right,
	}, nil
}

// IsAssignable reports whether e can be the target of an assignment.
func IsAssignable(e Expression) bool {
	switch e.(type) {
	case *Identifier, *MemberExpression:
		return !isNilNode(e)
	default:
		return false
	}
}

func NewCallExpression(callee Expression, arguments []Expression, span types.Span) (*CallExpression, error) {
	if err := requireChild(CallExpressionType, "callee", callee); err != nil {
		return nil, err
	}
	if err := requireChildren(CallExpressionType, "arguments", arguments); err != nil {
		return nil, err
	}
	return &CallExpression{
		Base:      Base{Type: CallExpressionType, Span: span},
		Callee:    callee,
		Arguments: nonNilSlice(arguments),
	}, nil
}

func NewMemberExpression(object, property Expression, computed bool, span types.Span) (*MemberExpression, error) {
	if err := requireChild(MemberExpressionType, "object", object); err != nil {
		return nil, err
	}
	if err := requireChild(MemberExpressionType, "property", property); err != nil {
		return nil, err
	}
	if _, isIdent := property.(*Identifier); !computed && !isIdent {
		return nil, invalidNodeError(MemberExpressionType, "property of non-computed member must be an Identifier but got %s", property.NodeType())
	}
	return &MemberExpression{
		Base:     Base{Type: MemberExpressionType, Span: span},
		Object:   object,
		Property: property,
		Computed: computed,
	}, nil
}

func NewArrayExpression(elements []Expression, span types.Span) (*ArrayExpression, error) {
	if err := requireChildren(ArrayExpressionType, "elements", elements); err != nil {
		return nil, err
	}
	return &ArrayExpression{
		Base:     Base{Type: ArrayExpressionType, Span: span},
		Elements: nonNilSlice(elements),
	}, nil
}

func NewIdentifier(name string, span types.Span) (*Identifier, error) {
	if name == "" {
		return nil, invalidNodeError(IdentifierType, "name is required")
	}
	return &Identifier{
		Base: Base{Type: IdentifierType, Span: span},
		Name: name,
	}, nil
}

// NewLiteral builds a literal. value must be nil, a bool, a float64 or a string.
func NewLiteral(value any, raw string, span types.Span) (*Literal, error) {
	switch value.(type) {
	case nil, bool, float64, string:
		// ok
	default:
		return nil, invalidNodeError(LiteralType, "unsupported value type %T", value)
	}
	return &Literal{
		Base:  Base{Type: LiteralType, Span: span},
		Value: value,
		Raw:   raw,
	}, nil
}

// Package ast defines an ESTree compatible syntax tree.
//
// Child fields carry an `ast` struct tag: "required" children must be present,
// "optional" children may be nil. Walk and Validate rely on those tags.
package ast

import "github.com/karupanerura/emojiscript/internal/types"

type NodeType string

const (
	ProgramType              NodeType = "Program"
	FunctionDeclarationType  NodeType = "FunctionDeclaration"
	VariableDeclarationType  NodeType = "VariableDeclaration"
	VariableDeclaratorType   NodeType = "VariableDeclarator"
	BlockStatementType       NodeType = "BlockStatement"
	EmptyStatementType       NodeType = "EmptyStatement"
	IfStatementType          NodeType = "IfStatement"
	WhileStatementType       NodeType = "WhileStatement"
	ForStatementType         NodeType = "ForStatement"
	ReturnStatementType      NodeType = "ReturnStatement"
	BreakStatementType       NodeType = "BreakStatement"
	ContinueStatementType    NodeType = "ContinueStatement"
	ExpressionStatementType  NodeType = "ExpressionStatement"
	BinaryExpressionType     NodeType = "BinaryExpression"
	LogicalExpressionType    NodeType = "LogicalExpression"
	UnaryExpressionType      NodeType = "UnaryExpression"
	AssignmentExpressionType NodeType = "AssignmentExpression"
	CallExpressionType       NodeType = "CallExpression"
	MemberExpressionType     NodeType = "MemberExpression"
	ArrayExpressionType      NodeType = "ArrayExpression"
	IdentifierType           NodeType = "Identifier"
	LiteralType              NodeType = "Literal"
)

type Node interface {
	NodeType() NodeType
	Range() types.Span
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Base holds the properties shared by every node.
type Base struct {
	Type NodeType `json:"type"`
	types.Span
}

func (b Base) NodeType() NodeType {
	return b.Type
}

type Program struct {
	Base
	Body       []Statement `json:"body" ast:"required"`
	SourceType string      `json:"sourceType"`
}

type FunctionDeclaration struct {
	Base
	ID         *Identifier     `json:"id" ast:"required"`
	Params     []*Identifier   `json:"params" ast:"required"`
	Body       *BlockStatement `json:"body" ast:"required"`
	Generator  bool            `json:"generator"`
	Async      bool            `json:"async"`
	Expression bool            `json:"expression"`
}

type VariableDeclaration struct {
	Base
	Declarations []*VariableDeclarator `json:"declarations" ast:"required"`
	Kind         string                `json:"kind"`
}

type VariableDeclarator struct {
	Base
	ID   *Identifier `json:"id" ast:"required"`
	Init Expression  `json:"init" ast:"optional"`
}

type BlockStatement struct {
	Base
	Body []Statement `json:"body" ast:"required"`
}

type EmptyStatement struct {
	Base
}

type IfStatement struct {
	Base
	Test       Expression `json:"test" ast:"required"`
	Consequent Statement  `json:"consequent" ast:"required"`
	Alternate  Statement  `json:"alternate" ast:"optional"`
}

type WhileStatement struct {
	Base
	Test Expression `json:"test" ast:"required"`
	Body Statement  `json:"body" ast:"required"`
}

type ForStatement struct {
	Base
	// Init is a *VariableDeclaration, an Expression or nil.
	Init   Node       `json:"init" ast:"optional"`
	Test   Expression `json:"test" ast:"optional"`
	Update Expression `json:"update" ast:"optional"`
	Body   Statement  `json:"body" ast:"required"`
}

type ReturnStatement struct {
	Base
	Argument Expression `json:"argument" ast:"optional"`
}

type BreakStatement struct {
	Base
	Label *Identifier `json:"label" ast:"optional"`
}

type ContinueStatement struct {
	Base
	Label *Identifier `json:"label" ast:"optional"`
}

type ExpressionStatement struct {
	Base
	Expression Expression `json:"expression" ast:"required"`
}

type BinaryExpression struct {
	Base
	Operator string     `json:"operator"`
	Left     Expression `json:"left" ast:"required"`
	Right    Expression `json:"right" ast:"required"`
}

type LogicalExpression struct {
	Base
	Operator string     `json:"operator"`
	Left     Expression `json:"left" ast:"required"`
	Right    Expression `json:"right" ast:"required"`
}

type UnaryExpression struct {
	Base
	Operator string     `json:"operator"`
	Prefix   bool       `json:"prefix"`
	Argument Expression `json:"argument" ast:"required"`
}

type AssignmentExpression struct {
	Base
	Operator string     `json:"operator"`
	Left     Expression `json:"left" ast:"required"`
	Right    Expression `json:"right" ast:"required"`
}

type CallExpression struct {
	Base
	Callee    Expression   `json:"callee" ast:"required"`
	Arguments []Expression `json:"arguments" ast:"required"`
	Optional  bool         `json:"optional"`
}

type MemberExpression struct {
	Base
	Object   Expression `json:"object" ast:"required"`
	Property Expression `json:"property" ast:"required"`
	Computed bool       `json:"computed"`
	Optional bool       `json:"optional"`
}

type ArrayExpression struct {
	Base
	Elements []Expression `json:"elements" ast:"required"`
}

type Identifier struct {
	Base
	Name string `json:"name"`
}

// Literal holds nil, a bool, a float64 or a string.
type Literal struct {
	Base
	Value any    `json:"value"`
	Raw   string `json:"raw"`
}

func (*FunctionDeclaration) statementNode() {}
func (*VariableDeclaration) statementNode() {}
func (*BlockStatement) statementNode()      {}
func (*EmptyStatement) statementNode()      {}
func (*IfStatement) statementNode()         {}
func (*WhileStatement) statementNode()      {}
func (*ForStatement) statementNode()        {}
func (*ReturnStatement) statementNode()     {}
func (*BreakStatement) statementNode()      {}
func (*ContinueStatement) statementNode()   {}
func (*ExpressionStatement) statementNode() {}

func (*BinaryExpression) expressionNode()     {}
func (*LogicalExpression) expressionNode()    {}
func (*UnaryExpression) expressionNode()      {}
func (*AssignmentExpression) expressionNode() {}
func (*CallExpression) expressionNode()       {}
func (*MemberExpression) expressionNode()     {}
func (*ArrayExpression) expressionNode()      {}
func (*Identifier) expressionNode()           {}
func (*Literal) expressionNode()              {}

package parser

import (
	"log"

	"github.com/karupanerura/emojiscript/internal/ast"
	"github.com/karupanerura/emojiscript/internal/lexer"
	"github.com/karupanerura/emojiscript/internal/symbols"
)

func (p *parser) parseStatement() (ast.Statement, error) {
	if err := p.enter("Statement"); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.peek()
	if p.debug {
		log.Println("statement: ", tok)
	}

	switch tok.Kind {
	case symbols.Var, symbols.Let, symbols.Const:
		return p.parseVariableStatement()
	case symbols.Function:
		return p.parseFunctionDeclaration()
	case symbols.If:
		return p.parseIfStatement()
	case symbols.While:
		return p.parseWhileStatement()
	case symbols.For:
		return p.parseForStatement()
	case symbols.Return:
		return p.parseReturnStatement()
	case symbols.Break, symbols.Continue:
		return p.parseJumpStatement()
	case symbols.Print:
		return p.parsePrintStatement()
	case symbols.LBrace:
		return p.parseBlockStatement()
	case symbols.Semicolon:
		p.advance()
		return ast.NewEmptyStatement(tok.Span), nil
	case symbols.Else, symbols.EOF:
		return nil, p.createUnexpectedTokenError(tok, "Statement", "statement")
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseVariableStatement() (ast.Statement, error) {
	kindTok := p.peek()
	declarators, err := p.parseVariableDeclarators()
	if err != nil {
		return nil, err
	}

	semi, err := p.expect(symbols.Semicolon, "VariableDeclaration")
	if err != nil {
		return nil, err
	}

	decl, err := ast.NewVariableDeclaration(kindTok.Text, declarators, kindTok.Span.To(semi.Span))
	if err != nil {
		return nil, p.wrapBuilderError(err, kindTok, "VariableDeclaration")
	}
	return decl, nil
}

// parseVariableDeclarators parses `kind declarator (, declarator)*` without the terminator.
func (p *parser) parseVariableDeclarators() ([]*ast.VariableDeclarator, error) {
	kindTok := p.advance()

	var declarators []*ast.VariableDeclarator
	for {
		id, err := p.parseIdentifier("VariableDeclarator")
		if err != nil {
			return nil, err
		}

		var init ast.Expression
		span := id.Span
		if p.check(symbols.Assign) {
			p.advance()
			init, err = p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			span = span.To(p.outerRange(init))
		} else if kindTok.Kind == symbols.Const {
			return nil, p.createUnexpectedTokenError(p.peek(), "VariableDeclarator", symbols.Assign.String())
		}

		declarator, err := ast.NewVariableDeclarator(id, init, span)
		if err != nil {
			return nil, p.wrapBuilderError(err, kindTok, "VariableDeclarator")
		}
		declarators = append(declarators, declarator)

		if !p.check(symbols.Comma) {
			return declarators, nil
		}
		p.advance()
	}
}

func (p *parser) parseFunctionDeclaration() (ast.Statement, error) {
	funcTok := p.advance()

	id, err := p.parseIdentifier("FunctionDeclaration")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(symbols.LParen, "FunctionDeclaration"); err != nil {
		return nil, err
	}
	var params []*ast.Identifier
	if !p.check(symbols.RParen) {
		for {
			param, err := p.parseIdentifier("FormalParameters")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.check(symbols.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(symbols.RParen, "FormalParameters"); err != nil {
		return nil, err
	}

	// loops of the enclosing scope are not visible from the function body
	outerLoopDepth := p.loopDepth
	p.functionDepth++
	p.loopDepth = 0
	body, err := p.parseBlock("FunctionBody")
	p.functionDepth--
	p.loopDepth = outerLoopDepth
	if err != nil {
		return nil, err
	}

	decl, err := ast.NewFunctionDeclaration(id, params, body, funcTok.Span.To(body.Span))
	if err != nil {
		return nil, p.wrapBuilderError(err, funcTok, "FunctionDeclaration")
	}
	return decl, nil
}

func (p *parser) parseBlockStatement() (ast.Statement, error) {
	return p.parseBlock("BlockStatement")
}

func (p *parser) parseBlock(production string) (*ast.BlockStatement, error) {
	open, err := p.expect(symbols.LBrace, production)
	if err != nil {
		return nil, err
	}

	var body []ast.Statement
	for !p.check(symbols.RBrace) {
		if p.check(symbols.EOF) {
			return nil, p.createUnexpectedTokenError(p.peek(), production, symbols.RBrace.String())
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	closing := p.advance()

	block, err := ast.NewBlockStatement(body, open.Span.To(closing.Span))
	if err != nil {
		return nil, p.wrapBuilderError(err, open, production)
	}
	return block, nil
}

// parseCondition parses `( Expr )`.
func (p *parser) parseCondition(production string) (ast.Expression, error) {
	if _, err := p.expect(symbols.LParen, production); err != nil {
		return nil, err
	}
	test, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(symbols.RParen, production); err != nil {
		return nil, err
	}
	return test, nil
}

type ifClause struct {
	ifTok      lexer.Token
	test       ast.Expression
	consequent ast.Statement
}

// parseIfStatement collects an else-if chain in a loop, so a long chain does not count
// towards the nesting limit.
func (p *parser) parseIfStatement() (ast.Statement, error) {
	var clauses []ifClause
	var alternate ast.Statement
	for {
		ifTok := p.advance()
		test, err := p.parseCondition("IfStatement")
		if err != nil {
			return nil, err
		}
		consequent, err := p.parseEmbeddedStatement("IfStatement")
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, ifClause{ifTok: ifTok, test: test, consequent: consequent})

		// an else always belongs to the nearest if
		if !p.check(symbols.Else) {
			break
		}
		p.advance()
		if p.check(symbols.If) {
			continue
		}
		alternate, err = p.parseEmbeddedStatement("IfStatement")
		if err != nil {
			return nil, err
		}
		break
	}

	for i := len(clauses) - 1; i >= 0; i-- {
		c := clauses[i]
		end := c.consequent.Range()
		if alternate != nil {
			end = alternate.Range()
		}
		stmt, err := ast.NewIfStatement(c.test, c.consequent, alternate, c.ifTok.Span.To(end))
		if err != nil {
			return nil, p.wrapBuilderError(err, c.ifTok, "IfStatement")
		}
		alternate = stmt
	}
	return alternate, nil
}

// parseEmbeddedStatement parses the body of a compound statement, where declarations
// other than var are not allowed.
func (p *parser) parseEmbeddedStatement(production string) (ast.Statement, error) {
	switch tok := p.peek(); tok.Kind {
	case symbols.Let, symbols.Const, symbols.Function:
		return nil, p.createMisplacedTokenError(tok, production, tok.Text+" declaration must be wrapped in a block here")
	}
	return p.parseStatement()
}

func (p *parser) parseLoopBody(production string) (ast.Statement, error) {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.parseEmbeddedStatement(production)
}

func (p *parser) parseWhileStatement() (ast.Statement, error) {
	whileTok := p.advance()

	test, err := p.parseCondition("WhileStatement")
	if err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody("WhileStatement")
	if err != nil {
		return nil, err
	}

	stmt, err := ast.NewWhileStatement(test, body, whileTok.Span.To(body.Range()))
	if err != nil {
		return nil, p.wrapBuilderError(err, whileTok, "WhileStatement")
	}
	return stmt, nil
}

func (p *parser) parseForStatement() (ast.Statement, error) {
	forTok := p.advance()
	if _, err := p.expect(symbols.LParen, "ForStatement"); err != nil {
		return nil, err
	}

	var init ast.Node
	switch p.peek().Kind {
	case symbols.Semicolon:
		// no init
	case symbols.Var, symbols.Let, symbols.Const:
		kindTok := p.peek()
		declarators, err := p.parseVariableDeclarators()
		if err != nil {
			return nil, err
		}
		last := declarators[len(declarators)-1]
		decl, err := ast.NewVariableDeclaration(kindTok.Text, declarators, kindTok.Span.To(last.Span))
		if err != nil {
			return nil, p.wrapBuilderError(err, kindTok, "ForStatement")
		}
		init = decl
	default:
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		init = expr
	}
	if _, err := p.expect(symbols.Semicolon, "ForStatement"); err != nil {
		return nil, err
	}

	var test ast.Expression
	if !p.check(symbols.Semicolon) {
		var err error
		test, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(symbols.Semicolon, "ForStatement"); err != nil {
		return nil, err
	}

	var update ast.Expression
	if !p.check(symbols.RParen) {
		var err error
		update, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(symbols.RParen, "ForStatement"); err != nil {
		return nil, err
	}

	body, err := p.parseLoopBody("ForStatement")
	if err != nil {
		return nil, err
	}

	stmt, err := ast.NewForStatement(init, test, update, body, forTok.Span.To(body.Range()))
	if err != nil {
		return nil, p.wrapBuilderError(err, forTok, "ForStatement")
	}
	return stmt, nil
}

func (p *parser) parseReturnStatement() (ast.Statement, error) {
	returnTok := p.advance()
	if p.functionDepth == 0 {
		return nil, p.createMisplacedTokenError(returnTok, "ReturnStatement", "return outside of a function")
	}

	var argument ast.Expression
	if !p.check(symbols.Semicolon) {
		var err error
		argument, err = p.parseExpression(0)
		if err != nil {
			return nil, err
		}
	}
	semi, err := p.expect(symbols.Semicolon, "ReturnStatement")
	if err != nil {
		return nil, err
	}
	return ast.NewReturnStatement(argument, returnTok.Span.To(semi.Span)), nil
}

func (p *parser) parseJumpStatement() (ast.Statement, error) {
	tok := p.advance()

	production := "BreakStatement"
	if tok.Kind == symbols.Continue {
		production = "ContinueStatement"
	}
	if p.loopDepth == 0 {
		return nil, p.createMisplacedTokenError(tok, production, tok.Text+" outside of a loop")
	}

	semi, err := p.expect(symbols.Semicolon, production)
	if err != nil {
		return nil, err
	}
	if tok.Kind == symbols.Continue {
		return ast.NewContinueStatement(tok.Span.To(semi.Span)), nil
	}
	return ast.NewBreakStatement(tok.Span.To(semi.Span)), nil
}

// parsePrintStatement turns `print a, b;` into `console.log(a, b);`.
func (p *parser) parsePrintStatement() (ast.Statement, error) {
	printTok := p.advance()

	var args []ast.Expression
	if !p.check(symbols.Semicolon) {
		for {
			arg, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.check(symbols.Comma) {
				break
			}
			p.advance()
		}
	}
	semi, err := p.expect(symbols.Semicolon, "PrintStatement")
	if err != nil {
		return nil, err
	}

	callee, err := p.consoleLog(printTok)
	if err != nil {
		return nil, err
	}
	callEnd := printTok.Span
	if len(args) != 0 {
		callEnd = p.outerRange(args[len(args)-1])
	}
	call, err := ast.NewCallExpression(callee, args, printTok.Span.To(callEnd))
	if err != nil {
		return nil, p.wrapBuilderError(err, printTok, "PrintStatement")
	}

	stmt, err := ast.NewExpressionStatement(call, printTok.Span.To(semi.Span))
	if err != nil {
		return nil, p.wrapBuilderError(err, printTok, "PrintStatement")
	}
	return stmt, nil
}

// consoleLog builds the `console.log` callee located at the print token.
func (p *parser) consoleLog(tok lexer.Token) (ast.Expression, error) {
	span := tok.Span
	object, err := ast.NewIdentifier("console", span)
	if err != nil {
		return nil, p.wrapBuilderError(err, tok, "PrintStatement")
	}
	property, err := ast.NewIdentifier("log", span)
	if err != nil {
		return nil, p.wrapBuilderError(err, tok, "PrintStatement")
	}
	member, err := ast.NewMemberExpression(object, property, false, span)
	if err != nil {
		return nil, p.wrapBuilderError(err, tok, "PrintStatement")
	}
	return member, nil
}

func (p *parser) parseExpressionStatement() (ast.Statement, error) {
	first := p.peek()
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	semi, err := p.expect(symbols.Semicolon, "ExpressionStatement")
	if err != nil {
		return nil, err
	}

	stmt, err := ast.NewExpressionStatement(expr, first.Span.To(semi.Span))
	if err != nil {
		return nil, p.wrapBuilderError(err, first, "ExpressionStatement")
	}
	return stmt, nil
}

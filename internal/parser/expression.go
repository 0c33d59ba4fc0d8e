package parser

import (
	"log"
	"strconv"

	"github.com/karupanerura/emojiscript/internal/ast"
	"github.com/karupanerura/emojiscript/internal/lexer"
	"github.com/karupanerura/emojiscript/internal/symbols"
)

// parseExpression parses an expression whose infix operators bind at least as tightly
// as minBP.
func (p *parser) parseExpression(minBP uint8) (ast.Expression, error) {
	if err := p.enter("Expression"); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if p.debug {
			log.Println("expression: ", tok, " minBP: ", minBP)
		}

		if bp, ok := postfixOperatorBindingPowerMap[tok.Kind]; ok && bp >= minBP {
			left, err = p.parsePostfix(left)
			if err != nil {
				return nil, err
			}
			continue
		}

		bp, ok := infixOperatorBindingPowerMap[tok.Kind]
		if !ok || bp < minBP {
			return left, nil
		}
		p.advance()

		if assignmentOperatorSet[tok.Kind] {
			if !ast.IsAssignable(left) {
				return nil, p.createMisplacedTokenError(tok, "AssignmentExpression", "invalid assignment target")
			}

			// right associative
			right, err := p.parseExpression(bp)
			if err != nil {
				return nil, err
			}
			left, err = ast.NewAssignmentExpression(tok.Text, left, right, p.outerRange(left).To(p.outerRange(right)))
			if err != nil {
				return nil, p.wrapBuilderError(err, tok, "AssignmentExpression")
			}
			continue
		}

		right, err := p.parseExpression(bp + 1)
		if err != nil {
			return nil, err
		}
		span := p.outerRange(left).To(p.outerRange(right))
		if logicalOperatorSet[tok.Kind] {
			left, err = ast.NewLogicalExpression(tok.Text, left, right, span)
			if err != nil {
				return nil, p.wrapBuilderError(err, tok, "LogicalExpression")
			}
		} else {
			left, err = ast.NewBinaryExpression(tok.Text, left, right, span)
			if err != nil {
				return nil, p.wrapBuilderError(err, tok, "BinaryExpression")
			}
		}
	}
}

func (p *parser) parsePrefix() (ast.Expression, error) {
	tok := p.peek()
	bp, ok := prefixOperatorBindingPowerMap[tok.Kind]
	if !ok {
		return p.parsePrimary()
	}
	p.advance()

	argument, err := p.parseExpression(bp)
	if err != nil {
		return nil, err
	}
	expr, err := ast.NewUnaryExpression(tok.Text, argument, tok.Span.To(p.outerRange(argument)))
	if err != nil {
		return nil, p.wrapBuilderError(err, tok, "UnaryExpression")
	}
	return expr, nil
}

func (p *parser) parsePostfix(left ast.Expression) (ast.Expression, error) {
	tok := p.advance()
	switch tok.Kind {
	case symbols.LParen:
		args, closing, err := p.parseExpressionList(symbols.RParen, "CallExpression")
		if err != nil {
			return nil, err
		}
		expr, err := ast.NewCallExpression(left, args, p.outerRange(left).To(closing.Span))
		if err != nil {
			return nil, p.wrapBuilderError(err, tok, "CallExpression")
		}
		return expr, nil

	case symbols.Dot:
		// property names may be reserved words
		name, err := p.expect(symbols.Identifier, "MemberExpression")
		if err != nil {
			return nil, err
		}
		property, err := ast.NewIdentifier(name.Text, name.Span)
		if err != nil {
			return nil, p.wrapBuilderError(err, name, "MemberExpression")
		}
		expr, err := ast.NewMemberExpression(left, property, false, p.outerRange(left).To(name.Span))
		if err != nil {
			return nil, p.wrapBuilderError(err, tok, "MemberExpression")
		}
		return expr, nil

	case symbols.LBracket:
		property, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		closing, err := p.expect(symbols.RBracket, "MemberExpression")
		if err != nil {
			return nil, err
		}
		expr, err := ast.NewMemberExpression(left, property, true, p.outerRange(left).To(closing.Span))
		if err != nil {
			return nil, p.wrapBuilderError(err, tok, "MemberExpression")
		}
		return expr, nil

	default:
		panic("unreachable: unknown postfix operator " + tok.Kind.String())
	}
}

// parseExpressionList parses `Expr (, Expr)*` up to and including the closing token.
func (p *parser) parseExpressionList(closing symbols.Terminal, production string) ([]ast.Expression, lexer.Token, error) {
	var list []ast.Expression
	if !p.check(closing) {
		for {
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, lexer.Token{}, err
			}
			list = append(list, expr)
			if !p.check(symbols.Comma) {
				break
			}
			p.advance()
		}
	}

	tok, err := p.expect(closing, production)
	if err != nil {
		return nil, lexer.Token{}, err
	}
	return list, tok, nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case symbols.NumberLiteral:
		p.advance()
		value, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.createMisplacedTokenError(tok, "NumericLiteral", err.Error())
		}
		return p.newLiteral(tok, value, tok.Text)

	case symbols.StringLiteral:
		p.advance()
		return p.newLiteral(tok, tok.Text, tok.Lexeme)

	case symbols.BooleanLiteral:
		p.advance()
		return p.newLiteral(tok, tok.Text == "true", tok.Text)

	case symbols.NullLiteral:
		p.advance()
		return p.newLiteral(tok, nil, tok.Text)

	case symbols.Identifier:
		return p.parseIdentifier("PrimaryExpression")

	case symbols.LParen:
		p.advance()
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		closing, err := p.expect(symbols.RParen, "ParenthesizedExpression")
		if err != nil {
			return nil, err
		}
		p.parenthesized[expr] = tok.Span.To(closing.Span)
		return expr, nil

	case symbols.LBracket:
		p.advance()
		elements, closing, err := p.parseExpressionList(symbols.RBracket, "ArrayExpression")
		if err != nil {
			return nil, err
		}
		expr, err := ast.NewArrayExpression(elements, tok.Span.To(closing.Span))
		if err != nil {
			return nil, p.wrapBuilderError(err, tok, "ArrayExpression")
		}
		return expr, nil

	default:
		return nil, p.createUnexpectedTokenError(tok, "Expression", "expression")
	}
}

func (p *parser) newLiteral(tok lexer.Token, value any, raw string) (ast.Expression, error) {
	lit, err := ast.NewLiteral(value, raw, tok.Span)
	if err != nil {
		return nil, p.wrapBuilderError(err, tok, "Literal")
	}
	return lit, nil
}

package query

import (
	"fmt"
	"strconv"
	"strings"
)

// parseOr parses OR expressions (lowest precedence)
func (p *Parser) parseOr() (Expression, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:     left,
			Operator: TokenOr,
			Right:    right,
		}
	}

	return left, nil
}

// parseAnd parses AND expressions (higher precedence than OR)
func (p *Parser) parseAnd() (Expression, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:     left,
			Operator: TokenAnd,
			Right:    right,
		}
	}

	return left, nil
}

// parseNot parses prefix NOT (higher precedence than AND)
func (p *Parser) parseNot() (Expression, error) {
	if p.current().Type == TokenNot {
		p.advance()
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: expr}, nil
	}
	return p.parseComparison()
}

// parseComparison parses comparison expressions, including the special
// predicates IN, LIKE, BETWEEN and IS NULL
func (p *Parser) parseComparison() (Expression, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	// A parenthesis here opens a nested condition unless its matching
	// ')' is followed by an operator, which makes it a grouped value.
	if p.current().Type == TokenLeftParen && !p.parenGroupsValue() {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil
	}

	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	// Special predicates require a plain column on the left
	switch p.current().Type {
	case TokenIn:
		col, err := p.predicateColumn(left, "IN")
		if err != nil {
			return nil, err
		}
		return p.parseInExpr(col)
	case TokenLike:
		col, err := p.predicateColumn(left, "LIKE")
		if err != nil {
			return nil, err
		}
		return p.parseLikeExpr(col)
	case TokenBetween:
		col, err := p.predicateColumn(left, "BETWEEN")
		if err != nil {
			return nil, err
		}
		return p.parseBetweenExpr(col)
	case TokenIs:
		col, err := p.predicateColumn(left, "IS")
		if err != nil {
			return nil, err
		}
		return p.parseIsNullExpr(col)
	case TokenNot:
		// Could be "NOT IN", "NOT LIKE", "NOT BETWEEN"
		col, err := p.predicateColumn(left, "NOT")
		if err != nil {
			return nil, err
		}
		p.advance()
		switch p.current().Type {
		case TokenIn:
			expr, err := p.parseInExpr(col)
			if err != nil {
				return nil, err
			}
			expr.(*InExpr).Negate = true
			return expr, nil
		case TokenLike:
			expr, err := p.parseLikeExpr(col)
			if err != nil {
				return nil, err
			}
			expr.(*LikeExpr).Negate = true
			return expr, nil
		case TokenBetween:
			expr, err := p.parseBetweenExpr(col)
			if err != nil {
				return nil, err
			}
			expr.(*BetweenExpr).Negate = true
			return expr, nil
		default:
			return nil, p.syntaxError("IN, LIKE or BETWEEN after NOT")
		}
	}

	op := p.current().Type
	switch op {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ComparisonExpr{Left: left, Operator: op, Right: right}, nil
	}

	return nil, p.syntaxError("comparison operator")
}

// parenGroupsValue scans ahead from an opening parenthesis and reports
// whether the matching ')' is followed by a comparison or arithmetic
// operator. In that case the parenthesis groups a value expression,
// not a condition.
func (p *Parser) parenGroupsValue() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenLeftParen:
			depth++
		case TokenRightParen:
			depth--
			if depth == 0 {
				if i+1 < len(p.tokens) {
					switch p.tokens[i+1].Type {
					case TokenEqual, TokenNotEqual, TokenLess, TokenGreater,
						TokenLessEqual, TokenGreaterEqual,
						TokenPlus, TokenMinus, TokenStar, TokenSlash:
						return true
					}
				}
				return false
			}
		case TokenEOF:
			return false
		}
	}
	return false
}

// predicateColumn unwraps the left side of a special predicate, which
// must be a plain column reference
func (p *Parser) predicateColumn(left ValueExpr, op string) (ColumnRef, error) {
	col, ok := left.(*ColumnRef)
	if !ok {
		return ColumnRef{}, &SyntaxError{
			Pos:      p.current().Pos,
			Expected: fmt.Sprintf("column reference before %s", op),
			Found:    "expression",
		}
	}
	return *col, nil
}

// parseInExpr parses: IN (value1, value2, ...)
func (p *Parser) parseInExpr(column ColumnRef) (Expression, error) {
	p.advance() // consume IN
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	var values []interface{}
	for {
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	return &InExpr{Column: column, Values: values}, nil
}

// parseLikeExpr parses: LIKE 'pattern'
func (p *Parser) parseLikeExpr(column ColumnRef) (Expression, error) {
	p.advance() // consume LIKE
	tok := p.current()
	if tok.Type != TokenString {
		return nil, p.syntaxError("string literal")
	}
	p.advance()
	return &LikeExpr{Column: column, Pattern: tok.Value}, nil
}

// parseBetweenExpr parses: BETWEEN lower AND upper
func (p *Parser) parseBetweenExpr(column ColumnRef) (Expression, error) {
	p.advance() // consume BETWEEN

	lower, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenAnd); err != nil {
		return nil, err
	}
	upper, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	return &BetweenExpr{Column: column, Lower: lower, Upper: upper}, nil
}

// parseIsNullExpr parses: IS [NOT] NULL
func (p *Parser) parseIsNullExpr(column ColumnRef) (Expression, error) {
	p.advance() // consume IS

	negate := false
	if p.current().Type == TokenNot {
		negate = true
		p.advance()
	}

	if err := p.expect(TokenNull); err != nil {
		return nil, err
	}

	return &IsNullExpr{Column: column, Negate: negate}, nil
}

// parseLiteral parses a literal value for IN lists
func (p *Parser) parseLiteral() (interface{}, error) {
	negative := false
	if p.current().Type == TokenMinus {
		negative = true
		p.advance()
	}

	tok := p.current()
	switch tok.Type {
	case TokenInt:
		p.advance()
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Expected: "integer literal in range", Found: fmt.Sprintf("%q", tok.Value)}
		}
		if negative {
			v = -v
		}
		return v, nil
	case TokenFloat:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Expected: "float literal in range", Found: fmt.Sprintf("%q", tok.Value)}
		}
		if negative {
			v = -v
		}
		return v, nil
	}

	if negative {
		return nil, p.syntaxError("numeric literal after '-'")
	}

	switch tok.Type {
	case TokenString:
		p.advance()
		return tok.Value, nil
	case TokenBool:
		p.advance()
		return strings.EqualFold(tok.Value, "true"), nil
	case TokenNull:
		p.advance()
		return nil, nil
	}

	return nil, p.syntaxError("literal value")
}

// parseAdditive parses + and - (lowest value precedence)
func (p *Parser) parseAdditive() (ValueExpr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op := p.current().Type
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ArithmeticExpr{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseMultiplicative parses * and / (higher precedence than + and -)
func (p *Parser) parseMultiplicative() (ValueExpr, error) {
	left, err := p.parseValuePrimary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenStar || p.current().Type == TokenSlash {
		op := p.current().Type
		p.advance()
		right, err := p.parseValuePrimary()
		if err != nil {
			return nil, err
		}
		left = &ArithmeticExpr{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseValuePrimary parses literals, column references, aggregate
// calls and parenthesized value expressions
func (p *Parser) parseValuePrimary() (ValueExpr, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	tok := p.current()
	switch tok.Type {
	case TokenLeftParen:
		p.advance()
		expr, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenMinus:
		// Unary minus applies to numeric literals only
		p.advance()
		next := p.current()
		switch next.Type {
		case TokenInt:
			p.advance()
			v, err := strconv.ParseInt(next.Value, 10, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: next.Pos, Expected: "integer literal in range", Found: fmt.Sprintf("%q", next.Value)}
			}
			return &LiteralExpr{Value: -v}, nil
		case TokenFloat:
			p.advance()
			v, err := strconv.ParseFloat(next.Value, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: next.Pos, Expected: "float literal in range", Found: fmt.Sprintf("%q", next.Value)}
			}
			return &LiteralExpr{Value: -v}, nil
		}
		return nil, p.syntaxError("numeric literal after '-'")
	case TokenInt:
		p.advance()
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Expected: "integer literal in range", Found: fmt.Sprintf("%q", tok.Value)}
		}
		return &LiteralExpr{Value: v}, nil
	case TokenFloat:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Expected: "float literal in range", Found: fmt.Sprintf("%q", tok.Value)}
		}
		return &LiteralExpr{Value: v}, nil
	case TokenString:
		p.advance()
		return &LiteralExpr{Value: tok.Value}, nil
	case TokenBool:
		p.advance()
		return &LiteralExpr{Value: strings.EqualFold(tok.Value, "true")}, nil
	case TokenNull:
		p.advance()
		return &LiteralExpr{Value: nil}, nil
	case TokenIdent:
		if p.peek().Type == TokenLeftParen && isAggregateFunction(tok.Value) {
			return p.parseAggregateCall()
		}
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		return &col, nil
	}

	return nil, p.syntaxError("value expression")
}

// parseAggregateCall parses: fn(column) or fn(*)
func (p *Parser) parseAggregateCall() (ValueExpr, error) {
	fn := strings.ToLower(p.current().Value)
	p.advance()
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	if p.current().Type == TokenStar {
		p.advance()
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return &AggregateExpr{Function: fn, Star: true}, nil
	}

	col, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return &AggregateExpr{Function: fn, Column: col}, nil
}

// isAggregateFunction reports whether name is a recognized aggregate
func isAggregateFunction(name string) bool {
	switch strings.ToLower(name) {
	case "count", "sum", "avg", "min", "max":
		return true
	}
	return false
}

package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses DQML queries into AST
type Parser struct {
	tokens       []Token
	pos          int
	depthCounter *ExpressionDepthCounter
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:       tokens,
		pos:          0,
		depthCounter: NewExpressionDepthCounter(),
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if p.current().Type != tokType {
		return p.syntaxError(tokType.String())
	}
	p.advance()
	return nil
}

// expectIdent checks that the current token is an identifier and
// returns its value
func (p *Parser) expectIdent() (string, error) {
	tok := p.current()
	if tok.Type != TokenIdent {
		return "", p.syntaxError("identifier")
	}
	if err := ValidateName(tok.Value); err != nil {
		return "", err
	}
	p.advance()
	return tok.Value, nil
}

// syntaxError builds a SyntaxError at the current token
func (p *Parser) syntaxError(expected string) *SyntaxError {
	tok := p.current()
	return &SyntaxError{Pos: tok.Pos, Expected: expected, Found: describeToken(tok)}
}

// describeToken renders a token for error messages
func describeToken(tok Token) string {
	switch tok.Type {
	case TokenIdent:
		return fmt.Sprintf("identifier %q", tok.Value)
	case TokenString:
		return fmt.Sprintf("string literal %q", tok.Value)
	case TokenInt, TokenFloat, TokenBool:
		return fmt.Sprintf("%v %s", tok.Type, tok.Value)
	default:
		return tok.Type.String()
	}
}

// Parse parses a DQML query string into an AST. It fails with a
// LexError or SyntaxError on the first problem it finds and never
// returns a partial query.
func Parse(query string) (*Query, error) {
	// Validate query length
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}

	tokens, err := Tokenize(query)
	if err != nil {
		return nil, err
	}

	// Validate token count
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}

	parser := NewParser(tokens)
	return parser.parseQuery()
}

// parseQuery parses the fixed clause sequence:
//
//	[USE DATABASE name] [SELECT cols] FROM tables [WHERE cond]
//	[GROUP BY cols] [ORDER BY cols] [MINE op] [WITH measures]
//	[DISPLAY AS kind] [;]
//
// Every clause except FROM is optional. A clause appearing out of
// order shows up here as a leftover token and is reported with the
// clauses that would still have been legal.
func (p *Parser) parseQuery() (*Query, error) {
	q := &Query{}

	// USE DATABASE (optional)
	if p.current().Type == TokenUse {
		p.advance()
		if err := p.expect(TokenDatabase); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		q.Database = name
	}

	// SELECT (optional). RELEVANCE TO is the legacy spelling.
	switch p.current().Type {
	case TokenSelect:
		p.advance()
		if err := p.parseSelectList(q); err != nil {
			return nil, err
		}
	case TokenRelevance:
		p.advance()
		if err := p.expect(TokenTo); err != nil {
			return nil, err
		}
		if err := p.parseSelectList(q); err != nil {
			return nil, err
		}
	}

	// FROM (mandatory)
	if err := p.expect(TokenFrom); err != nil {
		return nil, err
	}
	for {
		table, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		q.Tables = append(q.Tables, table)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	clauses := []string{"WHERE", "GROUP BY", "ORDER BY", "MINE", "WITH", "DISPLAY AS"}
	next := 0

	// WHERE (optional)
	if p.current().Type == TokenWhere {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		q.Where = expr
		next = 1
	}

	// GROUP BY (optional)
	if p.current().Type == TokenGroup {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, err
		}
		cols, err := p.parseColumnRefList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = cols
		next = 2
	}

	// ORDER BY (optional)
	if p.current().Type == TokenOrder {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, err
		}
		if err := p.parseOrderByList(q); err != nil {
			return nil, err
		}
		next = 3
	}

	// MINE (optional)
	if p.current().Type == TokenMine {
		p.advance()
		op, err := p.parseMiningOp()
		if err != nil {
			return nil, err
		}
		q.Mine = op
		next = 4
	}

	// WITH (optional)
	if p.current().Type == TokenWith {
		p.advance()
		if err := p.parseMeasures(q); err != nil {
			return nil, err
		}
		next = 5
	}

	// DISPLAY AS (optional)
	if p.current().Type == TokenDisplay {
		p.advance()
		if err := p.expect(TokenAs); err != nil {
			return nil, err
		}
		kind, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		q.Display = strings.ToLower(kind)
		next = 6
	}

	// Trailing semicolon is tolerated
	if p.current().Type == TokenSemicolon {
		p.advance()
		next = len(clauses)
	}

	if p.current().Type != TokenEOF {
		expected := "end of query"
		if next < len(clauses) {
			expected = strings.Join(clauses[next:], ", ") + " or end of query"
		}
		return nil, &SyntaxError{
			Pos:      p.current().Pos,
			Expected: expected,
			Found:    describeToken(p.current()),
		}
	}

	return q, nil
}

// parseSelectList parses the projection: either * or a column list
func (p *Parser) parseSelectList(q *Query) error {
	if p.current().Type == TokenStar {
		p.advance()
		q.Wildcard = true
		return nil
	}

	for {
		col, err := p.parseColumnRef()
		if err != nil {
			return err
		}
		q.Select = append(q.Select, col)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return nil
}

// parseColumnRef parses a bare or table-qualified column reference
func (p *Parser) parseColumnRef() (ColumnRef, error) {
	name, err := p.expectIdent()
	if err != nil {
		return ColumnRef{}, err
	}
	if p.current().Type == TokenDot {
		p.advance()
		column, err := p.expectIdent()
		if err != nil {
			return ColumnRef{}, err
		}
		return ColumnRef{Table: name, Column: column}, nil
	}
	return ColumnRef{Column: name}, nil
}

// parseColumnRefList parses a comma-separated list of column references
func (p *Parser) parseColumnRefList() ([]ColumnRef, error) {
	var cols []ColumnRef
	for {
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return cols, nil
}

// parseOrderByList parses ORDER BY columns with optional ASC/DESC
func (p *Parser) parseOrderByList(q *Query) error {
	for {
		col, err := p.parseColumnRef()
		if err != nil {
			return err
		}
		item := OrderByItem{Column: col}
		switch p.current().Type {
		case TokenAsc:
			p.advance()
		case TokenDesc:
			item.Desc = true
			p.advance()
		}
		q.OrderBy = append(q.OrderBy, item)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return nil
}

// parseMiningOp parses the MINE clause. Operation names are contextual
// identifiers, not keywords, so columns named cluster keep working.
func (p *Parser) parseMiningOp() (*MiningOp, error) {
	tok := p.current()
	if tok.Type != TokenIdent {
		return nil, p.syntaxError("mining operation name")
	}
	p.advance()

	switch strings.ToUpper(tok.Value) {
	case "CLUSTER":
		k, err := p.parseIntParam("K")
		if err != nil {
			return nil, err
		}
		return &MiningOp{Kind: MineCluster, K: k}, nil
	case "ASSOCIATION_RULES":
		return &MiningOp{Kind: MineAssociationRules}, nil
	case "ANOMALIES", "ANOMALY_DETECTION":
		return &MiningOp{Kind: MineAnomalies}, nil
	case "STATISTICS":
		return &MiningOp{Kind: MineStatistics}, nil
	case "CLASSIFICATION":
		target, err := p.parseNameParam("TARGET")
		if err != nil {
			return nil, err
		}
		return &MiningOp{Kind: MineClassification, Target: target}, nil
	case "REGRESSION":
		target, err := p.parseNameParam("TARGET")
		if err != nil {
			return nil, err
		}
		return &MiningOp{Kind: MineRegression, Target: target}, nil
	default:
		return nil, &SyntaxError{
			Pos:      tok.Pos,
			Expected: "mining operation (CLUSTER, ASSOCIATION_RULES, ANOMALIES, STATISTICS, CLASSIFICATION or REGRESSION)",
			Found:    describeToken(tok),
		}
	}
}

// parseIntParam parses name=<int> where name matches case-insensitively
func (p *Parser) parseIntParam(name string) (int, error) {
	tok := p.current()
	if tok.Type != TokenIdent || !strings.EqualFold(tok.Value, name) {
		return 0, p.syntaxError(name)
	}
	p.advance()
	if err := p.expect(TokenEqual); err != nil {
		return 0, err
	}

	negative := false
	if p.current().Type == TokenMinus {
		negative = true
		p.advance()
	}
	tok = p.current()
	if tok.Type != TokenInt {
		return 0, p.syntaxError("integer literal")
	}
	p.advance()
	v, err := strconv.Atoi(tok.Value)
	if err != nil {
		return 0, &SyntaxError{Pos: tok.Pos, Expected: "integer literal in range", Found: fmt.Sprintf("%q", tok.Value)}
	}
	if negative {
		v = -v
	}
	return v, nil
}

// parseNameParam parses name=<identifier> where name matches
// case-insensitively
func (p *Parser) parseNameParam(name string) (string, error) {
	tok := p.current()
	if tok.Type != TokenIdent || !strings.EqualFold(tok.Value, name) {
		return "", p.syntaxError(name)
	}
	p.advance()
	if err := p.expect(TokenEqual); err != nil {
		return "", err
	}
	return p.expectIdent()
}

// parseMeasures parses the WITH clause measure list
func (p *Parser) parseMeasures(q *Query) error {
	for {
		tok := p.current()
		if tok.Type != TokenIdent {
			return p.syntaxError("measure name")
		}
		name := strings.ToLower(tok.Value)
		p.advance()
		if err := p.expect(TokenEqual); err != nil {
			return err
		}
		value, err := p.parseNumberValue()
		if err != nil {
			return err
		}
		q.Measures = append(q.Measures, Measure{Name: name, Value: value})
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return nil
}

// parseNumberValue parses an optionally negated numeric literal
func (p *Parser) parseNumberValue() (float64, error) {
	negative := false
	if p.current().Type == TokenMinus {
		negative = true
		p.advance()
	}
	tok := p.current()
	switch tok.Type {
	case TokenInt, TokenFloat:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return 0, &SyntaxError{Pos: tok.Pos, Expected: "numeric literal", Found: fmt.Sprintf("%q", tok.Value)}
		}
		if negative {
			v = -v
		}
		return v, nil
	}
	return 0, p.syntaxError("numeric literal")
}

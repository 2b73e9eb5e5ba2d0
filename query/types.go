package query

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenUse TokenType = iota
	TokenDatabase
	TokenSelect
	TokenRelevance
	TokenTo
	TokenFrom
	TokenWhere
	TokenGroup
	TokenBy
	TokenOrder
	TokenAsc
	TokenDesc
	TokenMine
	TokenWith
	TokenDisplay
	TokenAs
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenLike
	TokenBetween
	TokenIs
	TokenNull

	// Operators
	TokenEqual        // =
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // * (also the wildcard projection)
	TokenSlash        // /

	// Literals
	TokenString
	TokenInt
	TokenFloat
	TokenIdent
	TokenBool

	// Delimiters
	TokenComma      // ,
	TokenDot        // .
	TokenLeftParen  // (
	TokenRightParen // )
	TokenSemicolon  // ;

	// Special
	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenUse:          "USE",
	TokenDatabase:     "DATABASE",
	TokenSelect:       "SELECT",
	TokenRelevance:    "RELEVANCE",
	TokenTo:           "TO",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenGroup:        "GROUP",
	TokenBy:           "BY",
	TokenOrder:        "ORDER",
	TokenAsc:          "ASC",
	TokenDesc:         "DESC",
	TokenMine:         "MINE",
	TokenWith:         "WITH",
	TokenDisplay:      "DISPLAY",
	TokenAs:           "AS",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenIn:           "IN",
	TokenLike:         "LIKE",
	TokenBetween:      "BETWEEN",
	TokenIs:           "IS",
	TokenNull:         "NULL",
	TokenEqual:        "'='",
	TokenNotEqual:     "'!='",
	TokenLess:         "'<'",
	TokenGreater:      "'>'",
	TokenLessEqual:    "'<='",
	TokenGreaterEqual: "'>='",
	TokenPlus:         "'+'",
	TokenMinus:        "'-'",
	TokenStar:         "'*'",
	TokenSlash:        "'/'",
	TokenString:       "string literal",
	TokenInt:          "integer literal",
	TokenFloat:        "float literal",
	TokenIdent:        "identifier",
	TokenBool:         "boolean literal",
	TokenComma:        "','",
	TokenDot:          "'.'",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenSemicolon:    "';'",
	TokenEOF:          "EOF",
}

// String returns a human-readable name for the token type, used in
// syntax error messages.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token. Pos is the byte offset of the
// token's first character in the query text.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Query represents a parsed DQML query
type Query struct {
	Database string        // USE DATABASE name (empty if absent)
	Select   []ColumnRef   // Projection columns (nil for wildcard or absent clause)
	Wildcard bool          // SELECT * was written explicitly
	Tables   []string      // FROM relations (at least one)
	Where    Expression    // Filter condition (nil if absent)
	GroupBy  []ColumnRef   // Grouping columns
	OrderBy  []OrderByItem // Sort specification
	Mine     *MiningOp     // Mining operation (nil if absent)
	Measures []Measure     // WITH measures in source order
	Display  string        // DISPLAY AS chart kind, lowercased (empty if absent)
}

// ColumnRef references a column, optionally qualified by its relation
type ColumnRef struct {
	Table  string // Qualifier (empty for bare references)
	Column string
}

// Name returns the reference as written, with the qualifier if present.
func (c ColumnRef) Name() string {
	if c.Table != "" {
		return c.Table + "." + c.Column
	}
	return c.Column
}

// OrderByItem represents a column to sort by
type OrderByItem struct {
	Column ColumnRef
	Desc   bool // DESC vs ASC (default)
}

// MiningKind identifies a mining operation
type MiningKind int

const (
	MineCluster MiningKind = iota
	MineAssociationRules
	MineAnomalies
	MineStatistics
	MineClassification
	MineRegression
)

var miningKindNames = map[MiningKind]string{
	MineCluster:          "CLUSTER",
	MineAssociationRules: "ASSOCIATION_RULES",
	MineAnomalies:        "ANOMALIES",
	MineStatistics:       "STATISTICS",
	MineClassification:   "CLASSIFICATION",
	MineRegression:       "REGRESSION",
}

// String returns the canonical keyword for the mining kind.
func (k MiningKind) String() string {
	if name, ok := miningKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MiningKind(%d)", int(k))
}

// MiningOp represents a MINE clause. K is set for CLUSTER, Target for
// CLASSIFICATION and REGRESSION.
type MiningOp struct {
	Kind   MiningKind
	K      int
	Target string
}

// Measure represents one name=value pair from the WITH clause
type Measure struct {
	Name  string
	Value float64
}

// Expression represents a boolean condition in the WHERE clause
type Expression interface {
	Evaluate(row map[string]interface{}) (bool, error)
}

// ValueExpr represents an expression that produces a value from a row
type ValueExpr interface {
	EvaluateValue(row map[string]interface{}) (interface{}, error)
}

// BinaryExpr represents a binary expression (AND/OR)
type BinaryExpr struct {
	Left     Expression
	Operator TokenType // TokenAnd or TokenOr
	Right    Expression
}

// NotExpr negates a condition
type NotExpr struct {
	Expr Expression
}

// ComparisonExpr represents a comparison between two value expressions
type ComparisonExpr struct {
	Left     ValueExpr
	Operator TokenType
	Right    ValueExpr
}

// InExpr represents an IN expression (col IN (val1, val2, ...))
type InExpr struct {
	Column ColumnRef
	Values []interface{}
	Negate bool // NOT IN
}

// LikeExpr represents a LIKE expression (col LIKE 'pattern')
type LikeExpr struct {
	Column  ColumnRef
	Pattern string
	Negate  bool // NOT LIKE
}

// BetweenExpr represents a BETWEEN expression (col BETWEEN lower AND upper)
type BetweenExpr struct {
	Column ColumnRef
	Lower  ValueExpr
	Upper  ValueExpr
	Negate bool // NOT BETWEEN
}

// IsNullExpr represents an IS NULL expression (col IS NULL / col IS NOT NULL)
type IsNullExpr struct {
	Column ColumnRef
	Negate bool // IS NOT NULL
}

// LiteralExpr represents a literal value (number, string, bool, NULL)
type LiteralExpr struct {
	Value interface{}
}

// ArithmeticExpr represents an arithmetic expression (+, -, *, /)
type ArithmeticExpr struct {
	Left     ValueExpr
	Operator TokenType
	Right    ValueExpr
}

// AggregateExpr represents an aggregate call (COUNT, SUM, AVG, MIN, MAX).
// Aggregates parse and validate but have no per-row value, so conditions
// containing them fail when the store evaluates the filter.
type AggregateExpr struct {
	Function string // lowercased function name
	Column   ColumnRef
	Star     bool // COUNT(*)
}

// Evaluate evaluates a binary expression
func (b *BinaryExpr) Evaluate(row map[string]interface{}) (bool, error) {
	left, err := b.Left.Evaluate(row)
	if err != nil {
		return false, err
	}

	right, err := b.Right.Evaluate(row)
	if err != nil {
		return false, err
	}

	switch b.Operator {
	case TokenAnd:
		return left && right, nil
	case TokenOr:
		return left || right, nil
	default:
		return false, fmt.Errorf("unsupported binary operator: %v", b.Operator)
	}
}

// Evaluate evaluates a NOT expression
func (n *NotExpr) Evaluate(row map[string]interface{}) (bool, error) {
	result, err := n.Expr.Evaluate(row)
	if err != nil {
		return false, err
	}
	return !result, nil
}

// Evaluate evaluates a comparison expression
func (c *ComparisonExpr) Evaluate(row map[string]interface{}) (bool, error) {
	left, err := c.Left.EvaluateValue(row)
	if err != nil {
		return false, err
	}

	right, err := c.Right.EvaluateValue(row)
	if err != nil {
		return false, err
	}

	return compare(left, c.Operator, right)
}

// Evaluate evaluates an IN expression
func (i *InExpr) Evaluate(row map[string]interface{}) (bool, error) {
	value, err := lookupColumn(row, i.Column)
	if err != nil {
		return false, err
	}

	// Check if value is in the list
	found := false
	for _, listValue := range i.Values {
		match, err := compare(value, TokenEqual, listValue)
		if err != nil {
			return false, err
		}
		if match {
			found = true
			break
		}
	}

	// Apply negation if needed
	if i.Negate {
		return !found, nil
	}
	return found, nil
}

// Evaluate evaluates a LIKE expression
func (l *LikeExpr) Evaluate(row map[string]interface{}) (bool, error) {
	value, err := lookupColumn(row, l.Column)
	if err != nil {
		return false, err
	}

	str, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("LIKE requires string column, got %T", value)
	}

	match := matchLikePattern(str, l.Pattern)

	// Apply negation if needed
	if l.Negate {
		return !match, nil
	}
	return match, nil
}

// Evaluate evaluates a BETWEEN expression
func (b *BetweenExpr) Evaluate(row map[string]interface{}) (bool, error) {
	value, err := lookupColumn(row, b.Column)
	if err != nil {
		return false, err
	}

	lower, err := b.Lower.EvaluateValue(row)
	if err != nil {
		return false, err
	}
	upper, err := b.Upper.EvaluateValue(row)
	if err != nil {
		return false, err
	}

	lowerMatch, err := compare(value, TokenGreaterEqual, lower)
	if err != nil {
		return false, err
	}
	upperMatch, err := compare(value, TokenLessEqual, upper)
	if err != nil {
		return false, err
	}

	between := lowerMatch && upperMatch

	// Apply negation if needed
	if b.Negate {
		return !between, nil
	}
	return between, nil
}

// Evaluate evaluates an IS NULL expression
func (i *IsNullExpr) Evaluate(row map[string]interface{}) (bool, error) {
	value, exists := row[i.Column.Column]
	if !exists && i.Column.Table != "" {
		value, exists = row[i.Column.Name()]
	}

	isNull := !exists || value == nil

	// Apply negation if needed (IS NOT NULL)
	if i.Negate {
		return !isNull, nil
	}
	return isNull, nil
}

// EvaluateValue evaluates a column reference against a row. Qualified
// references fall back to the full dotted name when the bare column is
// not a row key.
func (c *ColumnRef) EvaluateValue(row map[string]interface{}) (interface{}, error) {
	return lookupColumn(row, *c)
}

// EvaluateValue evaluates a literal expression
func (l *LiteralExpr) EvaluateValue(row map[string]interface{}) (interface{}, error) {
	return l.Value, nil
}

// EvaluateValue evaluates an arithmetic expression
func (a *ArithmeticExpr) EvaluateValue(row map[string]interface{}) (interface{}, error) {
	left, err := a.Left.EvaluateValue(row)
	if err != nil {
		return nil, err
	}
	right, err := a.Right.EvaluateValue(row)
	if err != nil {
		return nil, err
	}

	leftNum, ok := toFloat64(left)
	if !ok {
		return nil, fmt.Errorf("arithmetic requires numeric operands, got %T", left)
	}
	rightNum, ok := toFloat64(right)
	if !ok {
		return nil, fmt.Errorf("arithmetic requires numeric operands, got %T", right)
	}

	switch a.Operator {
	case TokenPlus:
		return leftNum + rightNum, nil
	case TokenMinus:
		return leftNum - rightNum, nil
	case TokenStar:
		return leftNum * rightNum, nil
	case TokenSlash:
		if rightNum == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return leftNum / rightNum, nil
	default:
		return nil, fmt.Errorf("unsupported arithmetic operator: %v", a.Operator)
	}
}

// EvaluateValue for AggregateExpr always fails: aggregates have no
// per-row value in this language.
func (a *AggregateExpr) EvaluateValue(row map[string]interface{}) (interface{}, error) {
	return nil, fmt.Errorf("aggregate function %s cannot be evaluated on individual rows", a.Function)
}

func lookupColumn(row map[string]interface{}, col ColumnRef) (interface{}, error) {
	if value, exists := row[col.Column]; exists {
		return value, nil
	}
	if col.Table != "" {
		if value, exists := row[col.Name()]; exists {
			return value, nil
		}
	}
	return nil, fmt.Errorf("column %q not found", col.Name())
}

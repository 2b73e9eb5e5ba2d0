package query

import "fmt"

// Catalog resolves relation names to their ordered column lists. The
// empty database name addresses the default scope. Implementations
// must treat lookups as read-only.
type Catalog interface {
	LookupTable(database, table string) ([]string, bool)
}

// RecognizedMeasures lists the measure names the WITH clause accepts.
// All of them carry numeric values.
var RecognizedMeasures = map[string]bool{
	"confidence":       true,
	"support":          true,
	"lift":             true,
	"threshold":        true,
	"confidence_level": true,
}

// Validate checks a parsed query against the catalog and the mining
// parameter rules. Checks run in a fixed order: tables, then column
// references, then mining parameters, then measures. The first
// violation is returned as a SemanticError and the query is not
// mutated.
func Validate(q *Query, catalog Catalog) (*Query, error) {
	scope := make(map[string][]string, len(q.Tables))
	for _, table := range q.Tables {
		cols, ok := catalog.LookupTable(q.Database, table)
		if !ok {
			detail := fmt.Sprintf("unknown table %q", table)
			if q.Database != "" {
				detail = fmt.Sprintf("unknown table %q in database %q", table, q.Database)
			}
			return nil, &SemanticError{Kind: UnknownTable, Detail: detail}
		}
		scope[table] = cols
	}

	check := func(col ColumnRef) error {
		return resolveColumn(scope, col)
	}

	for _, col := range q.Select {
		if err := check(col); err != nil {
			return nil, err
		}
	}
	if q.Where != nil {
		if err := walkConditionColumns(q.Where, check); err != nil {
			return nil, err
		}
	}
	for _, col := range q.GroupBy {
		if err := check(col); err != nil {
			return nil, err
		}
	}
	for _, item := range q.OrderBy {
		if err := check(item.Column); err != nil {
			return nil, err
		}
	}

	if q.Mine != nil {
		if err := validateMiningOp(q.Mine, scope); err != nil {
			return nil, err
		}
	}

	if err := validateMeasures(q.Measures); err != nil {
		return nil, err
	}

	return q, nil
}

// resolveColumn resolves a column reference against the tables in
// scope. Bare names match any table; qualified names must name a
// relation from the FROM clause.
func resolveColumn(scope map[string][]string, col ColumnRef) error {
	if col.Table != "" {
		cols, ok := scope[col.Table]
		if !ok {
			return &SemanticError{Kind: UnknownColumn, Detail: fmt.Sprintf("relation %q is not in FROM", col.Table)}
		}
		for _, c := range cols {
			if c == col.Column {
				return nil
			}
		}
		return &SemanticError{Kind: UnknownColumn, Detail: fmt.Sprintf("unknown column %q in table %q", col.Column, col.Table)}
	}

	for _, cols := range scope {
		for _, c := range cols {
			if c == col.Column {
				return nil
			}
		}
	}
	return &SemanticError{Kind: UnknownColumn, Detail: fmt.Sprintf("unknown column %q", col.Column)}
}

// validateMiningOp checks operation parameters. CLUSTER needs a
// positive K, CLASSIFICATION and REGRESSION need a resolvable target
// column.
func validateMiningOp(op *MiningOp, scope map[string][]string) error {
	switch op.Kind {
	case MineCluster:
		if op.K <= 0 {
			return &SemanticError{Kind: InvalidParameter, Detail: "K must be positive"}
		}
	case MineClassification, MineRegression:
		if err := resolveColumn(scope, ColumnRef{Column: op.Target}); err != nil {
			return &SemanticError{Kind: TargetColumnMissing, Detail: fmt.Sprintf("target column %q not found", op.Target)}
		}
	}
	return nil
}

// validateMeasures checks measure names against the recognized set and
// rejects duplicates
func validateMeasures(measures []Measure) error {
	seen := make(map[string]bool, len(measures))
	for _, m := range measures {
		if !RecognizedMeasures[m.Name] {
			return &SemanticError{Kind: InvalidParameter, Detail: fmt.Sprintf("unrecognized measure %q", m.Name)}
		}
		if seen[m.Name] {
			return &SemanticError{Kind: InvalidParameter, Detail: fmt.Sprintf("duplicate measure %q", m.Name)}
		}
		seen[m.Name] = true
	}
	return nil
}

// walkConditionColumns visits every column reference in a condition
// tree, including those nested in value expressions
func walkConditionColumns(e Expression, fn func(ColumnRef) error) error {
	switch expr := e.(type) {
	case *BinaryExpr:
		if err := walkConditionColumns(expr.Left, fn); err != nil {
			return err
		}
		return walkConditionColumns(expr.Right, fn)
	case *NotExpr:
		return walkConditionColumns(expr.Expr, fn)
	case *ComparisonExpr:
		if err := walkValueColumns(expr.Left, fn); err != nil {
			return err
		}
		return walkValueColumns(expr.Right, fn)
	case *InExpr:
		return fn(expr.Column)
	case *LikeExpr:
		return fn(expr.Column)
	case *BetweenExpr:
		if err := fn(expr.Column); err != nil {
			return err
		}
		if err := walkValueColumns(expr.Lower, fn); err != nil {
			return err
		}
		return walkValueColumns(expr.Upper, fn)
	case *IsNullExpr:
		return fn(expr.Column)
	}
	return nil
}

// walkValueColumns visits every column reference in a value expression
func walkValueColumns(e ValueExpr, fn func(ColumnRef) error) error {
	switch expr := e.(type) {
	case *ColumnRef:
		return fn(*expr)
	case *ArithmeticExpr:
		if err := walkValueColumns(expr.Left, fn); err != nil {
			return err
		}
		return walkValueColumns(expr.Right, fn)
	case *AggregateExpr:
		if expr.Star {
			return nil
		}
		return fn(expr.Column)
	}
	return nil
}

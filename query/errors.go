package query

import "fmt"

// LexError reports an unexpected or unterminated construct in the query
// text. Pos is the byte offset of the offending character.
type LexError struct {
	Pos  int
	Char rune
	Msg  string // optional detail for unterminated constructs
}

func (e *LexError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("lex error at position %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("lex error at position %d: unexpected character %q", e.Pos, e.Char)
}

// SyntaxError reports a token that does not fit the grammar. Expected
// describes the acceptable tokens at that point, Found the token that
// was actually seen.
type SyntaxError struct {
	Pos      int
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// SemanticErrorKind classifies validation failures
type SemanticErrorKind int

const (
	UnknownTable SemanticErrorKind = iota
	UnknownColumn
	InvalidParameter
	// DuplicateMiningOperation covers AST forms carrying more than one
	// mining operation. The grammar admits at most one MINE clause, so
	// the parser never produces such a query.
	DuplicateMiningOperation
	TargetColumnMissing
)

var semanticKindNames = map[SemanticErrorKind]string{
	UnknownTable:             "unknown table",
	UnknownColumn:            "unknown column",
	InvalidParameter:         "invalid parameter",
	DuplicateMiningOperation: "duplicate mining operation",
	TargetColumnMissing:      "target column missing",
}

// String returns a human-readable name for the kind.
func (k SemanticErrorKind) String() string {
	if name, ok := semanticKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SemanticErrorKind(%d)", int(k))
}

// SemanticError reports a query that parsed but fails validation
// against the catalog or the mining parameter rules.
type SemanticError struct {
	Kind   SemanticErrorKind
	Detail string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error (%v): %s", e.Kind, e.Detail)
}

// ExecutionErrorKind identifies the pipeline stage that failed
type ExecutionErrorKind int

const (
	StoreFailure ExecutionErrorKind = iota
	MiningFailure
	VisualizationFailure
)

var executionKindNames = map[ExecutionErrorKind]string{
	StoreFailure:         "store failure",
	MiningFailure:        "mining failure",
	VisualizationFailure: "visualization failure",
}

// String returns a human-readable name for the kind.
func (k ExecutionErrorKind) String() string {
	if name, ok := executionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ExecutionErrorKind(%d)", int(k))
}

// ExecutionError wraps a failure from one of the execution stages. The
// underlying error is available through errors.Unwrap.
type ExecutionError struct {
	Kind ExecutionErrorKind
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error (%v): %v", e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

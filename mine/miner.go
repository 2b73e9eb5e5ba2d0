package mine

import (
	"errors"
	"fmt"

	"github.com/vegasq/dqml/query"
)

// Errors returned by mining operations. The orchestrator wraps them
// into its own execution error, so callers can still reach these with
// errors.Is through the chain.
var (
	// ErrInsufficientData reports a retrieved frame too small or too
	// sparse for the requested operation.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidParameter reports an operation parameter or interest
	// measure that cannot drive the algorithm.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Miner runs data-mining operations over retrieved rows. It satisfies
// query.Miner. The zero value is ready to use.
type Miner struct {
	// AnomalyMethod picks the detector behind ANOMALIES queries:
	// "zscore" (the default) or "iqr".
	AnomalyMethod string
}

// New creates a Miner with the default anomaly detector.
func New() *Miner {
	return &Miner{}
}

// Mine dispatches on the operation kind. Augmenting operations return
// extended copies of the rows; the rest pass schema and rows through
// untouched and only produce a summary.
func (m *Miner) Mine(schema []string, rows []map[string]interface{}, op query.MiningOp, measures []query.Measure) ([]string, []map[string]interface{}, query.MiningSummary, error) {
	switch op.Kind {
	case query.MineCluster:
		return cluster(schema, rows, op.K)
	case query.MineAnomalies:
		return m.anomalies(schema, rows, measures)
	case query.MineStatistics:
		return statistics(schema, rows, measures)
	case query.MineAssociationRules:
		return associationRules(schema, rows, measures)
	case query.MineClassification:
		return classify(schema, rows, op.Target)
	case query.MineRegression:
		return regress(schema, rows, op.Target)
	}
	return nil, nil, nil, fmt.Errorf("%w: unknown mining operation %s", ErrInvalidParameter, op.Kind)
}

// measureValue returns the named interest measure, or the fallback
// when the query did not supply it. Measure names arrive lowercased
// from the parser.
func measureValue(measures []query.Measure, name string, fallback float64) float64 {
	for _, m := range measures {
		if m.Name == name {
			return m.Value
		}
	}
	return fallback
}

// hasMeasure reports whether the query supplied the named measure.
func hasMeasure(measures []query.Measure, name string) bool {
	for _, m := range measures {
		if m.Name == name {
			return true
		}
	}
	return false
}

package mine

import (
	"fmt"

	"github.com/vegasq/dqml/query"
)

// Default cutoffs for the two detectors. The threshold interest
// measure overrides either one.
const (
	defaultZScoreThreshold = 3.0
	defaultIQRMultiplier   = 1.5
)

// AnomalySummary describes an anomaly-detection run over the numeric
// feature columns.
type AnomalySummary struct {
	Method            string   `json:"method"`
	Threshold         float64  `json:"threshold"`
	NAnomalies        int      `json:"n_anomalies"`
	AnomalyPercentage float64  `json:"anomaly_percentage"`
	FeatureColumns    []string `json:"feature_columns"`
}

// MiningKind identifies the summary as an anomaly-detection payload.
func (AnomalySummary) MiningKind() query.MiningKind {
	return query.MineAnomalies
}

// anomalies flags outlying rows and appends is_anomaly and
// anomaly_score columns.
func (m *Miner) anomalies(schema []string, rows []map[string]interface{}, measures []query.Measure) ([]string, []map[string]interface{}, query.MiningSummary, error) {
	features := numericColumns(schema, rows)
	if len(features) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no numeric columns to detect anomalies on", ErrInsufficientData)
	}
	if len(rows) < 2 {
		return nil, nil, nil, fmt.Errorf("%w: anomaly detection needs at least 2 rows, have %d", ErrInsufficientData, len(rows))
	}

	matrix := featureMatrix(rows, features)

	var method string
	var fallback float64
	switch m.AnomalyMethod {
	case "", "zscore":
		method, fallback = "zscore", defaultZScoreThreshold
	case "iqr":
		method, fallback = "iqr", defaultIQRMultiplier
	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown anomaly method %q, use zscore or iqr", ErrInvalidParameter, m.AnomalyMethod)
	}
	threshold := measureValue(measures, "threshold", fallback)
	if threshold <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: threshold must be positive, got %v", ErrInvalidParameter, threshold)
	}

	var flagged []bool
	var scores []float64
	if method == "zscore" {
		flagged, scores = zscoreDetect(matrix, threshold)
	} else {
		flagged, scores = iqrDetect(matrix, threshold)
	}

	out := copyRows(rows)
	count := 0
	for i := range out {
		out[i]["is_anomaly"] = flagged[i]
		out[i]["anomaly_score"] = scores[i]
		if flagged[i] {
			count++
		}
	}

	summary := AnomalySummary{
		Method:            method,
		Threshold:         threshold,
		NAnomalies:        count,
		AnomalyPercentage: roundTo(float64(count)/float64(len(rows))*100, 2),
		FeatureColumns:    features,
	}
	return extendSchema(schema, "is_anomaly", "anomaly_score"), out, summary, nil
}

// zscoreDetect flags rows where any feature sits more than threshold
// standard deviations from its column mean. The score is the largest
// absolute z-score across features.
func zscoreDetect(matrix [][]float64, threshold float64) ([]bool, []float64) {
	dims := len(matrix[0])
	means := make([]float64, dims)
	stds := make([]float64, dims)
	for j := 0; j < dims; j++ {
		col := make([]float64, len(matrix))
		for i, vec := range matrix {
			col[i] = vec[j]
		}
		means[j] = mean(col)
		stds[j] = sampleStd(col)
	}

	flagged := make([]bool, len(matrix))
	scores := make([]float64, len(matrix))
	for i, vec := range matrix {
		var worst float64
		for j, v := range vec {
			if stds[j] == 0 {
				continue
			}
			z := (v - means[j]) / stds[j]
			if z < 0 {
				z = -z
			}
			if z > worst {
				worst = z
			}
		}
		flagged[i] = worst > threshold
		scores[i] = worst
	}
	return flagged, scores
}

// iqrDetect flags rows where any feature falls outside the
// interquartile fences Q1-m*IQR and Q3+m*IQR. The score adds the
// largest normalized excursion below and above the fences. Columns
// with zero spread are skipped.
func iqrDetect(matrix [][]float64, multiplier float64) ([]bool, []float64) {
	dims := len(matrix[0])
	lower := make([]float64, dims)
	upper := make([]float64, dims)
	spread := make([]float64, dims)
	for j := 0; j < dims; j++ {
		col := make([]float64, len(matrix))
		for i, vec := range matrix {
			col[i] = vec[j]
		}
		q1 := quantile(col, 0.25)
		q3 := quantile(col, 0.75)
		spread[j] = q3 - q1
		lower[j] = q1 - multiplier*spread[j]
		upper[j] = q3 + multiplier*spread[j]
	}

	flagged := make([]bool, len(matrix))
	scores := make([]float64, len(matrix))
	for i, vec := range matrix {
		var below, above float64
		for j, v := range vec {
			if spread[j] == 0 {
				continue
			}
			if v < lower[j] {
				if d := (lower[j] - v) / spread[j]; d > below {
					below = d
				}
				flagged[i] = true
			}
			if v > upper[j] {
				if d := (v - upper[j]) / spread[j]; d > above {
					above = d
				}
				flagged[i] = true
			}
		}
		scores[i] = below + above
	}
	return flagged, scores
}

package mine

import (
	"fmt"
	"math"

	"github.com/vegasq/dqml/query"
)

// pivotEpsilon is the smallest pivot Gaussian elimination accepts
// before declaring the normal equations singular.
const pivotEpsilon = 1e-10

// RegressionSummary describes an ordinary-least-squares fit of the
// target on the remaining numeric columns.
type RegressionSummary struct {
	Target         string             `json:"target"`
	FeatureColumns []string           `json:"feature_columns"`
	Coefficients   map[string]float64 `json:"coefficients"`
	Intercept      float64            `json:"intercept"`
	RSquared       float64            `json:"r_squared"`
	NObservations  int                `json:"n_observations"`
}

// MiningKind identifies the summary as a regression payload.
func (RegressionSummary) MiningKind() query.MiningKind {
	return query.MineRegression
}

// regress fits the target column on the other numeric columns by
// solving the normal equations. Rows pass through unchanged.
func regress(schema []string, rows []map[string]interface{}, target string) ([]string, []map[string]interface{}, query.MiningSummary, error) {
	if !schemaHas(schema, target) {
		return nil, nil, nil, fmt.Errorf("%w: target column %q is not in the result columns", ErrInvalidParameter, target)
	}

	features := featureColumnsFor(schema, rows, target)
	if len(features) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no numeric feature columns besides the target", ErrInsufficientData)
	}

	// Observations need a numeric target value.
	var observed []map[string]interface{}
	var y []float64
	for _, row := range rows {
		if v, ok := asNumber(row[target]); ok {
			observed = append(observed, row)
			y = append(y, v)
		}
	}
	if len(observed) < len(features)+1 {
		return nil, nil, nil, fmt.Errorf("%w: regression on %d features needs at least %d observations, have %d",
			ErrInsufficientData, len(features), len(features)+1, len(observed))
	}

	// Design matrix with a leading intercept column.
	dims := len(features) + 1
	design := make([][]float64, len(observed))
	base := featureMatrix(observed, features)
	for i, vec := range base {
		row := make([]float64, dims)
		row[0] = 1
		copy(row[1:], vec)
		design[i] = row
	}

	// Normal equations: (XᵀX) β = Xᵀy.
	ata := make([][]float64, dims)
	atb := make([]float64, dims)
	for a := 0; a < dims; a++ {
		ata[a] = make([]float64, dims)
		for b := 0; b < dims; b++ {
			var sum float64
			for i := range design {
				sum += design[i][a] * design[i][b]
			}
			ata[a][b] = sum
		}
		for i := range design {
			atb[a] += design[i][a] * y[i]
		}
	}

	beta, err := solveLinear(ata, atb)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fit regression: %w", err)
	}

	// Goodness of fit on the training observations.
	meanY := mean(y)
	var ssRes, ssTot float64
	for i, row := range design {
		var predicted float64
		for j, b := range beta {
			predicted += b * row[j]
		}
		d := y[i] - predicted
		ssRes += d * d
		t := y[i] - meanY
		ssTot += t * t
	}
	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	} else if ssRes < pivotEpsilon {
		rSquared = 1
	}

	coefficients := make(map[string]float64, len(features))
	for j, col := range features {
		coefficients[col] = beta[j+1]
	}

	summary := RegressionSummary{
		Target:         target,
		FeatureColumns: features,
		Coefficients:   coefficients,
		Intercept:      beta[0],
		RSquared:       rSquared,
		NObservations:  len(observed),
	}
	return schema, rows, summary, nil
}

// solveLinear solves Ax = b in place with Gaussian elimination and
// partial pivoting. A vanishing pivot means the system is singular,
// typically from perfectly collinear feature columns.
func solveLinear(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < pivotEpsilon {
			return nil, fmt.Errorf("singular feature matrix, check for collinear columns")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for col := row + 1; col < n; col++ {
			sum -= a[row][col] * x[col]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}

package mine

import (
	"math"
	"sort"
)

// asNumber converts a cell to float64. Booleans and strings are not
// numbers here, matching how columns are typed for mining.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// numericColumns returns the schema columns usable as numeric
// features, in schema order. A column qualifies when it holds at
// least one value and every non-null value is numeric.
func numericColumns(schema []string, rows []map[string]interface{}) []string {
	var cols []string
	for _, col := range schema {
		seen := false
		numeric := true
		for _, row := range rows {
			v, ok := row[col]
			if !ok || v == nil {
				continue
			}
			seen = true
			if _, ok := asNumber(v); !ok {
				numeric = false
				break
			}
		}
		if seen && numeric {
			cols = append(cols, col)
		}
	}
	return cols
}

// featureMatrix extracts the named columns as a dense matrix. Missing
// and null cells become 0.
func featureMatrix(rows []map[string]interface{}, cols []string) [][]float64 {
	matrix := make([][]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(cols))
		for j, col := range cols {
			if n, ok := asNumber(row[col]); ok {
				vec[j] = n
			}
		}
		matrix[i] = vec
	}
	return matrix
}

// standardize scales each column to zero mean and unit variance and
// returns the per-column means and deviations so centers can be
// mapped back to the original units. Constant columns keep scale 1.
func standardize(matrix [][]float64) (scaled [][]float64, means, stds []float64) {
	if len(matrix) == 0 {
		return nil, nil, nil
	}
	dims := len(matrix[0])
	means = make([]float64, dims)
	stds = make([]float64, dims)

	for j := 0; j < dims; j++ {
		var sum float64
		for _, vec := range matrix {
			sum += vec[j]
		}
		means[j] = sum / float64(len(matrix))

		var sq float64
		for _, vec := range matrix {
			d := vec[j] - means[j]
			sq += d * d
		}
		stds[j] = math.Sqrt(sq / float64(len(matrix)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	scaled = make([][]float64, len(matrix))
	for i, vec := range matrix {
		out := make([]float64, dims)
		for j, v := range vec {
			out[j] = (v - means[j]) / stds[j]
		}
		scaled[i] = out
	}
	return scaled, means, stds
}

// columnValues collects the non-null numeric values of one column in
// row order.
func columnValues(rows []map[string]interface{}, col string) []float64 {
	var vals []float64
	for _, row := range rows {
		if n, ok := asNumber(row[col]); ok {
			vals = append(vals, n)
		}
	}
	return vals
}

// quantile returns the p-quantile of vals using linear interpolation
// between order statistics. vals must be non-empty.
func quantile(vals []float64, p float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// mean returns the arithmetic mean of vals, or 0 for an empty slice.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd returns the sample standard deviation (n-1 denominator),
// or 0 when fewer than two values are present.
func sampleStd(vals []float64) float64 {
	return math.Sqrt(sampleVariance(vals))
}

// sampleVariance returns the sample variance (n-1 denominator), or 0
// when fewer than two values are present.
func sampleVariance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return sq / float64(len(vals)-1)
}

// euclidean returns the distance between two equal-length vectors.
func euclidean(a, b []float64) float64 {
	var sq float64
	for j := range a {
		d := a[j] - b[j]
		sq += d * d
	}
	return math.Sqrt(sq)
}

// extendSchema appends cols to schema, skipping names already present.
// The input slice is never mutated.
func extendSchema(schema []string, cols ...string) []string {
	out := make([]string, len(schema), len(schema)+len(cols))
	copy(out, schema)
	for _, col := range cols {
		exists := false
		for _, have := range out {
			if have == col {
				exists = true
				break
			}
		}
		if !exists {
			out = append(out, col)
		}
	}
	return out
}

// copyRows clones every row map so augmenting operations never write
// into the caller's data.
func copyRows(rows []map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		clone := make(map[string]interface{}, len(row)+2)
		for k, v := range row {
			clone[k] = v
		}
		out[i] = clone
	}
	return out
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	m := math.Pow(10, float64(places))
	return math.Round(v*m) / m
}

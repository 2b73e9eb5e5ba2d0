package chart

import "math"

// asNumber converts a cell to float64. Booleans and strings are
// treated as categorical, same as the column typing in mining.
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

// numericColumns returns the columns whose non-null values are all
// numeric, in schema order. Columns with no values at all do not
// qualify.
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

// categoricalColumns returns the schema columns not in numeric,
// preserving schema order.
func categoricalColumns(schema, numeric []string) []string {
	isNumeric := make(map[string]bool, len(numeric))
	for _, col := range numeric {
		isNumeric[col] = true
	}
	var cols []string
	for _, col := range schema {
		if !isNumeric[col] {
			cols = append(cols, col)
		}
	}
	return cols
}

// columnCells collects one column's raw values in row order. Nulls are
// kept; plotly skips them when drawing.
func columnCells(rows []map[string]interface{}, col string) []interface{} {
	cells := make([]interface{}, len(rows))
	for i, row := range rows {
		cells[i] = row[col]
	}
	return cells
}

func hasColumn(schema []string, name string) bool {
	for _, col := range schema {
		if col == name {
			return true
		}
	}
	return false
}

// corrMatrix computes the pairwise Pearson matrix over the given
// columns. Cells without a defined coefficient (under two complete
// pairs, or a constant column) are nil so they marshal as null.
func corrMatrix(rows []map[string]interface{}, cols []string) [][]interface{} {
	matrix := make([][]interface{}, len(cols))
	for i := range cols {
		matrix[i] = make([]interface{}, len(cols))
		for j := range cols {
			if r, ok := pearson(rows, cols[i], cols[j]); ok {
				matrix[i][j] = r
			}
		}
	}
	return matrix
}

// pearson correlates two columns over their complete pairs. It reports
// false when fewer than two pairs exist or either side has no
// variance.
func pearson(rows []map[string]interface{}, colX, colY string) (float64, bool) {
	var xs, ys []float64
	for _, row := range rows {
		x, okX := asNumber(row[colX])
		y, okY := asNumber(row[colY])
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0, false
	}

	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(len(xs))
	my /= float64(len(ys))

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

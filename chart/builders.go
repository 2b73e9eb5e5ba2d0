package chart

import (
	"errors"
	"fmt"
	"sort"
)

func barChart(schema []string, rows []map[string]interface{}) (*figure, error) {
	if len(schema) == 0 {
		return nil, errors.New("bar chart needs at least one column")
	}
	numeric := numericColumns(schema, rows)

	x := schema[0]
	if cats := categoricalColumns(schema, numeric); len(cats) > 0 {
		x = cats[0]
	}
	y := fallbackValueColumn(schema, numeric)

	return &figure{
		Data: []trace{{Type: "bar", X: columnCells(rows, x), Y: columnCells(rows, y)}},
		Layout: layout{
			Title: fmt.Sprintf("%s by %s", y, x),
			XAxis: &axis{Title: x},
			YAxis: &axis{Title: y},
		},
	}, nil
}

func scatterPlot(schema []string, rows []map[string]interface{}) (*figure, error) {
	numeric := numericColumns(schema, rows)
	if len(numeric) < 2 {
		return nil, fmt.Errorf("scatter plot needs at least 2 numeric columns, have %d", len(numeric))
	}
	x, y := numeric[0], numeric[1]

	fig := &figure{
		Layout: layout{
			Title: fmt.Sprintf("%s vs %s", y, x),
			XAxis: &axis{Title: x},
			YAxis: &axis{Title: y},
		},
	}

	switch {
	case hasColumn(schema, "cluster"):
		// One trace per cluster so each gets its own color and
		// legend entry.
		for _, label := range clusterLabels(rows) {
			key := fmt.Sprintf("%v", label)
			var xs, ys []interface{}
			for _, row := range rows {
				if fmt.Sprintf("%v", row["cluster"]) != key {
					continue
				}
				xs = append(xs, row[x])
				ys = append(ys, row[y])
			}
			fig.Data = append(fig.Data, trace{
				Type: "scatter",
				Mode: "markers",
				Name: "cluster " + key,
				X:    xs,
				Y:    ys,
			})
		}
	case hasColumn(schema, "is_anomaly"):
		normal := trace{Type: "scatter", Mode: "markers", Name: "normal",
			Marker: &marker{Color: "blue", Size: 8, Opacity: 0.7}}
		anomalies := trace{Type: "scatter", Mode: "markers", Name: "anomalies",
			Marker: &marker{Color: "red", Size: 8, Opacity: 0.7}}
		for _, row := range rows {
			if flagged, _ := row["is_anomaly"].(bool); flagged {
				anomalies.X = append(anomalies.X, row[x])
				anomalies.Y = append(anomalies.Y, row[y])
			} else {
				normal.X = append(normal.X, row[x])
				normal.Y = append(normal.Y, row[y])
			}
		}
		for _, t := range []trace{normal, anomalies} {
			if len(t.X) > 0 {
				fig.Data = append(fig.Data, t)
			}
		}
	default:
		fig.Data = []trace{{Type: "scatter", Mode: "markers",
			X: columnCells(rows, x), Y: columnCells(rows, y)}}
	}
	return fig, nil
}

func lineChart(schema []string, rows []map[string]interface{}) (*figure, error) {
	if len(schema) == 0 {
		return nil, errors.New("line chart needs at least one column")
	}
	numeric := numericColumns(schema, rows)
	x := schema[0]
	y := fallbackValueColumn(schema, numeric)

	return &figure{
		Data: []trace{{Type: "scatter", Mode: "lines",
			X: columnCells(rows, x), Y: columnCells(rows, y)}},
		Layout: layout{
			Title: fmt.Sprintf("%s over %s", y, x),
			XAxis: &axis{Title: x},
			YAxis: &axis{Title: y},
		},
	}, nil
}

func heatmap(schema []string, rows []map[string]interface{}) (*figure, error) {
	numeric := numericColumns(schema, rows)
	if len(numeric) < 2 {
		return nil, fmt.Errorf("heatmap needs at least 2 numeric columns, have %d", len(numeric))
	}

	names := make([]interface{}, len(numeric))
	for i, col := range numeric {
		names[i] = col
	}
	return &figure{
		Data: []trace{{
			Type:         "heatmap",
			X:            names,
			Y:            names,
			Z:            corrMatrix(rows, numeric),
			Colorscale:   "RdBu",
			Reversescale: true,
		}},
		Layout: layout{Title: "Correlation Heatmap"},
	}, nil
}

func histogram(schema []string, rows []map[string]interface{}) (*figure, error) {
	if len(schema) == 0 {
		return nil, errors.New("histogram needs at least one column")
	}
	x := schema[0]
	if numeric := numericColumns(schema, rows); len(numeric) > 0 {
		x = numeric[0]
	}

	return &figure{
		Data: []trace{{Type: "histogram", X: columnCells(rows, x), NBinsX: histogramBins}},
		Layout: layout{
			Title: "Distribution of " + x,
			XAxis: &axis{Title: x},
			YAxis: &axis{Title: "count"},
		},
	}, nil
}

func boxPlot(schema []string, rows []map[string]interface{}) (*figure, error) {
	if len(schema) == 0 {
		return nil, errors.New("box plot needs at least one column")
	}
	numeric := numericColumns(schema, rows)
	y := schema[0]
	if len(numeric) > 0 {
		y = numeric[0]
	}

	t := trace{Type: "box", Name: y, Y: columnCells(rows, y)}
	lay := layout{Title: "Distribution of " + y, YAxis: &axis{Title: y}}
	if cats := categoricalColumns(schema, numeric); len(cats) > 0 {
		// Grouped by the first categorical column; plotly draws
		// one box per distinct x value.
		t.X = columnCells(rows, cats[0])
		lay.XAxis = &axis{Title: cats[0]}
	}
	return &figure{Data: []trace{t}, Layout: lay}, nil
}

func pieChart(schema []string, rows []map[string]interface{}) (*figure, error) {
	if len(schema) == 0 {
		return nil, errors.New("pie chart needs at least one column")
	}
	numeric := numericColumns(schema, rows)
	names := schema[0]
	if cats := categoricalColumns(schema, numeric); len(cats) > 0 {
		names = cats[0]
	}

	// One slice per distinct name: the first numeric column summed
	// per name when one exists, plain counts otherwise. Null names
	// are skipped.
	type slice struct {
		label interface{}
		key   string
		value float64
	}
	index := make(map[string]int)
	var slices []slice
	for _, row := range rows {
		v, ok := row[names]
		if !ok || v == nil {
			continue
		}
		key := fmt.Sprintf("%v", v)
		i, ok := index[key]
		if !ok {
			i = len(slices)
			index[key] = i
			slices = append(slices, slice{label: v, key: key})
		}
		if len(numeric) > 0 {
			if n, ok := asNumber(row[numeric[0]]); ok {
				slices[i].value += n
			}
		} else {
			slices[i].value++
		}
	}

	if len(numeric) > 0 {
		sort.Slice(slices, func(a, b int) bool { return slices[a].key < slices[b].key })
	} else {
		sort.Slice(slices, func(a, b int) bool {
			if slices[a].value != slices[b].value {
				return slices[a].value > slices[b].value
			}
			return slices[a].key < slices[b].key
		})
	}

	labels := make([]interface{}, len(slices))
	values := make([]float64, len(slices))
	for i, s := range slices {
		labels[i] = s.label
		values[i] = s.value
	}

	return &figure{
		Data:   []trace{{Type: "pie", Labels: labels, Values: values}},
		Layout: layout{Title: "Distribution of " + names},
	}, nil
}

func (r *Renderer) tableChart(schema []string, rows []map[string]interface{}) (*figure, error) {
	limit := r.TableRowLimit
	if limit <= 0 {
		limit = defaultTableRows
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	cells := make([][]interface{}, len(schema))
	for i, col := range schema {
		cells[i] = columnCells(rows, col)
	}

	return &figure{
		Data: []trace{{
			Type:   "table",
			Header: &tableHeader{Values: schema, Fill: &fill{Color: "paleturquoise"}, Align: "left"},
			Cells:  &tableCells{Values: cells, Fill: &fill{Color: "lavender"}, Align: "left"},
		}},
		Layout: layout{Title: "Data Table"},
	}, nil
}

// fallbackValueColumn picks the first numeric column, then the second
// schema column, then the first.
func fallbackValueColumn(schema, numeric []string) string {
	if len(numeric) > 0 {
		return numeric[0]
	}
	if len(schema) > 1 {
		return schema[1]
	}
	return schema[0]
}

// clusterLabels returns the distinct cluster values sorted ascending,
// numerically when both sides are numbers.
func clusterLabels(rows []map[string]interface{}) []interface{} {
	seen := make(map[string]bool)
	var labels []interface{}
	for _, row := range rows {
		key := fmt.Sprintf("%v", row["cluster"])
		if !seen[key] {
			seen[key] = true
			labels = append(labels, row["cluster"])
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		a, okA := asNumber(labels[i])
		b, okB := asNumber(labels[j])
		if okA && okB {
			return a < b
		}
		return fmt.Sprintf("%v", labels[i]) < fmt.Sprintf("%v", labels[j])
	})
	return labels
}

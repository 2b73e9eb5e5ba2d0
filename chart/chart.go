package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedChartType reports a DISPLAY AS kind the renderer does
// not know how to build.
var ErrUnsupportedChartType = errors.New("unsupported chart type")

const (
	plotlyTemplate   = "plotly_white"
	histogramBins    = 30
	defaultTableRows = 100
)

// Renderer builds Plotly-shaped chart payloads from result rows. The
// zero value is usable; New sets the table row cap.
type Renderer struct {
	// TableRowLimit caps how many rows a table figure carries.
	TableRowLimit int
}

// New returns a Renderer with the default table row cap.
func New() *Renderer {
	return &Renderer{TableRowLimit: defaultTableRows}
}

// Render builds the figure for the requested chart kind and returns it
// as a JSON document {chart_type, data, layout}. Kind matching is
// case-insensitive and treats dashes as underscores, so "Bar-Chart"
// and "bar_chart" name the same figure.
func (r *Renderer) Render(schema []string, rows []map[string]interface{}, kind string) (json.RawMessage, error) {
	normalized := strings.ReplaceAll(strings.ToLower(kind), "-", "_")

	var (
		fig *figure
		err error
	)
	switch normalized {
	case "bar_chart", "bar":
		fig, err = barChart(schema, rows)
	case "scatter_plot", "scatter":
		fig, err = scatterPlot(schema, rows)
	case "line_chart", "line":
		fig, err = lineChart(schema, rows)
	case "heatmap":
		fig, err = heatmap(schema, rows)
	case "histogram":
		fig, err = histogram(schema, rows)
	case "box_plot", "box":
		fig, err = boxPlot(schema, rows)
	case "pie_chart", "pie":
		fig, err = pieChart(schema, rows)
	case "table":
		fig, err = r.tableChart(schema, rows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChartType, kind)
	}
	if err != nil {
		return nil, err
	}

	fig.ChartType = normalized
	fig.Layout.Template = plotlyTemplate
	return json.Marshal(fig)
}

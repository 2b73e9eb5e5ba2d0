package chart

// figure is the marshaled chart payload. Data and Layout follow the
// plotly.js schema closely enough for a frontend to hand the figure
// straight to Plotly.newPlot.
type figure struct {
	ChartType string  `json:"chart_type"`
	Data      []trace `json:"data"`
	Layout    layout  `json:"layout"`
}

type trace struct {
	Type         string          `json:"type"`
	Mode         string          `json:"mode,omitempty"`
	Name         string          `json:"name,omitempty"`
	X            []interface{}   `json:"x,omitempty"`
	Y            []interface{}   `json:"y,omitempty"`
	Z            [][]interface{} `json:"z,omitempty"`
	Labels       []interface{}   `json:"labels,omitempty"`
	Values       []float64       `json:"values,omitempty"`
	NBinsX       int             `json:"nbinsx,omitempty"`
	Marker       *marker         `json:"marker,omitempty"`
	Colorscale   string          `json:"colorscale,omitempty"`
	Reversescale bool            `json:"reversescale,omitempty"`
	Header       *tableHeader    `json:"header,omitempty"`
	Cells        *tableCells     `json:"cells,omitempty"`
}

type marker struct {
	Color   string  `json:"color,omitempty"`
	Size    int     `json:"size,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

type tableHeader struct {
	Values []string `json:"values"`
	Fill   *fill    `json:"fill,omitempty"`
	Align  string   `json:"align,omitempty"`
}

type tableCells struct {
	Values [][]interface{} `json:"values"`
	Fill   *fill           `json:"fill,omitempty"`
	Align  string          `json:"align,omitempty"`
}

type fill struct {
	Color string `json:"color"`
}

type layout struct {
	Title    string `json:"title,omitempty"`
	XAxis    *axis  `json:"xaxis,omitempty"`
	YAxis    *axis  `json:"yaxis,omitempty"`
	Template string `json:"template,omitempty"`
}

type axis struct {
	Title string `json:"title"`
}

// Package chart renders query results into Plotly figure payloads.
//
// Each DISPLAY AS kind maps to one figure builder. Builders pick their
// columns from the result schema the way an analyst would: bar charts
// put the first categorical column on the x axis, scatter plots take
// the first two numeric columns, heatmaps correlate every numeric
// column. Results of mining queries keep their extra context: scatter
// plots split traces by the cluster column and highlight rows flagged
// is_anomaly.
//
// The payload is a JSON document {chart_type, data, layout} where data
// and layout follow the plotly.js schema.
package chart

package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter outputs rows as an ASCII table for terminal use
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format renders rows as a bordered table with the schema as header
func (t *TableFormatter) Format(schema []string, rows []map[string]interface{}) error {
	columns := columnsFor(schema, rows)
	if len(columns) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(columns)
	// Column names stay as written in the query.
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = formatValue(row[col])
		}
		table.Append(record)
	}

	table.Render()
	return nil
}

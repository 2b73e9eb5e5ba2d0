package output

import (
	"io"
	"sort"
)

// Formatter defines the interface for result formatters.
//
// Implementers must provide Format to write rows in the target format
// and SetOutput to change the output destination. The schema fixes the
// column order; formatters fall back to the sorted union of row keys
// when it is empty.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(schema []string, rows []map[string]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// columnsFor returns the output column order: the schema when one is
// known, otherwise the sorted union of row keys.
func columnsFor(schema []string, rows []map[string]interface{}) []string {
	if len(schema) > 0 {
		return schema
	}
	columnSet := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			columnSet[col] = true
		}
	}
	columns := make([]string, 0, len(columnSet))
	for col := range columnSet {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

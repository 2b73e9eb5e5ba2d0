package store

import (
	"fmt"
	"strings"

	"github.com/vegasq/dqml/query"
)

// applyGroupBy collapses rows that share the grouping columns to one
// representative row each, the first row seen. The grammar has no
// aggregate projection, so grouping behaves like DISTINCT over the
// grouping key while keeping the remaining columns from the
// representative. Groups keep first-appearance order.
func applyGroupBy(rows []map[string]interface{}, groupBy []query.ColumnRef) ([]map[string]interface{}, error) {
	if len(rows) == 0 {
		return rows, nil
	}

	seen := make(map[string]bool, len(rows))
	result := make([]map[string]interface{}, 0, len(rows))

	for _, row := range rows {
		key, err := groupKey(row, groupBy)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, row)
	}

	return result, nil
}

// groupKey builds a hash key from the grouping column values. Column
// names are part of the key to prevent cross-column collisions.
func groupKey(row map[string]interface{}, groupBy []query.ColumnRef) (string, error) {
	var keyBuilder strings.Builder

	for i, col := range groupBy {
		value, exists := row[col.Column]
		if !exists && col.Table != "" {
			value, exists = row[col.Name()]
		}
		if !exists {
			return "", fmt.Errorf("grouping column %q not found in row", col.Name())
		}

		if i > 0 {
			keyBuilder.WriteString("\x00||\x00") // Use unlikely separator to avoid collisions
		}
		keyBuilder.WriteString(col.Column)
		keyBuilder.WriteString("\x00:\x00")
		keyBuilder.WriteString(fmt.Sprintf("%#v", value))
	}

	return keyBuilder.String(), nil
}

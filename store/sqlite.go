package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// ReadSQLite loads every user table from a SQLite database file. The
// sqlite_ internal tables are skipped. Values arrive as driver-native
// types; BLOB columns are converted to strings.
func ReadSQLite(path string) (map[string]*Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	names, err := listTables(db)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]*Table, len(names))
	for _, name := range names {
		table, err := readSQLiteTable(db, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read table %q: %w", name, err)
		}
		tables[name] = table
	}

	return tables, nil
}

func listTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

func readSQLiteTable(db *sql.DB, name string) (*Table, error) {
	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s", quoteIdent(name)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: cols}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = vals[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, rows.Err()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadFile loads a data file into the store and returns the names of
// the tables it registered. The table name is the file base name
// without extensions; SQLite files register every user table under its
// own name. Recognized extensions: .csv, .csv.gz, .parquet, .xlsx,
// .db, .sqlite, .sqlite3.
func (s *Store) LoadFile(database, path string) ([]string, error) {
	switch {
	case strings.HasSuffix(path, ".csv"), strings.HasSuffix(path, ".csv.gz"):
		columns, rows, err := ReadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		name := tableName(path)
		s.AddTable(database, name, columns, rows)
		return []string{name}, nil

	case strings.HasSuffix(path, ".parquet"):
		columns, rows, err := ReadParquet(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		name := tableName(path)
		s.AddTable(database, name, columns, rows)
		return []string{name}, nil

	case strings.HasSuffix(path, ".xlsx"):
		columns, rows, err := ReadXLSX(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		name := tableName(path)
		s.AddTable(database, name, columns, rows)
		return []string{name}, nil

	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"), strings.HasSuffix(path, ".sqlite3"):
		tables, err := ReadSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		names := make([]string, 0, len(tables))
		for name := range tables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s.AddTable(database, name, tables[name].Columns, tables[name].Rows)
		}
		return names, nil

	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// LoadDir loads every recognized data file directly inside a
// directory and returns the registered table names in load order.
// Unrecognized files are skipped.
func (s *Store) LoadDir(database, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !recognizedDataFile(entry.Name()) {
			continue
		}
		loaded, err := s.LoadFile(database, filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		names = append(names, loaded...)
	}

	return names, nil
}

func recognizedDataFile(name string) bool {
	for _, suffix := range []string{".csv", ".csv.gz", ".parquet", ".xlsx", ".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// tableName derives a table name from a file path: the base name with
// every extension stripped, so data.csv.gz becomes data.
func tableName(path string) string {
	base := filepath.Base(path)
	if idx := strings.Index(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}

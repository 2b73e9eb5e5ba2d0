package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vegasq/dqml/query"
)

// Sentinel errors for retrieval failures. They surface through the
// orchestrator as StoreFailure execution errors.
var (
	// ErrUnknownTable is returned when a retrieval names a relation the
	// store does not hold.
	ErrUnknownTable = errors.New("unknown table")

	// ErrJoinUnsupported is returned when a retrieval names more than
	// one relation. Multi-relation queries compile, but the store does
	// not execute joins.
	ErrJoinUnsupported = errors.New("join execution is not supported")
)

// Table holds one relation: its ordered column list and its rows.
type Table struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Store is an in-memory table store grouped by database name. The
// empty database name is the default scope. A Store implements both
// query.Catalog and query.Retriever.
type Store struct {
	mu        sync.RWMutex
	databases map[string]map[string]*Table
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{databases: make(map[string]map[string]*Table)}
}

// AddTable registers a table, replacing any previous table with the
// same name in the same database.
func (s *Store) AddTable(database, name string, columns []string, rows []map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, ok := s.databases[database]
	if !ok {
		tables = make(map[string]*Table)
		s.databases[database] = tables
	}
	tables[name] = &Table{
		Columns: append([]string{}, columns...),
		Rows:    rows,
	}
}

// LookupTable returns a copy of the ordered column list for a table,
// or false when the database or table does not exist.
func (s *Store) LookupTable(database, table string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.databases[database][table]
	if !ok {
		return nil, false
	}
	return append([]string{}, t.Columns...), true
}

// Databases returns the database names in sorted order. The default
// scope appears as the empty string when it holds tables.
func (s *Store) Databases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns the table names of one database in sorted order.
func (s *Store) Tables(database string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := s.databases[database]
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Retrieve runs the retrieval pipeline for a single-relation spec:
// filter, group, order, project. The returned rows are fresh maps, so
// later stages may augment them without touching the stored data.
func (s *Store) Retrieve(spec query.RetrievalSpec) ([]string, []map[string]interface{}, error) {
	if len(spec.Tables) == 0 {
		return nil, nil, errors.New("retrieval spec names no relation")
	}
	if len(spec.Tables) > 1 {
		return nil, nil, fmt.Errorf("%w: query names %d relations", ErrJoinUnsupported, len(spec.Tables))
	}

	s.mu.RLock()
	table, ok := s.databases[spec.Database][spec.Tables[0]]
	s.mu.RUnlock()
	if !ok {
		if spec.Database != "" {
			return nil, nil, fmt.Errorf("%w: %q in database %q", ErrUnknownTable, spec.Tables[0], spec.Database)
		}
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTable, spec.Tables[0])
	}

	rows := table.Rows

	if spec.Where != nil {
		filtered, err := applyFilter(rows, spec.Where)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to apply filter: %w", err)
		}
		rows = filtered
	}

	if len(spec.GroupBy) > 0 {
		grouped, err := applyGroupBy(rows, spec.GroupBy)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to apply grouping: %w", err)
		}
		rows = grouped
	}

	if len(spec.OrderBy) > 0 {
		rows = applyOrderBy(rows, spec.OrderBy)
	}

	schema, projected := applyProjection(rows, table.Columns, spec.Columns)
	return schema, projected, nil
}

// applyFilter keeps the rows the condition accepts. Evaluation errors
// abort the whole retrieval.
func applyFilter(rows []map[string]interface{}, filter query.Expression) ([]map[string]interface{}, error) {
	result := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		match, err := filter.Evaluate(row)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, row)
		}
	}
	return result, nil
}

// applyOrderBy sorts rows by the order items in sequence. Nil and
// missing values sort first ascending, last descending. The sort is
// stable so equal rows keep their retrieval order.
func applyOrderBy(rows []map[string]interface{}, orderBy []query.OrderByItem) []map[string]interface{} {
	if len(rows) == 0 {
		return rows
	}

	sorted := make([]map[string]interface{}, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		for _, item := range orderBy {
			valI := lookupValue(sorted[i], item.Column)
			valJ := lookupValue(sorted[j], item.Column)

			cmp := query.CompareValues(valI, valJ)
			if cmp != 0 {
				if item.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})

	return sorted
}

// applyProjection builds the output schema and fresh row maps. A nil
// select list is the wildcard: every stored column in its table order.
// Qualified references project under their bare column name.
func applyProjection(rows []map[string]interface{}, tableColumns []string, selected []query.ColumnRef) ([]string, []map[string]interface{}) {
	var schema []string
	var refs []query.ColumnRef

	if selected == nil {
		schema = append([]string{}, tableColumns...)
		for _, col := range schema {
			refs = append(refs, query.ColumnRef{Column: col})
		}
	} else {
		seen := make(map[string]bool, len(selected))
		for _, col := range selected {
			if seen[col.Column] {
				continue
			}
			seen[col.Column] = true
			schema = append(schema, col.Column)
			refs = append(refs, col)
		}
	}

	projected := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		out := make(map[string]interface{}, len(refs))
		for j, ref := range refs {
			out[schema[j]] = lookupValue(row, ref)
		}
		projected[i] = out
	}

	return schema, projected
}

// lookupValue reads a column from a row, trying the bare name first
// and the qualified name second. Missing columns read as nil.
func lookupValue(row map[string]interface{}, col query.ColumnRef) interface{} {
	if value, exists := row[col.Column]; exists {
		return value
	}
	if col.Table != "" {
		if value, exists := row[col.Name()]; exists {
			return value
		}
	}
	return nil
}

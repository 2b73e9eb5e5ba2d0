// Package store provides the in-memory table store behind query
// execution.
//
// A Store groups tables by database name and serves two roles: it is
// the schema catalog consulted during semantic validation, and it is
// the retriever that runs the filter, group, order and project stages
// of a compiled retrieval spec. Tables are loaded from data files;
// once loaded, rows are never mutated in place, and retrieval hands
// out fresh row maps so downstream stages can annotate them freely.
//
// # Loading Data
//
// Loading a CSV file into the default database scope:
//
//	s := store.NewStore()
//	tables, err := s.LoadFile("", "users.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(tables) // [users]
//
// Loaders exist for CSV (plain and gzip-compressed, with UTF-16
// detection), Parquet, XLSX and SQLite files. A SQLite file registers
// every user table it contains; the other formats register one table
// named after the file.
//
// # Retrieval
//
// A Store satisfies both collaborator interfaces of the query package:
//
//	plan, err := query.Compile("SELECT name FROM users WHERE age > 30", s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	schema, rows, err := s.Retrieve(plan.Retrieval)
//
// Multi-relation retrieval specs are rejected with ErrJoinUnsupported:
// such queries compile, but the store does not execute joins.
//
// # Concurrency
//
// All methods are safe for concurrent use. Lookups and retrievals see
// a point-in-time view of a table; loading a file replaces tables
// wholesale rather than mutating them.
package store

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/vegasq/dqml/chart"
	"github.com/vegasq/dqml/mine"
	"github.com/vegasq/dqml/output"
	"github.com/vegasq/dqml/query"
	"github.com/vegasq/dqml/store"
)

var (
	queryFlag  = flag.String("q", "", "DQML query (e.g., \"SELECT * FROM sales WHERE amount > 100\")")
	dataFlag   = flag.String("d", "", "Data file or directory to load (csv, csv.gz, parquet, xlsx, sqlite)")
	dbFlag     = flag.String("db", "", "Database name the loaded tables register under")
	formatFlag = flag.String("f", "jsonl", "Output format: jsonl, csv, table")
	limitFlag  = flag.Int("limit", 0, "Limit number of output rows (0 = unlimited)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [file ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A tool to run DQML queries over local data files.\n\n")
		fmt.Fprintf(os.Stderr, "IMPORTANT: All flags must come BEFORE file arguments.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nWithout -q an interactive shell starts.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -d sales.csv -q \"SELECT * FROM sales WHERE amount > 100\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -d data/ -q \"SELECT x, y FROM points MINE CLUSTER K=3\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f table -d sales.csv -q \"SELECT region, SUM(amount) FROM sales GROUP BY region\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -d warehouse.db\n", os.Args[0])
	}

	flag.Parse()

	if *limitFlag < 0 {
		fmt.Fprintf(os.Stderr, "Error: -limit must be non-negative, got %d\n", *limitFlag)
		os.Exit(1)
	}

	st := store.NewStore()
	if *dataFlag != "" {
		if err := loadPath(st, *dbFlag, *dataFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	for _, path := range flag.Args() {
		if err := loadPath(st, *dbFlag, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	formatter, err := newFormatter(*formatFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Supported formats: jsonl, csv, table\n")
		os.Exit(1)
	}

	orch := query.NewOrchestrator(st, mine.New(), chart.New())

	if *queryFlag != "" {
		if err := runQuery(os.Stdout, orch, st, formatter, *queryFlag, *limitFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runREPL(orch, st, formatter, *limitFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadPath loads one data file, or every recognized file directly
// inside a directory.
func loadPath(st *store.Store, database, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file %q not found", path)
		}
		return err
	}

	if info.IsDir() {
		names, err := st.LoadDir(database, path)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return fmt.Errorf("no recognized data files in %q", path)
		}
		return nil
	}

	_, err = st.LoadFile(database, path)
	return err
}

func newFormatter(format string) (output.Formatter, error) {
	switch format {
	case "json", "jsonl":
		return output.NewJSONFormatter(os.Stdout), nil
	case "csv":
		return output.NewCSVFormatter(os.Stdout), nil
	case "table":
		return output.NewTableFormatter(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// runQuery compiles and executes one query, writing rows through the
// formatter and any mining or chart payload as JSON lines after them.
func runQuery(w io.Writer, orch *query.Orchestrator, catalog query.Catalog, formatter output.Formatter, text string, limit int) error {
	result, err := orch.Run(text, catalog)
	if err != nil {
		return err
	}
	if !result.Success {
		return result.Err
	}

	rows := result.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	formatter.SetOutput(w)
	if err := formatter.Format(result.Schema, rows); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if result.Mining != nil {
		payload, err := json.Marshal(map[string]interface{}{"mining": result.Mining})
		if err != nil {
			return fmt.Errorf("failed to encode mining summary: %w", err)
		}
		fmt.Fprintln(w, string(payload))
	}
	if len(result.Chart) > 0 {
		payload, err := json.Marshal(map[string]interface{}{"chart": result.Chart})
		if err != nil {
			return fmt.Errorf("failed to encode chart: %w", err)
		}
		fmt.Fprintln(w, string(payload))
	}
	return nil
}

func runREPL(orch *query.Orchestrator, st *store.Store, formatter output.Formatter, limit int) error {
	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".dqml_history")
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "dqml> ",
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Println("Welcome to dqml. Type a query, 'tables' to list relations, 'exit' to leave.")
repl:
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue repl
		} else if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error while reading line:", err)
			continue repl
		}

		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case "":
			continue repl
		case "exit", "quit", `\q`:
			break repl
		case "tables":
			printTables(st)
			continue repl
		}

		if err := runQuery(os.Stdout, orch, st, formatter, trimmed, limit); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return nil
}

// printTables lists every relation as db.table, with tables of the
// default scope bare.
func printTables(st *store.Store) {
	total := 0
	for _, db := range st.Databases() {
		for _, table := range st.Tables(db) {
			if db == "" {
				fmt.Println(table)
			} else {
				fmt.Printf("%s.%s\n", db, table)
			}
			total++
		}
	}
	if total == 0 {
		fmt.Println("No tables loaded. Start with -d <file-or-dir>.")
	}
}

package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// ReadParquet reads a parquet file into an ordered column list and
// rows. Columns follow the file schema order; the entire file is
// loaded into memory.
func ReadParquet(path string) ([]string, []map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	fields := pqFile.Schema().Fields()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name()
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	rows := make([]map[string]interface{}, 0)
	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}

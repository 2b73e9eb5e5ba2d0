package store

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV reads a CSV file into an ordered column list and typed rows.
// The first record is the header. Cell types are inferred per cell:
// booleans, then integers, then floats, then strings; empty cells read
// as nil. Files ending in .gz are decompressed, and UTF-16 input is
// detected by its byte order mark and decoded.
func ReadCSV(path string) ([]string, []map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var src io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() { _ = gz.Close() }()
		src = gz
	}

	return readCSVStream(src)
}

func readCSVStream(src io.Reader) ([]string, []map[string]interface{}, error) {
	reader := csv.NewReader(decodeTextStream(src))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("file has no header row")
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var rows []map[string]interface{}
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = typeCell(record[i])
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}

// decodeTextStream strips a UTF-8 byte order mark and transparently
// decodes UTF-16 input when a UTF-16 byte order mark is present.
func decodeTextStream(src io.Reader) io.Reader {
	br := bufio.NewReader(src)

	head, err := br.Peek(3)
	if err != nil && len(head) < 2 {
		return br
	}

	// UTF-16 LE BOM: FF FE, UTF-16 BE BOM: FE FF
	if len(head) >= 2 && ((head[0] == 0xFF && head[1] == 0xFE) || (head[0] == 0xFE && head[1] == 0xFF)) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, decoder)
	}

	// UTF-8 BOM: EF BB BF
	if len(head) == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	return br
}

// typeCell infers a Go value from a CSV cell
func typeCell(cell string) interface{} {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}

	if strings.EqualFold(trimmed, "true") {
		return true
	}
	if strings.EqualFold(trimmed, "false") {
		return false
	}

	if intVal, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return intVal
	}
	if floatVal, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return floatVal
	}

	return trimmed
}

package store

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first sheet of an XLSX workbook. The first row is
// the header; cell typing matches the CSV loader.
func ReadXLSX(path string) ([]string, []map[string]interface{}, error) {
	return ReadXLSXSheet(path, "")
}

// ReadXLSXSheet reads a named sheet of an XLSX workbook. An empty
// sheet name selects the first sheet.
func ReadXLSXSheet(path, sheet string) ([]string, []map[string]interface{}, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("no sheets found in excel file")
		}
		sheet = sheets[0]
	}

	records, err := file.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	header := records[0]
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	rows := make([]map[string]interface{}, 0, len(records)-1)
	for _, record := range records[1:] {
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

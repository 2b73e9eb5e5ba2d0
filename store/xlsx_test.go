package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func createXLSXFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.xlsx")

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := [][]interface{}{
		{"id", "name", "age"},
		{1, "Ann", 34},
		{2, "Bob", 28},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("failed to set row: %v", err)
		}
	}

	if _, err := f.NewSheet("extras"); err != nil {
		t.Fatalf("failed to add sheet: %v", err)
	}
	if err := f.SetSheetRow("extras", "A1", &[]interface{}{"code"}); err != nil {
		t.Fatalf("failed to set row: %v", err)
	}
	if err := f.SetSheetRow("extras", "A2", &[]interface{}{"xy"}); err != nil {
		t.Fatalf("failed to set row: %v", err)
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}

	return path
}

func TestReadXLSX(t *testing.T) {
	path := createXLSXFile(t)

	columns, rows, err := ReadXLSX(path)
	if err != nil {
		t.Fatalf("ReadXLSX() error = %v", err)
	}

	if !reflect.DeepEqual(columns, []string{"id", "name", "age"}) {
		t.Errorf("columns = %v", columns)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Cells arrive as text and go through the same typing as CSV
	if rows[0]["id"] != int64(1) || rows[0]["name"] != "Ann" || rows[0]["age"] != int64(34) {
		t.Errorf("rows[0] = %v", rows[0])
	}
}

func TestReadXLSXSheet(t *testing.T) {
	path := createXLSXFile(t)

	columns, rows, err := ReadXLSXSheet(path, "extras")
	if err != nil {
		t.Fatalf("ReadXLSXSheet() error = %v", err)
	}
	if !reflect.DeepEqual(columns, []string{"code"}) {
		t.Errorf("columns = %v", columns)
	}
	if len(rows) != 1 || rows[0]["code"] != "xy" {
		t.Errorf("rows = %v", rows)
	}
}

func TestReadXLSX_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, _, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
			t.Error("ReadXLSX() expected error for missing file")
		}
	})

	t.Run("unknown sheet", func(t *testing.T) {
		path := createXLSXFile(t)
		if _, _, err := ReadXLSXSheet(path, "nope"); err == nil {
			t.Error("ReadXLSXSheet() expected error for unknown sheet")
		}
	})
}

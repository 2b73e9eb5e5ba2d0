// Package output provides formatters for writing query results to a
// stream.
//
// This package defines the Formatter interface and provides
// implementations for common output formats. All formatters work with
// an ordered schema plus rows represented as []map[string]interface{}.
//
// # Supported Formats
//
//   - JSON Lines: One JSON object per line (suitable for streaming)
//   - CSV: Comma-separated values with header row
//   - Table: Bordered ASCII table for terminal use
//
// # Basic Usage
//
// Using the JSON formatter:
//
//	formatter := output.NewJSONFormatter(os.Stdout)
//	if err := formatter.Format(result.Schema, result.Rows); err != nil {
//	    log.Fatal(err)
//	}
//
// Write to a bytes buffer to get string output:
//
//	var buf bytes.Buffer
//	formatter := output.NewCSVFormatter(&buf)
//	if err := formatter.Format(schema, rows); err != nil {
//	    log.Fatal(err)
//	}
//	csvString := buf.String()
//
// # Type Handling
//
// CSV and table output stringify cells: integers and floats print in
// their shortest form, nulls print empty, and strings beginning with
// formula characters (=, +, -, @) are quoted to block CSV injection in
// spreadsheet applications. The JSON formatter preserves value types.
package output

package mine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vegasq/dqml/query"
)

// labeledRows builds two well-separated classes of five points each.
func labeledRows() ([]string, []map[string]interface{}) {
	schema := []string{"x", "y", "label"}
	rows := []map[string]interface{}{
		{"x": 0.0, "y": 0.0, "label": "low"},
		{"x": 1.0, "y": 0.5, "label": "low"},
		{"x": 0.5, "y": 1.0, "label": "low"},
		{"x": 1.0, "y": 1.0, "label": "low"},
		{"x": 0.0, "y": 1.0, "label": "low"},
		{"x": 100.0, "y": 100.0, "label": "high"},
		{"x": 101.0, "y": 99.0, "label": "high"},
		{"x": 99.0, "y": 100.0, "label": "high"},
		{"x": 100.0, "y": 101.0, "label": "high"},
		{"x": 101.0, "y": 101.0, "label": "high"},
	}
	return schema, rows
}

func TestClassification_SeparableClasses(t *testing.T) {
	schema, rows := labeledRows()
	miner := New()

	outSchema, outRows, summary, err := miner.Mine(schema, rows, query.MiningOp{Kind: query.MineClassification, Target: "label"}, nil)
	if err != nil {
		t.Fatalf("Mine() error = %v", err)
	}

	if !reflect.DeepEqual(outSchema, schema) {
		t.Errorf("schema = %v, want %v unchanged", outSchema, schema)
	}
	if !reflect.DeepEqual(outRows, rows) {
		t.Error("rows changed by classification")
	}

	cs, ok := summary.(ClassificationSummary)
	if !ok {
		t.Fatalf("summary type = %T, want ClassificationSummary", summary)
	}
	if cs.Target != "label" {
		t.Errorf("Target = %q, want label", cs.Target)
	}
	if !reflect.DeepEqual(cs.FeatureColumns, []string{"x", "y"}) {
		t.Errorf("FeatureColumns = %v, want [x y]", cs.FeatureColumns)
	}
	if cs.Accuracy != 1.0 {
		t.Errorf("Accuracy = %v, want 1.0 on separable classes", cs.Accuracy)
	}
	wantCounts := map[string]int{"low": 5, "high": 5}
	if !reflect.DeepEqual(cs.ClassCounts, wantCounts) {
		t.Errorf("ClassCounts = %v, want %v", cs.ClassCounts, wantCounts)
	}
	if cs.NTrain != 8 || cs.NTest != 2 {
		t.Errorf("split = %d/%d, want 8/2", cs.NTrain, cs.NTest)
	}
}

func TestClassification_NumericTarget(t *testing.T) {
	schema := []string{"x", "grade"}
	rows := []map[string]interface{}{
		{"x": 0.0, "grade": int64(0)},
		{"x": 1.0, "grade": int64(0)},
		{"x": 2.0, "grade": int64(0)},
		{"x": 50.0, "grade": int64(1)},
		{"x": 51.0, "grade": int64(1)},
		{"x": 52.0, "grade": int64(1)},
	}
	miner := New()

	_, _, summary, err := miner.Mine(schema, rows, query.MiningOp{Kind: query.MineClassification, Target: "grade"}, nil)
	if err != nil {
		t.Fatalf("Mine() error = %v", err)
	}

	cs := summary.(ClassificationSummary)
	// The numeric target never doubles as a feature.
	if !reflect.DeepEqual(cs.FeatureColumns, []string{"x"}) {
		t.Errorf("FeatureColumns = %v, want [x]", cs.FeatureColumns)
	}
	wantCounts := map[string]int{"0": 3, "1": 3}
	if !reflect.DeepEqual(cs.ClassCounts, wantCounts) {
		t.Errorf("ClassCounts = %v, want %v", cs.ClassCounts, wantCounts)
	}
	if cs.NTrain+cs.NTest != 6 {
		t.Errorf("split = %d/%d, want 6 rows total", cs.NTrain, cs.NTest)
	}
}

func TestClassification_SkipsUnlabeledRows(t *testing.T) {
	schema, rows := labeledRows()
	rows = append(rows, map[string]interface{}{"x": 50.0, "y": 50.0, "label": nil})
	miner := New()

	_, _, summary, err := miner.Mine(schema, rows, query.MiningOp{Kind: query.MineClassification, Target: "label"}, nil)
	if err != nil {
		t.Fatalf("Mine() error = %v", err)
	}

	cs := summary.(ClassificationSummary)
	if cs.NTrain+cs.NTest != 10 {
		t.Errorf("split = %d/%d, want 10 labeled rows total", cs.NTrain, cs.NTest)
	}
	wantCounts := map[string]int{"low": 5, "high": 5}
	if !reflect.DeepEqual(cs.ClassCounts, wantCounts) {
		t.Errorf("ClassCounts = %v, want %v", cs.ClassCounts, wantCounts)
	}
}

func TestClassification_Deterministic(t *testing.T) {
	schema, rows := labeledRows()
	miner := New()
	op := query.MiningOp{Kind: query.MineClassification, Target: "label"}

	_, _, s1, err := miner.Mine(schema, rows, op, nil)
	if err != nil {
		t.Fatalf("first Mine() error = %v", err)
	}
	_, _, s2, err := miner.Mine(schema, rows, op, nil)
	if err != nil {
		t.Fatalf("second Mine() error = %v", err)
	}
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("summaries differ: %+v vs %+v", s1, s2)
	}
}

func TestClassification_Errors(t *testing.T) {
	schema, rows := labeledRows()
	miner := New()

	tests := []struct {
		name    string
		schema  []string
		rows    []map[string]interface{}
		target  string
		wantErr error
	}{
		{
			name:    "target not in columns",
			schema:  schema,
			rows:    rows,
			target:  "segment",
			wantErr: ErrInvalidParameter,
		},
		{
			name:   "no features besides target",
			schema: []string{"label", "note"},
			rows: []map[string]interface{}{
				{"label": "a", "note": "x"},
				{"label": "b", "note": "y"},
			},
			target:  "label",
			wantErr: ErrInsufficientData,
		},
		{
			name:    "single labeled row",
			schema:  schema,
			rows:    rows[:1],
			target:  "label",
			wantErr: ErrInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := miner.Mine(tt.schema, tt.rows, query.MiningOp{Kind: query.MineClassification, Target: tt.target}, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Mine() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

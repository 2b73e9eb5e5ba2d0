package query

import (
	"encoding/json"
	"errors"
	"testing"
)

type fakeRetriever struct {
	schema []string
	rows   []map[string]interface{}
	err    error
	calls  int
	spec   RetrievalSpec
}

func (r *fakeRetriever) Retrieve(spec RetrievalSpec) ([]string, []map[string]interface{}, error) {
	r.calls++
	r.spec = spec
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.schema, r.rows, nil
}

type fakeSummary struct {
	kind MiningKind
}

func (s fakeSummary) MiningKind() MiningKind { return s.kind }

type fakeMiner struct {
	err   error
	calls int
	op    MiningOp
}

func (m *fakeMiner) Mine(schema []string, rows []map[string]interface{}, op MiningOp, measures []Measure) ([]string, []map[string]interface{}, MiningSummary, error) {
	m.calls++
	m.op = op
	if m.err != nil {
		return nil, nil, nil, m.err
	}
	// Extend the schema the way a clustering run would
	schema = append(append([]string{}, schema...), "cluster")
	for _, row := range rows {
		row["cluster"] = int64(0)
	}
	return schema, rows, fakeSummary{kind: op.Kind}, nil
}

type fakeVisualizer struct {
	err   error
	calls int
	kind  string
}

func (v *fakeVisualizer) Render(schema []string, rows []map[string]interface{}, kind string) (json.RawMessage, error) {
	v.calls++
	v.kind = kind
	if v.err != nil {
		return nil, v.err
	}
	return json.RawMessage(`{"chart_type":"` + kind + `"}`), nil
}

func sampleRows() ([]string, []map[string]interface{}) {
	return []string{"id", "age"}, []map[string]interface{}{
		{"id": int64(1), "age": int64(30)},
		{"id": int64(2), "age": int64(40)},
	}
}

func TestOrchestrator_Execute(t *testing.T) {
	schema, rows := sampleRows()
	store := &fakeRetriever{schema: schema, rows: rows}
	miner := &fakeMiner{}
	viz := &fakeVisualizer{}
	orch := NewOrchestrator(store, miner, viz)

	plan := BuildPlan(mustParse(t, "FROM users MINE CLUSTER K=2 DISPLAY AS scatter_plot"))
	result := orch.Execute(plan)

	if !result.Success {
		t.Fatalf("Execute() failed: %v", result.Err)
	}
	if result.QueryID == "" {
		t.Error("QueryID should be set")
	}
	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}

	if store.calls != 1 || miner.calls != 1 || viz.calls != 1 {
		t.Errorf("calls = store %d, miner %d, viz %d; want 1 each", store.calls, miner.calls, viz.calls)
	}
	if miner.op.Kind != MineCluster || miner.op.K != 2 {
		t.Errorf("miner got op %+v, want CLUSTER K=2", miner.op)
	}
	if viz.kind != "scatter_plot" {
		t.Errorf("visualizer got kind %q, want scatter_plot", viz.kind)
	}

	wantSchema := []string{"id", "age", "cluster"}
	if len(result.Schema) != len(wantSchema) {
		t.Fatalf("Schema = %v, want %v", result.Schema, wantSchema)
	}
	for i, col := range wantSchema {
		if result.Schema[i] != col {
			t.Errorf("Schema[%d] = %q, want %q", i, result.Schema[i], col)
		}
	}
	if result.Mining == nil || result.Mining.MiningKind() != MineCluster {
		t.Errorf("Mining = %v, want cluster summary", result.Mining)
	}
	if len(result.Chart) == 0 {
		t.Error("Chart should be set")
	}
}

func TestOrchestrator_ExecuteWithoutOptionalStages(t *testing.T) {
	schema, rows := sampleRows()
	store := &fakeRetriever{schema: schema, rows: rows}
	// No miner, no visualizer: fine as long as the plan never needs them
	orch := NewOrchestrator(store, nil, nil)

	result := orch.Execute(BuildPlan(mustParse(t, "SELECT age FROM users WHERE age > 18")))
	if !result.Success {
		t.Fatalf("Execute() failed: %v", result.Err)
	}
	if result.Mining != nil {
		t.Errorf("Mining = %v, want nil", result.Mining)
	}
	if result.Chart != nil {
		t.Errorf("Chart = %v, want nil", result.Chart)
	}
	if store.spec.Where == nil {
		t.Error("retrieval spec should carry the condition")
	}
}

func TestOrchestrator_StageFailures(t *testing.T) {
	schema, rows := sampleRows()
	cause := errors.New("boom")

	tests := []struct {
		name     string
		store    *fakeRetriever
		miner    *fakeMiner
		viz      *fakeVisualizer
		wantKind ExecutionErrorKind
	}{
		{
			name:     "store failure",
			store:    &fakeRetriever{err: cause},
			miner:    &fakeMiner{},
			viz:      &fakeVisualizer{},
			wantKind: StoreFailure,
		},
		{
			name:     "mining failure",
			store:    &fakeRetriever{schema: schema, rows: rows},
			miner:    &fakeMiner{err: cause},
			viz:      &fakeVisualizer{},
			wantKind: MiningFailure,
		},
		{
			name:     "visualization failure",
			store:    &fakeRetriever{schema: schema, rows: rows},
			miner:    &fakeMiner{},
			viz:      &fakeVisualizer{err: cause},
			wantKind: VisualizationFailure,
		},
	}

	plan := BuildPlan(mustParse(t, "FROM users MINE CLUSTER K=2 DISPLAY AS scatter_plot"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := NewOrchestrator(tt.store, tt.miner, tt.viz)
			result := orch.Execute(plan)

			if result.Success {
				t.Fatal("Execute() should have failed")
			}
			if result.Err == nil {
				t.Fatal("Err should be set")
			}
			if result.Err.Kind != tt.wantKind {
				t.Errorf("Err.Kind = %v, want %v", result.Err.Kind, tt.wantKind)
			}
			if !errors.Is(result.Err, cause) {
				t.Error("Err should wrap the stage error")
			}

			// A failed run carries no partial payload
			if result.Schema != nil || result.Rows != nil || result.Mining != nil || result.Chart != nil {
				t.Error("failed result should carry no payload")
			}
			if result.QueryID == "" {
				t.Error("QueryID should be set even on failure")
			}
		})
	}
}

func TestOrchestrator_LaterStagesSkippedAfterFailure(t *testing.T) {
	store := &fakeRetriever{err: errors.New("read failed")}
	miner := &fakeMiner{}
	viz := &fakeVisualizer{}
	orch := NewOrchestrator(store, miner, viz)

	orch.Execute(BuildPlan(mustParse(t, "FROM users MINE ANOMALIES DISPLAY AS table")))
	if miner.calls != 0 {
		t.Errorf("miner.calls = %d, want 0 after store failure", miner.calls)
	}
	if viz.calls != 0 {
		t.Errorf("viz.calls = %d, want 0 after store failure", viz.calls)
	}
}

func TestOrchestrator_MissingCollaborators(t *testing.T) {
	schema, rows := sampleRows()

	t.Run("no store", func(t *testing.T) {
		orch := NewOrchestrator(nil, &fakeMiner{}, &fakeVisualizer{})
		result := orch.Execute(BuildPlan(mustParse(t, "FROM users")))
		if result.Success || result.Err == nil || result.Err.Kind != StoreFailure {
			t.Errorf("result = %+v, want store failure", result)
		}
	})

	t.Run("plan needs miner", func(t *testing.T) {
		orch := NewOrchestrator(&fakeRetriever{schema: schema, rows: rows}, nil, nil)
		result := orch.Execute(BuildPlan(mustParse(t, "FROM users MINE STATISTICS")))
		if result.Success || result.Err == nil || result.Err.Kind != MiningFailure {
			t.Errorf("result = %+v, want mining failure", result)
		}
	})

	t.Run("plan needs visualizer", func(t *testing.T) {
		orch := NewOrchestrator(&fakeRetriever{schema: schema, rows: rows}, nil, nil)
		result := orch.Execute(BuildPlan(mustParse(t, "FROM users DISPLAY AS bar_chart")))
		if result.Success || result.Err == nil || result.Err.Kind != VisualizationFailure {
			t.Errorf("result = %+v, want visualization failure", result)
		}
	})
}

func TestOrchestrator_UniqueQueryIDs(t *testing.T) {
	schema, rows := sampleRows()
	orch := NewOrchestrator(&fakeRetriever{schema: schema, rows: rows}, nil, nil)
	plan := BuildPlan(mustParse(t, "FROM users"))

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		result := orch.Execute(plan)
		if seen[result.QueryID] {
			t.Fatalf("QueryID %q repeated", result.QueryID)
		}
		seen[result.QueryID] = true
	}
}

func TestCompile(t *testing.T) {
	catalog := testCatalog()

	t.Run("valid", func(t *testing.T) {
		plan, err := Compile("SELECT name FROM users WHERE age > 18 MINE CLUSTER K=3", catalog)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if plan.Mining == nil || plan.Mining.Op.K != 3 {
			t.Errorf("plan.Mining = %+v, want CLUSTER K=3", plan.Mining)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Compile("SELECT FROM users WHERE", catalog)
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Errorf("Compile() error = %T, want *SyntaxError", err)
		}
	})

	t.Run("lex error", func(t *testing.T) {
		_, err := Compile("FROM users WHERE name = 'unterminated", catalog)
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Errorf("Compile() error = %T, want *LexError", err)
		}
	})

	t.Run("semantic error", func(t *testing.T) {
		_, err := Compile("FROM ghost", catalog)
		var semErr *SemanticError
		if !errors.As(err, &semErr) {
			t.Errorf("Compile() error = %T, want *SemanticError", err)
		}
	})
}

func TestOrchestrator_Run(t *testing.T) {
	schema, rows := sampleRows()
	orch := NewOrchestrator(&fakeRetriever{schema: schema, rows: rows}, &fakeMiner{}, &fakeVisualizer{})

	result, err := orch.Run("FROM users MINE CLUSTER K=2 DISPLAY AS scatter_plot", testCatalog())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Run() result failed: %v", result.Err)
	}

	// Compile-time failures surface as the error, not inside the result
	_, err = orch.Run("FROM ghost", testCatalog())
	if err == nil {
		t.Error("Run() expected error for unknown table")
	}
}

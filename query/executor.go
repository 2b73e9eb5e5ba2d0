package query

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Retriever fetches rows for a retrieval spec. It returns the ordered
// output schema alongside the rows.
type Retriever interface {
	Retrieve(spec RetrievalSpec) ([]string, []map[string]interface{}, error)
}

// MiningSummary is the typed summary payload of a mining run
type MiningSummary interface {
	MiningKind() MiningKind
}

// Miner runs a mining operation over retrieved rows. It may extend the
// schema and rows (cluster labels, anomaly flags) and returns a
// summary payload describing the run.
type Miner interface {
	Mine(schema []string, rows []map[string]interface{}, op MiningOp, measures []Measure) ([]string, []map[string]interface{}, MiningSummary, error)
}

// Visualizer renders rows into a chart payload
type Visualizer interface {
	Render(schema []string, rows []map[string]interface{}, kind string) (json.RawMessage, error)
}

// ExecutionResult carries everything one query run produced. On
// failure Success is false, Err identifies the failed stage and all
// payload fields are empty.
type ExecutionResult struct {
	QueryID string
	Success bool
	Schema  []string
	Rows    []map[string]interface{}
	Mining  MiningSummary
	Chart   json.RawMessage
	Err     *ExecutionError
}

// Orchestrator drives compiled plans through the retrieve, mine and
// visualize stages
type Orchestrator struct {
	store Retriever
	miner Miner
	viz   Visualizer
}

// NewOrchestrator creates an orchestrator. The miner and visualizer
// may be nil when the workload never uses MINE or DISPLAY AS.
func NewOrchestrator(store Retriever, miner Miner, viz Visualizer) *Orchestrator {
	return &Orchestrator{store: store, miner: miner, viz: viz}
}

// Execute runs a plan. Stages run in order and the first failure
// aborts the whole run, so a result is either complete or empty.
func (o *Orchestrator) Execute(plan *ExecutionPlan) ExecutionResult {
	result := ExecutionResult{QueryID: uuid.NewString()}

	if o.store == nil {
		result.Err = &ExecutionError{Kind: StoreFailure, Err: errors.New("no store configured")}
		return result
	}

	schema, rows, err := o.store.Retrieve(plan.Retrieval)
	if err != nil {
		result.Err = &ExecutionError{Kind: StoreFailure, Err: err}
		return result
	}

	var summary MiningSummary
	if plan.Mining != nil {
		if o.miner == nil {
			result.Err = &ExecutionError{Kind: MiningFailure, Err: errors.New("no miner configured")}
			return result
		}
		schema, rows, summary, err = o.miner.Mine(schema, rows, plan.Mining.Op, plan.Mining.Measures)
		if err != nil {
			result.Err = &ExecutionError{Kind: MiningFailure, Err: err}
			return result
		}
	}

	var chart json.RawMessage
	if plan.Display != nil {
		if o.viz == nil {
			result.Err = &ExecutionError{Kind: VisualizationFailure, Err: errors.New("no visualizer configured")}
			return result
		}
		chart, err = o.viz.Render(schema, rows, plan.Display.Kind)
		if err != nil {
			result.Err = &ExecutionError{Kind: VisualizationFailure, Err: err}
			return result
		}
	}

	result.Success = true
	result.Schema = schema
	result.Rows = rows
	result.Mining = summary
	result.Chart = chart
	return result
}

// Compile runs the front half of the pipeline: tokenize, parse,
// validate against the catalog and build the plan
func Compile(text string, catalog Catalog) (*ExecutionPlan, error) {
	q, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if _, err := Validate(q, catalog); err != nil {
		return nil, err
	}
	return BuildPlan(q), nil
}

// Run compiles and executes in one call. Compile-time failures come
// back as the error, execution failures sit inside the result.
func (o *Orchestrator) Run(text string, catalog Catalog) (ExecutionResult, error) {
	plan, err := Compile(text, catalog)
	if err != nil {
		return ExecutionResult{}, err
	}
	return o.Execute(plan), nil
}

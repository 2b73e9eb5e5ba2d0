package query

// RetrievalSpec tells the store what to fetch
type RetrievalSpec struct {
	Database string
	Tables   []string
	Columns  []ColumnRef // nil means every column
	Where    Expression
	GroupBy  []ColumnRef
	OrderBy  []OrderByItem
}

// MiningSpec tells the miner what to run
type MiningSpec struct {
	Op       MiningOp
	Measures []Measure
}

// DisplaySpec tells the visualizer what to render
type DisplaySpec struct {
	Kind string
}

// ExecutionPlan is the compiled form of a validated query
type ExecutionPlan struct {
	Retrieval RetrievalSpec
	Mining    *MiningSpec
	Display   *DisplaySpec
}

// BuildPlan lowers a validated query into an execution plan. Building
// cannot fail: an absent or * projection becomes the wildcard (nil
// Columns) and the chart kind is carried through verbatim. Measures
// without a MINE clause have no consumer and are dropped.
func BuildPlan(q *Query) *ExecutionPlan {
	plan := &ExecutionPlan{
		Retrieval: RetrievalSpec{
			Database: q.Database,
			Tables:   q.Tables,
			Where:    q.Where,
			GroupBy:  q.GroupBy,
			OrderBy:  q.OrderBy,
		},
	}

	if len(q.Select) > 0 {
		plan.Retrieval.Columns = q.Select
	}

	if q.Mine != nil {
		plan.Mining = &MiningSpec{Op: *q.Mine, Measures: q.Measures}
	}

	if q.Display != "" {
		plan.Display = &DisplaySpec{Kind: q.Display}
	}

	return plan
}

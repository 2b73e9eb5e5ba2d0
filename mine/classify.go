package mine

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/vegasq/dqml/query"
)

// Evaluation settings for CLASSIFICATION runs. The split is seeded so
// the reported accuracy is stable across runs.
const (
	defaultNeighbors = 5
	testFraction     = 0.2
	splitSeed        = 42
)

// ClassificationSummary describes a k-nearest-neighbours evaluation:
// the frame is split into train and test parts and the accuracy is
// measured on the held-out rows.
type ClassificationSummary struct {
	Target         string         `json:"target"`
	FeatureColumns []string       `json:"feature_columns"`
	Accuracy       float64        `json:"accuracy"`
	ClassCounts    map[string]int `json:"class_counts"`
	NTrain         int            `json:"n_train"`
	NTest          int            `json:"n_test"`
}

// MiningKind identifies the summary as a classification payload.
func (ClassificationSummary) MiningKind() query.MiningKind {
	return query.MineClassification
}

// classify evaluates a k-NN classifier for the target column over the
// standardized numeric features. Rows pass through unchanged.
func classify(schema []string, rows []map[string]interface{}, target string) ([]string, []map[string]interface{}, query.MiningSummary, error) {
	if !schemaHas(schema, target) {
		return nil, nil, nil, fmt.Errorf("%w: target column %q is not in the result columns", ErrInvalidParameter, target)
	}

	features := featureColumnsFor(schema, rows, target)
	if len(features) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no numeric feature columns besides the target", ErrInsufficientData)
	}

	// Only labeled rows take part in the evaluation.
	var labeled []map[string]interface{}
	for _, row := range rows {
		if v, ok := row[target]; ok && v != nil {
			labeled = append(labeled, row)
		}
	}
	if len(labeled) < 2 {
		return nil, nil, nil, fmt.Errorf("%w: classification needs at least 2 labeled rows, have %d", ErrInsufficientData, len(labeled))
	}

	labels := make([]string, len(labeled))
	classCounts := make(map[string]int)
	for i, row := range labeled {
		labels[i] = fmt.Sprintf("%v", row[target])
		classCounts[labels[i]]++
	}

	matrix := featureMatrix(labeled, features)
	scaled, _, _ := standardize(matrix)

	trainIdx, testIdx := splitIndices(len(labeled))
	k := defaultNeighbors
	if k > len(trainIdx) {
		k = len(trainIdx)
	}

	correct := 0
	for _, ti := range testIdx {
		if predictLabel(scaled, labels, trainIdx, ti, k) == labels[ti] {
			correct++
		}
	}

	summary := ClassificationSummary{
		Target:         target,
		FeatureColumns: features,
		Accuracy:       roundTo(float64(correct)/float64(len(testIdx)), 4),
		ClassCounts:    classCounts,
		NTrain:         len(trainIdx),
		NTest:          len(testIdx),
	}
	return schema, rows, summary, nil
}

// schemaHas reports whether the schema contains the column.
func schemaHas(schema []string, col string) bool {
	for _, have := range schema {
		if have == col {
			return true
		}
	}
	return false
}

// featureColumnsFor returns the numeric columns usable as model
// features, excluding the target itself.
func featureColumnsFor(schema []string, rows []map[string]interface{}, target string) []string {
	var features []string
	for _, col := range numericColumns(schema, rows) {
		if col != target {
			features = append(features, col)
		}
	}
	return features
}

// splitIndices shuffles 0..n-1 with a fixed seed and carves off the
// test fraction, at least one row on each side.
func splitIndices(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewPCG(splitSeed, 0))
	rng.Shuffle(n, func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

	nTest := int(float64(n) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}
	return idx[nTest:], idx[:nTest]
}

// predictLabel votes among the k training points nearest to the test
// point. Ties break toward the lexicographically smallest label.
func predictLabel(points [][]float64, labels []string, trainIdx []int, testPoint, k int) string {
	type neighbor struct {
		dist  float64
		index int
	}
	neighbors := make([]neighbor, 0, len(trainIdx))
	for _, ti := range trainIdx {
		neighbors = append(neighbors, neighbor{
			dist:  euclidean(points[testPoint], points[ti]),
			index: ti,
		})
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].dist != neighbors[b].dist {
			return neighbors[a].dist < neighbors[b].dist
		}
		return neighbors[a].index < neighbors[b].index
	})

	votes := make(map[string]int, k)
	for _, nb := range neighbors[:k] {
		votes[labels[nb.index]]++
	}

	var best string
	bestVotes := -1
	for label, n := range votes {
		if n > bestVotes || (n == bestVotes && label < best) {
			best = label
			bestVotes = n
		}
	}
	return best
}

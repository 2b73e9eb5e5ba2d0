package mine

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/vegasq/dqml/query"
)

// kmeans runs at most this many assignment/update sweeps. Small
// frames converge in a handful.
const maxKMeansIterations = 100

// clusterSeed fixes the RNG so repeated runs over the same frame
// produce the same labels.
const clusterSeed = 42

// ClusterSummary describes a k-means run. Centers are reported in the
// original feature units, not the scaled space the algorithm ran in.
type ClusterSummary struct {
	NClusters      int         `json:"n_clusters"`
	FeatureColumns []string    `json:"feature_columns"`
	ClusterSizes   map[int]int `json:"cluster_sizes"`
	ClusterCenters [][]float64 `json:"cluster_centers"`
	Inertia        float64     `json:"inertia"`
	Silhouette     *float64    `json:"silhouette_score,omitempty"`
}

// MiningKind identifies the summary as a clustering payload.
func (ClusterSummary) MiningKind() query.MiningKind {
	return query.MineCluster
}

// cluster partitions the rows into k groups with k-means over the
// standardized numeric features and appends a cluster column.
func cluster(schema []string, rows []map[string]interface{}, k int) ([]string, []map[string]interface{}, query.MiningSummary, error) {
	if k < 1 {
		return nil, nil, nil, fmt.Errorf("%w: K must be positive", ErrInvalidParameter)
	}
	features := numericColumns(schema, rows)
	if len(features) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no numeric columns to cluster on", ErrInsufficientData)
	}
	if len(rows) < k {
		return nil, nil, nil, fmt.Errorf("%w: clustering into %d groups needs at least %d rows, have %d", ErrInsufficientData, k, k, len(rows))
	}

	matrix := featureMatrix(rows, features)
	scaled, means, stds := standardize(matrix)

	labels, centers, inertia := runKMeans(scaled, k)

	out := copyRows(rows)
	sizes := make(map[int]int, k)
	for i, label := range labels {
		out[i]["cluster"] = int64(label)
		sizes[label]++
	}

	// Map centers back to the original units.
	unscaled := make([][]float64, len(centers))
	for c, center := range centers {
		orig := make([]float64, len(center))
		for j, v := range center {
			orig[j] = v*stds[j] + means[j]
		}
		unscaled[c] = orig
	}

	summary := ClusterSummary{
		NClusters:      k,
		FeatureColumns: features,
		ClusterSizes:   sizes,
		ClusterCenters: unscaled,
		Inertia:        inertia,
	}
	if k > 1 && len(rows) > k {
		if s, ok := silhouetteScore(scaled, labels, k); ok {
			summary.Silhouette = &s
		}
	}

	return extendSchema(schema, "cluster"), out, summary, nil
}

// runKMeans performs k-means++ seeding followed by Lloyd iterations
// and returns per-point labels, the final centers and the inertia,
// all in the scaled space.
func runKMeans(points [][]float64, k int) ([]int, [][]float64, float64) {
	rng := rand.New(rand.NewPCG(clusterSeed, 0))
	centers := seedCenters(points, k, rng)

	labels := make([]int, len(points))
	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCenter(p, centers)
			if best != labels[i] || iter == 0 {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Recompute centers as the mean of their members.
		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, len(points[0]))
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for j, v := range p {
				next[c][j] += v
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// Relocate an empty cluster to the point furthest
				// from its current center.
				next[c] = furthestPoint(points, labels, centers)
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}
		centers = next
	}

	var inertia float64
	for i, p := range points {
		d := euclidean(p, centers[labels[i]])
		inertia += d * d
	}
	return labels, centers, inertia
}

// seedCenters picks k initial centers, k-means++ style: the first
// uniformly, each following one weighted by squared distance to the
// nearest center already chosen.
func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	first := points[rng.IntN(len(points))]
	centers = append(centers, append([]float64(nil), first...))

	weights := make([]float64, len(points))
	for len(centers) < k {
		var total float64
		for i, p := range points {
			d := euclidean(p, centers[nearestCenter(p, centers)])
			weights[i] = d * d
			total += weights[i]
		}
		if total == 0 {
			// All remaining points coincide with a center.
			centers = append(centers, append([]float64(nil), points[rng.IntN(len(points))]...))
			continue
		}
		target := rng.Float64() * total
		idx := 0
		for i, w := range weights {
			target -= w
			if target <= 0 {
				idx = i
				break
			}
		}
		centers = append(centers, append([]float64(nil), points[idx]...))
	}
	return centers
}

// nearestCenter returns the index of the center closest to p.
func nearestCenter(p []float64, centers [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, center := range centers {
		if d := euclidean(p, center); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// furthestPoint returns a copy of the point with the largest distance
// to its assigned center.
func furthestPoint(points [][]float64, labels []int, centers [][]float64) []float64 {
	worst := 0
	worstDist := -1.0
	for i, p := range points {
		if d := euclidean(p, centers[labels[i]]); d > worstDist {
			worst = i
			worstDist = d
		}
	}
	return append([]float64(nil), points[worst]...)
}

// silhouetteScore returns the mean silhouette coefficient. It reports
// false when fewer than two clusters are actually populated.
func silhouetteScore(points [][]float64, labels []int, k int) (float64, bool) {
	sizes := make([]int, k)
	for _, label := range labels {
		sizes[label]++
	}
	populated := 0
	for _, n := range sizes {
		if n > 0 {
			populated++
		}
	}
	if populated < 2 {
		return 0, false
	}

	var total float64
	for i, p := range points {
		own := labels[i]
		if sizes[own] == 1 {
			// A singleton's coefficient is defined as 0.
			continue
		}

		// Mean distance to every cluster.
		sums := make([]float64, k)
		for j, q := range points {
			if i == j {
				continue
			}
			sums[labels[j]] += euclidean(p, q)
		}

		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || sizes[c] == 0 {
				continue
			}
			if m := sums[c] / float64(sizes[c]); m < b {
				b = m
			}
		}

		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(len(points)), true
}

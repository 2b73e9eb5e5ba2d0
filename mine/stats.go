package mine

import (
	"fmt"
	"math"
	"sort"

	"github.com/vegasq/dqml/query"
)

// defaultConfidenceLevel fills in when no confidence_level measure is
// supplied.
const defaultConfidenceLevel = 0.95

// valueCountCap limits how many distinct values a categorical column
// reports.
const valueCountCap = 20

// zLookup maps a supported confidence level to its normal critical
// value.
var zLookup = map[float64]float64{
	0.90: 1.6449,
	0.95: 1.9600,
	0.99: 2.5758,
}

// ColumnStats holds the descriptive statistics of one numeric column,
// computed over its non-null values.
type ColumnStats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// Interval is a two-sided confidence interval.
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Correlation is the Pearson coefficient of one column pair with a
// plain-language strength label.
type Correlation struct {
	Column1     string  `json:"column1"`
	Column2     string  `json:"column2"`
	Correlation float64 `json:"correlation"`
	Strength    string  `json:"strength"`
}

// StatisticsSummary profiles the retrieved frame. Rows pass through a
// STATISTICS run unchanged.
type StatisticsSummary struct {
	Count              int                       `json:"count"`
	NumericColumns     []string                  `json:"numeric_columns"`
	CategoricalColumns []string                  `json:"categorical_columns"`
	Summary            map[string]ColumnStats    `json:"summary"`
	Correlations       []Correlation             `json:"correlations,omitempty"`
	ValueCounts        map[string]map[string]int `json:"value_counts,omitempty"`
	MissingValues      map[string]int            `json:"missing_values,omitempty"`
	ConfidenceLevel    float64                   `json:"confidence_level"`
	MeanIntervals      map[string]Interval       `json:"mean_confidence_intervals,omitempty"`
}

// MiningKind identifies the summary as a statistics payload.
func (StatisticsSummary) MiningKind() query.MiningKind {
	return query.MineStatistics
}

// statistics profiles every column of the frame: moments and
// quantiles for numeric columns, value counts for the rest, plus
// pairwise correlations and a confidence interval on each mean.
func statistics(schema []string, rows []map[string]interface{}, measures []query.Measure) ([]string, []map[string]interface{}, query.MiningSummary, error) {
	level := measureValue(measures, "confidence_level", defaultConfidenceLevel)
	z, ok := zLookup[level]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: confidence_level must be 0.90, 0.95 or 0.99, got %v", ErrInvalidParameter, level)
	}

	numeric := numericColumns(schema, rows)
	numericSet := make(map[string]bool, len(numeric))
	for _, col := range numeric {
		numericSet[col] = true
	}
	var categorical []string
	for _, col := range schema {
		if !numericSet[col] {
			categorical = append(categorical, col)
		}
	}

	summary := StatisticsSummary{
		Count:              len(rows),
		NumericColumns:     numeric,
		CategoricalColumns: categorical,
		Summary:            make(map[string]ColumnStats, len(numeric)),
		ConfidenceLevel:    level,
	}

	intervals := make(map[string]Interval)
	for _, col := range numeric {
		vals := columnValues(rows, col)
		if len(vals) == 0 {
			continue
		}
		summary.Summary[col] = describeColumn(vals)
		if len(vals) > 1 {
			m := mean(vals)
			margin := z * sampleStd(vals) / math.Sqrt(float64(len(vals)))
			intervals[col] = Interval{Low: m - margin, High: m + margin}
		}
	}
	if len(intervals) > 0 {
		summary.MeanIntervals = intervals
	}

	summary.Correlations = correlations(rows, numeric)

	counts := make(map[string]map[string]int)
	for _, col := range categorical {
		if vc := valueCounts(rows, col); len(vc) > 0 {
			counts[col] = vc
		}
	}
	if len(counts) > 0 {
		summary.ValueCounts = counts
	}

	missing := make(map[string]int)
	for _, col := range schema {
		n := 0
		for _, row := range rows {
			if v, ok := row[col]; !ok || v == nil {
				n++
			}
		}
		if n > 0 {
			missing[col] = n
		}
	}
	if len(missing) > 0 {
		summary.MissingValues = missing
	}

	return schema, rows, summary, nil
}

// describeColumn computes the moment and quantile statistics of one
// column. Skewness and kurtosis use the bias-corrected sample
// estimators and report 0 below their minimum sample sizes.
func describeColumn(vals []float64) ColumnStats {
	n := float64(len(vals))
	m := mean(vals)
	std := sampleStd(vals)

	stats := ColumnStats{
		Count:    len(vals),
		Mean:     m,
		Median:   quantile(vals, 0.50),
		Std:      std,
		Variance: sampleVariance(vals),
		Q25:      quantile(vals, 0.25),
		Q75:      quantile(vals, 0.75),
	}

	stats.Min = vals[0]
	stats.Max = vals[0]
	for _, v := range vals[1:] {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}

	if len(vals) > 2 && std > 0 {
		var m3 float64
		for _, v := range vals {
			d := v - m
			m3 += d * d * d
		}
		stats.Skewness = n / ((n - 1) * (n - 2)) * m3 / (std * std * std)
	}
	if len(vals) > 3 && std > 0 {
		var m4 float64
		for _, v := range vals {
			d := v - m
			m4 += d * d * d * d
		}
		s4 := std * std * std * std
		stats.Kurtosis = n*(n+1)/((n-1)*(n-2)*(n-3))*m4/s4 - 3*(n-1)*(n-1)/((n-2)*(n-3))
	}

	return stats
}

// correlations computes the Pearson coefficient for every numeric
// column pair over rows where both values are present, strongest
// first.
func correlations(rows []map[string]interface{}, numeric []string) []Correlation {
	var out []Correlation
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			r, ok := pearson(rows, numeric[i], numeric[j])
			if !ok {
				continue
			}
			out = append(out, Correlation{
				Column1:     numeric[i],
				Column2:     numeric[j],
				Correlation: roundTo(r, 4),
				Strength:    correlationStrength(r),
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Correlation) > math.Abs(out[b].Correlation)
	})
	return out
}

// pearson computes the correlation of two columns over their complete
// pairs. It reports false when fewer than two pairs exist or either
// side has no variance.
func pearson(rows []map[string]interface{}, colX, colY string) (float64, bool) {
	var xs, ys []float64
	for _, row := range rows {
		x, okX := asNumber(row[colX])
		y, okY := asNumber(row[colY])
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0, false
	}

	mx, my := mean(xs), mean(ys)
	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// correlationStrength buckets an absolute coefficient into the usual
// descriptive tiers.
func correlationStrength(r float64) string {
	switch abs := math.Abs(r); {
	case abs >= 0.8:
		return "very strong"
	case abs >= 0.6:
		return "strong"
	case abs >= 0.4:
		return "moderate"
	case abs >= 0.2:
		return "weak"
	default:
		return "very weak"
	}
}

// valueCounts tallies the distinct values of a categorical column,
// keeping the most frequent ones. Nulls are not counted.
func valueCounts(rows []map[string]interface{}, col string) map[string]int {
	tally := make(map[string]int)
	for _, row := range rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		tally[fmt.Sprintf("%v", v)]++
	}
	if len(tally) <= valueCountCap {
		return tally
	}

	type entry struct {
		value string
		count int
	}
	entries := make([]entry, 0, len(tally))
	for v, c := range tally {
		entries = append(entries, entry{v, c})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].count != entries[b].count {
			return entries[a].count > entries[b].count
		}
		return entries[a].value < entries[b].value
	})

	top := make(map[string]int, valueCountCap)
	for _, e := range entries[:valueCountCap] {
		top[e.value] = e.count
	}
	return top
}

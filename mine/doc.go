// Package mine implements the data-mining stage of query execution.
//
// A Miner satisfies the query.Miner interface and dispatches on the
// mining operation of a compiled plan: CLUSTER, ANOMALIES,
// STATISTICS, ASSOCIATION_RULES, CLASSIFICATION and REGRESSION.
// Interest measures from the WITH clause parameterize the algorithms,
// for example:
//
//	FROM sales MINE CLUSTER K=3
//	FROM sensors MINE ANOMALIES WITH threshold=2.5
//	FROM basket MINE ASSOCIATION_RULES WITH support=0.2, confidence=0.6
//
// CLUSTER and ANOMALIES augment the rows with new columns (cluster,
// is_anomaly, anomaly_score) and never write into the caller's maps.
// The other operations pass rows through unchanged. Every run also
// produces a typed summary that marshals to the JSON payload shape of
// its operation.
//
// Algorithms work on the numeric columns of the frame: a column
// qualifies when every non-null value it holds is a number. Nulls in
// qualifying columns enter feature vectors as 0. Runs that find no
// usable columns, or too few rows, fail with ErrInsufficientData;
// out-of-range measures fail with ErrInvalidParameter. Seeded RNG
// keeps clustering labels and the classification split stable across
// runs.
package mine

package query

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse_FromOnly(t *testing.T) {
	q, err := Parse("FROM customers")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(q.Tables, []string{"customers"}) {
		t.Errorf("Parse() tables = %v, want [customers]", q.Tables)
	}
	if q.Select != nil || q.Wildcard {
		t.Errorf("Parse() projection = %v wildcard=%v, want absent", q.Select, q.Wildcard)
	}
	if q.Where != nil {
		t.Errorf("Parse() where = %v, want nil", q.Where)
	}
	if q.Mine != nil {
		t.Errorf("Parse() mine = %v, want nil", q.Mine)
	}
}

func TestParse_FilterOnly(t *testing.T) {
	q, err := Parse("FROM customers WHERE age > 30")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cmp, ok := q.Where.(*ComparisonExpr)
	if !ok {
		t.Fatalf("Parse() where = %T, want *ComparisonExpr", q.Where)
	}
	col, ok := cmp.Left.(*ColumnRef)
	if !ok || col.Column != "age" {
		t.Errorf("comparison left = %+v, want column age", cmp.Left)
	}
	if cmp.Operator != TokenGreater {
		t.Errorf("comparison operator = %v, want %v", cmp.Operator, TokenGreater)
	}
	lit, ok := cmp.Right.(*LiteralExpr)
	if !ok || lit.Value != int64(30) {
		t.Errorf("comparison right = %+v, want literal 30", cmp.Right)
	}
	if q.Mine != nil {
		t.Errorf("Parse() mine = %v, want nil", q.Mine)
	}
}

func TestParse_UseDatabase(t *testing.T) {
	q, err := Parse("USE DATABASE sales FROM orders")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if q.Database != "sales" {
		t.Errorf("Parse() database = %q, want %q", q.Database, "sales")
	}
	if !reflect.DeepEqual(q.Tables, []string{"orders"}) {
		t.Errorf("Parse() tables = %v, want [orders]", q.Tables)
	}
}

func TestParse_SelectList(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantSelect   []ColumnRef
		wantWildcard bool
	}{
		{
			name:       "column list",
			query:      "SELECT name, age FROM customers",
			wantSelect: []ColumnRef{{Column: "name"}, {Column: "age"}},
		},
		{
			name:         "wildcard",
			query:        "SELECT * FROM customers",
			wantWildcard: true,
		},
		{
			name:       "qualified column",
			query:      "SELECT customers.name FROM customers",
			wantSelect: []ColumnRef{{Table: "customers", Column: "name"}},
		},
		{
			name:       "relevance to synonym",
			query:      "RELEVANCE TO name, age FROM customers",
			wantSelect: []ColumnRef{{Column: "name"}, {Column: "age"}},
		},
		{
			name:         "relevance to wildcard",
			query:        "RELEVANCE TO * FROM customers",
			wantWildcard: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(q.Select, tt.wantSelect) {
				t.Errorf("Parse() select = %v, want %v", q.Select, tt.wantSelect)
			}
			if q.Wildcard != tt.wantWildcard {
				t.Errorf("Parse() wildcard = %v, want %v", q.Wildcard, tt.wantWildcard)
			}
		})
	}
}

func TestParse_MultipleTables(t *testing.T) {
	q, err := Parse("FROM t1, t2 WHERE t1.id = t2.id")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(q.Tables, []string{"t1", "t2"}) {
		t.Errorf("Parse() tables = %v, want [t1 t2]", q.Tables)
	}

	cmp, ok := q.Where.(*ComparisonExpr)
	if !ok {
		t.Fatalf("Parse() where = %T, want *ComparisonExpr", q.Where)
	}
	left, ok := cmp.Left.(*ColumnRef)
	if !ok || left.Table != "t1" || left.Column != "id" {
		t.Errorf("left = %+v, want t1.id", cmp.Left)
	}
	right, ok := cmp.Right.(*ColumnRef)
	if !ok || right.Table != "t2" || right.Column != "id" {
		t.Errorf("right = %+v, want t2.id", cmp.Right)
	}
}

func TestParse_GroupByOrderBy(t *testing.T) {
	q, err := Parse("SELECT city FROM customers GROUP BY city ORDER BY city DESC, age")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(q.GroupBy, []ColumnRef{{Column: "city"}}) {
		t.Errorf("Parse() group by = %v, want [city]", q.GroupBy)
	}
	wantOrder := []OrderByItem{
		{Column: ColumnRef{Column: "city"}, Desc: true},
		{Column: ColumnRef{Column: "age"}},
	}
	if !reflect.DeepEqual(q.OrderBy, wantOrder) {
		t.Errorf("Parse() order by = %v, want %v", q.OrderBy, wantOrder)
	}
}

func TestParse_OrderByExplicitAsc(t *testing.T) {
	q, err := Parse("FROM t ORDER BY a ASC")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(q.OrderBy) != 1 || q.OrderBy[0].Desc {
		t.Errorf("Parse() order by = %v, want ascending a", q.OrderBy)
	}
}

func TestParse_MiningOps(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantKind   MiningKind
		wantK      int
		wantTarget string
	}{
		{
			name:     "cluster",
			query:    "FROM t MINE CLUSTER K=3",
			wantKind: MineCluster,
			wantK:    3,
		},
		{
			name:     "cluster lowercase with spaces",
			query:    "from t mine cluster k = 5",
			wantKind: MineCluster,
			wantK:    5,
		},
		{
			name:     "cluster zero parses",
			query:    "FROM t MINE CLUSTER K=0",
			wantKind: MineCluster,
			wantK:    0,
		},
		{
			name:     "cluster negative parses",
			query:    "FROM t MINE CLUSTER K=-2",
			wantKind: MineCluster,
			wantK:    -2,
		},
		{
			name:     "association rules",
			query:    "FROM t MINE ASSOCIATION_RULES",
			wantKind: MineAssociationRules,
		},
		{
			name:     "anomalies",
			query:    "FROM t MINE ANOMALIES",
			wantKind: MineAnomalies,
		},
		{
			name:     "anomaly detection alias",
			query:    "FROM t MINE ANOMALY_DETECTION",
			wantKind: MineAnomalies,
		},
		{
			name:     "statistics",
			query:    "FROM t MINE STATISTICS",
			wantKind: MineStatistics,
		},
		{
			name:       "classification",
			query:      "FROM t MINE CLASSIFICATION TARGET=churn",
			wantKind:   MineClassification,
			wantTarget: "churn",
		},
		{
			name:       "regression",
			query:      "FROM t MINE REGRESSION TARGET=price",
			wantKind:   MineRegression,
			wantTarget: "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if q.Mine == nil {
				t.Fatal("Parse() mine = nil, want operation")
			}
			if q.Mine.Kind != tt.wantKind {
				t.Errorf("mine kind = %v, want %v", q.Mine.Kind, tt.wantKind)
			}
			if q.Mine.K != tt.wantK {
				t.Errorf("mine K = %d, want %d", q.Mine.K, tt.wantK)
			}
			if q.Mine.Target != tt.wantTarget {
				t.Errorf("mine target = %q, want %q", q.Mine.Target, tt.wantTarget)
			}
		})
	}
}

func TestParse_Measures(t *testing.T) {
	q, err := Parse("FROM t MINE ASSOCIATION_RULES WITH Support=0.1, CONFIDENCE=0.5, lift=2")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []Measure{
		{Name: "support", Value: 0.1},
		{Name: "confidence", Value: 0.5},
		{Name: "lift", Value: 2},
	}
	if !reflect.DeepEqual(q.Measures, want) {
		t.Errorf("Parse() measures = %v, want %v", q.Measures, want)
	}
}

func TestParse_Display(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "scatter plot",
			query: "FROM t MINE CLUSTER K=3 DISPLAY AS scatter_plot",
			want:  "scatter_plot",
		},
		{
			name:  "kind is lowercased",
			query: "FROM t DISPLAY AS BAR_CHART",
			want:  "bar_chart",
		},
		{
			name:  "table",
			query: "FROM t DISPLAY AS table",
			want:  "table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if q.Display != tt.want {
				t.Errorf("Parse() display = %q, want %q", q.Display, tt.want)
			}
		})
	}
}

func TestParse_TrailingSemicolon(t *testing.T) {
	q, err := Parse("FROM customers;")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(q.Tables, []string{"customers"}) {
		t.Errorf("Parse() tables = %v, want [customers]", q.Tables)
	}
}

func TestParse_FullQuery(t *testing.T) {
	q, err := Parse(`USE DATABASE shop
		SELECT name, age, spend
		FROM customers
		WHERE age > 18 AND spend >= 100.5
		GROUP BY city
		ORDER BY spend DESC
		MINE CLUSTER K=4
		WITH threshold=2.5
		DISPLAY AS scatter_plot;`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if q.Database != "shop" {
		t.Errorf("database = %q, want shop", q.Database)
	}
	if len(q.Select) != 3 {
		t.Errorf("select = %v, want 3 columns", q.Select)
	}
	if q.Where == nil {
		t.Error("where = nil, want condition")
	}
	if len(q.GroupBy) != 1 || len(q.OrderBy) != 1 {
		t.Errorf("group by = %v order by = %v, want one each", q.GroupBy, q.OrderBy)
	}
	if q.Mine == nil || q.Mine.Kind != MineCluster || q.Mine.K != 4 {
		t.Errorf("mine = %+v, want CLUSTER K=4", q.Mine)
	}
	if len(q.Measures) != 1 || q.Measures[0].Name != "threshold" {
		t.Errorf("measures = %v, want [threshold]", q.Measures)
	}
	if q.Display != "scatter_plot" {
		t.Errorf("display = %q, want scatter_plot", q.Display)
	}
}

func TestParse_MissingRelation(t *testing.T) {
	_, err := Parse("SELECT name FROM")
	if err == nil {
		t.Fatal("Parse() expected error")
	}
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("Parse() error = %T, want *SyntaxError", err)
	}
	if synErr.Expected != "identifier" {
		t.Errorf("SyntaxError.Expected = %q, want %q", synErr.Expected, "identifier")
	}
	if synErr.Found != "EOF" {
		t.Errorf("SyntaxError.Found = %q, want %q", synErr.Found, "EOF")
	}
}

func TestParse_ClauseOrder(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantExpected string
		wantFound    string
	}{
		{
			name:         "select after where",
			query:        "FROM t WHERE a = 1 SELECT b",
			wantExpected: "GROUP BY, ORDER BY, MINE, WITH, DISPLAY AS or end of query",
			wantFound:    "SELECT",
		},
		{
			name:         "where after group by",
			query:        "FROM t GROUP BY a WHERE b = 1",
			wantExpected: "ORDER BY, MINE, WITH, DISPLAY AS or end of query",
			wantFound:    "WHERE",
		},
		{
			name:         "mine after display",
			query:        "FROM t DISPLAY AS table MINE STATISTICS",
			wantExpected: "end of query",
			wantFound:    "MINE",
		},
		{
			name:         "second mine clause",
			query:        "FROM t MINE STATISTICS MINE ANOMALIES",
			wantExpected: "WITH, DISPLAY AS or end of query",
			wantFound:    "MINE",
		},
		{
			name:         "tokens after semicolon",
			query:        "FROM t; WHERE a = 1",
			wantExpected: "end of query",
			wantFound:    "WHERE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query)
			if err == nil {
				t.Fatalf("Parse() expected error for query: %s", tt.query)
			}
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("Parse() error = %T, want *SyntaxError", err)
			}
			if synErr.Expected != tt.wantExpected {
				t.Errorf("SyntaxError.Expected = %q, want %q", synErr.Expected, tt.wantExpected)
			}
			if synErr.Found != tt.wantFound {
				t.Errorf("SyntaxError.Found = %q, want %q", synErr.Found, tt.wantFound)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "empty query",
			query: "",
		},
		{
			name:  "missing FROM",
			query: "SELECT name WHERE age > 30",
		},
		{
			name:  "use without database keyword",
			query: "USE sales FROM t",
		},
		{
			name:  "unknown mining operation",
			query: "FROM t MINE FOO",
		},
		{
			name:  "cluster without K",
			query: "FROM t MINE CLUSTER",
		},
		{
			name:  "cluster K without value",
			query: "FROM t MINE CLUSTER K=",
		},
		{
			name:  "cluster with float K",
			query: "FROM t MINE CLUSTER K=2.5",
		},
		{
			name:  "classification without target",
			query: "FROM t MINE CLASSIFICATION",
		},
		{
			name:  "display without AS",
			query: "FROM t DISPLAY scatter_plot",
		},
		{
			name:  "with measure missing value",
			query: "FROM t WITH support=",
		},
		{
			name:  "with measure non-numeric value",
			query: "FROM t WITH support='high'",
		},
		{
			name:  "dangling comma in select",
			query: "SELECT a, FROM t",
		},
		{
			name:  "dangling comma in from",
			query: "FROM t1, WHERE a = 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query)
			if err == nil {
				t.Errorf("Parse() expected error for query: %s", tt.query)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	const text = "SELECT name FROM customers WHERE age > 30 AND city = 'riga' ORDER BY name MINE CLUSTER K=3"

	first, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse() is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestParse_Guards(t *testing.T) {
	t.Run("query too long", func(t *testing.T) {
		_, err := Parse("FROM " + strings.Repeat("x", MaxQueryLength))
		if !errors.Is(err, ErrQueryTooLong) {
			t.Errorf("Parse() error = %v, want ErrQueryTooLong", err)
		}
	})

	t.Run("expression too deep", func(t *testing.T) {
		depth := MaxExpressionDepth + 10
		query := "FROM t WHERE " + strings.Repeat("(", depth) + "a = 1" + strings.Repeat(")", depth)
		_, err := Parse(query)
		if !errors.Is(err, ErrExpressionTooDeep) {
			t.Errorf("Parse() error = %v, want ErrExpressionTooDeep", err)
		}
	})

	t.Run("too many tokens", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("SELECT a")
		for i := 0; i < MaxTokens; i++ {
			sb.WriteString(", a")
		}
		sb.WriteString(" FROM t")
		_, err := Parse(sb.String())
		if !errors.Is(err, ErrTooManyTokens) {
			t.Errorf("Parse() error = %v, want ErrTooManyTokens", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		_, err := Parse("FROM " + strings.Repeat("t", MaxNameLength+1))
		if !errors.Is(err, ErrNameTooLong) {
			t.Errorf("Parse() error = %v, want ErrNameTooLong", err)
		}
	})
}

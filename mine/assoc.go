package mine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vegasq/dqml/query"
)

// Default interest-measure floors for rule mining.
const (
	defaultMinSupport    = 0.1
	defaultMinConfidence = 0.5
)

// Rule is one mined association between item sets. Items are
// column=value pairs built from the categorical columns.
type Rule struct {
	Antecedent []string `json:"antecedent"`
	Consequent []string `json:"consequent"`
	Support    float64  `json:"support"`
	Confidence float64  `json:"confidence"`
	Lift       float64  `json:"lift"`
}

// AssociationSummary describes an apriori run. Rows pass through an
// ASSOCIATION_RULES run unchanged.
type AssociationSummary struct {
	Rules         []Rule  `json:"rules"`
	NRules        int     `json:"n_rules"`
	NTransactions int     `json:"n_transactions"`
	MinSupport    float64 `json:"min_support"`
	MinConfidence float64 `json:"min_confidence"`
}

// MiningKind identifies the summary as an association-rules payload.
func (AssociationSummary) MiningKind() query.MiningKind {
	return query.MineAssociationRules
}

// associationRules mines frequent item sets with apriori and derives
// single-consequent rules from them. Each row becomes one transaction
// of column=value items over the categorical columns; numeric columns
// carry no item semantics and are skipped.
func associationRules(schema []string, rows []map[string]interface{}, measures []query.Measure) ([]string, []map[string]interface{}, query.MiningSummary, error) {
	minSupport := measureValue(measures, "support", defaultMinSupport)
	minConfidence := measureValue(measures, "confidence", defaultMinConfidence)
	if minSupport <= 0 || minSupport > 1 {
		return nil, nil, nil, fmt.Errorf("%w: support must be in (0, 1], got %v", ErrInvalidParameter, minSupport)
	}
	if minConfidence <= 0 || minConfidence > 1 {
		return nil, nil, nil, fmt.Errorf("%w: confidence must be in (0, 1], got %v", ErrInvalidParameter, minConfidence)
	}

	if len(rows) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no transactions to mine rules from", ErrInsufficientData)
	}

	numeric := numericColumns(schema, rows)
	numericSet := make(map[string]bool, len(numeric))
	for _, col := range numeric {
		numericSet[col] = true
	}
	var itemCols []string
	for _, col := range schema {
		if !numericSet[col] {
			itemCols = append(itemCols, col)
		}
	}
	if len(itemCols) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no categorical columns to mine rules from", ErrInsufficientData)
	}

	transactions := make([]map[string]bool, len(rows))
	for i, row := range rows {
		t := make(map[string]bool, len(itemCols))
		for _, col := range itemCols {
			if v, ok := row[col]; ok && v != nil {
				t[col+"="+fmt.Sprintf("%v", v)] = true
			}
		}
		transactions[i] = t
	}

	frequent := frequentItemsets(transactions, minSupport)
	rules := deriveRules(frequent, minConfidence)

	if hasMeasure(measures, "lift") {
		floor := measureValue(measures, "lift", 0)
		kept := rules[:0]
		for _, r := range rules {
			if r.Lift >= floor {
				kept = append(kept, r)
			}
		}
		rules = kept
	}

	summary := AssociationSummary{
		Rules:         rules,
		NRules:        len(rules),
		NTransactions: len(transactions),
		MinSupport:    minSupport,
		MinConfidence: minConfidence,
	}
	return schema, rows, summary, nil
}

// itemset is a sorted set of items with its support fraction.
type itemset struct {
	items   []string
	support float64
}

// key joins the sorted items so sets compare as strings.
func (s itemset) key() string {
	return strings.Join(s.items, "\x00")
}

// frequentItemsets runs the level-wise apriori sweep: count single
// items, then repeatedly join surviving sets of size k into
// candidates of size k+1 and keep the ones meeting minimum support.
func frequentItemsets(transactions []map[string]bool, minSupport float64) []itemset {
	total := float64(len(transactions))

	counts := make(map[string]int)
	for _, t := range transactions {
		for item := range t {
			counts[item]++
		}
	}
	var level []itemset
	for item, n := range counts {
		if sup := float64(n) / total; sup >= minSupport {
			level = append(level, itemset{items: []string{item}, support: sup})
		}
	}
	sort.Slice(level, func(a, b int) bool { return level[a].items[0] < level[b].items[0] })

	all := append([]itemset(nil), level...)
	for len(level) > 1 {
		candidates := joinLevel(level)
		var next []itemset
		for _, items := range candidates {
			n := 0
			for _, t := range transactions {
				if containsAll(t, items) {
					n++
				}
			}
			if sup := float64(n) / total; sup >= minSupport {
				next = append(next, itemset{items: items, support: sup})
			}
		}
		all = append(all, next...)
		level = next
	}
	return all
}

// joinLevel builds size k+1 candidates from the size-k sets by
// joining pairs that share everything but their last item. Sets come
// in sorted, so the join keeps candidates sorted and unique.
func joinLevel(level []itemset) [][]string {
	var candidates [][]string
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			a, b := level[i].items, level[j].items
			k := len(a)
			if !equalPrefix(a, b, k-1) {
				continue
			}
			merged := make([]string, k+1)
			copy(merged, a)
			merged[k] = b[k-1]
			if merged[k-1] > merged[k] {
				merged[k-1], merged[k] = merged[k], merged[k-1]
			}
			candidates = append(candidates, merged)
		}
	}
	return candidates
}

func equalPrefix(a, b []string, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsAll(t map[string]bool, items []string) bool {
	for _, item := range items {
		if !t[item] {
			return false
		}
	}
	return true
}

// deriveRules turns every frequent set of two or more items into
// candidate rules with a single-item consequent, keeping the ones
// meeting minimum confidence. Lift divides the confidence by the
// consequent's own support.
func deriveRules(frequent []itemset, minConfidence float64) []Rule {
	supports := make(map[string]float64, len(frequent))
	for _, s := range frequent {
		supports[s.key()] = s.support
	}

	var rules []Rule
	for _, s := range frequent {
		if len(s.items) < 2 {
			continue
		}
		for i, consequent := range s.items {
			antecedent := make([]string, 0, len(s.items)-1)
			antecedent = append(antecedent, s.items[:i]...)
			antecedent = append(antecedent, s.items[i+1:]...)

			anteSup, ok := supports[itemset{items: antecedent}.key()]
			if !ok || anteSup == 0 {
				continue
			}
			confidence := s.support / anteSup
			if confidence < minConfidence {
				continue
			}
			consSup := supports[itemset{items: []string{consequent}}.key()]
			if consSup == 0 {
				continue
			}
			rules = append(rules, Rule{
				Antecedent: antecedent,
				Consequent: []string{consequent},
				Support:    s.support,
				Confidence: confidence,
				Lift:       confidence / consSup,
			})
		}
	}

	sort.SliceStable(rules, func(a, b int) bool {
		if rules[a].Confidence != rules[b].Confidence {
			return rules[a].Confidence > rules[b].Confidence
		}
		if rules[a].Lift != rules[b].Lift {
			return rules[a].Lift > rules[b].Lift
		}
		return strings.Join(rules[a].Antecedent, ",") < strings.Join(rules[b].Antecedent, ",")
	})
	return rules
}

// Package insights derives human-readable segment labels and
// narratives from per-cluster statistics.
package insights

import (
	"fmt"
	"strings"

	"customer-segmentation/internal/dataset"
	"customer-segmentation/internal/roles"
)

// Thresholds for calling a cluster mean high or low relative to the
// global mean.
const (
	highFactor = 1.1
	lowFactor  = 0.9
)

// Insight is the derived profile of one cluster: a label from the
// fixed vocabulary, a narrative description, and the cluster mean of
// every numeric column.
type Insight struct {
	Label       string
	Description string
	Stats       map[string]float64
}

type level int

const (
	levelNeutral level = iota
	levelHigh
	levelLow
)

// classify compares a cluster mean against the global mean. An absent
// role contributes zero for both values and therefore stays neutral.
func classify(val, global float64) level {
	switch {
	case val > global*highFactor:
		return levelHigh
	case val < global*lowFactor:
		return levelLow
	default:
		return levelNeutral
	}
}

// labelRule maps one (spending, income) combination to a label. Rules
// are evaluated in order; the first match wins.
type labelRule struct {
	spending level
	income   level
	label    string
	sentence string
}

var labelRules = []labelRule{
	{levelHigh, levelHigh, "High Value Customer", "High income and high spending."},
	{levelLow, levelHigh, "Potential Saver", "High income but low spending."},
	{levelHigh, levelLow, "High Risk Customer", "Low income but high spending."},
	{levelLow, levelLow, "Low Value Customer", "Low income and low spending."},
}

const (
	defaultLabel    = "Medium Value Customer"
	defaultSentence = "Average income and spending."
)

// labelFor resolves the decision table. It is a pure function of the
// two levels; every combination maps to exactly one label.
func labelFor(spending, income level) (string, string) {
	for _, r := range labelRules {
		if r.spending == spending && r.income == income {
			return r.label, r.sentence
		}
	}
	return defaultLabel, defaultSentence
}

// Generate computes per-cluster insights for a labeled table. The
// cluster column must be numeric and hold the assignment ids. Stats
// cover every numeric column of the table, not only the role columns.
func Generate(t *dataset.Table, clusterCol string, roleMap roles.Map) (map[int]Insight, error) {
	cc, ok := t.Lookup(clusterCol)
	if !ok || cc.Kind != dataset.Numeric {
		return nil, fmt.Errorf("cluster column %q not found in table", clusterCol)
	}

	numericCols := t.NumericColumnNames()
	global := make(map[string]float64, len(numericCols))
	for _, name := range numericCols {
		col, _ := t.Lookup(name)
		global[name] = mean(col.Nums)
	}

	// Group row indices by cluster id.
	groups := map[int][]int{}
	for i, v := range cc.Nums {
		id := int(v)
		groups[id] = append(groups[id], i)
	}

	out := make(map[int]Insight, len(groups))
	for id, rows := range groups {
		stats := make(map[string]float64, len(numericCols))
		for _, name := range numericCols {
			col, _ := t.Lookup(name)
			sum := 0.0
			for _, i := range rows {
				sum += col.Nums[i]
			}
			stats[name] = sum / float64(len(rows))
		}

		spending := classify(roleValue(stats, roleMap.Spending), roleValue(global, roleMap.Spending))
		income := classify(roleValue(stats, roleMap.Income), roleValue(global, roleMap.Income))

		label, sentence := labelFor(spending, income)
		parts := []string{sentence}

		// Frequency shapes the narrative only, never the label.
		if roleMap.Has(roles.Frequency) {
			switch classify(stats[roleMap.Frequency], global[roleMap.Frequency]) {
			case levelHigh:
				parts = append(parts, "Frequent buyer.")
			case levelLow:
				parts = append(parts, "Infrequent buyer.")
			}
		}

		out[id] = Insight{
			Label:       label,
			Description: fmt.Sprintf("Cluster %d contains %ss. %s", id, strings.ToLower(label), strings.Join(parts, " ")),
			Stats:       stats,
		}
	}
	return out, nil
}

// roleValue reads the statistic for a role column, or 0 when the role
// is absent, neutralizing its influence.
func roleValue(stats map[string]float64, column string) float64 {
	if column == roles.None {
		return 0
	}
	return stats[column]
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

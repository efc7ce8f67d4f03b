// Package roles infers which dataset columns carry income, spending,
// and purchase-frequency semantics from column names alone.
//
// Matching is case-insensitive substring matching over a fixed ranked
// rule list, evaluated in a documented priority order. The heuristic is
// inherently ambiguous for multi-word or unconventional schemas; that
// is a known limitation of name-based inference, not a defect.
package roles

import "strings"

// Role is a logical column role.
type Role string

const (
	Income    Role = "income"
	Spending  Role = "spending"
	Frequency Role = "frequency"
)

// None is the sentinel for an absent role.
const None = "none"

// Map associates each role with an actual column name, or None.
type Map struct {
	Income    string
	Spending  string
	Frequency string
}

// Column returns the column assigned to role, or None.
func (m Map) Column(r Role) string {
	switch r {
	case Income:
		return m.Income
	case Spending:
		return m.Spending
	case Frequency:
		return m.Frequency
	}
	return None
}

// Has reports whether the role resolved to a real column.
func (m Map) Has(r Role) bool {
	return m.Column(r) != None
}

// adoptPolicy decides whether a later matching column replaces the one
// currently holding the role.
type adoptPolicy func(current, candidate string) bool

// lastWins always adopts the newest match.
func lastWins(string, string) bool { return true }

// preferTotal keeps the first match unless a later one contains
// "total". The intent is to prefer an aggregate "Total Spending" column
// over a normalized "Spending Score" column when both exist; the
// original heuristic documents this preference as uncertain, and it is
// preserved as documented rather than second-guessed.
func preferTotal(current, candidate string) bool {
	return current == "" || strings.Contains(candidate, "total")
}

// rule claims a column for a role when any of its substrings matches.
// Rules are evaluated per column in this order; the first matching rule
// claims the column, so a column never occupies two roles.
type rule struct {
	role       Role
	substrings []string
	adopt      adoptPolicy
}

var rules = []rule{
	{role: Income, substrings: []string{"income"}, adopt: lastWins},
	{role: Spending, substrings: []string{"spending", "score"}, adopt: preferTotal},
	{role: Frequency, substrings: []string{"frequency"}, adopt: lastWins},
}

// Identify scans the column names in order and returns the resolved
// role map. It is a pure function of the name sequence: the same input
// always yields the same map.
func Identify(columns []string) Map {
	assigned := map[Role]string{}

	for _, name := range columns {
		lower := strings.ToLower(name)
		for _, r := range rules {
			if !matchesAny(lower, r.substrings) {
				continue
			}
			if r.adopt(strings.ToLower(assigned[r.role]), lower) {
				assigned[r.role] = name
			}
			break
		}
	}

	m := Map{Income: None, Spending: None, Frequency: None}
	if c, ok := assigned[Income]; ok {
		m.Income = c
	}
	if c, ok := assigned[Spending]; ok {
		m.Spending = c
	}
	if c, ok := assigned[Frequency]; ok {
		m.Frequency = c
	}
	return m
}

func matchesAny(name string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

package cluster

import "customer-segmentation/pkg/segerr"

const (
	// DefaultMaxK bounds the candidate cluster-count range [2, DefaultMaxK].
	DefaultMaxK = 10
	// fallbackK is used when no candidate produces a positive silhouette.
	fallbackK = 4
)

// Selection is the outcome of the cluster-count search. Inertias and
// Silhouettes are diagnostic sequences indexed like Candidates.
type Selection struct {
	K           int
	Candidates  []int
	Inertias    []float64
	Silhouettes []float64
}

// SelectK fits every candidate count in [2, min(maxK, n-1)] and picks
// the one with the highest positive silhouette score, ties broken by
// the smallest count. If no score is positive it falls back to 4,
// capped at n-1 (minimum 1) so a fit can never be asked for more
// clusters than records allow. A candidate with n <= k records is
// scored with the -1 sentinel.
func SelectK(X [][]float64, maxK int, cfg Config) (*Selection, error) {
	n := len(X)
	if n == 0 {
		return nil, segerr.NewEmptyDatasetError("feature matrix is empty")
	}
	if maxK < 2 {
		maxK = DefaultMaxK
	}

	limit := n - 1
	if limit < 1 {
		limit = 1
	}
	upper := maxK
	if upper > limit {
		upper = limit
	}

	sel := &Selection{}
	for k := 2; k <= upper; k++ {
		m, err := Fit(X, k, cfg)
		if err != nil {
			return nil, err
		}
		sel.Candidates = append(sel.Candidates, k)
		sel.Inertias = append(sel.Inertias, m.Inertia)
		if n > k {
			sel.Silhouettes = append(sel.Silhouettes, Silhouette(X, m.Labels, k))
		} else {
			sel.Silhouettes = append(sel.Silhouettes, -1)
		}
	}

	bestScore := 0.0
	for i, k := range sel.Candidates {
		if sel.Silhouettes[i] > bestScore {
			bestScore = sel.Silhouettes[i]
			sel.K = k
		}
	}
	if sel.K == 0 {
		sel.K = fallbackK
		if sel.K > limit {
			sel.K = limit
		}
	}
	return sel, nil
}

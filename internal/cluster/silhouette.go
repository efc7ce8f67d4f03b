package cluster

import "math"

// Silhouette computes the mean silhouette coefficient of a labeled
// partition, in [-1, 1]. For each point, a is the mean distance to the
// other members of its cluster and b the mean distance to the nearest
// other cluster; the coefficient is (b-a)/max(a,b). A point alone in
// its cluster scores 0, as does a point where a and b are both zero.
func Silhouette(X [][]float64, labels []int, k int) float64 {
	n := len(X)
	if n == 0 {
		return 0
	}

	members := make([][]int, k)
	for i, c := range labels {
		members[c] = append(members[c], i)
	}

	total := 0.0
	for i := 0; i < n; i++ {
		own := labels[i]
		if len(members[own]) <= 1 {
			continue // singleton contributes 0
		}

		a := meanDistTo(X, i, members[own], true)

		b := math.MaxFloat64
		for c := 0; c < k; c++ {
			if c == own || len(members[c]) == 0 {
				continue
			}
			if d := meanDistTo(X, i, members[c], false); d < b {
				b = d
			}
		}
		if b == math.MaxFloat64 {
			continue // no other cluster to compare against
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}

func meanDistTo(X [][]float64, i int, idxs []int, excludeSelf bool) float64 {
	sum, count := 0.0, 0
	for _, j := range idxs {
		if excludeSelf && j == i {
			continue
		}
		sum += math.Sqrt(sqDist(X[i], X[j]))
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

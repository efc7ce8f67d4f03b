// Package cluster implements seeded k-means partitioning with
// k-means++ initialization, silhouette scoring, and automatic
// cluster-count selection.
package cluster

import (
	"math"
	"math/rand"

	"customer-segmentation/pkg/segerr"
)

// Config carries the deterministic fitting parameters. Randomness is
// bound to Seed and Restarts only; there is no implicit global state,
// so identical input always reproduces identical assignments.
type Config struct {
	Seed     int64
	Restarts int
	MaxIter  int
}

// DefaultConfig mirrors the conventional defaults: fixed seed, ten
// random restarts, 300 Lloyd iterations.
func DefaultConfig() Config {
	return Config{Seed: 42, Restarts: 10, MaxIter: 300}
}

func (c Config) normalized() Config {
	if c.Restarts < 1 {
		c.Restarts = 1
	}
	if c.MaxIter < 1 {
		c.MaxIter = 300
	}
	return c
}

// Model is a fitted k-means partition.
type Model struct {
	K         int
	Centroids [][]float64
	Labels    []int
	Inertia   float64
}

// Fit partitions X into k clusters. Each restart runs Lloyd's
// algorithm from a k-means++ initialization seeded with Seed+restart;
// the lowest-inertia run wins. Cluster ids are relabeled by first
// appearance in row order, so the returned ids are canonical.
func Fit(X [][]float64, k int, cfg Config) (*Model, error) {
	if len(X) == 0 {
		return nil, segerr.NewEmptyDatasetError("feature matrix is empty")
	}
	if k < 1 || k > len(X) {
		return nil, segerr.NewDegenerateClustersError(len(X), k)
	}
	cfg = cfg.normalized()

	best := &Model{K: k, Inertia: math.MaxFloat64}
	for r := 0; r < cfg.Restarts; r++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(r)))
		centroids, labels, inertia := lloyd(X, k, cfg.MaxIter, rng)
		if inertia < best.Inertia {
			best.Centroids = centroids
			best.Labels = labels
			best.Inertia = inertia
		}
	}

	best.canonicalize()
	return best, nil
}

// lloyd runs one k-means fit from a fresh k-means++ initialization.
func lloyd(X [][]float64, k, maxIter int, rng *rand.Rand) ([][]float64, []int, float64) {
	n, p := len(X), len(X[0])
	centroids := initCenters(X, k, rng)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for it := 0; it < maxIter; it++ {
		changed := false
		for i := 0; i < n; i++ {
			best, bestDist := 0, math.MaxFloat64
			for c := 0; c < k; c++ {
				if d := sqDist(X[i], centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := 0; c < k; c++ {
			sums[c] = make([]float64, p)
		}
		for i := 0; i < n; i++ {
			c := labels[i]
			counts[c]++
			for j := 0; j < p; j++ {
				sums[c][j] += X[i][j]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			for j := 0; j < p; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	inertia := 0.0
	for i := 0; i < n; i++ {
		inertia += sqDist(X[i], centroids[labels[i]])
	}
	return centroids, labels, inertia
}

// initCenters picks k starting centroids with the k-means++ scheme:
// the first uniformly, the rest weighted by squared distance to the
// nearest already-chosen center.
func initCenters(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(X)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), X[rng.Intn(n)]...))

	for len(centroids) < k {
		distSq := make([]float64, n)
		total := 0.0
		for i, x := range X {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				if d := sqDist(x, c); d < minDist {
					minDist = d
				}
			}
			distSq[i] = minDist
			total += minDist
		}

		if total == 0 {
			// All remaining points coincide with a chosen center.
			centroids = append(centroids, append([]float64(nil), X[rng.Intn(n)]...))
			continue
		}

		r := rng.Float64() * total
		cumulative := 0.0
		chosen := n - 1
		for i, d := range distSq {
			cumulative += d
			if cumulative >= r {
				chosen = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), X[chosen]...))
	}
	return centroids
}

// canonicalize relabels clusters by order of first appearance in the
// assignment, removing the arbitrary id permutation between runs.
func (m *Model) canonicalize() {
	mapping := make([]int, m.K)
	for i := range mapping {
		mapping[i] = -1
	}
	next := 0
	for _, old := range m.Labels {
		if mapping[old] == -1 {
			mapping[old] = next
			next++
		}
	}
	// Clusters that ended up empty keep their relative order at the end.
	for old := 0; old < m.K; old++ {
		if mapping[old] == -1 {
			mapping[old] = next
			next++
		}
	}

	relabeled := make([]int, len(m.Labels))
	for i, old := range m.Labels {
		relabeled[i] = mapping[old]
	}
	centroids := make([][]float64, m.K)
	for old, nw := range mapping {
		centroids[nw] = m.Centroids[old]
	}
	m.Labels = relabeled
	m.Centroids = centroids
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

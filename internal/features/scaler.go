package features

import "math"

// Scaler standardizes features to zero mean and unit variance. Mean and
// population standard deviation are computed once by Fit and reused for
// every Transform of the same dataset.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// Fit computes per-column mean and population standard deviation.
func (s *Scaler) Fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	n, p := len(X), len(X[0])
	s.Means = make([]float64, p)
	s.Stds = make([]float64, p)

	for j := 0; j < p; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += X[i][j]
		}
		s.Means[j] = sum / float64(n)

		variance := 0.0
		for i := 0; i < n; i++ {
			d := X[i][j] - s.Means[j]
			variance += d * d
		}
		s.Stds[j] = math.Sqrt(variance / float64(n))
	}
}

// Transform returns the standardized copy of X. A zero-variance column
// scales to all zeros instead of dividing by zero.
func (s *Scaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		row := make([]float64, len(X[i]))
		for j := range X[i] {
			if s.Stds[j] == 0 {
				row[j] = 0
				continue
			}
			row[j] = (X[i][j] - s.Means[j]) / s.Stds[j]
		}
		out[i] = row
	}
	return out
}

// FitTransform fits the scaler and transforms X in one step.
func (s *Scaler) FitTransform(X [][]float64) [][]float64 {
	s.Fit(X)
	return s.Transform(X)
}

package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-segmentation/pkg/segerr"
)

func TestSelectKSeparableData(t *testing.T) {
	sel, err := SelectK(twoGroups(), DefaultMaxK, DefaultConfig())
	require.NoError(t, err)

	// Six records cap the candidate range at n-1 = 5.
	assert.Equal(t, []int{2, 3, 4, 5}, sel.Candidates)
	require.Len(t, sel.Inertias, 4)
	require.Len(t, sel.Silhouettes, 4)

	// Two clean groups: k=2 has the best silhouette.
	assert.Equal(t, 2, sel.K)
	assert.Greater(t, sel.Silhouettes[0], 0.9)
}

func TestSelectKFallbackOnIdenticalPoints(t *testing.T) {
	X := make([][]float64, 10)
	for i := range X {
		X[i] = []float64{3, 3}
	}

	sel, err := SelectK(X, DefaultMaxK, DefaultConfig())
	require.NoError(t, err)

	// Every candidate scores zero, so no positive silhouette exists
	// and the selector falls back to 4.
	for _, s := range sel.Silhouettes {
		assert.Zero(t, s)
	}
	assert.Equal(t, 4, sel.K)
}

func TestSelectKFallbackCappedBySize(t *testing.T) {
	X := [][]float64{{1}, {1}, {1}}

	sel, err := SelectK(X, DefaultMaxK, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []int{2}, sel.Candidates)
	assert.Equal(t, 2, sel.K)
}

func TestSelectKHonorsMaxK(t *testing.T) {
	X := make([][]float64, 30)
	for i := range X {
		X[i] = []float64{float64(i)}
	}

	sel, err := SelectK(X, 3, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, sel.Candidates)
}

func TestSelectKEmptyMatrix(t *testing.T) {
	_, err := SelectK(nil, DefaultMaxK, DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, segerr.CodeEmptyDataset, segerr.CodeOf(err))
}

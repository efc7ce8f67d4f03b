package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-segmentation/internal/dataset"
	"customer-segmentation/pkg/segerr"
)

func numericCol(name string, vals ...float64) dataset.Column {
	return dataset.Column{Name: name, Kind: dataset.Numeric, Nums: vals}
}

func textCol(name string, vals ...string) dataset.Column {
	return dataset.Column{Name: name, Kind: dataset.Text, Strs: vals}
}

func TestPrepareExcludesIdentifierAndText(t *testing.T) {
	tbl := &dataset.Table{Columns: []dataset.Column{
		numericCol("CustomerID", 1, 2, 3),
		textCol("Name", "a", "b", "c"),
		numericCol("Annual Income", 15, 16, 17),
		numericCol("Spending Score", 10, 12, 11),
	}}

	prep, err := Prepare(tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"Annual Income", "Spending Score"}, prep.NumericColumns)
	require.Len(t, prep.Matrix, 3)
	require.Len(t, prep.Matrix[0], 2)
}

func TestPrepareStandardizes(t *testing.T) {
	tbl := &dataset.Table{Columns: []dataset.Column{
		numericCol("x", 2, 4, 6, 8),
	}}

	prep, err := Prepare(tbl)
	require.NoError(t, err)

	// Standardized columns have mean 0 and population std 1.
	sum, sumSq := 0.0, 0.0
	for _, row := range prep.Matrix {
		sum += row[0]
		sumSq += row[0] * row[0]
	}
	n := float64(len(prep.Matrix))
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)

	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)
	assert.Equal(t, []float64{5}, prep.Scaler.Means)
}

func TestPrepareZeroVarianceColumn(t *testing.T) {
	tbl := &dataset.Table{Columns: []dataset.Column{
		numericCol("constant", 7, 7, 7),
		numericCol("varies", 1, 2, 3),
	}}

	prep, err := Prepare(tbl)
	require.NoError(t, err)

	for _, row := range prep.Matrix {
		assert.Zero(t, row[0])
	}
}

func TestPrepareNoFeatures(t *testing.T) {
	tbl := &dataset.Table{Columns: []dataset.Column{
		numericCol("CustomerID", 1, 2),
		textCol("Name", "a", "b"),
	}}

	_, err := Prepare(tbl)
	require.Error(t, err)
	assert.Equal(t, segerr.CodeNoFeatures, segerr.CodeOf(err))
}

func TestScalerTransformReusesFit(t *testing.T) {
	s := &Scaler{}
	s.Fit([][]float64{{0}, {10}})

	out := s.Transform([][]float64{{5}, {0}, {10}})
	assert.Equal(t, 0.0, out[0][0])
	assert.Equal(t, -1.0, out[1][0])
	assert.Equal(t, 1.0, out[2][0])
}

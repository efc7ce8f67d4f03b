// Package features selects and standardizes the numeric columns that
// feed the clustering engine.
package features

import (
	"customer-segmentation/internal/dataset"
	"customer-segmentation/pkg/segerr"
)

// IdentifierColumn is excluded from the feature set by exact name even
// though it is numeric. Column roles are inferred by name only; there
// is no mapping configuration.
const IdentifierColumn = "CustomerID"

// Prepared is the clustering-ready view of a cleaned table.
type Prepared struct {
	// Matrix holds the standardized features, one row per record.
	Matrix [][]float64
	// Scaler holds the fitted per-column mean and std.
	Scaler *Scaler
	// NumericColumns lists the selected feature columns, in table order.
	NumericColumns []string
	// Table is the cleaned input, unmodified, kept for augmentation.
	Table *dataset.Table
}

// Prepare selects the numeric, non-identifier columns of t and
// standardizes them into a feature matrix.
func Prepare(t *dataset.Table) (*Prepared, error) {
	var selected []*dataset.Column
	var names []string
	for i := range t.Columns {
		col := &t.Columns[i]
		if col.Kind != dataset.Numeric || col.Name == IdentifierColumn {
			continue
		}
		selected = append(selected, col)
		names = append(names, col.Name)
	}
	if len(selected) == 0 {
		return nil, segerr.NewNoFeaturesError()
	}

	rows := t.Rows()
	raw := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, len(selected))
		for j, col := range selected {
			row[j] = col.Nums[i]
		}
		raw[i] = row
	}

	scaler := &Scaler{}
	matrix := scaler.FitTransform(raw)

	return &Prepared{
		Matrix:         matrix,
		Scaler:         scaler,
		NumericColumns: names,
		Table:          t,
	}, nil
}

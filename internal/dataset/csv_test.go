package dataset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-segmentation/pkg/segerr"
)

func TestLoadTypesColumns(t *testing.T) {
	raw := []byte("CustomerID,Name,Annual Income\n1,Alice,15\n2,Bob,16.5\n")

	tbl, err := Load(raw)
	require.NoError(t, err)

	require.Equal(t, 2, tbl.Rows())
	require.Equal(t, []string{"CustomerID", "Name", "Annual Income"}, tbl.ColumnNames())

	id, ok := tbl.Lookup("CustomerID")
	require.True(t, ok)
	assert.Equal(t, Numeric, id.Kind)
	assert.Equal(t, []float64{1, 2}, id.Nums)

	name, ok := tbl.Lookup("Name")
	require.True(t, ok)
	assert.Equal(t, Text, name.Kind)
	assert.Equal(t, []string{"Alice", "Bob"}, name.Strs)

	income, ok := tbl.Lookup("Annual Income")
	require.True(t, ok)
	assert.Equal(t, Numeric, income.Kind)
	assert.Equal(t, []float64{15, 16.5}, income.Nums)
}

func TestLoadDropsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		rows int
	}{
		{
			name: "empty cell",
			raw:  "a,b\n1,2\n,4\n5,6\n",
			rows: 2,
		},
		{
			name: "NA token",
			raw:  "a,b\n1,2\nNA,4\n",
			rows: 1,
		},
		{
			name: "NaN token",
			raw:  "a,b\n1,NaN\n3,4\n",
			rows: 1,
		},
		{
			name: "null token",
			raw:  "a,b\nnull,2\n3,4\n",
			rows: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Load([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.rows, tbl.Rows())
		})
	}
}

func TestLoadParseError(t *testing.T) {
	// Ragged record: two header fields, one data field.
	_, err := Load([]byte("a,b\n1\n"))
	require.Error(t, err)
	assert.Equal(t, segerr.CodeParseFailed, segerr.CodeOf(err))

	_, err = Load([]byte("a,b\n\"unterminated,2\n"))
	require.Error(t, err)
	assert.Equal(t, segerr.CodeParseFailed, segerr.CodeOf(err))
}

func TestLoadEmptyDataset(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no bytes", raw: ""},
		{name: "header only", raw: "a,b\n"},
		{name: "all rows incomplete", raw: "a,b\n1,\n,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.raw))
			require.Error(t, err)
			assert.Equal(t, segerr.CodeEmptyDataset, segerr.CodeOf(err))
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	raw := []byte("CustomerID,Name,Annual Income\n1,Alice,15.25\n2,Bob,1000000\n3,Carol,0.1\n")
	tbl, err := Load(raw)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))

	again, err := Load(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, again.Columns)
}

func TestRecords(t *testing.T) {
	tbl, err := Load([]byte("id,name\n7,Ana\n8,Ben\n"))
	require.NoError(t, err)

	recs := tbl.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, map[string]any{"id": 7.0, "name": "Ana"}, recs[0])
	assert.Equal(t, map[string]any{"id": 8.0, "name": "Ben"}, recs[1])
}

func TestAppendColumnLengthMismatch(t *testing.T) {
	tbl, err := Load([]byte("a\n1\n2\n"))
	require.NoError(t, err)

	require.Error(t, tbl.AppendNumericColumn("c", []float64{1}))
	require.Error(t, tbl.AppendTextColumn("s", []string{"x", "y", "z"}))
	require.NoError(t, tbl.AppendTextColumn("ok", []string{"x", "y"}))
}

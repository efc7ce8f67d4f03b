package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"customer-segmentation/pkg/segerr"
)

// Tokens treated as a missing value during cleaning.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
}

func isMissing(v string) bool {
	_, ok := missingTokens[strings.TrimSpace(v)]
	return ok
}

// Load parses raw CSV bytes into a typed Table. Records with a missing
// value in any column are dropped entirely; no imputation is attempted.
// A column whose surviving values all parse as floats becomes numeric,
// everything else stays text.
func Load(raw []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, segerr.NewParseError(err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, segerr.NewEmptyDatasetError("source table has no columns")
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	var rows [][]string
	for _, rec := range records[1:] {
		complete := true
		for _, v := range rec {
			if isMissing(v) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, rec)
		}
	}
	if len(rows) == 0 {
		return nil, segerr.NewEmptyDatasetError("no records left after removing incomplete rows")
	}

	t := &Table{Columns: make([]Column, len(header))}
	for j, name := range header {
		vals := make([]string, len(rows))
		for i, rec := range rows {
			vals[i] = strings.TrimSpace(rec[j])
		}

		nums := make([]float64, len(vals))
		numeric := true
		for i, v := range vals {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				numeric = false
				break
			}
			nums[i] = f
		}

		if numeric {
			t.Columns[j] = Column{Name: name, Kind: Numeric, Nums: nums}
		} else {
			t.Columns[j] = Column{Name: name, Kind: Text, Strs: vals}
		}
	}
	return t, nil
}

// WriteCSV renders the table back to CSV, header first. Numeric cells
// use the round-trippable 'g' format.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}

	row := make([]string, len(t.Columns))
	for i := 0; i < t.Rows(); i++ {
		for j := range t.Columns {
			col := &t.Columns[j]
			if col.Kind == Numeric {
				row[j] = FormatValue(col.Nums[i])
			} else {
				row[j] = col.Strs[i]
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

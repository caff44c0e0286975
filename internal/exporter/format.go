package exporter

import (
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

// records returns the header and rows of ds in the full-precision string
// form used for CSV. Missing cells are empty.
func records(ds *dataset.Dataset) ([]string, [][]string) {
	cols := ds.Columns()
	out := make([][]string, ds.Rows())
	for i := range out {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.Raw(i)
		}
		out[i] = row
	}
	return ds.Names(), out
}

// cellValue returns the typed value of row i for a spreadsheet cell, or
// nil when missing
func cellValue(c *dataset.Column, i int) any {
	if c.IsMissing(i) {
		return nil
	}
	switch c.Kind {
	case dataset.KindNumeric:
		return c.Floats[i]
	case dataset.KindDatetime:
		return c.Times[i]
	case dataset.KindBoolean:
		return c.Bools[i]
	default:
		return c.Strings[i]
	}
}

package preprocess

import (
	"fmt"
	"math"
	"sort"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// MissingMethod selects how missing values are handled
type MissingMethod string

const (
	MissingDrop     MissingMethod = "drop"
	MissingMean     MissingMethod = "mean"
	MissingMedian   MissingMethod = "median"
	MissingMode     MissingMethod = "mode"
	MissingZero     MissingMethod = "zero"
	MissingForward  MissingMethod = "forward"
	MissingBackward MissingMethod = "backward"
)

// MissingMethods lists the accepted values
var MissingMethods = []MissingMethod{MissingDrop, MissingMean, MissingMedian, MissingMode, MissingZero, MissingForward, MissingBackward}

// HandleMissing fills or drops the missing values of one column. Columns
// without missing values are returned untouched. ds may be modified.
func HandleMissing(ds *dataset.Dataset, col string, method MissingMethod) (*dataset.Dataset, error) {
	c, err := ds.Column(col)
	if err != nil {
		return nil, err
	}
	if c.NullCount() == 0 {
		return ds, nil
	}

	switch method {
	case MissingDrop:
		keep := make([]bool, c.Len())
		for i := range keep {
			keep[i] = !c.IsMissing(i)
		}
		return ds.FilterRows(keep), nil

	case MissingMean, MissingMedian:
		if !c.IsNumeric() {
			return nil, fmt.Errorf("%w: %s imputation needs a numeric column, %q is %s", ErrInvalidMethod, method, col, c.Kind)
		}
		fill := stats.Mean(c.Floats)
		if method == MissingMedian {
			fill = stats.Median(c.Floats)
		}
		return ds, ds.ReplaceColumn(col, fillNumeric(c, fill))

	case MissingMode:
		row, ok := modeRow(c)
		if !ok {
			return ds, nil
		}
		return ds, ds.ReplaceColumn(col, fillFromRow(c, row))

	case MissingZero:
		filled, err := fillZero(c)
		if err != nil {
			return nil, err
		}
		return ds, ds.ReplaceColumn(col, filled)

	case MissingForward, MissingBackward:
		return ds, ds.ReplaceColumn(col, propagate(c, method == MissingForward))
	}

	return nil, fmt.Errorf("%w: unknown missing-value method %q", ErrInvalidMethod, method)
}

func fillNumeric(c *dataset.Column, v float64) *dataset.Column {
	out := c.Clone()
	for i, x := range out.Floats {
		if math.IsNaN(x) {
			out.Floats[i] = v
		}
	}
	return out
}

// modeRow returns a row holding the most frequent value; ties go to the
// smallest value, as pandas orders modes.
func modeRow(c *dataset.Column) (int, bool) {
	counts := make(map[string]int)
	first := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		k := c.Key(i)
		if _, ok := first[k]; !ok {
			first[k] = i
		}
		counts[k]++
	}
	if len(counts) == 0 {
		return 0, false
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	numeric := c.IsNumeric()
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		if numeric {
			return c.Floats[first[keys[i]]] < c.Floats[first[keys[j]]]
		}
		return keys[i] < keys[j]
	})
	return first[keys[0]], true
}

// fillFromRow copies the value at row src into every missing slot
func fillFromRow(c *dataset.Column, src int) *dataset.Column {
	out := c.Clone()
	for i := 0; i < out.Len(); i++ {
		if c.IsMissing(i) {
			copyCell(out, i, c, src)
		}
	}
	return out
}

func copyCell(dst *dataset.Column, i int, src *dataset.Column, j int) {
	switch dst.Kind {
	case dataset.KindNumeric:
		dst.Floats[i] = src.Floats[j]
		return
	case dataset.KindCategorical:
		dst.Strings[i] = src.Strings[j]
	case dataset.KindDatetime:
		dst.Times[i] = src.Times[j]
	case dataset.KindBoolean:
		dst.Bools[i] = src.Bools[j]
	}
	dst.Valid[i] = src.Valid[j]
}

func fillZero(c *dataset.Column) (*dataset.Column, error) {
	out := c.Clone()
	for i := 0; i < out.Len(); i++ {
		if !c.IsMissing(i) {
			continue
		}
		switch out.Kind {
		case dataset.KindNumeric:
			out.Floats[i] = 0
		case dataset.KindCategorical:
			out.Strings[i], out.Valid[i] = "0", true
		case dataset.KindBoolean:
			out.Bools[i], out.Valid[i] = false, true
		default:
			return nil, fmt.Errorf("%w: zero fill is not defined for %s column %q", ErrInvalidMethod, c.Kind, c.Name)
		}
	}
	return out, nil
}

// propagate carries the last seen value forward (or the next value
// backward). Leading (or trailing) gaps stay missing.
func propagate(c *dataset.Column, forward bool) *dataset.Column {
	out := c.Clone()
	n := c.Len()
	last := -1
	for k := 0; k < n; k++ {
		i := k
		if !forward {
			i = n - 1 - k
		}
		if !c.IsMissing(i) {
			last = i
			continue
		}
		if last >= 0 {
			copyCell(out, i, c, last)
		}
	}
	return out
}

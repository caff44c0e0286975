package dataset

import (
	"math"
	"strconv"
	"time"
)

// Kind is the logical type of a column
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
	KindBoolean     Kind = "boolean"
)

// ParseKind validates a kind name
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindNumeric, KindCategorical, KindDatetime, KindBoolean:
		return k, true
	}
	return "", false
}

// Column is a named, typed vector. Exactly one value slice is populated,
// matching Kind. Numeric columns mark missing values with NaN; the other
// kinds use Valid.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
	Times   []time.Time
	Bools   []bool
	Valid   []bool
}

// NewNumeric creates a numeric column; NaN marks a missing value.
func NewNumeric(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindNumeric, Floats: values}
}

// NewCategorical creates a categorical column. A nil valid mask treats
// every value as present.
func NewCategorical(name string, values []string, valid []bool) *Column {
	return &Column{Name: name, Kind: KindCategorical, Strings: values, Valid: fillMask(valid, len(values))}
}

// NewDatetime creates a datetime column
func NewDatetime(name string, values []time.Time, valid []bool) *Column {
	return &Column{Name: name, Kind: KindDatetime, Times: values, Valid: fillMask(valid, len(values))}
}

// NewBoolean creates a boolean column
func NewBoolean(name string, values []bool, valid []bool) *Column {
	return &Column{Name: name, Kind: KindBoolean, Bools: values, Valid: fillMask(valid, len(values))}
}

func fillMask(valid []bool, n int) []bool {
	if valid != nil {
		return valid
	}
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// Len returns the number of rows
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.Floats)
	case KindCategorical:
		return len(c.Strings)
	case KindDatetime:
		return len(c.Times)
	case KindBoolean:
		return len(c.Bools)
	}
	return 0
}

// IsNumeric reports whether the column holds numbers
func (c *Column) IsNumeric() bool { return c.Kind == KindNumeric }

// IsMissing reports whether row i has no value
func (c *Column) IsMissing(i int) bool {
	if c.Kind == KindNumeric {
		return math.IsNaN(c.Floats[i])
	}
	return !c.Valid[i]
}

// NullCount returns the number of missing values
func (c *Column) NullCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Key returns a comparable representation of row i, used for grouping,
// value counts and unique counts. Missing values return "".
func (c *Column) Key(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	return c.Raw(i)
}

// Raw returns the full-precision string form of row i ("" when missing).
// Exports and type conversion use this form.
func (c *Column) Raw(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(c.Floats[i], 'f', -1, 64)
	case KindCategorical:
		return c.Strings[i]
	case KindDatetime:
		return formatTime(c.Times[i])
	case KindBoolean:
		if c.Bools[i] {
			return "True"
		}
		return "False"
	}
	return ""
}

// Display returns row i formatted for tables: numbers are rounded to
// four decimals and missing values show as NaN / None.
func (c *Column) Display(i int) string {
	if c.IsMissing(i) {
		if c.Kind == KindNumeric {
			return "NaN"
		}
		if c.Kind == KindDatetime {
			return "NaT"
		}
		return "None"
	}
	if c.Kind == KindNumeric {
		return FormatFloat(c.Floats[i])
	}
	return c.Raw(i)
}

// FormatFloat renders v with at most four decimals and no trailing zeros.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

// Unique counts distinct non-missing values
func (c *Column) Unique() int {
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			seen[c.Raw(i)] = struct{}{}
		}
	}
	return len(seen)
}

// Sample returns the first non-missing value as a display string
func (c *Column) Sample() string {
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			return c.Display(i)
		}
	}
	return ""
}

// Clone returns a deep copy
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	if c.Times != nil {
		out.Times = append([]time.Time(nil), c.Times...)
	}
	if c.Bools != nil {
		out.Bools = append([]bool(nil), c.Bools...)
	}
	if c.Valid != nil {
		out.Valid = append([]bool(nil), c.Valid...)
	}
	return out
}

// Renamed returns a shallow copy under a new name
func (c *Column) Renamed(name string) *Column {
	out := *c
	out.Name = name
	return &out
}

// Take builds a new column from the given row indices
func (c *Column) Take(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindNumeric:
		out.Floats = make([]float64, len(idx))
		for j, i := range idx {
			out.Floats[j] = c.Floats[i]
		}
		return out
	case KindCategorical:
		out.Strings = make([]string, len(idx))
		for j, i := range idx {
			out.Strings[j] = c.Strings[i]
		}
	case KindDatetime:
		out.Times = make([]time.Time, len(idx))
		for j, i := range idx {
			out.Times[j] = c.Times[i]
		}
	case KindBoolean:
		out.Bools = make([]bool, len(idx))
		for j, i := range idx {
			out.Bools[j] = c.Bools[i]
		}
	}
	out.Valid = make([]bool, len(idx))
	for j, i := range idx {
		out.Valid[j] = c.Valid[i]
	}
	return out
}

// NumericValues returns the values as float64. Numeric columns return their
// data, booleans map to 0/1, datetimes to Unix seconds; missing values and
// categorical columns give NaN.
func (c *Column) NumericValues() []float64 {
	if c.Kind == KindNumeric {
		return c.Floats
	}
	out := make([]float64, c.Len())
	for i := range out {
		switch {
		case c.IsMissing(i):
			out[i] = math.NaN()
		case c.Kind == KindBoolean:
			if c.Bools[i] {
				out[i] = 1
			}
		case c.Kind == KindDatetime:
			out[i] = float64(c.Times[i].Unix())
		default:
			out[i] = math.NaN()
		}
	}
	return out
}

// MemoryUsage estimates the bytes held by the column
func (c *Column) MemoryUsage() int64 {
	var n int64
	switch c.Kind {
	case KindNumeric:
		n = int64(len(c.Floats)) * 8
	case KindCategorical:
		for _, s := range c.Strings {
			n += int64(len(s)) + 16
		}
	case KindDatetime:
		n = int64(len(c.Times)) * 24
	case KindBoolean:
		n = int64(len(c.Bools))
	}
	return n + int64(len(c.Valid))
}

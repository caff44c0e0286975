package dataset

import (
	"fmt"
	"slices"
	"strings"
)

// Dataset is an ordered set of equal-length columns
type Dataset struct {
	columns []*Column
	index   map[string]int
}

// New validates the columns and builds a dataset. Columns are not copied.
func New(columns ...*Column) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := d.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustNew is New for literals in tests and generators; it panics on error.
func MustNew(columns ...*Column) *Dataset {
	d, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return d
}

// Rows returns the number of rows
func (d *Dataset) Rows() int {
	if len(d.columns) == 0 {
		return 0
	}
	return d.columns[0].Len()
}

// Cols returns the number of columns
func (d *Dataset) Cols() int { return len(d.columns) }

// Shape returns (rows, columns)
func (d *Dataset) Shape() (int, int) { return d.Rows(), d.Cols() }

// IsEmpty reports whether the dataset has no rows or no columns
func (d *Dataset) IsEmpty() bool { return d.Rows() == 0 || d.Cols() == 0 }

// Columns returns the columns in order. Callers must not mutate the slice.
func (d *Dataset) Columns() []*Column { return d.columns }

// Has reports whether a column exists
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return d.columns[i], nil
}

// NumericColumn looks up a column and requires it to be numeric
func (d *Dataset) NumericColumn(name string) (*Column, error) {
	c, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.IsNumeric() {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, name, c.Kind)
	}
	return c, nil
}

// Names returns all column names in order
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

func (d *Dataset) namesWhere(keep func(*Column) bool) []string {
	var names []string
	for _, c := range d.columns {
		if keep(c) {
			names = append(names, c.Name)
		}
	}
	return names
}

// NumericNames returns the numeric column names
func (d *Dataset) NumericNames() []string {
	return d.namesWhere(func(c *Column) bool { return c.Kind == KindNumeric })
}

// NonNumericNames returns the categorical and boolean column names
func (d *Dataset) NonNumericNames() []string {
	return d.namesWhere(func(c *Column) bool { return c.Kind == KindCategorical || c.Kind == KindBoolean })
}

// DatetimeNames returns the datetime column names
func (d *Dataset) DatetimeNames() []string {
	return d.namesWhere(func(c *Column) bool { return c.Kind == KindDatetime })
}

// Clone returns a deep copy
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		columns: make([]*Column, len(d.columns)),
		index:   make(map[string]int, len(d.columns)),
	}
	for i, c := range d.columns {
		out.columns[i] = c.Clone()
		out.index[c.Name] = i
	}
	return out
}

// Head returns the first n rows as display strings
func (d *Dataset) Head(n int) [][]string {
	n = min(max(n, 0), d.Rows())
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(d.columns))
		for j, c := range d.columns {
			row[j] = c.Display(i)
		}
		rows[i] = row
	}
	return rows
}

// ColumnInfo is one row of the dataset info table
type ColumnInfo struct {
	Name       string  `json:"name"`
	Kind       Kind    `json:"kind"`
	NonNull    int     `json:"non_null"`
	Missing    int     `json:"missing"`
	MissingPct float64 `json:"missing_pct"`
	Unique     int     `json:"unique"`
	Sample     string  `json:"sample"`
}

// Info summarises every column
func (d *Dataset) Info() []ColumnInfo {
	rows := d.Rows()
	infos := make([]ColumnInfo, len(d.columns))
	for i, c := range d.columns {
		missing := c.NullCount()
		pct := 0.0
		if rows > 0 {
			pct = float64(missing) / float64(rows) * 100
		}
		infos[i] = ColumnInfo{
			Name:       c.Name,
			Kind:       c.Kind,
			NonNull:    rows - missing,
			Missing:    missing,
			MissingPct: pct,
			Unique:     c.Unique(),
			Sample:     c.Sample(),
		}
	}
	return infos
}

// MissingTotal counts missing cells across all columns
func (d *Dataset) MissingTotal() int {
	total := 0
	for _, c := range d.columns {
		total += c.NullCount()
	}
	return total
}

// MissingRatio is MissingTotal over the number of cells, in percent
func (d *Dataset) MissingRatio() float64 {
	cells := d.Rows() * d.Cols()
	if cells == 0 {
		return 0
	}
	return float64(d.MissingTotal()) / float64(cells) * 100
}

// MemoryUsage estimates the bytes held by the dataset
func (d *Dataset) MemoryUsage() int64 {
	var n int64
	for _, c := range d.columns {
		n += c.MemoryUsage() + int64(len(c.Name))
	}
	return n
}

// Select returns a dataset with the named columns in the given order
func (d *Dataset) Select(names []string) (*Dataset, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Rename returns a dataset with columns renamed by mapping (old -> new).
// Unknown source names are an error; empty targets keep the old name.
func (d *Dataset) Rename(mapping map[string]string) (*Dataset, error) {
	for old := range mapping {
		if !d.Has(old) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, old)
		}
	}
	cols := make([]*Column, len(d.columns))
	for i, c := range d.columns {
		if name, ok := mapping[c.Name]; ok && strings.TrimSpace(name) != "" && name != c.Name {
			cols[i] = c.Renamed(name)
			continue
		}
		cols[i] = c
	}
	return New(cols...)
}

// Drop returns a dataset without the named columns
func (d *Dataset) Drop(names []string) (*Dataset, error) {
	for _, name := range names {
		if !d.Has(name) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
	}
	cols := make([]*Column, 0, len(d.columns))
	for _, c := range d.columns {
		if !slices.Contains(names, c.Name) {
			cols = append(cols, c)
		}
	}
	return New(cols...)
}

// FilterRows keeps the rows where keep is true
func (d *Dataset) FilterRows(keep []bool) *Dataset {
	idx := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return d.Take(idx)
}

// Take returns the rows at idx, in that order
func (d *Dataset) Take(idx []int) *Dataset {
	out := &Dataset{
		columns: make([]*Column, len(d.columns)),
		index:   make(map[string]int, len(d.columns)),
	}
	for i, c := range d.columns {
		out.columns[i] = c.Take(idx)
		out.index[c.Name] = i
	}
	return out
}

// AddColumn appends a column
func (d *Dataset) AddColumn(c *Column) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}
	if d.Has(c.Name) {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
	}
	if len(d.columns) > 0 && c.Len() != d.Rows() {
		return fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, c.Name, c.Len(), d.Rows())
	}
	d.index[c.Name] = len(d.columns)
	d.columns = append(d.columns, c)
	return nil
}

// SetColumn replaces the column of the same name in place, or appends it.
func (d *Dataset) SetColumn(c *Column) error {
	if !d.Has(c.Name) {
		return d.AddColumn(c)
	}
	return d.ReplaceColumn(c.Name, c)
}

// ReplaceColumn swaps the named column for c, keeping its position.
// c may carry a different name.
func (d *Dataset) ReplaceColumn(name string, c *Column) error {
	i, ok := d.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	if c.Len() != d.Rows() {
		return fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, c.Name, c.Len(), d.Rows())
	}
	if c.Name != name && d.Has(c.Name) {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
	}
	delete(d.index, name)
	d.columns[i] = c
	d.index[c.Name] = i
	return nil
}

// RemoveColumn deletes a column in place
func (d *Dataset) RemoveColumn(name string) error {
	i, ok := d.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	d.columns = slices.Delete(d.columns, i, i+1)
	d.reindex()
	return nil
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.columns))
	for i, c := range d.columns {
		d.index[c.Name] = i
	}
}

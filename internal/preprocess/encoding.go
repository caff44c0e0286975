package preprocess

import (
	"fmt"
	"math"
	"sort"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

// EncodingMethod selects a categorical encoder
type EncodingMethod string

const (
	EncodeOneHot EncodingMethod = "onehot"
	EncodeLabel  EncodingMethod = "label"
)

// MaxOneHotCategories bounds the columns one-hot encoding may create
const MaxOneHotCategories = 100

// Encode one-hot or label encodes a column
func Encode(ds *dataset.Dataset, col string, method EncodingMethod) (*dataset.Dataset, error) {
	c, err := ds.Column(col)
	if err != nil {
		return nil, err
	}
	categories := Categories(c)

	switch method {
	case EncodeLabel:
		code := make(map[string]float64, len(categories))
		for i, cat := range categories {
			code[cat] = float64(i)
		}
		values := make([]float64, c.Len())
		for i := range values {
			if c.IsMissing(i) {
				values[i] = math.NaN()
				continue
			}
			values[i] = code[c.Key(i)]
		}
		return ds, ds.ReplaceColumn(col, dataset.NewNumeric(col, values))

	case EncodeOneHot:
		if len(categories) > MaxOneHotCategories {
			return nil, fmt.Errorf("%w: %q has %d categories, one-hot allows %d", ErrInvalidMethod, col, len(categories), MaxOneHotCategories)
		}
		if err := ds.RemoveColumn(col); err != nil {
			return nil, err
		}
		for _, cat := range categories {
			values := make([]float64, c.Len())
			for i := range values {
				if !c.IsMissing(i) && c.Key(i) == cat {
					values[i] = 1
				}
			}
			if err := ds.AddColumn(dataset.NewNumeric(col+"_"+cat, values)); err != nil {
				return nil, err
			}
		}
		return ds, nil
	}

	return nil, fmt.Errorf("%w: unknown encoding %q", ErrInvalidMethod, method)
}

// Categories returns the distinct non-missing values of c in sorted order.
// Numeric columns sort numerically.
func Categories(c *dataset.Column) []string {
	seen := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			if _, ok := seen[c.Key(i)]; !ok {
				seen[c.Key(i)] = i
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if c.IsNumeric() {
			return c.Floats[seen[out[i]]] < c.Floats[seen[out[j]]]
		}
		return out[i] < out[j]
	})
	return out
}

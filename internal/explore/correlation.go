package explore

import (
	"fmt"
	"math"
	"sort"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// StrongThreshold is the |r| above which a pair is reported as strong
const StrongThreshold = 0.5

// Matrix is a square correlation matrix
type Matrix struct {
	Columns []string        `json:"columns"`
	Values  [][]stats.Float `json:"values"`
}

// At returns r for columns i and j
func (m Matrix) At(i, j int) float64 { return float64(m.Values[i][j]) }

// Pair is one off-diagonal entry of a correlation matrix
type Pair struct {
	A string      `json:"a"`
	B string      `json:"b"`
	R stats.Float `json:"r"`
}

// Correlation computes the Pearson matrix over pairwise-complete rows.
// An empty cols selects every numeric column; at least two are required.
func Correlation(ds *dataset.Dataset, cols []string) (Matrix, error) {
	if len(cols) == 0 {
		cols = ds.NumericNames()
	}
	if len(cols) < 2 {
		return Matrix{}, fmt.Errorf("%w: correlation needs at least two numeric columns", dataset.ErrInsufficientData)
	}

	values := make([][]float64, len(cols))
	for i, name := range cols {
		c, err := ds.NumericColumn(name)
		if err != nil {
			return Matrix{}, err
		}
		values[i] = c.Floats
	}

	m := Matrix{Columns: cols, Values: make([][]stats.Float, len(cols))}
	for i := range cols {
		m.Values[i] = make([]stats.Float, len(cols))
	}
	for i := range cols {
		m.Values[i][i] = diagonal(values[i])
		for j := i + 1; j < len(cols); j++ {
			r := stats.Float(stats.Pearson(values[i], values[j]))
			m.Values[i][j], m.Values[j][i] = r, r
		}
	}
	return m, nil
}

// diagonal is 1 for a column with variance and NaN for a constant or
// all-missing one, matching pandas.
func diagonal(xs []float64) stats.Float {
	if math.IsNaN(stats.Pearson(xs, xs)) {
		return stats.Float(math.NaN())
	}
	return 1
}

// StrongPairs returns pairs with |r| > threshold, strongest first
func StrongPairs(m Matrix, threshold float64) []Pair {
	var pairs []Pair
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.At(i, j)
			if !math.IsNaN(r) && math.Abs(r) > threshold {
				pairs = append(pairs, Pair{A: m.Columns[i], B: m.Columns[j], R: stats.Float(r)})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(float64(pairs[i].R)) > math.Abs(float64(pairs[j].R))
	})
	return pairs
}

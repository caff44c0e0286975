package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// PCAResult is a principal component projection
type PCAResult struct {
	// ExplainedVariance is the share of total variance per component
	ExplainedVariance []stats.Float `json:"explained_variance"`
	// Loadings has one row per input column and one entry per component
	Loadings [][]stats.Float `json:"loadings"`
	// Points has one row per observation
	Points [][]stats.Float `json:"points"`
}

// TotalExplained sums the explained variance ratios
func (p *PCAResult) TotalExplained() float64 {
	total := 0.0
	for _, v := range p.ExplainedVariance {
		total += float64(v)
	}
	return total
}

// PCA projects the row-major data x on its first components principal
// axes, computed from the eigendecomposition of the covariance matrix.
// Each axis is oriented so that its largest loading is positive.
func PCA(x [][]float64, components int) (*PCAResult, error) {
	n := len(x)
	if n < 2 {
		return nil, fmt.Errorf("%w: pca needs at least two rows", dataset.ErrInsufficientData)
	}
	p := len(x[0])
	if components < 1 || components > p {
		return nil, fmt.Errorf("%w: %d components for %d columns", ErrInvalidParameter, components, p)
	}

	data := mat.NewDense(n, p, nil)
	for i, row := range x {
		data.SetRow(i, row)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if !eig.Factorize(&cov, true) {
		return nil, errors.New("pca: eigendecomposition did not converge")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	order := make([]int, p)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	total := 0.0
	for _, v := range values {
		total += math.Max(v, 0)
	}

	means := make([]float64, p)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, data), nil)
	}

	res := &PCAResult{
		ExplainedVariance: make([]stats.Float, components),
		Loadings:          make([][]stats.Float, p),
		Points:            make([][]stats.Float, n),
	}
	for j := range res.Loadings {
		res.Loadings[j] = make([]stats.Float, components)
	}
	for i := range res.Points {
		res.Points[i] = make([]stats.Float, components)
	}

	for c := 0; c < components; c++ {
		col := order[c]
		axis := mat.Col(nil, col, &vectors)
		orient(axis)

		if total > 0 {
			res.ExplainedVariance[c] = stats.Float(math.Max(values[col], 0) / total)
		}
		for j, v := range axis {
			res.Loadings[j][c] = stats.Float(v)
		}
		for i, row := range x {
			score := 0.0
			for j, v := range row {
				score += (v - means[j]) * axis[j]
			}
			res.Points[i][c] = stats.Float(score)
		}
	}
	return res, nil
}

// orient flips v so that its largest absolute entry is positive.
func orient(v []float64) {
	big := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[big]) {
			big = i
		}
	}
	if v[big] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}

package analysis

import (
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/explore"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// TopPairs is the number of strong pairs that get a trend line
const TopPairs = 5

// TrendLine is an OLS fit of B on A for a strongly correlated pair
type TrendLine struct {
	explore.Pair
	stats.Fit
}

// CorrelationResult is the output of CorrelationAnalysis
type CorrelationResult struct {
	Matrix      explore.Matrix `json:"matrix"`
	StrongPairs []explore.Pair `json:"strong_pairs"`
	TrendLines  []TrendLine    `json:"trend_lines"`
}

// CorrelationAnalysis computes the correlation matrix of cols, the pairs
// with |r| > explore.StrongThreshold and trend lines for the strongest
// TopPairs of them.
func CorrelationAnalysis(ds *dataset.Dataset, cols []string) (*CorrelationResult, error) {
	m, err := explore.Correlation(ds, cols)
	if err != nil {
		return nil, err
	}

	res := &CorrelationResult{
		Matrix:      m,
		StrongPairs: explore.StrongPairs(m, explore.StrongThreshold),
		TrendLines:  []TrendLine{},
	}
	if res.StrongPairs == nil {
		res.StrongPairs = []explore.Pair{}
	}

	for _, p := range res.StrongPairs[:min(TopPairs, len(res.StrongPairs))] {
		a, err := ds.NumericColumn(p.A)
		if err != nil {
			return nil, err
		}
		b, err := ds.NumericColumn(p.B)
		if err != nil {
			return nil, err
		}
		fit, err := stats.LinearFit(a.Floats, b.Floats)
		if err != nil {
			continue
		}
		res.TrendLines = append(res.TrendLines, TrendLine{Pair: p, Fit: fit})
	}
	return res, nil
}

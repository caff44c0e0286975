package analysis

import (
	"math/rand/v2"
	"slices"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/explore"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

const (
	// HistogramBins is the bin count of the distribution histogram
	HistogramBins = 30
	// MinTestSize is the smallest sample the normality tests run on
	MinTestSize = 20
	// MaxTestSize caps the sample used for the normality tests
	MaxTestSize = 5000
)

// NumericDistribution describes a numeric column
type NumericDistribution struct {
	Summary    stats.Summary     `json:"summary"`
	Skewness   stats.Float       `json:"skewness"`
	Kurtosis   stats.Float       `json:"kurtosis"`
	Histogram  stats.Histogram   `json:"histogram"`
	QQ         []stats.QQPoint   `json:"qq"`
	TestSize   int               `json:"test_size"`
	Shapiro    *stats.TestResult `json:"shapiro_wilk,omitempty"`
	NormalTest *stats.TestResult `json:"dagostino_k2,omitempty"`
}

// DistributionResult is the output of Distribution. Exactly one of Numeric
// and ValueCounts is set.
type DistributionResult struct {
	Column      string               `json:"column"`
	Numeric     *NumericDistribution `json:"numeric,omitempty"`
	ValueCounts []explore.ValueCount `json:"value_counts,omitempty"`
}

// Normal reports whether the normality tests that ran all fail to reject
// normality at alpha. It is false when no test ran.
func (d *NumericDistribution) Normal(alpha float64) bool {
	ran := false
	for _, t := range []*stats.TestResult{d.Shapiro, d.NormalTest} {
		if t == nil {
			continue
		}
		ran = true
		if float64(t.PValue) < alpha {
			return false
		}
	}
	return ran
}

// Distribution analyses one column. Numeric columns get descriptive
// statistics, biased skewness and excess kurtosis, a histogram, QQ points
// and, with at least MinTestSize values, the Shapiro-Wilk and D'Agostino K²
// tests on a reproducible subsample of at most MaxTestSize values. Other
// columns get their value counts.
func Distribution(ds *dataset.Dataset, col string) (*DistributionResult, error) {
	c, err := ds.Column(col)
	if err != nil {
		return nil, err
	}
	if !c.IsNumeric() {
		return &DistributionResult{Column: col, ValueCounts: explore.ValueCounts(c, 0)}, nil
	}

	values := stats.DropNaN(c.Floats)
	if len(values) == 0 {
		return nil, dataset.ErrInsufficientData
	}

	d := &NumericDistribution{
		Summary:   stats.Describe(values),
		Skewness:  stats.Float(stats.Skewness(values)),
		Kurtosis:  stats.Float(stats.Kurtosis(values)),
		Histogram: stats.NewHistogram(values, HistogramBins),
		QQ:        stats.QQPoints(values),
	}

	sample := subsample(values, MaxTestSize)
	d.TestSize = len(sample)
	if len(sample) >= MinTestSize {
		if r, err := stats.ShapiroWilk(sample); err == nil {
			d.Shapiro = &r
		}
		if r, err := stats.DAgostinoK2(sample); err == nil {
			d.NormalTest = &r
		}
	}
	return &DistributionResult{Column: col, Numeric: d}, nil
}

// subsample draws size values without replacement using a fixed seed.
func subsample(xs []float64, size int) []float64 {
	if len(xs) <= size {
		return xs
	}
	rng := rand.New(rand.NewPCG(Seed, Seed))
	idx := rng.Perm(len(xs))[:size]
	slices.Sort(idx)
	out := make([]float64, size)
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}

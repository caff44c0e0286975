package analysis

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// weekly builds n days of a trend plus a weekly pattern, stored in reverse
// date order.
func weekly(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	dates := make([]time.Time, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		k := n - 1 - i
		dates[i] = day0.AddDate(0, 0, k)
		values[i] = float64(k) + 5*math.Sin(2*math.Pi*float64(k)/7)
	}
	ds, err := dataset.New(
		dataset.NewDatetime("date", dates, nil),
		dataset.NewNumeric("value", values),
		dataset.NewCategorical("label", make([]string, n), nil),
	)
	require.NoError(t, err)
	return ds
}

func TestTimeSeries(t *testing.T) {
	ds := weekly(t, 60)
	res, err := TimeSeries(context.Background(), ds, "date", "value")
	require.NoError(t, err)

	require.Len(t, res.Dates, 60)
	assert.True(t, res.Dates[0].Equal(day0))
	for i := 1; i < len(res.Dates); i++ {
		assert.True(t, res.Dates[i].After(res.Dates[i-1]))
	}
	assert.InDelta(t, 0.0, float64(res.Values[0]), 1e-12)

	require.Len(t, res.MovingAverages, 3)
	assert.Equal(t, 7, res.MovingAverages[0].Window)
	assert.Equal(t, 30, res.MovingAverages[2].Window)
	assert.False(t, res.MovingAverages[0].Values[5].Valid())
	assert.True(t, res.MovingAverages[0].Values[6].Valid())

	require.NotNil(t, res.Decomposition)
	assert.Equal(t, SeasonalPeriod, res.Decomposition.Period)
	assert.Len(t, res.Decomposition.Seasonal, 60)

	require.Len(t, res.ACF, MaxLags+1)
	require.Len(t, res.PACF, MaxLags+1)
	assert.InDelta(t, 1.0, float64(res.ACF[0]), 1e-12)
	assert.InDelta(t, 1.96/math.Sqrt(60), float64(res.ConfidenceBand), 1e-12)
	assert.Empty(t, res.Error)
}

func TestTimeSeriesShortAndGaps(t *testing.T) {
	dates := make([]string, 10)
	values := make([]float64, 10)
	for i := range dates {
		dates[i] = day0.AddDate(0, 0, i).Format("2006-01-02")
		values[i] = float64(i * i)
	}
	values[0] = math.NaN()
	values[4] = math.NaN()
	ds, err := dataset.New(
		dataset.NewCategorical("day", dates, nil),
		dataset.NewNumeric("y", values),
	)
	require.NoError(t, err)

	res, err := TimeSeries(context.Background(), ds, "day", "y")
	require.NoError(t, err)
	assert.Equal(t, 1.0, float64(res.Values[0]), "leading gap is back filled")
	assert.Equal(t, 9.0, float64(res.Values[4]), "inner gap is forward filled")
	require.Len(t, res.MovingAverages, 1)
	assert.Equal(t, 7, res.MovingAverages[0].Window)
	assert.Nil(t, res.Decomposition)
	assert.Len(t, res.ACF, 6)
	assert.True(t, math.IsNaN(values[4]), "input is not modified")
}

func TestTimeSeriesConstant(t *testing.T) {
	dates := make([]time.Time, 40)
	values := make([]float64, 40)
	for i := range dates {
		dates[i] = day0.AddDate(0, 0, i)
		values[i] = 3
	}
	ds := dataset.MustNew(dataset.NewDatetime("d", dates, nil), dataset.NewNumeric("v", values))

	res, err := TimeSeries(context.Background(), ds, "d", "v")
	require.NoError(t, err)
	assert.Contains(t, res.Error, "autocorrelation")
	assert.Nil(t, res.ACF)
	assert.NotNil(t, res.Decomposition)
}

func TestTimeSeriesErrors(t *testing.T) {
	ds := weekly(t, 20)
	ctx := context.Background()

	_, err := TimeSeries(ctx, ds, "missing", "value")
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)

	_, err = TimeSeries(ctx, ds, "date", "label")
	assert.ErrorIs(t, err, dataset.ErrNotNumeric)

	empty := dataset.MustNew(
		dataset.NewDatetime("d", []time.Time{day0, day0}, []bool{true, true}),
		dataset.NewNumeric("v", []float64{math.NaN(), math.NaN()}),
	)
	_, err = TimeSeries(ctx, empty, "d", "v")
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = TimeSeries(cancelled, ds, "date", "value")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCorrelationAnalysis(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := make([]float64, len(x))
	z := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	for i, v := range x {
		y[i] = 2*v + 1
	}
	ds := dataset.MustNew(dataset.NewNumeric("x", x), dataset.NewNumeric("y", y), dataset.NewNumeric("z", z))

	res, err := CorrelationAnalysis(ds, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, res.Matrix.Columns)
	require.NotEmpty(t, res.StrongPairs)
	assert.Equal(t, "x", res.StrongPairs[0].A)
	assert.Equal(t, "y", res.StrongPairs[0].B)

	require.NotEmpty(t, res.TrendLines)
	line := res.TrendLines[0]
	assert.InDelta(t, 2.0, float64(line.Slope), 1e-9)
	assert.InDelta(t, 1.0, float64(line.Intercept), 1e-9)
	assert.InDelta(t, 1.0, float64(line.RSquared), 1e-9)
	assert.LessOrEqual(t, len(res.TrendLines), TopPairs)

	_, err = CorrelationAnalysis(ds, []string{"x"})
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)
}

// blobs returns three well separated groups of 20 points in three
// dimensions, interleaved row by row.
func blobs() (*dataset.Dataset, []int) {
	centres := [][3]float64{{0, 0, 0}, {10, 10, 0}, {0, 10, 10}}
	cols := make([][]float64, 3)
	var truth []int
	for i := 0; i < 20; i++ {
		for g, c := range centres {
			for d := range cols {
				jitter := float64((i*(d+3)+g*5)%11-5) / 10
				cols[d] = append(cols[d], c[d]+jitter)
			}
			truth = append(truth, g)
		}
	}
	return dataset.MustNew(
		dataset.NewNumeric("a", cols[0]),
		dataset.NewNumeric("b", cols[1]),
		dataset.NewNumeric("c", cols[2]),
	), truth
}

func TestClusterRecoversBlobs(t *testing.T) {
	ds, truth := blobs()
	res, err := Cluster(context.Background(), ds, []string{"a", "b", "c"}, 3)
	require.NoError(t, err)
	require.Len(t, res.Labels, len(truth))

	// same blob <=> same cluster
	mapping := make(map[int]int)
	for i, g := range truth {
		if l, ok := mapping[g]; ok {
			assert.Equal(t, l, res.Labels[i], "row %d", i)
		} else {
			mapping[g] = res.Labels[i]
		}
	}
	assert.Len(t, mapping, 3)
	assert.Equal(t, 0, res.Labels[0], "labels follow first appearance")

	require.Len(t, res.Profiles, 3)
	for _, p := range res.Profiles {
		assert.Equal(t, 20, p.Size)
		assert.Len(t, p.Mean, 3)
	}
	assert.Len(t, res.Centroids, 3)
	assert.Greater(t, float64(res.Inertia), 0.0)
	assert.LessOrEqual(t, res.Iterations, kmeansMaxIter)

	require.NotNil(t, res.PCA)
	ev := res.PCA.ExplainedVariance
	require.Len(t, ev, 2)
	assert.GreaterOrEqual(t, float64(ev[0]), float64(ev[1]))
	assert.LessOrEqual(t, res.PCA.TotalExplained(), 1.0+1e-9)
	assert.Len(t, res.PCA.Points, len(truth))
	assert.Len(t, res.PCA.Loadings, 3)

	assert.Len(t, res.Kruskal, 3)
	assert.Len(t, res.TopVariables, 3)
	for _, name := range res.TopVariables {
		assert.Less(t, float64(res.Kruskal[name].PValue), 0.05)
	}

	again, err := Cluster(context.Background(), ds, []string{"a", "b", "c"}, 3)
	require.NoError(t, err)
	assert.Equal(t, res.Labels, again.Labels, "clustering is reproducible")
}

func TestClusterTwoColumnsAndMissing(t *testing.T) {
	ds, _ := blobs()
	a, _ := ds.Column("a")
	a.Floats[0] = math.NaN()

	res, err := Cluster(context.Background(), ds, []string{"a", "b"}, 2)
	require.NoError(t, err)
	assert.Nil(t, res.PCA, "PCA needs more than two columns")
	assert.Len(t, res.Labels, ds.Rows())

	labelled, err := res.Labelled(ds)
	require.NoError(t, err)
	c, err := labelled.NumericColumn(ClusterColumn)
	require.NoError(t, err)
	assert.Equal(t, float64(res.Labels[5]), c.Floats[5])
	assert.False(t, ds.Has(ClusterColumn))

	_, err = res.Labelled(ds.Take([]int{0, 1}))
	assert.ErrorIs(t, err, dataset.ErrLengthMismatch)
}

func TestClusterLabelledKeepsExistingClusterColumn(t *testing.T) {
	ds, _ := blobs()
	own := make([]string, ds.Rows())
	for i := range own {
		own[i] = "user"
	}
	require.NoError(t, ds.AddColumn(dataset.NewCategorical(ClusterColumn, own, nil)))
	require.NoError(t, ds.AddColumn(dataset.NewCategorical(ClusterColumn+"_1", own, nil)))

	res, err := Cluster(context.Background(), ds, []string{"a", "b"}, 2)
	require.NoError(t, err)

	labelled, err := res.Labelled(ds)
	require.NoError(t, err)
	assert.Equal(t, ds.Cols()+1, labelled.Cols())

	userCol, err := labelled.Column(ClusterColumn)
	require.NoError(t, err)
	assert.Equal(t, "user", userCol.Display(0))

	labels, err := labelled.NumericColumn(ClusterColumn + "_2")
	require.NoError(t, err)
	assert.Equal(t, float64(res.Labels[0]), labels.Floats[0])
}

func TestClusterValidation(t *testing.T) {
	ds, _ := blobs()
	ctx := context.Background()

	_, err := Cluster(ctx, ds, []string{"a", "b"}, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Cluster(ctx, ds, []string{"a", "b"}, 11)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Cluster(ctx, ds, []string{"a"}, 3)
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)
	_, err = Cluster(ctx, ds, []string{"a", "nope"}, 3)
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)

	small := dataset.MustNew(dataset.NewNumeric("x", []float64{1, 2}), dataset.NewNumeric("y", []float64{1, 2}))
	_, err = Cluster(ctx, small, []string{"x", "y"}, 3)
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)
}

func TestKruskalFallback(t *testing.T) {
	// 12 rows in 3 clusters: every group has at most 5 values
	x := []float64{0, 0.1, 0.2, 0.1, 5, 5.1, 5.2, 5.1, 10, 10.1, 10.2, 10.1}
	ds := dataset.MustNew(dataset.NewNumeric("x", x), dataset.NewNumeric("y", x))

	res, err := Cluster(context.Background(), ds, []string{"x", "y"}, 3)
	require.NoError(t, err)
	assert.Empty(t, res.Kruskal)
	assert.Equal(t, []string{"x", "y"}, res.TopVariables)
}

func TestPCA(t *testing.T) {
	x := make([][]float64, 10)
	for i := range x {
		v := float64(i)
		x[i] = []float64{v, 2 * v, -v}
	}
	res, err := PCA(x, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(res.ExplainedVariance[0]), 1e-9)
	assert.InDelta(t, 0.0, float64(res.ExplainedVariance[1]), 1e-9)

	// largest loading is positive
	assert.Greater(t, float64(res.Loadings[1][0]), 0.0)
	assert.InDelta(t, 2/math.Sqrt(6), float64(res.Loadings[1][0]), 1e-9)

	_, err = PCA(x, 4)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = PCA(x[:1], 1)
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)
}

func normalScores(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
	}
	return xs
}

func TestDistributionNumeric(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("v", normalScores(200)))
	res, err := Distribution(ds, "v")
	require.NoError(t, err)
	require.NotNil(t, res.Numeric)
	assert.Nil(t, res.ValueCounts)

	d := res.Numeric
	assert.Equal(t, 200, d.Summary.Count)
	assert.InDelta(t, 0.0, float64(d.Skewness), 1e-9)
	assert.Len(t, d.Histogram.Counts, HistogramBins)
	assert.Len(t, d.QQ, 200)
	assert.Equal(t, 200, d.TestSize)
	require.NotNil(t, d.Shapiro)
	require.NotNil(t, d.NormalTest)
	assert.True(t, d.Normal(0.05))

	exp := make([]float64, 200)
	for i := range exp {
		exp[i] = -math.Log(1 - (float64(i)+0.5)/200)
	}
	res, err = Distribution(dataset.MustNew(dataset.NewNumeric("e", exp)), "e")
	require.NoError(t, err)
	assert.Greater(t, float64(res.Numeric.Skewness), 0.5)
	assert.False(t, res.Numeric.Normal(0.05))
}

func TestDistributionSmallAndLarge(t *testing.T) {
	small := dataset.MustNew(dataset.NewNumeric("v", []float64{1, 2, 3, 4, 5, math.NaN()}))
	res, err := Distribution(small, "v")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Numeric.Summary.Count)
	assert.Nil(t, res.Numeric.Shapiro)
	assert.Nil(t, res.Numeric.NormalTest)
	assert.False(t, res.Numeric.Normal(0.05))

	large := dataset.MustNew(dataset.NewNumeric("v", normalScores(6000)))
	res, err = Distribution(large, "v")
	require.NoError(t, err)
	assert.Equal(t, MaxTestSize, res.Numeric.TestSize)
	assert.NotNil(t, res.Numeric.Shapiro)
	assert.Equal(t, 6000, res.Numeric.Summary.Count)

	again, err := Distribution(large, "v")
	require.NoError(t, err)
	assert.Equal(t, res.Numeric.Shapiro, again.Numeric.Shapiro, "subsample is seeded")
}

func TestDistributionCategorical(t *testing.T) {
	ds := dataset.MustNew(dataset.NewCategorical("c", []string{"a", "b", "a", "c", "a"}, nil))
	res, err := Distribution(ds, "c")
	require.NoError(t, err)
	assert.Nil(t, res.Numeric)
	require.Len(t, res.ValueCounts, 3)
	assert.Equal(t, "a", res.ValueCounts[0].Value)
	assert.Equal(t, 3, res.ValueCounts[0].Count)

	_, err = Distribution(ds, "nope")
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)

	allMissing := dataset.MustNew(dataset.NewNumeric("n", []float64{math.NaN()}))
	_, err = Distribution(allMissing, "n")
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)
}

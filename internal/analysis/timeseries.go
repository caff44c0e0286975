package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// MovingAverageWindows are the trailing windows computed for a series
var MovingAverageWindows = []int{7, 14, 30}

const (
	// SeasonalPeriod is the period used for the seasonal decomposition
	SeasonalPeriod = 7
	// MinDecomposeRows is the series length required for decomposition
	MinDecomposeRows = 30
	// MaxLags caps the number of ACF/PACF lags
	MaxLags = 30
)

// MovingAverage is one trailing moving average
type MovingAverage struct {
	Window int           `json:"window"`
	Values []stats.Float `json:"values"`
}

// Components is an additive seasonal decomposition
type Components struct {
	Period   int           `json:"period"`
	Trend    []stats.Float `json:"trend"`
	Seasonal []stats.Float `json:"seasonal"`
	Residual []stats.Float `json:"residual"`
}

// TimeSeriesResult is the output of TimeSeries
type TimeSeriesResult struct {
	DateColumn     string          `json:"date_column"`
	ValueColumn    string          `json:"value_column"`
	Dates          []time.Time     `json:"dates"`
	Values         []stats.Float   `json:"values"`
	MovingAverages []MovingAverage `json:"moving_averages"`
	Decomposition  *Components     `json:"decomposition,omitempty"`
	ACF            []stats.Float   `json:"acf,omitempty"`
	PACF           []stats.Float   `json:"pacf,omitempty"`
	ConfidenceBand stats.Float     `json:"confidence_band"`
	Error          string          `json:"error,omitempty"`
}

// TimeSeries orders valueCol by dateCol and computes moving averages,
// decomposition and autocorrelation. A non-datetime date column is parsed;
// rows whose date cannot be parsed are dropped. Missing values are forward
// then backward filled. Failures in the decomposition or autocorrelation
// steps are reported in Error and do not fail the analysis.
func TimeSeries(ctx context.Context, ds *dataset.Dataset, dateCol, valueCol string) (*TimeSeriesResult, error) {
	dc, err := ds.Column(dateCol)
	if err != nil {
		return nil, err
	}
	if dc.Kind != dataset.KindDatetime {
		dc = dataset.ConvertColumn(dc, dataset.KindDatetime)
	}
	vc, err := ds.NumericColumn(valueCol)
	if err != nil {
		return nil, err
	}

	idx := make([]int, 0, dc.Len())
	for i := 0; i < dc.Len(); i++ {
		if !dc.IsMissing(i) {
			idx = append(idx, i)
		}
	}
	if len(idx) < 2 {
		return nil, fmt.Errorf("%w: %q has fewer than two valid dates", dataset.ErrInsufficientData, dateCol)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dc.Times[idx[a]].Before(dc.Times[idx[b]])
	})

	dates := make([]time.Time, len(idx))
	values := make([]float64, len(idx))
	for k, i := range idx {
		dates[k] = dc.Times[i]
		values[k] = vc.Floats[i]
	}
	if !fillGaps(values) {
		return nil, fmt.Errorf("%w: %q has no values", dataset.ErrInsufficientData, valueCol)
	}

	res := &TimeSeriesResult{
		DateColumn:  dateCol,
		ValueColumn: valueCol,
		Dates:       dates,
		Values:      stats.FloatsOf(values),
	}

	n := len(values)
	for _, w := range MovingAverageWindows {
		if n > w {
			res.MovingAverages = append(res.MovingAverages, MovingAverage{
				Window: w,
				Values: stats.FloatsOf(stats.RollingMean(values, w)),
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var problems []string
	if n >= MinDecomposeRows {
		d, err := stats.Decompose(values, SeasonalPeriod)
		if err != nil {
			problems = append(problems, fmt.Sprintf("decomposition: %v", err))
		} else {
			res.Decomposition = &Components{
				Period:   SeasonalPeriod,
				Trend:    stats.FloatsOf(d.Trend),
				Seasonal: stats.FloatsOf(d.Seasonal),
				Residual: stats.FloatsOf(d.Residual),
			}
		}
	}

	if lags := min(MaxLags, n/2); lags > 0 {
		if constant(values) {
			problems = append(problems, fmt.Sprintf("autocorrelation: %v", stats.ErrConstant))
		} else {
			res.ACF = stats.FloatsOf(stats.ACF(values, lags))
			res.PACF = stats.FloatsOf(stats.PACF(values, lags))
			res.ConfidenceBand = stats.Float(stats.ConfidenceBand(n))
		}
	}

	res.Error = strings.Join(problems, "; ")
	return res, nil
}

// fillGaps forward fills then backward fills NaNs in place. It reports
// false when every value is missing.
func fillGaps(xs []float64) bool {
	last := math.NaN()
	for i, x := range xs {
		if math.IsNaN(x) {
			xs[i] = last
		} else {
			last = x
		}
	}
	next := math.NaN()
	for i := len(xs) - 1; i >= 0; i-- {
		if math.IsNaN(xs[i]) {
			xs[i] = next
		} else {
			next = xs[i]
		}
	}
	return len(xs) > 0 && !math.IsNaN(xs[0])
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

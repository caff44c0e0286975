package charts

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// datedSeries converts a time series to go-chart x values, skipping gaps
func datedSeries(dates []time.Time, values []stats.Float) points {
	var p points
	for i, v := range values {
		if i < len(dates) {
			p.add(chart.TimeToFloat64(dates[i]), float64(v))
		}
	}
	return p
}

func dateAxis(name string) chart.XAxis {
	return chart.XAxis{Name: name, ValueFormatter: chart.TimeDateValueFormatter}
}

// TimeSeries draws the observed values and their moving averages
func TimeSeries(w io.Writer, res *analysis.TimeSeriesResult) error {
	observed := datedSeries(res.Dates, res.Values)
	if len(observed.xs) < 2 {
		return ErrNoData
	}
	series := []chart.Series{chart.ContinuousSeries{
		Name:    res.ValueColumn,
		Style:   lineStyle(chart.ColorBlue, 1),
		XValues: observed.xs,
		YValues: observed.ys,
	}}
	for i, ma := range res.MovingAverages {
		p := datedSeries(res.Dates, ma.Values)
		if len(p.xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("MA %d", ma.Window),
			Style:   lineStyle(chart.GetAlternateColor(i+1), 2),
			XValues: p.xs,
			YValues: p.ys,
		})
	}
	return renderChart(w, "time series", chart.Chart{
		Title:  fmt.Sprintf("%s over %s", res.ValueColumn, res.DateColumn),
		XAxis:  dateAxis(res.DateColumn),
		YAxis:  yAxis(res.ValueColumn, observed.ys),
		Series: series,
	})
}

// Decomposition draws trend on the primary axis and the seasonal and
// residual parts on the secondary axis
func Decomposition(w io.Writer, res *analysis.TimeSeriesResult) error {
	d := res.Decomposition
	if d == nil {
		return ErrNoData
	}
	trend := datedSeries(res.Dates, d.Trend)
	seasonal := datedSeries(res.Dates, d.Seasonal)
	residual := datedSeries(res.Dates, d.Residual)
	if len(trend.xs) < 2 || len(seasonal.xs) < 2 {
		return ErrNoData
	}

	secondary := chart.YAxis{Name: "seasonal / residual"}
	if r := flatRange(seasonal.ys, residual.ys); r != nil {
		secondary.Range = r
	}
	series := []chart.Series{
		chart.ContinuousSeries{Name: "trend", Style: lineStyle(chart.ColorBlue, 2), XValues: trend.xs, YValues: trend.ys},
		chart.ContinuousSeries{Name: "seasonal", YAxis: chart.YAxisSecondary, Style: lineStyle(chart.ColorGreen, 1), XValues: seasonal.xs, YValues: seasonal.ys},
	}
	if len(residual.xs) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "residual",
			YAxis:   chart.YAxisSecondary,
			Style:   pointStyle(chart.ColorAlternateGray),
			XValues: residual.xs,
			YValues: residual.ys,
		})
	}
	return renderChart(w, "decomposition", chart.Chart{
		Title:          fmt.Sprintf("Decomposition of %s (period %d)", res.ValueColumn, d.Period),
		XAxis:          dateAxis(res.DateColumn),
		YAxis:          yAxis("trend", trend.ys),
		YAxisSecondary: secondary,
		Series:         series,
	})
}

// Clusters plots the PCA projection coloured by cluster
func Clusters(w io.Writer, res *analysis.ClusterResult) error {
	if res.PCA == nil || len(res.PCA.Points) == 0 {
		return ErrNoData
	}
	byCluster := make([]points, res.K)
	for i, pt := range res.PCA.Points {
		if i >= len(res.Labels) || len(pt) < 2 {
			continue
		}
		if l := res.Labels[i]; l >= 0 && l < res.K {
			byCluster[l].add(float64(pt[0]), float64(pt[1]))
		}
	}

	var series []chart.Series
	var all []float64
	for k, p := range byCluster {
		if len(p.xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("cluster %d", k),
			Style:   pointStyle(chart.GetDefaultColor(k)),
			XValues: p.xs,
			YValues: p.ys,
		})
		all = append(all, p.ys...)
	}
	if len(series) == 0 {
		return ErrNoData
	}

	ev := res.PCA.ExplainedVariance
	xName, yName := "PC1", "PC2"
	if len(ev) >= 2 {
		xName = fmt.Sprintf("PC1 (%.1f%%)", float64(ev[0])*100)
		yName = fmt.Sprintf("PC2 (%.1f%%)", float64(ev[1])*100)
	}
	return renderChart(w, "cluster", chart.Chart{
		Title:  fmt.Sprintf("K-means clusters (k=%d)", res.K),
		XAxis:  chart.XAxis{Name: xName},
		YAxis:  yAxis(yName, all),
		Series: series,
	})
}

// Distribution draws the histogram of a numeric distribution result
func Distribution(w io.Writer, res *analysis.DistributionResult) error {
	if res.Numeric == nil {
		return Pie(w, "Share of "+res.Column, res.ValueCounts)
	}
	return Histogram(w, "Distribution of "+res.Column, res.Numeric.Histogram)
}

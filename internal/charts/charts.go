package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sakura24999/data-analysis-dashboard/internal/explore"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// Image size in pixels
const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

// maxTicks bounds the labelled ticks on a categorical x axis
const maxTicks = 8

var (
	// ErrNoData is returned when there are fewer points than a chart needs
	ErrNoData = errors.New("not enough data to draw chart")
	// ErrUnsupported is returned for chart kinds that have no image form
	ErrUnsupported = errors.New("chart kind cannot be rendered as an image")
)

// ContentType of every rendered chart
const ContentType = "image/png"

// background leaves room for the title and legend
var background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}

// pointStyle renders points only, no connecting line
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: width}
}

// Render draws c as a PNG. Box plots and heatmaps are left to the browser.
func Render(w io.Writer, c *explore.Chart) error {
	switch c.Kind {
	case explore.ChartLine:
		return line(w, c)
	case explore.ChartBar:
		return bar(w, c)
	case explore.ChartScatter:
		return scatter(w, c)
	case explore.ChartHistogram:
		if c.Histogram == nil {
			return ErrNoData
		}
		return Histogram(w, c.Title, *c.Histogram)
	case explore.ChartPie:
		return Pie(w, c.Title, c.Slices)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, c.Kind)
}

// points collects the finite (x, y) pairs of a series
type points struct {
	xs, ys []float64
}

func (p *points) add(x, y float64) {
	if isFinite(x) && isFinite(y) {
		p.xs = append(p.xs, x)
		p.ys = append(p.ys, y)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// flatRange returns an explicit y range when every value is the same, since
// go-chart cannot scale a zero-height range. It returns nil otherwise.
func flatRange(series ...[]float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ys := range series {
		for _, y := range ys {
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}
	}
	if lo != hi || math.IsInf(lo, 0) {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// yAxis returns an axis named name, pinned when the data is flat
func yAxis(name string, series ...[]float64) chart.YAxis {
	axis := chart.YAxis{Name: name}
	if r := flatRange(series...); r != nil {
		axis.Range = r
	}
	return axis
}

// labelTicks spreads at most maxTicks of labels over index positions,
// always including the first and last.
func labelTicks(labels []string) []chart.Tick {
	n := len(labels)
	if n == 0 {
		return nil
	}
	step := max(1, (n-1)/(maxTicks-1))
	var ticks []chart.Tick
	for i := 0; i < n-1; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	return append(ticks, chart.Tick{Value: float64(n - 1), Label: labels[n-1]})
}

func floats(xs []stats.Float) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = float64(v)
	}
	return out
}

func renderChart(w io.Writer, kind string, c chart.Chart) error {
	c.Width, c.Height = DefaultWidth, DefaultHeight
	c.Background = background
	if len(c.Series) > 1 {
		c.Elements = []chart.Renderable{chart.Legend(&c)}
	}
	if err := c.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", kind, err)
	}
	return nil
}

func line(w io.Writer, c *explore.Chart) error {
	var series []chart.Series
	var all [][]float64
	for i, s := range c.Series {
		var p points
		for j, v := range s.Values {
			p.add(float64(j), float64(v))
		}
		if len(p.xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   lineStyle(chart.GetDefaultColor(i), 1.5),
			XValues: p.xs,
			YValues: p.ys,
		})
		all = append(all, p.ys)
	}
	if len(series) == 0 || len(c.Labels) < 2 {
		return ErrNoData
	}
	return renderChart(w, "line", chart.Chart{
		Title:  c.Title,
		XAxis:  chart.XAxis{Name: c.XLabel, Ticks: labelTicks(c.Labels)},
		YAxis:  yAxis(c.YLabel, all...),
		Series: series,
	})
}

func scatter(w io.Writer, c *explore.Chart) error {
	if len(c.Series) == 0 {
		return ErrNoData
	}
	var p points
	for i, v := range c.Series[0].Values {
		if i < len(c.X) {
			p.add(float64(c.X[i]), float64(v))
		}
	}
	if len(p.xs) < 2 {
		return ErrNoData
	}
	values := chart.ContinuousSeries{
		Name:    c.Series[0].Name,
		Style:   pointStyle(chart.ColorBlue),
		XValues: p.xs,
		YValues: p.ys,
	}
	title := c.Title
	if c.Correlation != nil && c.Correlation.Valid() {
		title = fmt.Sprintf("%s (r = %.3f)", title, float64(*c.Correlation))
	}
	return renderChart(w, "scatter", chart.Chart{
		Title: title,
		XAxis: chart.XAxis{Name: c.XLabel},
		YAxis: yAxis(c.YLabel, p.ys),
		Series: []chart.Series{
			values,
			&chart.LinearRegressionSeries{
				Name:        "trend",
				Style:       lineStyle(chart.ColorRed, 1.5),
				InnerSeries: values,
			},
		},
	})
}

type barValue struct {
	label string
	value float64
}

func bar(w io.Writer, c *explore.Chart) error {
	if len(c.Series) == 0 {
		return ErrNoData
	}
	var bars []barValue
	for i, v := range c.Series[0].Values {
		if i < len(c.Labels) && v.Valid() {
			bars = append(bars, barValue{c.Labels[i], float64(v)})
		}
	}
	return drawBars(w, "bar", c.Title, c.YLabel, bars, true)
}

// Histogram draws the bin counts of h; every fifth edge is labelled
func Histogram(w io.Writer, title string, h stats.Histogram) error {
	bars := make([]barValue, len(h.Counts))
	for i, n := range h.Counts {
		label := ""
		if i%5 == 0 && i < len(h.Edges) {
			label = dataFloat(h.Edges[i])
		}
		bars[i] = barValue{label, float64(n)}
	}
	return drawBars(w, "histogram", title, "count", bars, false)
}

func dataFloat(v stats.Float) string {
	return chart.FloatValueFormatter(float64(v))
}

func drawBars(w io.Writer, kind, title, yName string, bars []barValue, spaced bool) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	lo, hi := 0.0, 0.0
	values := make([]chart.Value, len(bars))
	for i, b := range bars {
		lo, hi = math.Min(lo, b.value), math.Max(hi, b.value)
		values[i] = chart.Value{Label: b.label, Value: b.value}
	}
	if lo == hi {
		hi = lo + 1
	}

	slot := (DefaultWidth - 120) / len(bars)
	width, spacing := max(2, slot*6/10), max(1, slot*4/10)
	if !spaced {
		width, spacing = max(2, slot-1), 1
	}

	bc := chart.BarChart{
		Title:        title,
		Background:   background,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		BarWidth:     width,
		BarSpacing:   spacing,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.05},
		},
		Bars: values,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", kind, err)
	}
	return nil
}

// Pie draws category shares. Empty categories are left out.
func Pie(w io.Writer, title string, slices []explore.ValueCount) error {
	var values []chart.Value
	for _, s := range slices {
		if s.Count > 0 {
			values = append(values, chart.Value{
				Label: fmt.Sprintf("%s (%.1f%%)", s.Value, s.Percent),
				Value: float64(s.Count),
			})
		}
	}
	if len(values) == 0 {
		return ErrNoData
	}
	pc := chart.PieChart{
		Title:      title,
		Background: background,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Values:     values,
	}
	if err := pc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render pie chart: %w", err)
	}
	return nil
}

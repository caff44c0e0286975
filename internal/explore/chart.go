package explore

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// ChartKind names a visualisation
type ChartKind string

const (
	ChartLine      ChartKind = "line"
	ChartBar       ChartKind = "bar"
	ChartScatter   ChartKind = "scatter"
	ChartHistogram ChartKind = "histogram"
	ChartBox       ChartKind = "box"
	ChartPie       ChartKind = "pie"
	ChartHeatmap   ChartKind = "heatmap"
)

// Aggregations accepted by bar charts
var Aggregations = []string{"sum", "mean", "median", "max", "min", "count"}

// ErrInvalidChart is returned for an unknown chart kind or aggregation
var ErrInvalidChart = errors.New("invalid chart request")

const (
	defaultTopN = 10
	defaultBins = 30
)

// ChartRequest selects the columns and options for a chart
type ChartRequest struct {
	Kind    ChartKind `json:"kind"`
	X       string    `json:"x,omitempty"`
	Y       []string  `json:"y,omitempty"`
	Agg     string    `json:"agg,omitempty"`
	TopN    int       `json:"top_n,omitempty"`
	Bins    int       `json:"bins,omitempty"`
	Columns []string  `json:"columns,omitempty"`
}

// Series is one named sequence of values
type Series struct {
	Name   string        `json:"name"`
	Values []stats.Float `json:"values"`
}

// BoxSummary is the five-number summary of one column plus its outliers
type BoxSummary struct {
	Column   string        `json:"column"`
	Min      stats.Float   `json:"min"`
	Q1       stats.Float   `json:"q1"`
	Median   stats.Float   `json:"median"`
	Q3       stats.Float   `json:"q3"`
	Max      stats.Float   `json:"max"`
	Lower    stats.Float   `json:"lower_fence"`
	Upper    stats.Float   `json:"upper_fence"`
	Outliers []stats.Float `json:"outliers"`
}

// Chart is the data behind one visualisation. Which fields are set depends on Kind.
type Chart struct {
	Kind        ChartKind        `json:"kind"`
	Title       string           `json:"title"`
	XLabel      string           `json:"x_label,omitempty"`
	YLabel      string           `json:"y_label,omitempty"`
	Labels      []string         `json:"labels,omitempty"`
	X           []stats.Float    `json:"x,omitempty"`
	Series      []Series         `json:"series,omitempty"`
	Correlation *stats.Float     `json:"correlation,omitempty"`
	Histogram   *stats.Histogram `json:"histogram,omitempty"`
	Boxes       []BoxSummary     `json:"boxes,omitempty"`
	Slices      []ValueCount     `json:"slices,omitempty"`
	Matrix      *Matrix          `json:"matrix,omitempty"`
}

// ChartData builds the data for req
func ChartData(ds *dataset.Dataset, req ChartRequest) (*Chart, error) {
	if ds.IsEmpty() {
		return nil, dataset.ErrEmptyDataset
	}
	switch req.Kind {
	case ChartLine:
		return lineChart(ds, req)
	case ChartBar:
		return barChart(ds, req)
	case ChartScatter:
		return scatterChart(ds, req)
	case ChartHistogram:
		return histogramChart(ds, req)
	case ChartBox:
		return boxChart(ds, req)
	case ChartPie:
		return pieChart(ds, req)
	case ChartHeatmap:
		m, err := Correlation(ds, req.Columns)
		if err != nil {
			return nil, err
		}
		return &Chart{Kind: ChartHeatmap, Title: "Correlation Heatmap", Matrix: &m}, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidChart, req.Kind)
}

func clampInt(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	return min(max(v, lo), hi)
}

// lineChart plots each Y column against X, ordered by X when X is
// numeric or datetime.
func lineChart(ds *dataset.Dataset, req ChartRequest) (*Chart, error) {
	x, err := ds.Column(req.X)
	if err != nil {
		return nil, err
	}
	ys, err := numericColumns(ds, req.Y)
	if err != nil {
		return nil, err
	}

	order := make([]int, ds.Rows())
	for i := range order {
		order[i] = i
	}
	if x.Kind == dataset.KindNumeric || x.Kind == dataset.KindDatetime {
		keys := x.NumericValues()
		sort.SliceStable(order, func(a, b int) bool {
			ka, kb := keys[order[a]], keys[order[b]]
			if math.IsNaN(kb) {
				return !math.IsNaN(ka)
			}
			return ka < kb
		})
	}

	chart := &Chart{Kind: ChartLine, Title: fmt.Sprintf("%v over %s", req.Y, req.X), XLabel: req.X, Labels: make([]string, len(order))}
	for i, row := range order {
		chart.Labels[i] = x.Display(row)
	}
	for _, y := range ys {
		s := Series{Name: y.Name, Values: make([]stats.Float, len(order))}
		for i, row := range order {
			s.Values[i] = stats.Float(y.Floats[row])
		}
		chart.Series = append(chart.Series, s)
	}
	return chart, nil
}

func numericColumns(ds *dataset.Dataset, names []string) ([]*dataset.Column, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one y column is required", ErrInvalidChart)
	}
	cols := make([]*dataset.Column, len(names))
	for i, name := range names {
		c, err := ds.NumericColumn(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return cols, nil
}

// Aggregate applies a named aggregation to the finite values of xs
func Aggregate(agg string, xs []float64) (float64, error) {
	clean := stats.DropNaN(xs)
	switch agg {
	case "count":
		return float64(len(clean)), nil
	case "sum":
		s := 0.0
		for _, v := range clean {
			s += v
		}
		return s, nil
	case "", "mean":
		return stats.Mean(clean), nil
	case "median":
		return stats.Median(clean), nil
	case "max", "min":
		if len(clean) == 0 {
			return math.NaN(), nil
		}
		sorted := stats.Sorted(clean)
		if agg == "max" {
			return sorted[len(sorted)-1], nil
		}
		return sorted[0], nil
	}
	return 0, fmt.Errorf("%w: unknown aggregation %q", ErrInvalidChart, agg)
}

// barChart groups rows by X and aggregates the first Y column (or counts
// rows when no Y is given), largest first, limited to TopN (5..30) groups.
func barChart(ds *dataset.Dataset, req ChartRequest) (*Chart, error) {
	x, err := ds.Column(req.X)
	if err != nil {
		return nil, err
	}
	agg := req.Agg
	var y *dataset.Column
	if len(req.Y) > 0 {
		if y, err = ds.NumericColumn(req.Y[0]); err != nil {
			return nil, err
		}
	} else {
		agg = "count"
	}
	if agg == "" {
		agg = "sum"
	}

	groups := make(map[string][]float64)
	for i := 0; i < x.Len(); i++ {
		if x.IsMissing(i) {
			continue
		}
		v := 1.0
		if y != nil {
			v = y.Floats[i]
		}
		key := x.Display(i)
		groups[key] = append(groups[key], v)
	}

	type bar struct {
		label string
		value float64
	}
	bars := make([]bar, 0, len(groups))
	for label, vals := range groups {
		v, err := Aggregate(agg, vals)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar{label, v})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].value != bars[j].value {
			return bars[i].value > bars[j].value
		}
		return bars[i].label < bars[j].label
	})
	if n := clampInt(req.TopN, 5, 30, defaultTopN); len(bars) > n {
		bars = bars[:n]
	}

	name := "count"
	if y != nil {
		name = fmt.Sprintf("%s(%s)", agg, y.Name)
	}
	chart := &Chart{Kind: ChartBar, Title: fmt.Sprintf("%s by %s", name, x.Name), XLabel: x.Name, YLabel: name}
	s := Series{Name: name}
	for _, b := range bars {
		chart.Labels = append(chart.Labels, b.label)
		s.Values = append(s.Values, stats.Float(b.value))
	}
	chart.Series = []Series{s}
	return chart, nil
}

func scatterChart(ds *dataset.Dataset, req ChartRequest) (*Chart, error) {
	x, err := ds.NumericColumn(req.X)
	if err != nil {
		return nil, err
	}
	ys, err := numericColumns(ds, req.Y)
	if err != nil {
		return nil, err
	}
	y := ys[0]

	xs, yv := stats.PairwiseComplete(x.Floats, y.Floats)
	r := stats.Float(stats.Pearson(x.Floats, y.Floats))
	return &Chart{
		Kind:        ChartScatter,
		Title:       fmt.Sprintf("%s vs %s", y.Name, x.Name),
		XLabel:      x.Name,
		YLabel:      y.Name,
		X:           stats.FloatsOf(xs),
		Series:      []Series{{Name: y.Name, Values: stats.FloatsOf(yv)}},
		Correlation: &r,
	}, nil
}

func histogramChart(ds *dataset.Dataset, req ChartRequest) (*Chart, error) {
	x, err := ds.NumericColumn(req.X)
	if err != nil {
		return nil, err
	}
	h := stats.NewHistogram(x.Floats, clampInt(req.Bins, 5, 100, defaultBins))
	return &Chart{Kind: ChartHistogram, Title: "Distribution of " + x.Name, XLabel: x.Name, YLabel: "count", Histogram: &h}, nil
}

// Box computes the box-plot summary of a numeric column
func Box(c *dataset.Column) BoxSummary {
	sorted := stats.Sorted(c.Floats)
	lo, hi := stats.IQRBounds(sorted)
	b := BoxSummary{
		Column:   c.Name,
		Q1:       stats.Float(stats.Quantile(sorted, 0.25)),
		Median:   stats.Float(stats.Quantile(sorted, 0.5)),
		Q3:       stats.Float(stats.Quantile(sorted, 0.75)),
		Lower:    stats.Float(lo),
		Upper:    stats.Float(hi),
		Min:      stats.Float(math.NaN()),
		Max:      stats.Float(math.NaN()),
		Outliers: []stats.Float{},
	}
	if len(sorted) > 0 {
		b.Min, b.Max = stats.Float(sorted[0]), stats.Float(sorted[len(sorted)-1])
	}
	for _, v := range sorted {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, stats.Float(v))
		}
	}
	return b
}

func boxChart(ds *dataset.Dataset, req ChartRequest) (*Chart, error) {
	names := req.Y
	if len(names) == 0 && req.X != "" {
		names = []string{req.X}
	}
	cols, err := numericColumns(ds, names)
	if err != nil {
		return nil, err
	}
	chart := &Chart{Kind: ChartBox, Title: "Box Plot"}
	for _, c := range cols {
		chart.Boxes = append(chart.Boxes, Box(c))
	}
	return chart, nil
}

// pieChart shows category shares; categories past TopN fold into "Other".
func pieChart(ds *dataset.Dataset, req ChartRequest) (*Chart, error) {
	x, err := ds.Column(req.X)
	if err != nil {
		return nil, err
	}
	all := ValueCounts(x, 0)
	n := clampInt(req.TopN, 5, 30, defaultTopN)
	slices := all
	if len(all) > n {
		slices = append([]ValueCount(nil), all[:n]...)
		other := ValueCount{Value: "Other"}
		for _, vc := range all[n:] {
			other.Count += vc.Count
			other.Percent += vc.Percent
		}
		slices = append(slices, other)
	}
	return &Chart{Kind: ChartPie, Title: "Share of " + x.Name, Slices: slices}, nil
}

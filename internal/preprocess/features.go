package preprocess

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// Datetime feature names
const (
	FeatureYear      = "year"
	FeatureMonth     = "month"
	FeatureDay       = "day"
	FeatureWeekday   = "weekday"
	FeatureQuarter   = "quarter"
	FeatureIsWeekend = "is_weekend"
)

// DatetimeFeatures lists the supported datetime features
var DatetimeFeatures = []string{FeatureYear, FeatureMonth, FeatureDay, FeatureWeekday, FeatureQuarter, FeatureIsWeekend}

const (
	minBins = 2
	maxBins = 20
)

// FeatureConfig lists the features derived from one column
type FeatureConfig struct {
	Datetime []string       `json:"datetime_features,omitempty"`
	Binning  *BinningConfig `json:"binning,omitempty"`
	Text     *TextConfig    `json:"text,omitempty"`
}

// BinningConfig cuts a numeric column into NBins equal-width intervals.
// Labels, when given, must have one entry per bin.
type BinningConfig struct {
	NBins  int      `json:"n_bins"`
	Labels []string `json:"labels,omitempty"`
}

// TextConfig derives numeric features from a text column
type TextConfig struct {
	Length    bool     `json:"length,omitempty"`
	WordCount bool     `json:"word_count,omitempty"`
	Contains  []string `json:"contains,omitempty"`
}

// AddFeatures appends the configured derived columns for col
func AddFeatures(ds *dataset.Dataset, col string, cfg FeatureConfig) (*dataset.Dataset, error) {
	if len(cfg.Datetime) > 0 {
		if err := addDatetimeFeatures(ds, col, cfg.Datetime); err != nil {
			return nil, err
		}
	}
	if cfg.Binning != nil {
		if err := addBins(ds, col, *cfg.Binning); err != nil {
			return nil, err
		}
	}
	if cfg.Text != nil {
		if err := addTextFeatures(ds, col, *cfg.Text); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func addDatetimeFeatures(ds *dataset.Dataset, col string, features []string) error {
	c, err := ds.Column(col)
	if err != nil {
		return err
	}
	if c.Kind != dataset.KindDatetime {
		c = dataset.ConvertColumn(c, dataset.KindDatetime)
		if c.NullCount() == c.Len() {
			return fmt.Errorf("%w: %q cannot be parsed as dates", ErrInvalidMethod, col)
		}
	}

	for _, feature := range features {
		extract, ok := datetimeExtractors[feature]
		if !ok {
			return fmt.Errorf("%w: unknown datetime feature %q", ErrInvalidMethod, feature)
		}
		values := make([]float64, c.Len())
		for i, t := range c.Times {
			if !c.Valid[i] {
				values[i] = math.NaN()
				continue
			}
			values[i] = float64(extract(t))
		}
		if err := ds.SetColumn(dataset.NewNumeric(col+"_"+feature, values)); err != nil {
			return err
		}
	}
	return nil
}

// datetimeExtractors map feature names to accessors; weekday is Monday=0.
var datetimeExtractors = map[string]func(time.Time) int{
	FeatureYear:    func(t time.Time) int { return t.Year() },
	FeatureMonth:   func(t time.Time) int { return int(t.Month()) },
	FeatureDay:     func(t time.Time) int { return t.Day() },
	FeatureWeekday: func(t time.Time) int { return (int(t.Weekday()) + 6) % 7 },
	FeatureQuarter: func(t time.Time) int { return (int(t.Month())-1)/3 + 1 },
	FeatureIsWeekend: func(t time.Time) int {
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			return 1
		}
		return 0
	},
}

// BinEdges returns n+1 equal-width edges over [min, max]. The lowest edge
// is pushed down by 0.1% of the range so the minimum falls in the first
// right-closed interval. A constant column instead gets a window of
// ±0.1% of its value (±0.001 at zero) with no further shift.
func BinEdges(xs []float64, n int) []float64 {
	sorted := stats.Sorted(xs)
	if len(sorted) == 0 {
		return nil
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		adj := math.Abs(lo) * 0.001
		if adj == 0 {
			adj = 0.001
		}
		return linspace(lo-adj, hi+adj, n)
	}
	edges := linspace(lo, hi, n)
	edges[0] -= (hi - lo) * 0.001
	return edges
}

func linspace(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[n] = hi
	return edges
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func addBins(ds *dataset.Dataset, col string, cfg BinningConfig) error {
	if cfg.NBins < minBins || cfg.NBins > maxBins {
		return fmt.Errorf("%w: n_bins must be between %d and %d", ErrInvalidMethod, minBins, maxBins)
	}
	if len(cfg.Labels) > 0 && len(cfg.Labels) != cfg.NBins {
		return fmt.Errorf("%w: %d labels given for %d bins", ErrInvalidMethod, len(cfg.Labels), cfg.NBins)
	}
	c, err := ds.NumericColumn(col)
	if err != nil {
		return err
	}
	edges := BinEdges(c.Floats, cfg.NBins)
	if edges == nil {
		return fmt.Errorf("%w: %q has no values to bin", dataset.ErrInsufficientData, col)
	}

	labels := cfg.Labels
	if len(labels) == 0 {
		labels = make([]string, cfg.NBins)
		for i := range labels {
			labels[i] = fmt.Sprintf("(%s, %s]", formatEdge(edges[i]), formatEdge(edges[i+1]))
		}
	}

	values := make([]string, c.Len())
	valid := make([]bool, c.Len())
	for i, v := range c.Floats {
		if math.IsNaN(v) {
			continue
		}
		b := 0
		for b < cfg.NBins-1 && v > edges[b+1] {
			b++
		}
		values[i], valid[i] = labels[b], true
	}
	return ds.SetColumn(dataset.NewCategorical(col+"_bin", values, valid))
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func addTextFeatures(ds *dataset.Dataset, col string, cfg TextConfig) error {
	c, err := ds.Column(col)
	if err != nil {
		return err
	}
	n := c.Len()

	if cfg.Length {
		values := make([]float64, n)
		for i := range values {
			values[i] = math.NaN()
			if !c.IsMissing(i) {
				values[i] = float64(utf8.RuneCountInString(c.Raw(i)))
			}
		}
		if err := ds.SetColumn(dataset.NewNumeric(col+"_length", values)); err != nil {
			return err
		}
	}

	if cfg.WordCount {
		values := make([]float64, n)
		for i := range values {
			values[i] = math.NaN()
			if !c.IsMissing(i) {
				values[i] = float64(len(strings.Fields(c.Raw(i))))
			}
		}
		if err := ds.SetColumn(dataset.NewNumeric(col+"_word_count", values)); err != nil {
			return err
		}
	}

	for _, term := range cfg.Contains {
		if strings.TrimSpace(term) == "" {
			continue
		}
		needle := strings.ToLower(term)
		values := make([]float64, n)
		for i := range values {
			if !c.IsMissing(i) && strings.Contains(strings.ToLower(c.Raw(i)), needle) {
				values[i] = 1
			}
		}
		name := col + "_contains_" + strings.Trim(nonWord.ReplaceAllString(term, "_"), "_")
		if err := ds.SetColumn(dataset.NewNumeric(name, values)); err != nil {
			return err
		}
	}
	return nil
}

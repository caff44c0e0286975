// Package explore computes the descriptive views of a dataset: summary
// statistics, value counts, correlations and chart-ready series.
package explore

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// ColumnSummary is the describe() row for one numeric column
type ColumnSummary struct {
	Column string `json:"column"`
	stats.Summary
}

// Describe summarises every numeric column. Columns are processed by at
// most workers goroutines; results keep column order.
func Describe(ctx context.Context, ds *dataset.Dataset, workers int) ([]ColumnSummary, error) {
	names := ds.NumericNames()
	out := make([]ColumnSummary, len(names))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := ds.Column(name)
			if err != nil {
				return err
			}
			out[i] = ColumnSummary{Column: name, Summary: stats.Describe(c.Floats)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("describe: %w", err)
	}
	return out, nil
}

// ValueCount is one distinct value and its frequency
type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ValueCounts returns distinct non-missing values by descending frequency,
// ties broken by value. top <= 0 returns every value.
func ValueCounts(c *dataset.Column, top int) []ValueCount {
	counts := make(map[string]int)
	total := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		counts[c.Display(i)]++
		total++
	}

	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n, Percent: float64(n) / float64(total) * 100})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// CategoricalSummary lists the most frequent values of a non-numeric column
type CategoricalSummary struct {
	Column string       `json:"column"`
	Unique int          `json:"unique"`
	Top    []ValueCount `json:"top"`
}

// DescribeCategorical returns the top values of every non-numeric column
func DescribeCategorical(ds *dataset.Dataset, top int) []CategoricalSummary {
	var out []CategoricalSummary
	for _, name := range ds.NonNumericNames() {
		c, _ := ds.Column(name)
		out = append(out, CategoricalSummary{Column: name, Unique: c.Unique(), Top: ValueCounts(c, top)})
	}
	return out
}

// Overview is the headline numbers shown above the preview table
type Overview struct {
	Rows         int     `json:"rows"`
	Columns      int     `json:"columns"`
	Missing      int     `json:"missing"`
	MissingRatio float64 `json:"missing_ratio"`
	MemoryBytes  int64   `json:"memory_bytes"`
	Numeric      int     `json:"numeric_columns"`
	Categorical  int     `json:"categorical_columns"`
	Datetime     int     `json:"datetime_columns"`
}

// Summarize builds the dataset overview
func Summarize(ds *dataset.Dataset) Overview {
	rows, cols := ds.Shape()
	return Overview{
		Rows:         rows,
		Columns:      cols,
		Missing:      ds.MissingTotal(),
		MissingRatio: ds.MissingRatio(),
		MemoryBytes:  ds.MemoryUsage(),
		Numeric:      len(ds.NumericNames()),
		Categorical:  len(ds.NonNumericNames()),
		Datetime:     len(ds.DatetimeNames()),
	}
}

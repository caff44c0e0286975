package report

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/preprocess"
)

var fixed = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func testInput(t *testing.T) Input {
	t.Helper()
	n := 40
	dates := make([]time.Time, n)
	sales := make([]float64, n)
	units := make([]float64, n)
	price := make([]float64, n)
	region := make([]string, n)
	for i := 0; i < n; i++ {
		dates[i] = fixed.AddDate(0, 0, i-n)
		sales[i] = 100 + float64(i) + 10*math.Sin(float64(i))
		units[i] = float64(i%7) * 3
		price[i] = float64((i*13)%17) + 1
		region[i] = []string{"east", "west", "north"}[i%3]
	}
	sales[3] = math.NaN()

	original := dataset.MustNew(
		dataset.NewDatetime("date", dates, nil),
		dataset.NewNumeric("sales", sales),
		dataset.NewNumeric("units", units),
		dataset.NewNumeric("price", price),
		dataset.NewCategorical("region", region, nil),
	)

	cfg := preprocess.Config{Missing: map[string]preprocess.MissingMethod{"sales": preprocess.MissingDrop}}
	processed, err := preprocess.Apply(original, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	ts, err := analysis.TimeSeries(ctx, processed, "date", "sales")
	require.NoError(t, err)
	cl, err := analysis.Cluster(ctx, processed, []string{"sales", "units", "price"}, 3)
	require.NoError(t, err)
	dist, err := analysis.Distribution(processed, "sales")
	require.NoError(t, err)
	corr, err := analysis.CorrelationAnalysis(processed, nil)
	require.NoError(t, err)

	return Input{
		Original:  original,
		Processed: processed,
		Steps:     []preprocess.Step{{Name: cfg.Name(), Config: cfg}},
		Results: analysis.Results{
			TimeSeries:   ts,
			Cluster:      cl,
			Distribution: dist,
			Correlation:  corr,
		},
	}
}

func TestBuildFullReport(t *testing.T) {
	b := NewBuilder(WithClock(func() time.Time { return fixed }))
	opts := DefaultOptions()
	opts.Title = "Quarterly Sales"

	md, err := b.Build(context.Background(), testInput(t), opts)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "# Quarterly Sales\n\nGenerated: 2024-03-01 09:30:00\n"))
	for _, heading := range []string{
		"## 1. Data Overview",
		"### 1.1 Column Types",
		"### 1.2 Data Preview",
		"## 2. Basic Statistics",
		"### 2.1 Numeric Columns",
		"### 2.2 Non-numeric Columns",
		"## 3. Applied Preprocessing",
		"### 3.1 missing",
		"### 3.2 Preprocessing Impact",
		"## 4. Advanced Analysis Results",
		"### 4.1 Time Series Analysis",
		"### 4.2 Cluster Analysis",
		"### 4.3 Distribution Analysis",
		"### 4.4 Correlation Analysis",
		"## 5. Conclusions & Insights",
		"### 5.1 Data Overview",
		"### 5.2 Insights from the Analysis",
		"### 5.3 Summary",
	} {
		assert.Contains(t, md, heading)
	}

	// sections appear in order
	assert.Less(t, strings.Index(md, "## 1."), strings.Index(md, "## 2."))
	assert.Less(t, strings.Index(md, "## 2."), strings.Index(md, "## 3."))
	assert.Less(t, strings.Index(md, "## 3."), strings.Index(md, "## 4."))
	assert.Less(t, strings.Index(md, "## 4."), strings.Index(md, "## 5."))

	assert.Contains(t, md, "* Rows: 39\n")
	assert.Contains(t, md, "* Change: -1 rows, +0 columns")
	assert.Contains(t, md, `"missing": {`)
	assert.Contains(t, md, "| Column | Type | Non-null | Missing | Missing (%) | Unique |")
	assert.Contains(t, md, "| region |")
	assert.Contains(t, md, "PC1 explained variance")
	assert.Contains(t, md, "Shapiro-Wilk: p = ")
	assert.Contains(t, md, "no missing values")
	assert.Contains(t, md, "generated automatically")
}

func TestBuildRespectsOptions(t *testing.T) {
	in := testInput(t)
	b := NewBuilder(WithClock(func() time.Time { return fixed }))

	md, err := b.Build(context.Background(), in, Options{})
	require.NoError(t, err)
	assert.Contains(t, md, "# "+DefaultTitle)
	assert.Contains(t, md, "## 1. Data Overview")
	assert.NotContains(t, md, "### 1.2 Data Preview")
	assert.NotContains(t, md, "## 2.")
	assert.NotContains(t, md, "## 3.")
	assert.NotContains(t, md, "## 4.")
	assert.NotContains(t, md, "## 5.")

	in.Steps = nil
	in.Results = analysis.Results{}
	opts := DefaultOptions()
	md, err = b.Build(context.Background(), in, opts)
	require.NoError(t, err)
	assert.NotContains(t, md, "## 3. Applied Preprocessing")
	assert.NotContains(t, md, "## 4. Advanced Analysis Results")
	assert.NotContains(t, md, "### 5.2")
	assert.Contains(t, md, "### 5.3 Summary")
}

func TestMissingRatioVerdicts(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   string
	}{
		{"complete", []float64{1, 2, 3, 4}, "no missing values"},
		{"some", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, math.NaN()}, "some missing values (about 10.0%"},
		{"heavy", []float64{1, math.NaN(), math.NaN(), 4}, "many missing values (about 50.0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dataset.MustNew(dataset.NewNumeric("x", tt.values))
			md, err := NewBuilder().Build(context.Background(), Input{Processed: ds}, Options{IncludeInsights: true})
			require.NoError(t, err)
			assert.Contains(t, md, tt.want)
		})
	}
}

func TestBuildWithoutDataset(t *testing.T) {
	_, err := NewBuilder().Build(context.Background(), Input{}, DefaultOptions())
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Data Analysis Report", "data_analysis_report.md"},
		{"  Sales 2024 / Q1  ", "sales_2024__q1.md"},
		{"売上 レポート", "売上_レポート.md"},
		{"../../etc", "etc.md"},
		{"", "report.md"},
		{"???", "report.md"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.title))
		})
	}
}

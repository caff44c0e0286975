package report

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/explore"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

const (
	// Alpha is the significance level for the normality verdicts
	Alpha = 0.05
	// PCAThreshold is the two-component explained variance considered a
	// successful reduction
	PCAThreshold = 0.7
	// SkewBand is the |skewness| below which a distribution is called symmetric
	SkewBand = 0.5

	topValues = 5
)

// markdownTable renders header and rows with go-pretty's Markdown writer
func markdownTable(w *strings.Builder, header []string, rows [][]any) {
	t := table.NewWriter()
	h := make(table.Row, len(header))
	for i, v := range header {
		h[i] = v
	}
	t.AppendHeader(h)
	for _, r := range rows {
		t.AppendRow(table.Row(r))
	}
	w.WriteString(t.RenderMarkdown())
	w.WriteString("\n\n")
}

func num(v float64) string { return dataset.FormatFloat(v) }

func (b *Builder) writeOverview(w *strings.Builder, ds *dataset.Dataset, opts Options) {
	overview := explore.Summarize(ds)
	w.WriteString("## 1. Data Overview\n\n")
	fmt.Fprintf(w, "* Rows: %d\n", overview.Rows)
	fmt.Fprintf(w, "* Columns: %d\n", overview.Columns)
	fmt.Fprintf(w, "* Memory usage: %.2f KB\n", float64(overview.MemoryBytes)/1024)
	fmt.Fprintf(w, "* Missing values: %d\n\n", overview.Missing)

	w.WriteString("### 1.1 Column Types\n\n")
	var rows [][]any
	for _, info := range ds.Info() {
		rows = append(rows, []any{info.Name, string(info.Kind), info.NonNull, info.Missing,
			fmt.Sprintf("%.2f", info.MissingPct), info.Unique})
	}
	markdownTable(w, []string{"Column", "Type", "Non-null", "Missing", "Missing (%)", "Unique"}, rows)

	if opts.IncludePreview {
		w.WriteString("### 1.2 Data Preview\n\n")
		var preview [][]any
		for _, r := range ds.Head(opts.PreviewRows) {
			row := make([]any, len(r))
			for i, v := range r {
				row[i] = v
			}
			preview = append(preview, row)
		}
		markdownTable(w, ds.Names(), preview)
	}
}

func (b *Builder) writeStatistics(ctx context.Context, w *strings.Builder, ds *dataset.Dataset) error {
	summaries, err := explore.Describe(ctx, ds, b.workers)
	if err != nil {
		return err
	}
	categorical := explore.DescribeCategorical(ds, topValues)
	if len(summaries) == 0 && len(categorical) == 0 {
		return nil
	}

	w.WriteString("## 2. Basic Statistics\n\n")
	if len(summaries) > 0 {
		w.WriteString("### 2.1 Numeric Columns\n\n")
		var rows [][]any
		for _, s := range summaries {
			rows = append(rows, []any{s.Column, s.Count, num(float64(s.Mean)), num(float64(s.Std)),
				num(float64(s.Min)), num(float64(s.Q1)), num(float64(s.Q2)), num(float64(s.Q3)), num(float64(s.Max))})
		}
		markdownTable(w, []string{"Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, rows)
	}

	if len(categorical) > 0 {
		w.WriteString("### 2.2 Non-numeric Columns\n\n")
		for _, c := range categorical {
			fmt.Fprintf(w, "**%s** top values:\n\n", c.Column)
			markdownTable(w, []string{"Value", "Count"}, valueCountRows(c.Top, false))
		}
	}
	return nil
}

func valueCountRows(counts []explore.ValueCount, percent bool) [][]any {
	rows := make([][]any, 0, len(counts))
	for _, vc := range counts {
		row := []any{vc.Value, vc.Count}
		if percent {
			row = append(row, fmt.Sprintf("%.2f", vc.Percent))
		}
		rows = append(rows, row)
	}
	return rows
}

func writePreprocessing(w *strings.Builder, in Input) error {
	w.WriteString("## 3. Applied Preprocessing\n\n")
	for i, step := range in.Steps {
		cfg, err := json.MarshalIndent(step.Config, "", "  ")
		if err != nil {
			return fmt.Errorf("encode step %q: %w", step.Name, err)
		}
		fmt.Fprintf(w, "### 3.%d %s\n\n", i+1, step.Name)
		fmt.Fprintf(w, "```json\n%s\n```\n\n", cfg)
	}

	if in.Original == nil {
		return nil
	}
	origRows, origCols := in.Original.Shape()
	rows, cols := in.Processed.Shape()
	if origRows == rows && origCols == cols {
		return nil
	}
	fmt.Fprintf(w, "### 3.%d Preprocessing Impact\n\n", len(in.Steps)+1)
	fmt.Fprintf(w, "* Original data: %d rows × %d columns\n", origRows, origCols)
	fmt.Fprintf(w, "* Processed data: %d rows × %d columns\n", rows, cols)
	fmt.Fprintf(w, "* Change: %+d rows, %+d columns\n\n", rows-origRows, cols-origCols)
	return nil
}

func writeAnalysis(w *strings.Builder, r analysis.Results) {
	w.WriteString("## 4. Advanced Analysis Results\n\n")

	if ts := r.TimeSeries; ts != nil {
		w.WriteString("### 4.1 Time Series Analysis\n\n")
		fmt.Fprintf(w, "Temporal patterns of **%s** ordered by **%s**.\n\n", ts.ValueColumn, ts.DateColumn)
		fmt.Fprintf(w, "* Period: %s to %s (%d observations)\n",
			ts.Dates[0].Format("2006-01-02"), ts.Dates[len(ts.Dates)-1].Format("2006-01-02"), len(ts.Dates))
		if len(ts.MovingAverages) > 0 {
			windows := make([]string, len(ts.MovingAverages))
			for i, ma := range ts.MovingAverages {
				windows[i] = fmt.Sprint(ma.Window)
			}
			fmt.Fprintf(w, "* Moving averages: %s periods\n", strings.Join(windows, ", "))
		}
		if ts.Decomposition != nil {
			fmt.Fprintf(w, "* Seasonal decomposition with period %d\n", ts.Decomposition.Period)
		}
		if len(ts.ACF) > 1 {
			fmt.Fprintf(w, "* Lag-1 autocorrelation: %.4f (95%% band ±%.4f)\n", float64(ts.ACF[1]), float64(ts.ConfidenceBand))
		}
		w.WriteString("\n")
		if ts.Error != "" {
			fmt.Fprintf(w, "**Note:** an error occurred during the analysis: %s\n\n", ts.Error)
		}
	}

	if c := r.Cluster; c != nil {
		w.WriteString("### 4.2 Cluster Analysis\n\n")
		fmt.Fprintf(w, "Observations were grouped into %d clusters by k-means on %s.\n\n", c.K, strings.Join(c.Columns, ", "))
		var rows [][]any
		for _, p := range c.Profiles {
			row := []any{p.Cluster, p.Size}
			for j := range c.Columns {
				row = append(row, num(float64(p.Mean[j])))
			}
			rows = append(rows, row)
		}
		header := []string{"Cluster", "Size"}
		for _, col := range c.Columns {
			header = append(header, col+" (mean)")
		}
		markdownTable(w, header, rows)

		if c.PCA != nil && len(c.PCA.ExplainedVariance) >= 2 {
			w.WriteString("**Principal Component Analysis (PCA):**\n\n")
			fmt.Fprintf(w, "* PC1 explained variance: %.2f\n", float64(c.PCA.ExplainedVariance[0]))
			fmt.Fprintf(w, "* PC2 explained variance: %.2f\n", float64(c.PCA.ExplainedVariance[1]))
			fmt.Fprintf(w, "* Total: %.2f\n\n", c.PCA.TotalExplained())
		}
		if len(c.TopVariables) > 0 {
			fmt.Fprintf(w, "Most discriminating variables: %s\n\n", strings.Join(c.TopVariables, ", "))
		}
	}

	if d := r.Distribution; d != nil {
		w.WriteString("### 4.3 Distribution Analysis\n\n")
		if n := d.Numeric; n != nil {
			fmt.Fprintf(w, "**Distribution of %s:**\n\n", d.Column)
			s := n.Summary
			markdownTable(w, []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}, [][]any{{
				s.Count, num(float64(s.Mean)), num(float64(s.Std)), num(float64(s.Min)),
				num(float64(s.Q1)), num(float64(s.Q2)), num(float64(s.Q3)), num(float64(s.Max)),
			}})
			fmt.Fprintf(w, "* Skewness: %.4f\n", float64(n.Skewness))
			fmt.Fprintf(w, "* Kurtosis: %.4f\n\n", float64(n.Kurtosis))

			if n.Shapiro != nil || n.NormalTest != nil {
				w.WriteString("**Normality tests:**\n\n")
				if n.Shapiro != nil {
					fmt.Fprintf(w, "* Shapiro-Wilk: p = %.4f (%s)\n", float64(n.Shapiro.PValue), normalityVerdict(n.Shapiro.PValue))
				}
				if n.NormalTest != nil {
					fmt.Fprintf(w, "* D'Agostino K²: p = %.4f (%s)\n", float64(n.NormalTest.PValue), normalityVerdict(n.NormalTest.PValue))
				}
				w.WriteString("\n")
			}
		} else {
			fmt.Fprintf(w, "**Value distribution of %s:**\n\n", d.Column)
			markdownTable(w, []string{"Value", "Count", "Share (%)"}, valueCountRows(d.ValueCounts, true))
		}
	}

	if c := r.Correlation; c != nil {
		w.WriteString("### 4.4 Correlation Analysis\n\n")
		if len(c.StrongPairs) == 0 {
			fmt.Fprintf(w, "No pair of variables has |r| > %.1f.\n\n", explore.StrongThreshold)
		} else {
			var rows [][]any
			for _, p := range c.StrongPairs {
				rows = append(rows, []any{p.A, p.B, fmt.Sprintf("%.4f", float64(p.R))})
			}
			markdownTable(w, []string{"Variable 1", "Variable 2", "r"}, rows)
		}
	}
}

func normalityVerdict(p stats.Float) string {
	if float64(p) < Alpha {
		return "likely not normally distributed"
	}
	return "possibly normally distributed"
}

func writeInsights(w *strings.Builder, ds *dataset.Dataset, r analysis.Results) {
	w.WriteString("## 5. Conclusions & Insights\n\n")

	w.WriteString("### 5.1 Data Overview\n\n")
	switch ratio := ds.MissingRatio(); {
	case ratio > 20:
		fmt.Fprintf(w, "* The dataset has many missing values (about %.1f%% of all cells), which may affect the reliability of the results.\n\n", ratio)
	case ratio > 0:
		fmt.Fprintf(w, "* The dataset has some missing values (about %.1f%% of all cells).\n\n", ratio)
	default:
		w.WriteString("* The dataset has no missing values; the analysis used complete data.\n\n")
	}

	if !r.Empty() {
		w.WriteString("### 5.2 Insights from the Analysis\n\n")
		if ts := r.TimeSeries; ts != nil {
			w.WriteString("**Time series:**\n\n")
			w.WriteString("* Detailed patterns and trends are visible in the dashboard charts.\n")
			if ts.Decomposition != nil {
				w.WriteString("* The series was decomposed into trend and seasonal components.\n")
			}
			w.WriteString("\n")
		}
		if c := r.Cluster; c != nil {
			w.WriteString("**Clustering:**\n\n")
			fmt.Fprintf(w, "* The data was divided into %d distinct clusters.\n", c.K)
			if c.PCA != nil {
				total := c.PCA.TotalExplained()
				if total >= PCAThreshold {
					fmt.Fprintf(w, "* Two principal components explain %.0f%% of the variance; the dimensionality reduction is effective.\n", total*100)
				} else {
					fmt.Fprintf(w, "* Two principal components explain only %.0f%% of the variance, which suggests a complex structure.\n", total*100)
				}
			}
			w.WriteString("\n")
		}
		if d := r.Distribution; d != nil && d.Numeric != nil {
			w.WriteString("**Distribution:**\n\n")
			skew := float64(d.Numeric.Skewness)
			switch {
			case math.IsNaN(skew):
			case math.Abs(skew) < SkewBand:
				fmt.Fprintf(w, "* %s is roughly symmetric (skewness %.2f).\n", d.Column, skew)
			case skew > 0:
				fmt.Fprintf(w, "* %s is right-skewed (skewness %.2f).\n", d.Column, skew)
			default:
				fmt.Fprintf(w, "* %s is left-skewed (skewness %.2f).\n", d.Column, skew)
			}
			if t := d.Numeric.NormalTest; t != nil {
				if float64(t.PValue) < Alpha {
					w.WriteString("* The normality test suggests the data is not normally distributed.\n")
				} else {
					w.WriteString("* The normality test is consistent with a normal distribution.\n")
				}
			}
			w.WriteString("\n")
		}
	}

	w.WriteString("### 5.3 Summary\n\n")
	w.WriteString("This report presented the basic characteristics of the data, the impact of preprocessing and the results of the advanced analyses.\n\n")
	if r.TimeSeries != nil {
		w.WriteString("* The time series shows temporal patterns that may support forecasting.\n")
	}
	if r.Cluster != nil {
		w.WriteString("* The observations form distinct clusters with characteristic attributes.\n")
	}
	if r.Distribution != nil {
		w.WriteString("* Understanding the distributions helps detect outliers and choose suitable models.\n")
	}
	w.WriteString("\n**Note**: this report was generated automatically. Interpreting it in detail may require expert judgement.\n")
}

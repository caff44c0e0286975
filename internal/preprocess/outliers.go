package preprocess

import (
	"fmt"
	"math"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// OutlierMethod selects how IQR outliers are handled
type OutlierMethod string

const (
	OutlierClip   OutlierMethod = "clip"
	OutlierRemove OutlierMethod = "remove"
)

// OutlierReport describes the IQR outliers of one column
type OutlierReport struct {
	Column  string      `json:"column"`
	Q1      stats.Float `json:"q1"`
	Q3      stats.Float `json:"q3"`
	Lower   stats.Float `json:"lower_bound"`
	Upper   stats.Float `json:"upper_bound"`
	Count   int         `json:"count"`
	Percent float64     `json:"percent"`
}

// DetectOutliers reports values outside Q1-1.5·IQR .. Q3+1.5·IQR. Percent is
// relative to all rows.
func DetectOutliers(ds *dataset.Dataset, col string) (OutlierReport, error) {
	c, err := ds.NumericColumn(col)
	if err != nil {
		return OutlierReport{}, err
	}
	sorted := stats.Sorted(c.Floats)
	if len(sorted) == 0 {
		return OutlierReport{}, fmt.Errorf("%w: %q has no values", dataset.ErrInsufficientData, col)
	}
	lo, hi := stats.IQRBounds(sorted)

	r := OutlierReport{
		Column: col,
		Q1:     stats.Float(stats.Quantile(sorted, 0.25)),
		Q3:     stats.Float(stats.Quantile(sorted, 0.75)),
		Lower:  stats.Float(lo),
		Upper:  stats.Float(hi),
	}
	for _, v := range sorted {
		if v < lo || v > hi {
			r.Count++
		}
	}
	if rows := ds.Rows(); rows > 0 {
		r.Percent = float64(r.Count) / float64(rows) * 100
	}
	return r, nil
}

// HandleOutliers clips values into the IQR fences or removes the rows
// outside them. Missing values are neither clipped nor removed.
func HandleOutliers(ds *dataset.Dataset, col string, method OutlierMethod) (*dataset.Dataset, error) {
	if method != OutlierClip && method != OutlierRemove {
		return nil, fmt.Errorf("%w: unknown outlier method %q", ErrInvalidMethod, method)
	}
	report, err := DetectOutliers(ds, col)
	if err != nil {
		return nil, err
	}
	if report.Count == 0 {
		return ds, nil
	}
	c, _ := ds.Column(col)
	lo, hi := float64(report.Lower), float64(report.Upper)

	if method == OutlierRemove {
		keep := make([]bool, c.Len())
		for i, v := range c.Floats {
			keep[i] = math.IsNaN(v) || (v >= lo && v <= hi)
		}
		return ds.FilterRows(keep), nil
	}

	out := c.Clone()
	for i, v := range out.Floats {
		if !math.IsNaN(v) {
			out.Floats[i] = math.Min(math.Max(v, lo), hi)
		}
	}
	return ds, ds.ReplaceColumn(col, out)
}

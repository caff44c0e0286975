package preprocess

import (
	"fmt"
	"math"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// ScalingMethod selects a numeric scaler
type ScalingMethod string

const (
	ScaleStandard ScalingMethod = "standard"
	ScaleMinMax   ScalingMethod = "minmax"
	ScaleRobust   ScalingMethod = "robust"
)

// ScalingConfig scales Columns (every numeric column when empty) with Method
type ScalingConfig struct {
	Method  ScalingMethod `json:"method"`
	Columns []string      `json:"columns,omitempty"`
}

// Scale applies the configured scaler column by column. Constant columns
// become 0; missing values stay missing.
func Scale(ds *dataset.Dataset, cfg ScalingConfig) (*dataset.Dataset, error) {
	cols := cfg.Columns
	if len(cols) == 0 {
		cols = ds.NumericNames()
	}

	for _, name := range cols {
		c, err := ds.NumericColumn(name)
		if err != nil {
			return nil, err
		}

		var center, scale float64
		switch cfg.Method {
		case ScaleStandard:
			center, scale = stats.Mean(c.Floats), stats.PopStdDev(c.Floats)
		case ScaleMinMax:
			sorted := stats.Sorted(c.Floats)
			if len(sorted) > 0 {
				center, scale = sorted[0], sorted[len(sorted)-1]-sorted[0]
			}
		case ScaleRobust:
			sorted := stats.Sorted(c.Floats)
			center = stats.Quantile(sorted, 0.5)
			scale = stats.Quantile(sorted, 0.75) - stats.Quantile(sorted, 0.25)
		default:
			return nil, fmt.Errorf("%w: unknown scaling method %q", ErrInvalidMethod, cfg.Method)
		}

		out := c.Clone()
		for i, v := range out.Floats {
			switch {
			case math.IsNaN(v):
			case scale == 0 || math.IsNaN(scale):
				out.Floats[i] = 0
			default:
				out.Floats[i] = (v - center) / scale
			}
		}
		if err := ds.ReplaceColumn(name, out); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

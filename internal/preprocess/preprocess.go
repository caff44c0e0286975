// Package preprocess applies cleaning and feature steps to a copy of a dataset.
//
// Apply runs a Config in a fixed order: type conversion, selection and
// renaming, missing values, outliers, scaling, feature engineering,
// encoding, and finally dropping columns. The input dataset is never modified.
package preprocess

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

// ErrInvalidMethod is returned for an unknown or inapplicable method
var ErrInvalidMethod = errors.New("invalid preprocessing method")

// Config describes the preprocessing to apply. Empty sections are skipped.
type Config struct {
	ConvertTypes  map[string]dataset.Kind   `json:"convert_types,omitempty"`
	SelectColumns []string                  `json:"select_columns,omitempty"`
	RenameColumns map[string]string         `json:"rename_columns,omitempty"`
	Missing       map[string]MissingMethod  `json:"missing,omitempty"`
	Outliers      map[string]OutlierMethod  `json:"outliers,omitempty"`
	Scaling       *ScalingConfig            `json:"scaling,omitempty"`
	Features      map[string]FeatureConfig  `json:"features,omitempty"`
	Encoding      map[string]EncodingMethod `json:"encoding,omitempty"`
	DropColumns   []string                  `json:"drop_columns,omitempty"`
}

// Step is one applied preprocessing operation
type Step struct {
	Name      string    `json:"name"`
	Config    Config    `json:"config"`
	AppliedAt time.Time `json:"applied_at"`
	RowsAfter int       `json:"rows_after"`
	ColsAfter int       `json:"cols_after"`
}

// Name returns a short label for the sections present in cfg, used to
// title history entries.
func (c Config) Name() string {
	var parts []string
	add := func(ok bool, name string) {
		if ok {
			parts = append(parts, name)
		}
	}
	add(len(c.ConvertTypes) > 0, "convert_types")
	add(len(c.SelectColumns) > 0 || len(c.RenameColumns) > 0, "columns")
	add(len(c.Missing) > 0, "missing")
	add(len(c.Outliers) > 0, "outliers")
	add(c.Scaling != nil, "scaling")
	add(len(c.Features) > 0, "features")
	add(len(c.Encoding) > 0, "encoding")
	add(len(c.DropColumns) > 0, "drop")
	if len(parts) == 0 {
		return "noop"
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return fmt.Sprint(parts)
}

// IsZero reports whether cfg selects no operation
func (c Config) IsZero() bool {
	return c.Name() == "noop"
}

// Apply runs cfg against a deep copy of ds and returns the result
func Apply(ds *dataset.Dataset, cfg Config) (*dataset.Dataset, error) {
	out := ds.Clone()
	var err error

	for _, col := range sortedKeys(cfg.ConvertTypes) {
		if out, err = ConvertType(out, col, cfg.ConvertTypes[col]); err != nil {
			return nil, err
		}
	}

	if len(cfg.SelectColumns) > 0 {
		if out, err = out.Select(cfg.SelectColumns); err != nil {
			return nil, fmt.Errorf("select columns: %w", err)
		}
	}
	if len(cfg.RenameColumns) > 0 {
		if out, err = out.Rename(cfg.RenameColumns); err != nil {
			return nil, fmt.Errorf("rename columns: %w", err)
		}
	}

	for _, col := range sortedKeys(cfg.Missing) {
		if out, err = HandleMissing(out, col, cfg.Missing[col]); err != nil {
			return nil, err
		}
	}

	for _, col := range sortedKeys(cfg.Outliers) {
		if out, err = HandleOutliers(out, col, cfg.Outliers[col]); err != nil {
			return nil, err
		}
	}

	if cfg.Scaling != nil {
		if out, err = Scale(out, *cfg.Scaling); err != nil {
			return nil, err
		}
	}

	for _, col := range sortedKeys(cfg.Features) {
		if out, err = AddFeatures(out, col, cfg.Features[col]); err != nil {
			return nil, err
		}
	}

	for _, col := range sortedKeys(cfg.Encoding) {
		if out, err = Encode(out, col, cfg.Encoding[col]); err != nil {
			return nil, err
		}
	}

	if len(cfg.DropColumns) > 0 {
		if out, err = out.Drop(cfg.DropColumns); err != nil {
			return nil, fmt.Errorf("drop columns: %w", err)
		}
	}

	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// ConvertType re-parses a column as kind
func ConvertType(ds *dataset.Dataset, col string, kind dataset.Kind) (*dataset.Dataset, error) {
	if _, ok := dataset.ParseKind(string(kind)); !ok {
		return nil, fmt.Errorf("%w: unknown type %q for %q", ErrInvalidMethod, kind, col)
	}
	c, err := ds.Column(col)
	if err != nil {
		return nil, err
	}
	if err := ds.ReplaceColumn(col, dataset.ConvertColumn(c, kind)); err != nil {
		return nil, err
	}
	return ds, nil
}

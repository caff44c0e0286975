package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

// Options applies to Load; Sheet is ignored for delimited text.
type Options struct {
	CSVOptions
	Sheet string
}

// Load dispatches on the file extension
func Load(r io.Reader, filename string, opts Options) (*dataset.Dataset, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt":
		return LoadCSV(r, opts.CSVOptions)
	case ".tsv":
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		return LoadCSV(r, opts.CSVOptions)
	case ".xlsx", ".xlsm":
		return LoadExcel(r, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsExcel reports whether filename names a workbook
func IsExcel(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

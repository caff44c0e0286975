package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

// DefaultSheet is the worksheet name used for XLSX exports
const DefaultSheet = "data"

// Download file names
const (
	DatasetCSVName  = "processed_data.csv"
	DatasetXLSXName = "processed_data.xlsx"
	ClustersCSVName = "clustering_results.csv"
)

// WriteDatasetCSV writes ds as UTF-8 CSV with a BOM
func WriteDatasetCSV(w io.Writer, ds *dataset.Dataset) error {
	headers, rows := records(ds)
	return EncodeCSV(w, WriteOptions{Headers: headers, Records: rows, BOMPrefix: true})
}

// WriteDatasetXLSX writes ds as a single-sheet workbook. Numbers, dates and
// booleans keep their cell types; missing values are left blank.
func WriteDatasetXLSX(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DefaultSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(DefaultSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]any, ds.Cols())
	for j, name := range ds.Names() {
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	cols := ds.Columns()
	for i := 0; i < ds.Rows(); i++ {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = cellValue(c, i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(w)
}

// WriteClustersCSV writes ds with the cluster label of every row appended
func WriteClustersCSV(w io.Writer, ds *dataset.Dataset, res *analysis.ClusterResult) error {
	labelled, err := res.Labelled(ds)
	if err != nil {
		return err
	}
	return WriteDatasetCSV(w, labelled)
}

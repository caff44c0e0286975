// Package exporter writes datasets and reports out of the dashboard.
//
// This package contains three main components:
//
// CSVWriter: file based CSV writing under the reports directory, with
// streaming and a UTF-8 BOM for Excel compatibility. SaveReport stores
// generated Markdown reports next to the CSV files.
//
// WriteDatasetCSV / WriteDatasetXLSX: encode a dataset straight to an
// io.Writer, used by the download endpoints.
//
// WriteClustersCSV: exports a dataset with the cluster label of each row.
//
// Example usage:
//
//	// Download the processed dataset
//	err := exporter.WriteDatasetCSV(w, ds)
//
//	// Save a report under the reports directory
//	writer := exporter.NewCSVWriter(paths)
//	path, err := writer.SaveReport("sales_report.md", markdown)
package exporter

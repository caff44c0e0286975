// Package loader turns uploaded files and built-in generators into datasets.
//
// CSV input may be UTF-8, Shift-JIS/CP932 or Latin-1 and is delimiter-sniffed
// when no delimiter is given. Excel workbooks are read with excelize. Sample
// datasets are deterministic for a given name.
package loader

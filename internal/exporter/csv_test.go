package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

// MockPaths implements PathResolver for testing
type MockPaths struct {
	basePath string
}

func (m *MockPaths) GetReportPath(filename string) string {
	return filepath.Join(m.basePath, "reports", filepath.Base(filename))
}

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	tempDir := t.TempDir()
	return NewCSVWriter(&MockPaths{basePath: tempDir}), tempDir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, utf8BOM)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, fullPath string)
	}{
		{
			name:     "basic CSV write",
			filePath: "basic.csv",
			options: WriteOptions{
				Headers: []string{"region", "sales"},
				Records: [][]string{{"east", "100"}, {"west", "250.5"}},
			},
			validate: func(t *testing.T, fullPath string) {
				content, err := os.ReadFile(fullPath)
				require.NoError(t, err)
				assert.False(t, bytes.HasPrefix(content, utf8BOM))
				assert.Equal(t, "region,sales\neast,100\nwest,250.5\n", string(content))
			},
		},
		{
			name:     "with BOM prefix",
			filePath: "bom.csv",
			options: WriteOptions{
				Headers:   []string{"name"},
				Records:   [][]string{{"売上"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, fullPath string) {
				content, err := os.ReadFile(fullPath)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(content, utf8BOM))
				assert.Equal(t, []string{"name", "売上"}, readLines(t, fullPath))
			},
		},
		{
			name:     "records without headers",
			filePath: "no_headers.csv",
			options: WriteOptions{
				Records: [][]string{{"a", "b"}},
			},
			validate: func(t *testing.T, fullPath string) {
				assert.Equal(t, []string{"a,b"}, readLines(t, fullPath))
			},
		},
		{
			name:     "empty records",
			filePath: "empty.csv",
			options: WriteOptions{
				Headers: []string{"x", "y"},
			},
			validate: func(t *testing.T, fullPath string) {
				assert.Equal(t, []string{"x,y"}, readLines(t, fullPath))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writer.WriteCSV(tt.filePath, tt.options)
			require.NoError(t, err)
			tt.validate(t, filepath.Join(tempDir, "reports", tt.filePath))
		})
	}
}

func TestCSVWriter_AppendToCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	require.NoError(t, writer.WriteSimpleCSV("append.csv", []string{"c1", "c2"}, [][]string{{"1", "2"}}))
	require.NoError(t, writer.AppendToCSV("append.csv", [][]string{{"3", "4"}, {"5", "6"}}))

	lines := readLines(t, filepath.Join(tempDir, "reports", "append.csv"))
	assert.Equal(t, []string{"c1,c2", "1,2", "3,4", "5,6"}, lines)
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	abs := filepath.Join(tempDir, "elsewhere", "file.csv")
	assert.Equal(t, abs, writer.resolvePath(abs))
	assert.Equal(t, filepath.Join(tempDir, "reports", "file.csv"), writer.resolvePath("file.csv"))
	assert.Equal(t, filepath.Join(tempDir, "reports", "passwd"), writer.resolvePath("../../passwd"))
}

func TestCSVWriter_SaveReport(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	content := "# Sales\n\nGenerated: 2024-03-01 09:30:00\n"
	path, err := writer.SaveReport("sales.md", content)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "reports", "sales.md"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	// saving again overwrites
	_, err = writer.SaveReport("sales.md", "# Short\n")
	require.NoError(t, err)
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Short\n", string(got))
}

func TestCSVWriter_SpecialCharacters(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	headers := []string{"name", "note"}
	records := [][]string{
		{"Company, Inc", "with \"quotes\""},
		{"multi\nline", "tabs\tinside"},
	}
	require.NoError(t, writer.WriteSimpleCSV("special.csv", headers, records))

	content, err := os.ReadFile(filepath.Join(tempDir, "reports", "special.csv"))
	require.NoError(t, err)
	all, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, append([][]string{headers}, records...), all)
}

func TestStreamWriter(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	sw, err := writer.CreateStreamWriter("stream.csv", []string{"i", "square"})
	require.NoError(t, err)
	for i := range 5 {
		n := float64(i)
		require.NoError(t, sw.WriteRecord([]string{dataset.FormatFloat(n), dataset.FormatFloat(n * n)}))
	}
	require.NoError(t, sw.Close())

	lines := readLines(t, filepath.Join(tempDir, "reports", "stream.csv"))
	require.Len(t, lines, 6)
	assert.Equal(t, "i,square", lines[0])
	assert.Equal(t, "4,16", lines[5])
}

func TestCSVWriter_ConcurrentWrites(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := filepath.Join("concurrent", strings.Repeat("w", id+1)+".csv")
			errs <- writer.WriteSimpleCSV(name, []string{"id"}, [][]string{{"x"}})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Join(tempDir, "reports"))
	require.NoError(t, err)
	assert.Len(t, entries, workers)
}

func sampleDataset() *dataset.Dataset {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return dataset.MustNew(
		dataset.NewDatetime("date", []time.Time{day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)}, nil),
		dataset.NewNumeric("sales", []float64{100.25, math.NaN(), 300}),
		dataset.NewCategorical("region", []string{"east", "west", ""}, []bool{true, true, false}),
		dataset.NewBoolean("promo", []bool{true, false, true}, nil),
	)
}

func TestWriteDatasetCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDatasetCSV(&buf, sampleDataset()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM))).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"date", "sales", "region", "promo"},
		{"2024-01-01", "100.25", "east", "True"},
		{"2024-01-02", "", "west", "False"},
		{"2024-01-03", "300", "", "True"},
	}, rows)
}

func TestWriteDatasetXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDatasetXLSX(&buf, sampleDataset()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"date", "sales", "region", "promo"}, rows[0])

	sales, err := f.GetCellValue(DefaultSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "100.25", sales)

	missing, err := f.GetCellValue(DefaultSheet, "B3")
	require.NoError(t, err)
	assert.Empty(t, missing)

	region, err := f.GetCellValue(DefaultSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "east", region)

	date, err := f.GetCellValue(DefaultSheet, "A2")
	require.NoError(t, err)
	assert.NotEmpty(t, date)
}

func TestWriteClustersCSV(t *testing.T) {
	ds := sampleDataset()
	res := &analysis.ClusterResult{K: 2, Labels: []int{0, 1, 0}}

	var buf bytes.Buffer
	require.NoError(t, WriteClustersCSV(&buf, ds, res))

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, analysis.ClusterColumn, rows[0][len(rows[0])-1])
	assert.Equal(t, "0", rows[1][4])
	assert.Equal(t, "1", rows[2][4])

	// the source dataset is left untouched
	assert.False(t, ds.Has(analysis.ClusterColumn))

	short := &analysis.ClusterResult{K: 2, Labels: []int{0, 1}}
	err = WriteClustersCSV(&bytes.Buffer{}, ds, short)
	assert.ErrorIs(t, err, dataset.ErrLengthMismatch)
}

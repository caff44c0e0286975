package loader

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

func TestLoadCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		opts      CSVOptions
		wantRows  int
		wantNames []string
	}{
		{"comma", "a,b\n1,x\n2,y\n", CSVOptions{}, 2, []string{"a", "b"}},
		{"bom", "\uFEFFa,b\n1,2\n", CSVOptions{}, 1, []string{"a", "b"}},
		{"semicolon sniffed", "a;b;c\n1;2;3\n", CSVOptions{}, 1, []string{"a", "b", "c"}},
		{"tab sniffed", "a\tb\n1\t2\n", CSVOptions{}, 1, []string{"a", "b"}},
		{"quoted comma ignored when sniffing", "\"x,y\";z\n1;2\n", CSVOptions{}, 1, []string{"x,y", "z"}},
		{"explicit delimiter", "a|b\n1|2\n", CSVOptions{Delimiter: '|'}, 1, []string{"a", "b"}},
		{"header only", "a,b\n", CSVOptions{}, 0, []string{"a", "b"}},
		{"blank lines skipped", "\na,b\n\n1,2\n", CSVOptions{}, 1, []string{"a", "b"}},
		{"duplicate and blank headers", "a,a,,b\n1,2,3,4\n", CSVOptions{}, 1, []string{"a", "a.1", "Unnamed: 2", "b"}},
		{"ragged rows", "a,b,c\n1\n1,2,3,4\n", CSVOptions{}, 2, []string{"a", "b", "c", "Unnamed: 3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := LoadCSV(strings.NewReader(tt.input), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, ds.Rows())
			assert.Equal(t, tt.wantNames, ds.Names())
		})
	}
}

func TestLoadCSVRaggedPadsMissing(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader("a,b\n1\n2,3\n"), CSVOptions{})
	require.NoError(t, err)
	b, err := ds.Column("b")
	require.NoError(t, err)
	assert.True(t, b.IsMissing(0))
	assert.Equal(t, 3.0, b.Floats[1])
}

func TestLoadCSVEncodings(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().String("商品,売上\nりんご,100\n")
	require.NoError(t, err)

	for _, enc := range []string{"shift-jis", "cp932"} {
		t.Run(enc, func(t *testing.T) {
			ds, err := LoadCSV(strings.NewReader(sjis), CSVOptions{Encoding: enc})
			require.NoError(t, err)
			assert.Equal(t, []string{"商品", "売上"}, ds.Names())
			c, err := ds.Column("商品")
			require.NoError(t, err)
			assert.Equal(t, "りんご", c.Strings[0])
		})
	}

	latin, err := charmap.ISO8859_1.NewEncoder().String("café,n\ncrème,1\n")
	require.NoError(t, err)
	ds, err := LoadCSV(strings.NewReader(latin), CSVOptions{Encoding: "latin1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"café", "n"}, ds.Names())

	_, err = LoadCSV(strings.NewReader("a\n1\n"), CSVOptions{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestLoadCSVEmpty(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("\n\n"), CSVOptions{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParseDelimiter(t *testing.T) {
	d, err := ParseDelimiter("tab")
	require.NoError(t, err)
	assert.Equal(t, '\t', d)

	d, err = ParseDelimiter(";")
	require.NoError(t, err)
	assert.Equal(t, ';', d)

	_, err = ParseDelimiter(";;")
	assert.Error(t, err)
}

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"region", "units"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"east", 10}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"west", 20}))

	_, err := f.NewSheet("Totals")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Totals", "A3", &[]interface{}{"total"}))
	require.NoError(t, f.SetSheetRow("Totals", "A4", &[]interface{}{30}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExcel(t *testing.T) {
	data := workbook(t)

	sheets, err := ExcelSheets(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Totals"}, sheets)

	ds, err := LoadExcel(bytes.NewReader(data), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "units"}, ds.Names())
	units, err := ds.Column("units")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, units.Floats)

	totals, err := LoadExcel(bytes.NewReader(data), "Totals")
	require.NoError(t, err)
	assert.Equal(t, []string{"total"}, totals.Names())
	assert.Equal(t, 1, totals.Rows())

	_, err = LoadExcel(bytes.NewReader(data), "Nope")
	assert.Error(t, err)
}

func TestLoadDispatch(t *testing.T) {
	ds, err := Load(strings.NewReader("a\tb\n1\t2\n"), "data.TSV", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Cols())

	ds, err = Load(bytes.NewReader(workbook(t)), "book.xlsx", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Rows())

	_, err = Load(strings.NewReader(""), "legacy.xls", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.True(t, IsExcel("x.XLSM"))
	assert.False(t, IsExcel("x.csv"))
}

func TestSamples(t *testing.T) {
	tests := []struct {
		name  string
		rows  int
		names []string
	}{
		{"sales", 365, []string{"date", "sales", "product_a", "product_b", "product_c"}},
		{"stock", 260, []string{"date", "open", "high", "low", "close", "volume"}},
		{"weather", 365, []string{"date", "temperature", "humidity", "precipitation", "wind_speed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Sample(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, ds.Rows())
			assert.Equal(t, tt.names, ds.Names())
			assert.Zero(t, ds.MissingTotal())

			again, err := Sample(tt.name)
			require.NoError(t, err)
			for _, name := range ds.NumericNames() {
				a, _ := ds.Column(name)
				b, _ := again.Column(name)
				assert.Equal(t, a.Floats, b.Floats, name)
			}
		})
	}

	_, err := Sample("nope")
	assert.ErrorIs(t, err, ErrUnknownSample)
}

func column(t *testing.T, ds *dataset.Dataset, name string) []float64 {
	t.Helper()
	c, err := ds.Column(name)
	require.NoError(t, err)
	return c.Floats
}

func TestStockInvariants(t *testing.T) {
	ds, err := Sample("stock")
	require.NoError(t, err)

	open, high, low, closes := column(t, ds, "open"), column(t, ds, "high"), column(t, ds, "low"), column(t, ds, "close")
	for i := range open {
		assert.GreaterOrEqual(t, high[i], math.Max(open[i], closes[i]))
		assert.LessOrEqual(t, low[i], math.Min(open[i], closes[i]))
	}

	dates, err := ds.Column("date")
	require.NoError(t, err)
	for _, d := range dates.Times {
		assert.NotEqual(t, "Saturday", d.Weekday().String())
		assert.NotEqual(t, "Sunday", d.Weekday().String())
	}
}

func TestWeatherRanges(t *testing.T) {
	ds, err := Sample("weather")
	require.NoError(t, err)

	for _, h := range column(t, ds, "humidity") {
		assert.GreaterOrEqual(t, h, 10.0)
		assert.LessOrEqual(t, h, 100.0)
	}
	for _, p := range column(t, ds, "precipitation") {
		assert.GreaterOrEqual(t, p, 0.0)
	}
	for _, w := range column(t, ds, "wind_speed") {
		assert.Positive(t, w)
	}
}

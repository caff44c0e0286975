package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

var (
	// ErrUnsupportedFormat is returned for unknown file extensions
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrUnsupportedEncoding is returned for unknown text encodings
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	// ErrNoHeader is returned when a file has no header row
	ErrNoHeader = errors.New("no header row found")
)

// Encodings lists the accepted CSV encodings
var Encodings = []string{"utf-8", "shift-jis", "cp932", "latin1"}

// Delimiters lists the delimiters considered when sniffing
var Delimiters = []rune{',', ';', '\t'}

// CSVOptions controls CSV parsing. Zero values mean UTF-8 and a sniffed delimiter.
type CSVOptions struct {
	Encoding  string
	Delimiter rune
}

// LookupEncoding maps an encoding name to a decoder
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "shift-jis", "shiftjis", "sjis":
		return japanese.ShiftJIS, nil
	case "cp932", "windows-31j", "ms932":
		// x/text has no separate CP932 table; Shift-JIS covers the NEC/IBM extensions it decodes.
		return japanese.ShiftJIS, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
}

// ParseDelimiter accepts a single character, or the names "tab" and "\t".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r[0], nil
}

// LoadCSV reads delimited text into a dataset
func LoadCSV(r io.Reader, opts CSVOptions) (*dataset.Dataset, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(transform.NewReader(r, enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", opts.Encoding, err)
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	delim := opts.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return fromRecords(records)
}

// SniffDelimiter picks the candidate delimiter that occurs most often in the
// first line outside quotes, defaulting to a comma.
func SniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	counts := make(map[rune]int, len(Delimiters))
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range Delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

// fromRecords treats the first non-blank record as the header, pads ragged
// rows with missing values and infers every column's kind.
func fromRecords(records [][]string) (*dataset.Dataset, error) {
	start := 0
	for start < len(records) && isBlank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrNoHeader
	}

	header := records[start]
	var rows [][]string
	for _, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, rec)
		if len(rec) > len(header) {
			for i := len(header); i < len(rec); i++ {
				header = append(header, "")
			}
		}
	}

	names := HeaderNames(header)
	cols := make([]*dataset.Column, len(names))
	raw := make([]string, len(rows))
	for j, name := range names {
		for i, rec := range rows {
			if j < len(rec) {
				raw[i] = rec[j]
			} else {
				raw[i] = ""
			}
		}
		cols[j] = dataset.Infer(name, raw)
	}

	return dataset.New(cols...)
}

func isBlank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// HeaderNames trims header cells, names blank ones "Unnamed: i" and
// suffixes duplicates with ".1", ".2", ...
func HeaderNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for {
			n, dup := seen[name]
			if !dup {
				break
			}
			seen[name] = n + 1
			name = base + "." + strconv.Itoa(n+1)
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

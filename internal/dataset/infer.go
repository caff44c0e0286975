package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var missingTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "null": {}, "none": {}, "#n/a": {}, "nat": {},
}

// IsMissingToken reports whether a raw cell denotes a missing value
func IsMissingToken(s string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

var thousands = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// ParseNumber parses a decimal number, tolerating thousands separators.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if thousands.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Layouts accepted when inferring datetime columns, most specific first.
var Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"2006年1月2日",
}

// ParseTime tries every layout in Layouts
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool accepts true/false in any case
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Infer builds a column from raw cells, picking the narrowest kind every
// non-missing cell parses as: numeric, boolean, datetime, else categorical.
func Infer(name string, raw []string) *Column {
	present := 0
	numeric, boolean, datetime := true, true, true
	for _, s := range raw {
		if IsMissingToken(s) {
			continue
		}
		present++
		if numeric {
			_, numeric = ParseNumber(s)
		}
		if boolean {
			_, boolean = ParseBool(s)
		}
		if datetime {
			_, datetime = ParseTime(s)
		}
		if !numeric && !boolean && !datetime {
			break
		}
	}

	switch {
	case present == 0:
		return Convert(name, raw, KindNumeric)
	case numeric:
		return Convert(name, raw, KindNumeric)
	case boolean:
		return Convert(name, raw, KindBoolean)
	case datetime:
		return Convert(name, raw, KindDatetime)
	}
	return Convert(name, raw, KindCategorical)
}

// Convert parses raw cells as kind. Cells that do not parse become missing.
func Convert(name string, raw []string, kind Kind) *Column {
	n := len(raw)
	switch kind {
	case KindNumeric:
		values := make([]float64, n)
		for i, s := range raw {
			values[i] = math.NaN()
			if IsMissingToken(s) {
				continue
			}
			if v, ok := ParseNumber(s); ok {
				values[i] = v
			} else if b, ok := ParseBool(s); ok {
				if b {
					values[i] = 1
				} else {
					values[i] = 0
				}
			}
		}
		return NewNumeric(name, values)
	case KindBoolean:
		values := make([]bool, n)
		valid := make([]bool, n)
		for i, s := range raw {
			if IsMissingToken(s) {
				continue
			}
			if b, ok := ParseBool(s); ok {
				values[i], valid[i] = b, true
			} else if v, ok := ParseNumber(s); ok && (v == 0 || v == 1) {
				values[i], valid[i] = v == 1, true
			}
		}
		return NewBoolean(name, values, valid)
	case KindDatetime:
		values := make([]time.Time, n)
		valid := make([]bool, n)
		for i, s := range raw {
			if IsMissingToken(s) {
				continue
			}
			values[i], valid[i] = ParseTime(s)
		}
		return NewDatetime(name, values, valid)
	}

	values := make([]string, n)
	valid := make([]bool, n)
	for i, s := range raw {
		if IsMissingToken(s) {
			continue
		}
		values[i], valid[i] = strings.TrimSpace(s), true
	}
	return NewCategorical(name, values, valid)
}

// ConvertColumn re-parses an existing column as kind from its raw strings.
func ConvertColumn(c *Column, kind Kind) *Column {
	if c.Kind == kind {
		return c.Clone()
	}
	raw := make([]string, c.Len())
	for i := range raw {
		raw[i] = c.Raw(i)
	}
	return Convert(c.Name, raw, kind)
}

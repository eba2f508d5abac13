package workbook

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumeric parses a measurement cell. Decimal and thousands separators
// are auto-detected unless fixed in opt; a trailing '%' is dropped.
// NaN and infinities are rejected.
func ParseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)

	dec, thou := opt.DecimalSeparator, opt.ThousandsSeparator
	if dec == 0 {
		dec, thou = detectSeparators(raw)
		if thou != 0 && !grouped(raw, dec, thou) {
			return 0, false
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
		raw = strings.ReplaceAll(raw, " ", "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// detectSeparators guesses the decimal and thousands marks of raw. With
// both marks present the last one is decimal. A repeated mark is grouping.
// A lone '.' is decimal. A lone ',' is grouping only in the "1,000" shape:
// a 1-3 digit integer part without a leading zero and exactly three digits
// after it. thou is 0 when no grouping was seen.
func detectSeparators(raw string) (dec, thou rune) {
	commas, dots := strings.Count(raw, ","), strings.Count(raw, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(raw, ",") > strings.LastIndex(raw, ".") {
			return ',', '.'
		}
		return '.', ','
	case commas > 1:
		return '.', ','
	case dots > 1:
		return ',', '.'
	case commas == 1 && thousandsShape(raw):
		return '.', ','
	case commas == 1:
		return ',', 0
	default:
		return '.', 0
	}
}

func thousandsShape(raw string) bool {
	i := strings.Index(raw, ",")
	head := strings.TrimLeft(raw[:i], "+-")
	tail := raw[i+1:]
	return len(head) >= 1 && len(head) <= 3 && head[0] != '0' && allDigits(head) &&
		len(tail) == 3 && allDigits(tail)
}

// grouped reports whether the integer part of raw is split by thou into a
// 1-3 digit leading group followed by 3 digit groups.
func grouped(raw string, dec, thou rune) bool {
	intPart := raw
	if i := strings.LastIndex(raw, string(dec)); i >= 0 {
		intPart = raw[:i]
	}
	groups := strings.Split(strings.TrimLeft(intPart, "+-"), string(thou))
	if len(groups) == 1 {
		return true
	}
	if n := len(groups[0]); n < 1 || n > 3 || !allDigits(groups[0]) {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !allDigits(g) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// maxPrecision caps the number of decimals read from cell text.
const maxPrecision = 10

// Precision counts the digits after the decimal separator in cell text.
func Precision(s string, opt Options) int {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec, _ = detectSeparators(raw)
	}
	i := strings.LastIndex(raw, string(dec))
	if i < 0 {
		return 0
	}
	digits := 0
	for _, r := range raw[i+1:] {
		if r < '0' || r > '9' {
			break
		}
		digits++
	}
	if digits > maxPrecision {
		return maxPrecision
	}
	return digits
}

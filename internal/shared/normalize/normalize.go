// Package normalize turns loosely formatted user input (amounts with
// currency symbols or accounting parentheses, YYYY-MM-DD dates, truthy
// literals) into canonical values. Pure functions, no I/O.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports input that failed normalization, naming the field
// and the offending value.
type ParseError struct {
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return "invalid " + e.Field + ": " + strconv.Quote(e.Value)
}

var (
	cleanNumberRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	nonNumericRe  = regexp.MustCompile(`[^0-9.-]`)
)

// residuals that survive stripping but carry no digits
var emptyResiduals = map[string]struct{}{
	"": {}, "-": {}, ".": {}, "-.": {}, ".-": {}, "--": {},
}

// ParseAmount converts a loosely formatted amount string into a float.
// Accepted forms include plain decimals, unicode minus, accounting
// parentheses for negatives, currency glyphs (¥, $) and thousands
// separators. Anything that does not reduce to a signed decimal fails.
func ParseAmount(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, &ParseError{Field: "amount", Value: raw}
	}

	value = strings.ReplaceAll(value, "−", "-")

	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		inner := strings.TrimSpace(value[1 : len(value)-1])
		value = "-" + inner
	}

	value = strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\t', '¥', '$':
			return -1
		}
		return r
	}, value)

	if cleanNumberRe.MatchString(value) {
		return parseFinite(value, raw)
	}

	cleaned := nonNumericRe.ReplaceAllString(value, "")
	if _, empty := emptyResiduals[cleaned]; empty {
		return 0, &ParseError{Field: "amount", Value: raw}
	}
	return parseFinite(cleaned, raw)
}

func parseFinite(s, raw string) (float64, error) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, &ParseError{Field: "amount", Value: raw}
	}
	return n, nil
}

// ParseDate accepts a YYYY-MM-DD string and returns the corresponding
// UTC midnight. Out-of-range components roll over the same way
// time.Date normalizes them (2024-13-01 becomes 2025-01-01).
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, &ParseError{Field: "date", Value: raw}
	}

	parts := strings.Split(trimmed, "-")
	if len(parts) != 3 {
		return time.Time{}, &ParseError{Field: "date", Value: raw}
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return time.Time{}, &ParseError{Field: "date", Value: raw}
		}
		nums[i] = n
	}

	return time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC), nil
}

var trueLiterals = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "on": {}, "y": {}, "t": {},
}

// ParseBool interprets common truthy literals. Anything else,
// including the empty string, is false.
func ParseBool(raw string) bool {
	_, ok := trueLiterals[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches a grouped-decimal numeral: one to three leading
// digits, optional thousands groups separated by comma, period, or space,
// and a mandatory two-digit decimal part. Integer-only amounts ("$50") are
// deliberately never matched; downstream skip decisions depend on that.
var amountPattern = regexp.MustCompile(`\d{1,3}(?:[,.\s]\d{3})*[.,]\d{2}`)

// ExtractAmount returns the first monetary amount found in text, or nil.
// First match wins; the scan does not look for a "best" candidate.
func ExtractAmount(text string) *float64 {
	raw := amountPattern.FindString(text)
	if raw == "" {
		return nil
	}

	value, ok := NormalizeAmount(raw)
	if !ok {
		return nil
	}
	return &value
}

// NormalizeAmount converts a raw numeral with locale-ambiguous separators
// into a plain decimal value. When both separators appear, whichever comes
// last is the decimal separator. A comma-only numeral is read with the
// European convention, so "1,234" parses as 1.234 rather than 1234; this is
// a documented heuristic, kept deterministic so tests can pin it.
func NormalizeAmount(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	var normalized string
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ".") > strings.LastIndex(cleaned, ",") {
			normalized = strings.ReplaceAll(cleaned, ",", "")
		} else {
			normalized = strings.Replace(strings.ReplaceAll(cleaned, ".", ""), ",", ".", 1)
		}
	case hasComma:
		normalized = strings.Replace(cleaned, ",", ".", 1)
	default:
		normalized = strings.ReplaceAll(cleaned, ",", "")
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

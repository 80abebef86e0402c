package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// datePattern locates the first date-shaped token: ISO, numeric with 1-2
	// digit day/month, or a long-form month-name date.
	datePattern = regexp.MustCompile(`(?i)\d{4}-\d{2}-\d{2}|(?:\d{1,2}[/\-.]){2}\d{2,4}|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{2,4}`)

	isoPattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numericPattern = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})$`)
	longPattern    = regexp.MustCompile(`(?i)^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{1,2}),?\s+(\d{2,4})$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ExtractDate returns the first parseable date in text as a UTC instant, or
// nil. Unparseable matches are discarded, never surfaced as errors.
func ExtractDate(text string) *time.Time {
	raw := datePattern.FindString(text)
	if raw == "" {
		return nil
	}

	t, ok := ParseDate(raw)
	if !ok {
		return nil
	}
	return &t
}

// ParseDate interprets a single date token as UTC midnight of that date.
// Ambiguous numeric day/month ordering is resolved by treating whichever
// component exceeds 12 as the day; when neither does, the first component is
// the month (US convention). Day-first locales are silently mis-read in that
// range; the ambiguity is deliberate and pinned by tests.
func ParseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)

	if isoPattern.MatchString(trimmed) {
		t, err := time.Parse("2006-01-02", trimmed)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if m := numericPattern.FindStringSubmatch(trimmed); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}

		day, month := b, a
		if a > 12 {
			day, month = a, b
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}

	if m := longPattern.FindStringSubmatch(trimmed); m != nil {
		month := monthsByPrefix[strings.ToLower(m[1])]
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

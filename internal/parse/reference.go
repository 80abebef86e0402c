package parse

import "regexp"

// referencePattern captures 4+ alphanumeric-or-hyphen characters following a
// reference label.
var referencePattern = regexp.MustCompile(`(?i)\b(?:ref(?:erence)?|txn|transaction id|transaction no\.)[:\s]+([A-Za-z0-9-]{4,})`)

// ExtractReferenceID returns the first labeled transaction reference in
// text, or "".
func ExtractReferenceID(text string) string {
	m := referencePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

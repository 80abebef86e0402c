package parse

import (
	"regexp"
	"strings"
)

const (
	vendorMinLen = 2
	vendorMaxLen = 60
)

var (
	atPattern   = regexp.MustCompile(`(?i)\bat\s+([A-Za-z0-9&'().\-\s]{2,60})`)
	fromPattern = regexp.MustCompile(`(?i)\bfrom\s+([A-Za-z0-9&'().\-\s]{2,60})`)
	toPattern   = regexp.MustCompile(`(?i)\bto\s+([A-Za-z0-9&'().\-\s]{2,60})`)

	keywordLinePattern = regexp.MustCompile(`(?i)receipt|transaction|payment|order`)
)

// ExtractVendor returns a best-effort merchant name from body text, or "".
// Prepositional phrases ("at X", "from X", "to X") are tried first; failing
// those, the first line mentioning a transactional keyword is used with the
// keywords stripped out.
func ExtractVendor(text string) string {
	for _, pattern := range []*regexp.Regexp{atPattern, fromPattern, toPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if candidate := qualifyVendor(m[1]); candidate != "" {
				return candidate
			}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !keywordLinePattern.MatchString(line) {
			continue
		}
		cleaned := keywordLinePattern.ReplaceAllString(line, "")
		cleaned = strings.NewReplacer(":", "", "#", "").Replace(cleaned)
		return qualifyVendor(cleaned)
	}

	return ""
}

func qualifyVendor(candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) < vendorMinLen || len(trimmed) > vendorMaxLen {
		return ""
	}
	return trimmed
}

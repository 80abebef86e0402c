package parse

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// maxSubjectVendorLen caps how long a Subject line may be before it is
// rejected as a vendor candidate.
const maxSubjectVendorLen = 80

// Header is a single message header as delivered by the mail source.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header collection with case-insensitive name lookup.
type Headers []Header

// Get returns the value of the first header with the given name, ignoring
// case, or "".
func (h Headers) Get(name string) string {
	for _, header := range h {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

var (
	quotedNamePattern = regexp.MustCompile(`"([^"]+)"`)
	angledNamePattern = regexp.MustCompile(`([^<]+)<`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// VendorFromHeaders derives a vendor name from message headers. The From
// display name is preferred; a short Subject is the last resort. Header
// information is considered more reliable than body-text pattern matching,
// so a non-empty result supersedes the parser's vendor.
func VendorFromHeaders(headers Headers) string {
	if from := headers.Get("From"); from != "" {
		if m := quotedNamePattern.FindStringSubmatch(from); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
		if m := angledNamePattern.FindStringSubmatch(from); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
		if name := strings.TrimSpace(strings.SplitN(from, "<", 2)[0]); name != "" {
			return name
		}
	}

	if subject := headers.Get("Subject"); subject != "" {
		cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(subject, " "))
		if cleaned != "" && len(cleaned) <= maxSubjectVendorLen {
			return cleaned
		}
	}

	return ""
}

// DateFromHeaders parses the message Date header as an instant, or returns
// nil when absent or malformed. Used by ingestion as a fallback when the
// body text yields no date.
func DateFromHeaders(headers Headers) *time.Time {
	value := headers.Get("Date")
	if value == "" {
		return nil
	}

	t, err := mail.ParseDate(value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

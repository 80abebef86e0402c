// Package rules implements the category rule engine: first-match substring
// categorization over an externally supplied, ordered rule list.
package rules

import (
	"strings"

	"github.com/ledgerline/ledgerline/internal/model"
)

// InferCategory returns the category of the first enabled rule whose pattern
// occurs as a case-insensitive substring of "<vendor> <rawText>", or "" when
// no rule matches. Rules are evaluated in the order supplied; callers order
// them by recency. The slice is never mutated and never fetched here, which
// keeps the engine testable without a datastore.
func InferCategory(vendor, rawText string, userRules []model.Rule) string {
	if len(userRules) == 0 {
		return ""
	}

	haystack := strings.ToLower(vendor + " " + rawText)

	for _, rule := range userRules {
		if !rule.Enabled {
			continue
		}
		pattern := strings.ToLower(strings.TrimSpace(rule.Pattern))
		if pattern == "" {
			continue
		}
		if strings.Contains(haystack, pattern) {
			return rule.Category
		}
	}

	return ""
}

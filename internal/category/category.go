// Package category canonicalizes user-entered category names so the same
// semantic category is never duplicated under different spellings.
package category

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Defaults is the ordered default taxonomy offered to new users. Entries are
// canonical: DisplayLabel returns them verbatim on a case-insensitive match.
var Defaults = []string{
	"Groceries",
	"Transport",
	"Bills & Utilities",
	"Entertainment",
	"Dining Out",
	"Shopping",
	"Rent",
	"Income",
	"Other",
}

// LookupKey returns the canonical identity of a category string, used for
// deduplication and equality. Empty input maps to "uncategorized".
func LookupKey(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "uncategorized"
	}
	return strings.ToLower(trimmed)
}

// DisplayLabel returns the human-facing rendering of a category string. A
// case-insensitive match against the default taxonomy returns the canonical
// entry verbatim; anything else is title-cased word by word. The function is
// idempotent: applying it to its own output is a no-op.
func DisplayLabel(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "Uncategorized"
	}

	for _, def := range Defaults {
		if strings.EqualFold(def, trimmed) {
			return def
		}
	}

	words := strings.Fields(strings.ToLower(trimmed))
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

package model

import "time"

// Rule maps a case-insensitive substring pattern to a category. Rules are
// evaluated in the order supplied to the engine; the first matching enabled
// rule wins.
type Rule struct {
	CreatedAt time.Time
	Pattern   string
	Category  string
	ID        string
	Enabled   bool
}

// Package llm provides the fallback transaction parser backed by a language
// model. It is consulted only when the heuristic parser finds no amount; the
// interface mirrors the heuristic parser's contract so callers can swap the
// two freely in tests.
package llm

import (
	"context"

	"github.com/ledgerline/ledgerline/internal/model"
)

// Parser extracts transaction fields from free-form text.
type Parser interface {
	Parse(ctx context.Context, text string) (model.ParseResult, error)
}

// Config holds LLM provider configuration.
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	Temperature       float64
	MaxTokens         int
	RequestsPerMinute int
}

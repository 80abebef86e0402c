// Package ingest turns raw message text from any source into persisted
// transactions. It owns the caller-level policy around the parsing core:
// when to consult the LLM fallback, how header-derived fields override
// body-derived ones, and which defaults apply at persistence time.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/common"
	"github.com/ledgerline/ledgerline/internal/llm"
	"github.com/ledgerline/ledgerline/internal/model"
	"github.com/ledgerline/ledgerline/internal/parse"
	"github.com/ledgerline/ledgerline/internal/rules"
)

// RuleSource supplies the enabled categorization rules, newest first.
type RuleSource interface {
	ListEnabledRules(ctx context.Context) ([]model.Rule, error)
}

// Message is one unit of raw input. Text is the already-flattened plain
// text; however many MIME parts or PDF attachments contributed to it is the
// source's concern, not the pipeline's.
type Message struct {
	Text        string
	ReferenceID string // source-native id used when the text yields none
	Vendor      string // source-native sender, used when nothing better is found
	Source      model.Source
	Headers     parse.Headers
}

// Pipeline converts messages into transactions. Both collaborators are
// optional: without a fallback parser the heuristics stand alone, and
// without a rule source transactions stay uncategorized.
type Pipeline struct {
	fallback   llm.Parser
	ruleSource RuleSource
	now        func() time.Time
}

// NewPipeline creates a pipeline with the given optional collaborators.
func NewPipeline(fallback llm.Parser, ruleSource RuleSource) *Pipeline {
	return &Pipeline{
		fallback:   fallback,
		ruleSource: ruleSource,
		now:        time.Now,
	}
}

// Process parses one message and assembles a transaction ready for
// persistence. It returns common.ErrNoAmount when neither the heuristics
// nor the fallback find an amount; the caller treats that as "skip this
// message", not as a failure.
func (p *Pipeline) Process(ctx context.Context, msg Message) (*model.Transaction, error) {
	result := parse.Parse(msg.Text)

	// The fallback is consulted only when the heuristics find no amount,
	// and its answer is accepted only if it finds one.
	if result.Parsed.Amount == nil && p.fallback != nil {
		fallback, err := p.fallback.Parse(ctx, msg.Text)
		switch {
		case err != nil:
			slog.Warn("LLM fallback failed",
				"source", msg.Source,
				"retryable", common.IsRetryable(err),
				"error", err)
		case fallback.Parsed.Amount != nil:
			result = fallback
		}
	}

	if result.Parsed.Amount == nil {
		return nil, common.ErrNoAmount
	}

	vendor := result.Parsed.Vendor
	if headerVendor := parse.VendorFromHeaders(msg.Headers); headerVendor != "" {
		// Header information outranks free-text pattern matching.
		vendor = headerVendor
	}
	if vendor == "" {
		vendor = msg.Vendor
	}

	category, err := p.categorize(ctx, vendor, msg.Text)
	if err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		ID:          uuid.NewString(),
		Source:      msg.Source,
		Amount:      *result.Parsed.Amount,
		Currency:    result.Parsed.Currency,
		Vendor:      vendor,
		Category:    category,
		Confidence:  result.Confidence,
		RawText:     msg.Text,
		ReferenceID: result.Parsed.ReferenceID,
	}

	if txn.Currency == "" {
		txn.Currency = "USD"
	}
	if txn.ReferenceID == "" {
		txn.ReferenceID = msg.ReferenceID
	}

	switch {
	case result.Parsed.Date != nil:
		txn.Date = result.Parsed.Date.UTC()
	default:
		if headerDate := parse.DateFromHeaders(msg.Headers); headerDate != nil {
			txn.Date = *headerDate
		} else {
			txn.Date = p.now().UTC()
		}
	}

	return txn, nil
}

// categorize runs the rule engine over a fresh snapshot of enabled rules.
func (p *Pipeline) categorize(ctx context.Context, vendor, rawText string) (string, error) {
	if p.ruleSource == nil {
		return "", nil
	}

	enabled, err := p.ruleSource.ListEnabledRules(ctx)
	if err != nil {
		return "", err
	}
	return rules.InferCategory(vendor, rawText, enabled), nil
}

// IsSkip reports whether an error from Process means "nothing to persist"
// rather than a real failure.
func IsSkip(err error) bool {
	return errors.Is(err, common.ErrNoAmount)
}

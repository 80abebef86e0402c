// Package parse converts free-form financial text into structured
// transaction candidates. Every extraction is an independent pure function
// over the input string; the package holds no cross-call state and is safe
// to use concurrently.
package parse

import "github.com/ledgerline/ledgerline/internal/model"

// Confidence tiers. The score reflects which of amount, date, and vendor
// were found; it is a discrete ladder, not a probability.
const (
	ConfidenceFull       = 0.95
	ConfidenceAmountDate = 0.90
	ConfidenceAmountOnly = 0.70
	ConfidenceNone       = 0.30
)

// Parse extracts the most likely amount, currency, date, vendor, and
// reference id from text. It is total over its input domain: any string,
// including empty or binary garbage, produces a valid result with some
// subset of fields unset and a confidence of at least 0.30.
func Parse(text string) model.ParseResult {
	parsed := model.ParsedTransaction{
		Amount:      ExtractAmount(text),
		Currency:    ExtractCurrency(text),
		Date:        ExtractDate(text),
		Vendor:      ExtractVendor(text),
		ReferenceID: ExtractReferenceID(text),
	}

	confidence := ConfidenceNone
	switch {
	case parsed.Amount != nil && parsed.Date != nil && parsed.Vendor != "":
		confidence = ConfidenceFull
	case parsed.Amount != nil && parsed.Date != nil:
		confidence = ConfidenceAmountDate
	case parsed.Amount != nil:
		confidence = ConfidenceAmountOnly
	}

	return model.ParseResult{Parsed: parsed, Confidence: confidence}
}

// Package model defines the core data structures for the ledgerline application.
package model

import "time"

// Source identifies where a transaction was ingested from.
type Source string

const (
	// SourceGmail marks transactions extracted from synced Gmail messages.
	SourceGmail Source = "gmail"
	// SourceSMS marks transactions received via the SMS webhook.
	SourceSMS Source = "sms"
	// SourceManual marks transactions imported from CSV files or created by hand.
	SourceManual Source = "manual"
	// SourceOFX marks transactions imported from OFX/QFX statements.
	SourceOFX Source = "ofx"
)

// ParsedTransaction holds the best-effort fields extracted from a block of
// free-form text. Every field is independently optional; an unset field means
// "not found", never an error.
type ParsedTransaction struct {
	Amount      *float64
	Date        *time.Time
	Currency    string
	Vendor      string
	ReferenceID string
}

// ParseResult pairs extracted fields with a heuristic confidence score.
// Confidence is a discrete function of which fields were found, not a
// probability estimate.
type ParseResult struct {
	Parsed     ParsedTransaction
	Confidence float64
}

// Transaction is a persisted expense record produced by an ingestion source.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	ID          string
	Source      Source
	Currency    string
	Vendor      string
	Category    string
	RawText     string
	ReferenceID string
	Amount      float64
	Confidence  float64
}

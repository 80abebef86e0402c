package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ledgerline/ledgerline/internal/parse"
)

// parseResultJSON is the wire shape of a heuristic parse. Absent fields
// are null, matching the parser's "not found" semantics.
type parseResultJSON struct {
	Amount      *float64   `json:"amount"`
	Currency    *string    `json:"currency"`
	Date        *time.Time `json:"date"`
	Vendor      *string    `json:"vendor"`
	ReferenceID *string    `json:"reference_id"`
	Confidence  float64    `json:"confidence"`
}

// handleParse runs the heuristic parser over raw text and returns the
// extracted fields without persisting anything. Useful for debugging
// parser behavior against real receipts.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if input.Text == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := parse.Parse(input.Text)
	out := parseResultJSON{
		Amount:     result.Parsed.Amount,
		Date:       result.Parsed.Date,
		Confidence: result.Confidence,
	}
	if result.Parsed.Currency != "" {
		out.Currency = &result.Parsed.Currency
	}
	if result.Parsed.Vendor != "" {
		out.Vendor = &result.Parsed.Vendor
	}
	if result.Parsed.ReferenceID != "" {
		out.ReferenceID = &result.Parsed.ReferenceID
	}
	s.respondJSON(w, http.StatusOK, out)
}

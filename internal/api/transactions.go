package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/category"
	"github.com/ledgerline/ledgerline/internal/model"
)

// transactionJSON is the wire shape of a transaction.
type transactionJSON struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Vendor      string    `json:"vendor,omitempty"`
	Category    string    `json:"category,omitempty"`
	Date        time.Time `json:"date"`
	Confidence  float64   `json:"confidence"`
	RawText     string    `json:"raw_text,omitempty"`
	ReferenceID string    `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionJSON(txn model.Transaction) transactionJSON {
	return transactionJSON{
		ID:          txn.ID,
		Source:      string(txn.Source),
		Amount:      txn.Amount,
		Currency:    txn.Currency,
		Vendor:      txn.Vendor,
		Category:    category.DisplayLabel(txn.Category),
		Date:        txn.Date,
		Confidence:  txn.Confidence,
		RawText:     txn.RawText,
		ReferenceID: txn.ReferenceID,
		CreatedAt:   txn.CreatedAt,
	}
}

const defaultListLimit = 100

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	txns, err := s.store.ListTransactions(r.Context(), limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	total, err := s.store.CountTransactions(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]transactionJSON, 0, len(txns))
	for _, txn := range txns {
		out = append(out, toTransactionJSON(txn))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"transactions": out,
		"total":        total,
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Amount      float64 `json:"amount"`
		Currency    string  `json:"currency"`
		Vendor      string  `json:"vendor"`
		Category    string  `json:"category"`
		Date        string  `json:"date"`
		RawText     string  `json:"raw_text"`
		ReferenceID string  `json:"reference_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if input.Amount <= 0 {
		s.respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	date := time.Now().UTC()
	if input.Date != "" {
		parsed, err := time.Parse(time.RFC3339, input.Date)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", input.Date)
		}
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "date must be RFC3339 or YYYY-MM-DD")
			return
		}
		date = parsed.UTC()
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	txn := &model.Transaction{
		ID:          uuid.NewString(),
		Source:      model.SourceManual,
		Amount:      input.Amount,
		Currency:    currency,
		Vendor:      input.Vendor,
		Category:    category.LookupKey(input.Category),
		Date:        date,
		Confidence:  1.0,
		RawText:     input.RawText,
		ReferenceID: input.ReferenceID,
	}
	if err := s.store.SaveTransaction(r.Context(), txn); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, toTransactionJSON(*txn))
}

// handleImportCSV accepts a multipart upload with a "file" part and runs
// it through the CSV importer.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "multipart 'file' field is required")
		return
	}
	defer func() { _ = file.Close() }()

	txns, err := s.pipeline.ImportCSV(r.Context(), file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		saved = append(saved, *txn)
	}
	if err := s.store.SaveTransactions(r.Context(), saved); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"imported": len(saved)})
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ledgerline/ledgerline/internal/ingest"
	"github.com/ledgerline/ledgerline/internal/model"
)

// handleSMS is the inbound SMS webhook. It accepts either the
// form-encoded shape carriers send (Body/From/To) or a JSON body with the
// same fields. The carrier always gets a 200: a message without an amount
// is silently skipped, and processing failures must not trigger carrier
// retries.
func (s *Server) handleSMS(w http.ResponseWriter, r *http.Request) {
	body, from := smsPayload(r)
	if strings.TrimSpace(body) == "" {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}

	txn, err := s.pipeline.Process(r.Context(), ingest.Message{
		Text:   body,
		Vendor: from,
		Source: model.SourceSMS,
	})
	if ingest.IsSkip(err) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}
	if err != nil {
		slog.Error("failed to process SMS", "error", err)
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}

	if err := s.store.SaveTransaction(r.Context(), txn); err != nil {
		slog.Error("failed to save SMS transaction", "error", err)
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "processed",
		"id":     txn.ID,
	})
}

// smsPayload pulls the message text and sender out of either encoding.
func smsPayload(r *http.Request) (body, from string) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var input struct {
			Body string `json:"body"`
			From string `json:"from"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return "", ""
		}
		return input.Body, input.From
	}

	if err := r.ParseForm(); err != nil {
		return "", ""
	}
	return r.PostFormValue("Body"), r.PostFormValue("From")
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/category"
	"github.com/ledgerline/ledgerline/internal/common"
	"github.com/ledgerline/ledgerline/internal/model"
)

// ruleJSON is the wire shape of a categorization rule.
type ruleJSON struct {
	ID        string    `json:"id"`
	Pattern   string    `json:"pattern"`
	Category  string    `json:"category"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

func toRuleJSON(rule model.Rule) ruleJSON {
	return ruleJSON{
		ID:        rule.ID,
		Pattern:   rule.Pattern,
		Category:  category.DisplayLabel(rule.Category),
		Enabled:   rule.Enabled,
		CreatedAt: rule.CreatedAt,
	}
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListRules(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]ruleJSON, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleJSON(rule))
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Pattern  string `json:"pattern"`
		Category string `json:"category"`
		Enabled  *bool  `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(input.Pattern) == "" {
		s.respondError(w, http.StatusBadRequest, "pattern is required")
		return
	}
	if strings.TrimSpace(input.Category) == "" {
		s.respondError(w, http.StatusBadRequest, "category is required")
		return
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	rule := &model.Rule{
		Pattern:  strings.TrimSpace(input.Pattern),
		Category: category.LookupKey(input.Category),
		Enabled:  enabled,
	}
	if err := s.store.CreateRule(r.Context(), rule); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, toRuleJSON(*rule))
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.store.GetRule(r.Context(), chi.URLParam(r, "ruleID"))
	if errors.Is(err, common.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "rule not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, toRuleJSON(*rule))
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.store.GetRule(r.Context(), chi.URLParam(r, "ruleID"))
	if errors.Is(err, common.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "rule not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var input struct {
		Pattern  string `json:"pattern"`
		Category string `json:"category"`
		Enabled  *bool  `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if trimmed := strings.TrimSpace(input.Pattern); trimmed != "" {
		rule.Pattern = trimmed
	}
	if strings.TrimSpace(input.Category) != "" {
		rule.Category = category.LookupKey(input.Category)
	}
	if input.Enabled != nil {
		rule.Enabled = *input.Enabled
	}

	if err := s.store.UpdateRule(r.Context(), rule); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, toRuleJSON(*rule))
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteRule(r.Context(), chi.URLParam(r, "ruleID"))
	if errors.Is(err, common.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "rule not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

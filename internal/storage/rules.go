package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/common"
	"github.com/ledgerline/ledgerline/internal/model"
)

// CreateRule inserts a new categorization rule and assigns its ID.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rules (id, pattern, category, enabled, created_at) VALUES (?, ?, ?, ?, ?)",
		rule.ID, rule.Pattern, rule.Category, rule.Enabled, rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// GetRule retrieves a rule by ID.
func (s *SQLiteStorage) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var rule model.Rule
	err := s.db.QueryRowContext(ctx,
		"SELECT id, pattern, category, enabled, created_at FROM rules WHERE id = ?",
		id).Scan(&rule.ID, &rule.Pattern, &rule.Category, &rule.Enabled, &rule.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	rule.CreatedAt = rule.CreatedAt.UTC()
	return &rule, nil
}

// ListRules returns all rules ordered by recency, newest first. The rule
// engine depends on this ordering: the first matching rule wins.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listRules(ctx, "SELECT id, pattern, category, enabled, created_at FROM rules ORDER BY created_at DESC, id DESC")
}

// ListEnabledRules returns only enabled rules, newest first. This is the
// snapshot handed to the rule engine at categorization time.
func (s *SQLiteStorage) ListEnabledRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listRules(ctx, "SELECT id, pattern, category, enabled, created_at FROM rules WHERE enabled = 1 ORDER BY created_at DESC, id DESC")
}

func (s *SQLiteStorage) listRules(ctx context.Context, query string) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ruleList []model.Rule
	for rows.Next() {
		var rule model.Rule
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.Category, &rule.Enabled, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule.CreatedAt = rule.CreatedAt.UTC()
		ruleList = append(ruleList, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return ruleList, nil
}

// UpdateRule updates a rule's pattern, category, and enabled flag.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE rules SET pattern = ?, category = ?, enabled = ? WHERE id = ?",
		rule.Pattern, rule.Category, rule.Enabled, rule.ID)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteRule removes a rule by ID.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

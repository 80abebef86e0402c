package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/ledgerline/internal/common"
)

// GmailToken is the stored OAuth credential for the synced mailbox. Token
// values are encrypted before they reach this layer.
type GmailToken struct {
	Expiry       time.Time
	UpdatedAt    time.Time
	AccessToken  string
	RefreshToken string
}

// SaveGmailToken upserts the single stored Gmail credential.
func (s *SQLiteStorage) SaveGmailToken(ctx context.Context, token *GmailToken) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(token.AccessToken, "accessToken"); err != nil {
		return err
	}

	query := `
		INSERT INTO gmail_tokens (id, access_token, refresh_token, expiry, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query,
		token.AccessToken, nullString(token.RefreshToken), token.Expiry.UTC())
	if err != nil {
		return fmt.Errorf("failed to save gmail token: %w", err)
	}
	return nil
}

// GetGmailToken returns the stored Gmail credential, or
// common.ErrNoGmailTokens when none has been saved.
func (s *SQLiteStorage) GetGmailToken(ctx context.Context) (*GmailToken, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var token GmailToken
	var refresh sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT access_token, refresh_token, expiry, updated_at FROM gmail_tokens WHERE id = 1").
		Scan(&token.AccessToken, &refresh, &token.Expiry, &token.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoGmailTokens
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gmail token: %w", err)
	}

	token.RefreshToken = refresh.String
	token.Expiry = token.Expiry.UTC()
	token.UpdatedAt = token.UpdatedAt.UTC()
	return &token, nil
}

// DeleteGmailToken removes the stored Gmail credential.
func (s *SQLiteStorage) DeleteGmailToken(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM gmail_tokens WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to delete gmail token: %w", err)
	}
	return nil
}

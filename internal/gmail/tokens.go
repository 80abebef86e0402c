// Package gmail syncs receipt emails from a Gmail mailbox into the
// ingestion pipeline. OAuth credentials are stored encrypted in the
// database, never in plaintext on disk.
package gmail

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/ledgerline/ledgerline/internal/secrets"
	"github.com/ledgerline/ledgerline/internal/storage"
)

// tokenStorage is the slice of the storage layer the token store needs.
type tokenStorage interface {
	SaveGmailToken(ctx context.Context, token *storage.GmailToken) error
	GetGmailToken(ctx context.Context) (*storage.GmailToken, error)
	DeleteGmailToken(ctx context.Context) error
}

// TokenStore persists OAuth tokens encrypted at rest.
type TokenStore struct {
	store  tokenStorage
	cipher *secrets.Cipher
}

// NewTokenStore wraps the given storage with at-rest encryption.
func NewTokenStore(store tokenStorage, cipher *secrets.Cipher) *TokenStore {
	return &TokenStore{store: store, cipher: cipher}
}

// Save encrypts and persists the token.
func (t *TokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	access, err := t.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypting access token: %w", err)
	}

	var refresh string
	if token.RefreshToken != "" {
		refresh, err = t.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return fmt.Errorf("encrypting refresh token: %w", err)
		}
	}

	return t.store.SaveGmailToken(ctx, &storage.GmailToken{
		AccessToken:  access,
		RefreshToken: refresh,
		Expiry:       token.Expiry,
	})
}

// Load returns the decrypted stored token, or common.ErrNoGmailTokens when
// the mailbox has never been authorized.
func (t *TokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	stored, err := t.store.GetGmailToken(ctx)
	if err != nil {
		return nil, err
	}

	access, err := t.cipher.Decrypt(stored.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decrypting access token: %w", err)
	}

	var refresh string
	if stored.RefreshToken != "" {
		refresh, err = t.cipher.Decrypt(stored.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("decrypting refresh token: %w", err)
		}
	}

	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		Expiry:       stored.Expiry,
		TokenType:    "Bearer",
	}, nil
}

// Clear removes the stored credential.
func (t *TokenStore) Clear(ctx context.Context) error {
	return t.store.DeleteGmailToken(ctx)
}

// expiryBuffer is how long before the recorded expiry a token is treated
// as already expired, covering clock skew and in-flight request time.
const expiryBuffer = 60 * time.Second

func tokenUsable(token *oauth2.Token) bool {
	if token.AccessToken == "" {
		return false
	}
	if token.Expiry.IsZero() {
		return true
	}
	return time.Until(token.Expiry) > expiryBuffer
}

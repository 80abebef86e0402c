package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/common"
)

func TestGmailTokenLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.GetGmailToken(ctx)
	assert.ErrorIs(t, err, common.ErrNoGmailTokens)

	expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, store.SaveGmailToken(ctx, &GmailToken{
		AccessToken:  "sealed-access",
		RefreshToken: "sealed-refresh",
		Expiry:       expiry,
	}))

	token, err := store.GetGmailToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sealed-access", token.AccessToken)
	assert.Equal(t, "sealed-refresh", token.RefreshToken)
	assert.True(t, token.Expiry.Equal(expiry))

	// Upsert replaces the single stored credential
	require.NoError(t, store.SaveGmailToken(ctx, &GmailToken{
		AccessToken: "rotated-access",
		Expiry:      expiry,
	}))

	token, err = store.GetGmailToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated-access", token.AccessToken)
	assert.Empty(t, token.RefreshToken)

	require.NoError(t, store.DeleteGmailToken(ctx))
	_, err = store.GetGmailToken(ctx)
	assert.ErrorIs(t, err, common.ErrNoGmailTokens)
}

func TestSaveGmailTokenRequiresAccessToken(t *testing.T) {
	store := newTestStorage(t)
	assert.Error(t, store.SaveGmailToken(context.Background(), &GmailToken{}))
}

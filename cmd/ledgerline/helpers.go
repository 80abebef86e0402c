package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ledgerline/ledgerline/internal/common"
	"github.com/ledgerline/ledgerline/internal/config"
	"github.com/ledgerline/ledgerline/internal/gmail"
	"github.com/ledgerline/ledgerline/internal/ingest"
	"github.com/ledgerline/ledgerline/internal/llm"
	"github.com/ledgerline/ledgerline/internal/secrets"
	"github.com/ledgerline/ledgerline/internal/storage"
)

func databasePath() string {
	if path := viper.GetString("database.path"); path != "" {
		return config.ExpandPath(path)
	}
	return config.DefaultDatabasePath()
}

func openStorage() (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func llmConfig() llm.Config {
	return llm.Config{
		Provider:          viper.GetString("llm.provider"),
		APIKey:            viper.GetString("llm.api_key"),
		Model:             viper.GetString("llm.model"),
		Temperature:       viper.GetFloat64("llm.temperature"),
		MaxTokens:         viper.GetInt("llm.max_tokens"),
		RequestsPerMinute: viper.GetInt("llm.requests_per_minute"),
	}
}

// newPipeline assembles the ingestion pipeline from configuration. The
// fallback parser defaults to the mock when no provider is configured, so
// every command works without an API key.
func newPipeline(store *storage.SQLiteStorage) (*ingest.Pipeline, error) {
	fallback, err := llm.NewParser(llmConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM parser: %w", err)
	}
	return ingest.NewPipeline(fallback, store), nil
}

func tokenCipher() (*secrets.Cipher, error) {
	passphrase := viper.GetString("gmail.token_passphrase")
	if passphrase == "" {
		return nil, common.NewUserError(
			"set gmail.token_passphrase (or LEDGERLINE_GMAIL_TOKEN_PASSPHRASE) to protect stored tokens",
			common.ErrMissingConfig)
	}
	return secrets.NewCipher(passphrase)
}

func oauthConfig() (gmail.OAuthConfig, error) {
	cfg := gmail.OAuthConfig{
		ClientID:     viper.GetString("gmail.client_id"),
		ClientSecret: viper.GetString("gmail.client_secret"),
		CallbackAddr: viper.GetString("gmail.callback_addr"),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return cfg, common.NewUserError(
			"configure gmail.client_id and gmail.client_secret from your Google Cloud OAuth client",
			common.ErrMissingConfig)
	}
	return cfg, nil
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ledgerline/internal/gmail"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Gmail authorization",
	}
	cmd.AddCommand(authGmailCmd())
	cmd.AddCommand(authRevokeCmd())
	return cmd
}

func authGmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gmail",
		Short: "Authorize read access to your Gmail mailbox",
		Long: `Runs the browser-based OAuth flow and stores the resulting token,
encrypted, in the local database. Requires gmail.client_id,
gmail.client_secret, and gmail.token_passphrase in the configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauth, err := oauthConfig()
			if err != nil {
				return err
			}
			cipher, err := tokenCipher()
			if err != nil {
				return err
			}

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tokens := gmail.NewTokenStore(store, cipher)
			if _, err := gmail.AuthenticateInteractive(cmd.Context(), oauth, tokens); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			slog.Info("Gmail authorization complete")
			return nil
		},
	}
}

func authRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke",
		Short: "Remove the stored Gmail credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteGmailToken(cmd.Context()); err != nil {
				return fmt.Errorf("failed to remove credential: %w", err)
			}
			slog.Info("Stored Gmail credential removed")
			return nil
		},
	}
}

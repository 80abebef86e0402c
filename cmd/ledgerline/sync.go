package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ledgerline/ledgerline/internal/gmail"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull receipt emails from Gmail into the ledger",
		Long: `Searches the authorized mailbox for receipt-like messages, parses each
one, and saves the extracted transactions. Messages already imported and
messages without a recognizable amount are skipped.`,
		RunE: runSync,
	}

	cmd.Flags().String("query", "", "override the Gmail search query")
	cmd.Flags().Int64("max", 0, "maximum messages to examine per pass")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
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

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	pipeline, err := newPipeline(store)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	tokens := gmail.NewTokenStore(store, cipher)
	source := gmail.TokenSource(ctx, oauth, tokens)

	syncer, err := gmail.NewSyncer(ctx, source, store, pipeline, nil)
	if err != nil {
		return err
	}
	syncer.Query, _ = cmd.Flags().GetString("query")
	syncer.MaxResults, _ = cmd.Flags().GetInt64("max")

	var bar *progressbar.ProgressBar
	syncer.Progress = func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Syncing messages..."),
			)
		}
		_ = bar.Set(done)
	}

	stats, err := syncer.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	slog.Info("Sync finished",
		"found", stats.Found,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return nil
}

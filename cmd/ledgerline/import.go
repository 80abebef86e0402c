package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ledgerline/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import transactions from CSV or OFX/QFX files",
		Long: `Imports bank-export files. The format is chosen by extension: .csv
files go through the CSV importer, .ofx and .qfx files through the OFX
importer. Rows and records that cannot be parsed are skipped with a
warning.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
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
	total := 0
	for _, path := range args {
		file, err := os.Open(path) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		var txns []*model.Transaction
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			txns, err = pipeline.ImportCSV(ctx, file)
		case ".ofx", ".qfx":
			txns, err = pipeline.ImportOFX(ctx, file)
		default:
			_ = file.Close()
			return fmt.Errorf("unsupported file type: %s", path)
		}
		_ = file.Close()
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}

		batch := make([]model.Transaction, 0, len(txns))
		for _, txn := range txns {
			batch = append(batch, *txn)
		}
		if err := store.SaveTransactions(ctx, batch); err != nil {
			return fmt.Errorf("failed to save transactions from %s: %w", path, err)
		}

		slog.Info("Imported file", "path", path, "transactions", len(batch))
		total += len(batch)
	}

	slog.Info("Import complete", "files", len(args), "transactions", total)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgerline/ledgerline/internal/api"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Starts the HTTP server exposing the SMS webhook, rule management,
transaction listing, CSV import, and the parse endpoint.`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 8080, "port to listen on")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	server := api.New(api.Config{
		Port:     viper.GetInt("server.port"),
		Store:    store,
		Pipeline: pipeline,
	})

	errChan := make(chan error, 1)
	go func() {
		slog.Info("API server starting", "port", viper.GetInt("server.port"))
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claudehub/internal/api"
	"claudehub/internal/assistant"
	"claudehub/internal/chat"
	"claudehub/internal/dashboard"
	"claudehub/internal/telemetry"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveOpts struct {
	port    string
	migrate bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.port, "port", "", "port to listen on (overrides SERVER_PORT)")
	serveCmd.Flags().BoolVar(&serveOpts.migrate, "migrate", false, "create missing records tables before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if serveOpts.port != "" {
		cfg.ServerPort = serveOpts.port
	}

	// Amounts are sent to the dashboard as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	shutdownTracing, err := telemetry.Setup(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logrus.Errorf("Failed to flush traces: %v", err)
		}
	}()

	recordsClient, closeRecords, err := openRecords(ctx, serveOpts.migrate)
	if err != nil {
		return err
	}
	defer closeRecords()

	gateway := assistant.NewGateway(cfg)
	logrus.Infof("Assistant provider %s, model %s, mode %s",
		cfg.AssistantProvider, gateway.Model(), assistant.ResolveMode(cfg.AssistantKey()))

	assistantService := assistant.NewService(gateway)
	handler := api.NewHandler(
		recordsClient,
		assistantService,
		dashboard.NewService(recordsClient),
		chat.NewRegistry(assistantService),
	)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("Server started on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("Server stopped")
	return nil
}

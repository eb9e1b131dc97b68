package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clinsuite/payroll-engine/api"
	"github.com/clinsuite/payroll-engine/export"
	"github.com/clinsuite/payroll-engine/ingest"
	"github.com/clinsuite/payroll-engine/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the payroll HTTP API",
	Long: `Starts the HTTP API used by the review UI: workbook upload and
processing, run history, result and audit retrieval, and workbook
downloads. Shuts down gracefully on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	w, err := buildWiring("")
	if err != nil {
		return err
	}
	defer w.log.Sync()

	store, err := sqlite.New(w.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()

	handler := api.NewHandler(
		store,
		ingest.NewReader(w.parser, w.log),
		w.processor,
		export.NewWriter(w.log),
		w.parser,
		w.log,
	)
	router := api.NewRouter(handler, w.cfg.Server.CORS)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", w.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // workbook processing happens in-request
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		w.log.Info("server starting",
			zap.Int("port", w.cfg.Server.Port),
			zap.String("db", w.cfg.Database.Path))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		w.log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	w.log.Info("server stopped")
	return nil
}

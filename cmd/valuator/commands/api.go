package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuator/internal/api"
	"github.com/wonny/valuator/internal/api/handlers"
	"github.com/wonny/valuator/internal/backtest"
)

// apiCmd serves the HTTP API
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Serves the valuation API: latest signal, stored history and
on-demand backtests. Runs until interrupted.

Example:
  go run ./cmd/valuator api
  PORT=9090 go run ./cmd/valuator api`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// history endpoints degrade to 503 without a database
	if err := a.withDatabase(); err != nil {
		return err
	}
	if a.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := a.repo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	handler := handlers.NewSignalHandler(
		a.strategy,
		a.symbol,
		a.provider,
		newScorer(a),
		backtest.New(a.strategy, a.log),
		a.repo,
		a.log,
	)
	server := api.New(a.cfg, a.log, api.NewRouter(handler, a.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	a.log.WithField("port", a.cfg.Port).Info("API server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.log.WithField("signal", sig.String()).Info("Shutting down API server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info("API server stopped")
	return nil
}

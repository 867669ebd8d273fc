package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuator/internal/scheduler"
	"github.com/wonny/valuator/internal/scheduler/jobs"
)

// schedulerCmd runs the cron scheduler in the foreground
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily signal scheduler",
	Long: `Starts the cron scheduler and computes the daily signal after each
trading day's close, persisting the record when a database is configured.
Runs until interrupted.

Example:
  go run ./cmd/valuator scheduler --symbol TSLA
  go run ./cmd/valuator scheduler --now`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "now", false, "trigger the daily job immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

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
	} else {
		a.log.Warn("No database configured, records will not be persisted")
	}

	sched := scheduler.New(a.log)
	job := jobs.NewDailySignalJob(a.symbol, a.strategy, a.provider, newScorer(a), a.repo, a.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register job: %w", err)
	}

	sched.Start()
	a.log.WithFields(map[string]interface{}{
		"symbol": a.symbol,
		"jobs":   sched.Jobs(),
	}).Info("Scheduler started")

	if schedulerRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.log.WithField("signal", sig.String()).Info("Stopping scheduler")

	sched.Stop()
	a.log.Info("Scheduler stopped")
	return nil
}

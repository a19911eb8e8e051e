package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/storecheckhq/storecheck/internal/db"
	"github.com/storecheckhq/storecheck/internal/observability"
)

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List recent check runs",
	RunE:  runRunsCmd,
}

var showCommand = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one check run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowCmd,
}

var (
	runsDatabaseURL string
	runsLimit       int
)

func init() {
	runsCommand.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runsCommand.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum runs to list")
	showCommand.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runsCommand)
	rootCmd.AddCommand(showCommand)
}

func connectRuns(ctx context.Context) (*db.DB, error) {
	url := runsDatabaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	return db.Connect(ctx, url)
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	database, err := connectRuns(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListCheckRuns(ctx, runsLimit)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintRunList(runs)
	return nil
}

func runShowCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}

	database, err := connectRuns(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := database.GetCheckRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("check run %s not found", runID)
	}

	printer := observability.NewPrinter(os.Stdout)
	if run.Status == db.StatusFailed {
		printer.PrintFailure(run)
		return nil
	}
	result := run.Result()
	printer.PrintResult(&result)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/storecheckhq/storecheck/internal/augment"
	"github.com/storecheckhq/storecheck/internal/collector"
	"github.com/storecheckhq/storecheck/internal/config"
	"github.com/storecheckhq/storecheck/internal/db"
	"github.com/storecheckhq/storecheck/internal/llm"
	"github.com/storecheckhq/storecheck/internal/observability"
	"github.com/storecheckhq/storecheck/internal/pipeline"
	"github.com/storecheckhq/storecheck/internal/types"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze <owner>/<repo>",
	Short: "Run a compliance check against a GitHub repository",
	Long: `Collects key files from the repository, evaluates the platform's compliance rules, and (for full checks) augments each finding with AI analysis.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeCmd,
}

var (
	analyzeConfigPath   string
	analyzePlatform     string
	analyzeCheckType    string
	analyzeRef          string
	analyzeAPIKey       string
	analyzeGitHubToken  string
	analyzeAppID        string
	analyzeAppKeyPath   string
	analyzeDatabaseURL  string
	analyzeBatchSize    int
	analyzeBatchDelayMs int
	analyzeMaxAttempts  int
	analyzeTimeout      time.Duration
	analyzeVerbose      bool
)

func init() {
	analyzeCommand.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	analyzeCommand.Flags().StringVarP(&analyzePlatform, "platform", "p", "", "Target platform: apple-app-store or google-play")
	analyzeCommand.Flags().StringVar(&analyzeCheckType, "check-type", "", "Check type: static (rules only) or full (rules + AI)")
	analyzeCommand.Flags().StringVar(&analyzeRef, "ref", "", "Branch or commit to analyze (defaults to the default branch)")
	analyzeCommand.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed progress information")

	// Credentials can be passed as flags, or read from env vars
	analyzeCommand.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	analyzeCommand.Flags().StringVar(&analyzeGitHubToken, "github-token", "", "GitHub personal access token (optional, defaults to GITHUB_TOKEN env var)")
	analyzeCommand.Flags().StringVar(&analyzeAppID, "app-id", "", "GitHub App id (optional, defaults to GITHUB_APP_ID env var)")
	analyzeCommand.Flags().StringVar(&analyzeAppKeyPath, "app-key", "", "Path to GitHub App private key PEM (optional, defaults to GITHUB_APP_KEY_PATH env var)")

	analyzeCommand.Flags().StringVar(&analyzeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	analyzeCommand.Flags().IntVar(&analyzeBatchSize, "batch-size", 0, "Issues per AI augmentation batch")
	analyzeCommand.Flags().IntVar(&analyzeBatchDelayMs, "batch-delay-ms", 0, "Delay between augmentation batches in milliseconds")
	analyzeCommand.Flags().IntVar(&analyzeMaxAttempts, "max-attempts", 0, "Attempts per AI call including retries")
	analyzeCommand.Flags().DurationVar(&analyzeTimeout, "timeout", 10*time.Minute, "Overall deadline for the check run")

	rootCmd.AddCommand(analyzeCommand)
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	owner, repo, err := splitRepoArg(args[0])
	if err != nil {
		return err
	}

	// Step 1: Load config file if provided
	var cfg config.Config
	if analyzeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(analyzeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if analyzeVerbose {
			fmt.Printf("Loaded config from: %s\n", analyzeConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("platform") {
		cfg.Platform = analyzePlatform
	}
	if cmd.Flags().Changed("check-type") {
		cfg.CheckType = analyzeCheckType
	}
	if cmd.Flags().Changed("ref") {
		cfg.Ref = analyzeRef
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = analyzeAPIKey
	}
	if cmd.Flags().Changed("github-token") {
		cfg.GitHubToken = analyzeGitHubToken
	}
	if cmd.Flags().Changed("app-id") {
		cfg.GitHubAppID = analyzeAppID
	}
	if cmd.Flags().Changed("app-key") {
		cfg.GitHubAppKeyPath = analyzeAppKeyPath
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = analyzeDatabaseURL
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize = analyzeBatchSize
	}
	if cmd.Flags().Changed("batch-delay-ms") {
		cfg.BatchDelayMs = analyzeBatchDelayMs
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts = analyzeMaxAttempts
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = analyzeVerbose
	}

	// Step 3: Apply defaults and environment fallbacks
	cfg = cfg.MergeWithDefaults(config.Config{CheckType: pipeline.CheckTypeFull})
	cfg.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: Validate required fields
	platform := types.Platform(cfg.Platform)
	if cfg.Platform == "" {
		return fmt.Errorf("--platform is required (apple-app-store or google-play)")
	}
	if cfg.CheckType == pipeline.CheckTypeFull && cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required for full checks (use --check-type static to skip AI)")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	// Step 5: Wire dependencies
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	var client llm.Client
	if cfg.CheckType == pipeline.CheckTypeFull {
		client, err = llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	}

	creds, err := buildCredentials(&cfg)
	if err != nil {
		return err
	}

	source := collector.NewGitHubSource()
	if cfg.GitHubAPIURL != "" {
		source.BaseURL = cfg.GitHubAPIURL
	}

	p := pipeline.New(database, source, client)
	p.Verbose = cfg.Verbose
	p.WithAugmentConfig(buildAugmentConfig(&cfg))

	// Step 6: Run the check
	runID, err := p.Analyze(ctx, pipeline.Request{
		Owner:     owner,
		Repo:      repo,
		Ref:       cfg.Ref,
		CheckType: cfg.CheckType,
		Platform:  platform,
		Creds:     creds,
	})

	printer := observability.NewPrinter(os.Stdout)
	if err != nil {
		// The run context may already be past its deadline here.
		run, getErr := database.GetCheckRun(context.Background(), runID)
		if getErr == nil && run != nil {
			printer.PrintFailure(run)
		}
		return err
	}

	result, err := p.Result(ctx, runID)
	if err != nil {
		return err
	}
	printer.PrintResult(result)
	return nil
}

// splitRepoArg parses an "owner/repo" argument.
func splitRepoArg(arg string) (string, string, error) {
	parts := strings.Split(arg, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be in <owner>/<repo> form, got %q", arg)
	}
	return parts[0], parts[1], nil
}

// buildAugmentConfig maps the config's augmentation knobs onto the
// orchestrator tuning. Zero values leave the orchestrator defaults in place.
func buildAugmentConfig(cfg *config.Config) *augment.Config {
	return &augment.Config{
		BatchSize:   cfg.BatchSize,
		BatchDelay:  time.Duration(cfg.BatchDelayMs) * time.Millisecond,
		MaxAttempts: cfg.MaxAttempts,
	}
}

// buildCredentials assembles GitHub credentials from config, loading the
// App private key when configured. Public repositories need none.
func buildCredentials(cfg *config.Config) (*collector.Credentials, error) {
	if cfg.GitHubToken == "" && cfg.GitHubAppID == "" {
		return nil, nil
	}
	creds := &collector.Credentials{
		Token: cfg.GitHubToken,
		AppID: cfg.GitHubAppID,
	}
	if cfg.GitHubAppKeyPath != "" {
		key, err := os.ReadFile(cfg.GitHubAppKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read app key: %w", err)
		}
		creds.AppPrivateKey = key
	}
	return creds, nil
}

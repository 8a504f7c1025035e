package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/brandbrief/brandbrief/internal/config"
	"github.com/brandbrief/brandbrief/internal/llm"
	"github.com/brandbrief/brandbrief/internal/notify"
	"github.com/brandbrief/brandbrief/internal/pipeline"
	"github.com/brandbrief/brandbrief/internal/server"
	"github.com/brandbrief/brandbrief/internal/store"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "brandbrief",
	Short:   "Periodic brand-monitoring reports",
	Long:    "Brandbrief aggregates monitored discussions about a brand and generates a narrative summary report on a schedule.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Secrets may come from a local .env during development.
		_ = godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.DebugLogging() {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("brandbrief", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/brandbrief/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the monitored entity, store, and email delivery.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := store.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		stats, err := s.Stats(ctx)
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Entity: %s\n", cfg.Entity)
		fmt.Printf("Store:  %s\n\n", cfg.Store.Driver)
		fmt.Printf("Documents: %d\n", stats.Documents)
		fmt.Printf("Reports:   %d\n", stats.Reports)
		if stats.Documents > 0 {
			fmt.Printf("\nScraped range:\n")
			fmt.Printf("  Earliest: %s\n", stats.EarliestScraped)
			fmt.Printf("  Latest:   %s\n", stats.LatestScraped)
		}
		return nil
	},
}

// --- run command ---

var (
	dryRun  bool
	runDate string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: select -> aggregate -> compose -> generate -> reconcile -> notify",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().UTC()
		if runDate != "" {
			var err error
			now, err = time.ParseInLocation("2006-01-02", runDate, time.UTC)
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", runDate)
			}
		}

		ctx := context.Background()
		s, err := store.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		var result *pipeline.Result
		if dryRun {
			pipe := pipeline.New(cfg, s, nil, nil)
			result = pipe.DryRun(ctx, now)
		} else {
			generator, err := llm.NewClient(cfg.Generator)
			if err != nil {
				return err
			}
			notifier, err := notify.NewSMTPNotifier(cfg.Email)
			if err != nil {
				return err
			}
			pipe := pipeline.New(cfg, s, generator, notifier)
			result = pipe.Run(ctx, now)
		}

		for _, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", step.Step, pipeline.NumSteps, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		fmt.Printf("\nRun finished: %s (%d articles)\n", result.State, result.Articles)
		if result.State == pipeline.StateDone && !dryRun {
			fmt.Println("Run 'brandbrief serve' to view the report.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without generating or notifying")
	runCmd.Flags().StringVar(&runDate, "date", "", "Run for a specific date (YYYY-MM-DD) instead of today")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := store.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(ctx, s, cfg.Entity, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (defaults to config)")
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alpha-arena/tracker/configs"
	"github.com/alpha-arena/tracker/internal/logging"
	"github.com/alpha-arena/tracker/internal/runner"
	"github.com/alpha-arena/tracker/internal/storage"
)

var (
	flagHeadless   bool
	flagNoHeadless bool
	flagVerbose    bool
	flagInterval   int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the scraper once",
	Long:  "Scrapes the leaderboard, model pages and live chat feed once and saves results to the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup(cmd)

		db, err := storage.Open(cfg.Database)
		if err != nil {
			logger.Errorf("Scrape failed: %v", err)
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := runner.New(cfg, db, logger).RunOnce(ctx)
		printResult(cmd, result, flagVerbose)
		if err != nil {
			logger.Errorf("Scrape failed: %v", err)
			return err
		}
		if len(result.Errors) > 0 {
			logger.Warnf("Completed with %d errors", len(result.Errors))
		}
		return nil
	},
}

var scrapeContinuousCmd = &cobra.Command{
	Use:   "scrape-continuous",
	Short: "Run the scraper continuously at a fixed interval",
	Long:  "Starts a continuous scraping loop that runs at the given interval until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup(cmd)

		interval := flagInterval
		if interval <= 0 {
			interval = cfg.RefreshIntervalMinutes
		}

		db, err := storage.Open(cfg.Database)
		if err != nil {
			logger.Errorf("Continuous scraping failed: %v", err)
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.Printf("Starting continuous scraping every %d minutes\n", interval)
		cmd.Println("Press Ctrl+C to stop")

		err = runner.New(cfg, db, logger).RunContinuous(ctx, time.Duration(interval)*time.Minute)
		if err != nil {
			logger.Errorf("Continuous scraping failed: %v", err)
			return err
		}
		logger.Info("Continuous scraping stopped")
		return nil
	},
}

// setup loads config and builds the logger, applying the shared flags.
// --headless defaults to true, so only an explicitly passed flag overrides
// SCRAPER_HEADLESS from the environment.
func setup(cmd *cobra.Command) (*configs.AppConfig, *logrus.Logger) {
	cfg := configs.AppLoad()
	if flagNoHeadless {
		cfg.Scraper.Headless = false
	} else if cmd.Flags().Changed("headless") {
		cfg.Scraper.Headless = flagHeadless
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	return cfg, logging.NewLogger(level)
}

func printResult(cmd *cobra.Command, result *runner.Result, verbose bool) {
	if result == nil {
		return
	}
	cmd.Printf("Timestamp: %s\n", result.Timestamp.Format(time.RFC3339))
	cmd.Printf("Scraped %d leaderboard entries\n", len(result.Leaderboard))
	cmd.Printf("Chats: %d entries\n", result.Chats)
	cmd.Printf("Models scraped: %d\n", len(result.Models))

	if verbose && len(result.Leaderboard) > 0 {
		cmd.Println("\nLeaderboard models:")
		for _, name := range result.Leaderboard {
			cmd.Printf("  - %s\n", name)
		}
	}
	if verbose && len(result.Models) > 0 {
		names := make([]string, 0, len(result.Models))
		for name := range result.Models {
			names = append(names, name)
		}
		sort.Strings(names)

		cmd.Println("\nModel details:")
		for _, name := range names {
			counts := result.Models[name]
			cmd.Printf("  %s: %d trades, %d chats, %d positions", name, counts.Trades, counts.Chats, counts.Positions)
			if counts.Skipped > 0 {
				cmd.Printf(" (%d duplicate trades skipped)", counts.Skipped)
			}
			cmd.Println()
		}
	}

	if len(result.Errors) > 0 {
		cmd.Println("\nErrors:")
		for _, msg := range result.Errors {
			cmd.Printf("  - %s\n", msg)
		}
	}
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagHeadless, "headless", true, "run browser in headless mode")
	cmd.Flags().BoolVar(&flagNoHeadless, "no-headless", false, "show the browser window (useful for debugging)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output with detailed results")
}

func init() {
	addScrapeFlags(scrapeCmd)
	addScrapeFlags(scrapeContinuousCmd)
	scrapeContinuousCmd.Flags().IntVarP(&flagInterval, "interval", "i", 15, "interval between scrape cycles in minutes")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(scrapeContinuousCmd)
}

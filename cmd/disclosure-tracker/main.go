// Disclosure Tracker polls a public disclosure-filing site for new
// financial disclosure documents, extracts trade records from the
// filing PDFs, and emails formatted reports.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finwatch/disclosure-tracker/internal/config"
	"github.com/finwatch/disclosure-tracker/internal/detector"
	"github.com/finwatch/disclosure-tracker/internal/extract"
	"github.com/finwatch/disclosure-tracker/internal/logging"
	"github.com/finwatch/disclosure-tracker/internal/notify"
	"github.com/finwatch/disclosure-tracker/internal/repository"
	"github.com/finwatch/disclosure-tracker/internal/tracker"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "disclosure-tracker",
	Short: "Financial disclosure polling and trade extraction",
	Long: `Disclosure Tracker
Polls the House clerk financial disclosure site for new filings,
downloads newly found PDF documents, extracts trade records from the
document text, and emails a formatted report with the PDF attached.
Each disclosure is reported exactly once.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(statusCmd)
}

// newLogger builds the process logger from the loaded config.
func newLogger() (*slog.Logger, error) {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
}

// buildTracker wires the pipeline: repository, detector, extractor,
// notifier. The detector doubles as the document downloader so PDF
// requests share the search session's cookies.
func buildTracker(log *slog.Logger) *tracker.Tracker {
	repo := repository.New(cfg.Tracker.DataFile, log)
	repo.Load(strconv.Itoa(cfg.Tracker.FilingYear))

	det := detector.New(cfg.Tracker, repo, log)
	notifier := notify.New(cfg.Email, log)

	return tracker.New(det, det, extract.New(), notifier, repo, cfg.Tracker.CheckInterval(), log)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("disclosure-tracker %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tracker on a schedule",
	Long:  "Run an immediate check, then poll at the configured interval until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w (edit your config file before running)", err)
		}

		log, err := newLogger()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		buildTracker(log).Run(ctx)
		return nil
	},
}

// --- Check Command ---

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single check cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w (edit your config file before running)", err)
		}

		log, err := newLogger()
		if err != nil {
			return err
		}

		buildTracker(log).Process(context.Background())
		return nil
	},
}

// --- Parse Command ---

var parseCmd = &cobra.Command{
	Use:   "parse [pdf-file]",
	Short: "Extract trade records from a local filing PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, _ := cmd.Flags().GetString("strategy")
		ex, err := extract.ByName(strategy)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		trades := extract.FromPDF(data, ex)
		out, err := json.MarshalIndent(trades, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	parseCmd.Flags().String("strategy", "auto", "extraction strategy: auto, labeled, or anchored")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and repository state",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		repo := repository.New(cfg.Tracker.DataFile, log)
		repo.Load(strconv.Itoa(cfg.Tracker.FilingYear))

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Disclosure Tracker Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:        %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Base URL:       %s\n", cfg.Tracker.BaseURL)
		fmt.Printf("    Filing Year:    %d\n", cfg.Tracker.FilingYear)
		if cfg.Tracker.LastName != "" {
			fmt.Printf("    Last Name:      %s\n", cfg.Tracker.LastName)
		}
		fmt.Printf("    Check Interval: %s\n", cfg.Tracker.CheckInterval())
		fmt.Printf("    Data File:      %s\n", cfg.Tracker.DataFile)
		fmt.Printf("    SMTP Relay:     %s:%d\n", cfg.Email.SMTPServer, cfg.Email.SMTPPort)
		fmt.Printf("    Recipients:     %d\n", len(cfg.Email.RecipientEmails))
		fmt.Println()

		fmt.Println("  Repository:")
		fmt.Printf("    Known Disclosures: %d\n", repo.Size())
		for year, count := range repo.Counts() {
			fmt.Printf("    %s Total Count:  %d\n", year, count)
		}

		if err := cfg.Validate(); err != nil {
			fmt.Printf("\n  ⚠️  Not runnable: %v\n", err)
		} else {
			fmt.Println("\n  ✅ Configuration is runnable")
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dealscan/internal/export"
	"github.com/ppiankov/dealscan/internal/model"
	"github.com/ppiankov/dealscan/internal/pipeline"
	"github.com/ppiankov/dealscan/internal/present"
)

var (
	format          string
	outputDir       string
	windowDays      int
	continueOnError bool
	workers         int
	timeout         time.Duration
	userAgent       string
	retries         int
	rps             float64
	useCache        bool
	refreshCache    bool
	respectRobots   bool
	noRelevance     bool
	showTable       bool
	scanTimeout     time.Duration
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fetch, filter and export recent M&A headlines",
	Long: `Scan runs every configured search term through the pipeline:
- Query the news feed once per term
- Drop items outside the recency window (and, for the business
  profile, items failing the keyword relevance check)
- Extract buyer and target from the headline
- Deduplicate by headline and write <prefix>_<date>.csv or .xlsx

By default the first failing term aborts the run and nothing is written.

Example:
  dealscan scan
  dealscan scan --profile basic
  dealscan scan --format csv --output-dir ./out --show
  dealscan scan --workers 4 --continue-on-error --retries 3`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addPipelineFlags(scanCmd)

	scanCmd.Flags().StringVar(&format, "format", "", "export format: csv or xlsx (default from profile)")
	scanCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for the export file (default .)")
	scanCmd.Flags().BoolVar(&showTable, "show", false, "print the deals as a table")
}

// addPipelineFlags registers the flags shared by scan and serve
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&windowDays, "window-days", 0, "recency window in days (default 90)")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "record failing terms and keep going")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of terms fetched concurrently (default 1)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request HTTP timeout (default 30s)")
	cmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent")
	cmd.Flags().IntVar(&retries, "retries", 0, "attempts per feed request (default 1, no retry)")
	cmd.Flags().Float64Var(&rps, "rps", 0, "max requests per second per host (0 = unlimited)")
	cmd.Flags().BoolVar(&useCache, "cache", false, "cache feed responses in memory and on disk")
	cmd.Flags().BoolVar(&refreshCache, "refresh", false, "refetch every feed and replace its cached copy (implies --cache)")
	cmd.Flags().BoolVar(&respectRobots, "respect-robots", false, "check robots.txt before fetching")
	cmd.Flags().BoolVar(&noRelevance, "no-relevance", false, "disable the keyword relevance filter")
	cmd.Flags().DurationVar(&scanTimeout, "scan-timeout", 10*time.Minute, "overall timeout for the run")
}

// applyPipelineFlags copies explicitly set flags over the loaded configuration
func applyPipelineFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("window-days") {
		cfg.Filter.WindowDays = windowDays
	}
	if flags.Changed("continue-on-error") {
		cfg.Errors.ContinueOnError = continueOnError
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if flags.Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("retries") {
		cfg.HTTP.RetryAttempts = retries
	}
	if flags.Changed("rps") {
		cfg.HTTP.RequestsPerSecond = rps
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = useCache
	}
	if flags.Changed("refresh") {
		cfg.Cache.Refresh = refreshCache
		if refreshCache {
			cfg.Cache.Enabled = true
		}
	}
	if flags.Changed("respect-robots") {
		cfg.HTTP.RespectRobots = respectRobots
	}
	if noRelevance {
		cfg.Filter.Relevance = false
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyPipelineFlags(cmd, cfg)
	if cmd.Flags().Changed("format") {
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		cfg.Output.Format = f
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	exporter := export.New(cfg.Output)
	path, err := exporter.WriteFile(cfg.Output.Format, report.StartedAt.In(time.Local), report.Deals)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	out := cmd.OutOrStdout()
	if showTable {
		present.NewTerminal(out).Render(report)
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "✓ Saved %d results to %s\n", len(report.Deals), path)

	return nil
}

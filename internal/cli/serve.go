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

	"github.com/ppiankov/dealscan/internal/export"
	"github.com/ppiankov/dealscan/internal/pipeline"
	"github.com/ppiankov/dealscan/internal/present"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Scan once and browse the results in a local dashboard",
	Long: `Serve runs a scan, then serves a single page listing the deals with
CSV and Excel download links. Downloads are built from the scan held in
memory; reloading the page does not fetch the feed again.

Example:
  dealscan serve
  dealscan serve --addr 127.0.0.1:9000 --profile basic`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addPipelineFlags(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default 127.0.0.1:8501)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyPipelineFlags(cmd, cfg)
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	scanCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	report, err := p.Run(scanCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	dashboard := present.NewServer(report, export.New(cfg.Output), cfg.Filter.WindowDays, logger)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           dashboard.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "%s\nDashboard: http://%s/\n", present.StatusMessage(len(report.Deals)), cfg.Server.Addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down dashboard")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

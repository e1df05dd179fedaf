package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dealscan/internal/logging"
	"github.com/ppiankov/dealscan/internal/pipeline"
)

// queriesCmd represents the queries command
var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Print the feed URLs a scan would fetch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		p, err := pipeline.NewPipeline(cfg, logging.Nop())
		if err != nil {
			return err
		}

		for _, u := range p.Queries() {
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queriesCmd)
}

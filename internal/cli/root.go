package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags "-X .../cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile  string
	verbose  bool
	profile  string
	logLevel string
	logFile  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dealscan",
	Short: "dealscan - India M&A headline scanner",
	Long: `dealscan queries a public news search feed for India-focused
acquisition and merger stories, keeps the recent and relevant ones,
extracts buyer and target names from the headline and exports the
deduplicated list as CSV or Excel.

Extraction is a naive, ordered list of regular expressions. Headlines
that match none of them are kept with empty buyer and target.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dealscan v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.dealscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "profile: basic or business (default business)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file (rotated)")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and DEALSCAN_* variables
func initConfig() {
	// A missing .env is normal
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".dealscan"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// DEALSCAN_FILTER_WINDOW_DAYS -> filter.window_days
	viper.SetEnvPrefix("DEALSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

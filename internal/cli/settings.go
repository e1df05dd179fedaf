package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/dealscan/internal/logging"
	"github.com/ppiankov/dealscan/internal/model"
)

// loadConfig resolves flags > env > config file > profile defaults
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	name := viper.GetString("profile")
	if cmd.Flags().Changed("profile") {
		name = profile
	}
	if name == "" {
		name = model.ProfileBusiness
	}

	cfg := model.DefaultConfigFor(name)
	if err := registerDefaults(cfg); err != nil {
		return nil, err
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Flags override everything decoded above
	if cmd.Flags().Changed("profile") {
		cfg.Profile = strings.ToLower(profile)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Logging.File = logFile
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

// registerDefaults exposes every config key to viper, so DEALSCAN_* variables
// apply even when no config file mentions the key.
func registerDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("decode defaults: %w", err)
	}
	setDefaults("", tree)
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for key, value := range tree {
		if nested, ok := value.(map[string]any); ok {
			setDefaults(prefix+key+".", nested)
			continue
		}
		viper.SetDefault(prefix+key, value)
	}
}

// newLogger builds the run logger from the logging section
func newLogger(cfg *model.Config) zerolog.Logger {
	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Console = os.Stderr
	logCfg.FilePath = cfg.Logging.File
	return logging.NewLogger(logCfg)
}

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdconfig "github.com/Iron-Ham/flightdash/internal/cmd/config"
	"github.com/Iron-Ham/flightdash/internal/config"
	"github.com/Iron-Ham/flightdash/internal/dashboard"
	"github.com/Iron-Ham/flightdash/internal/logging"
	"github.com/Iron-Ham/flightdash/internal/source"
)

var rootCmd = &cobra.Command{
	Use:   "flightdash",
	Short: "Flight anomaly dashboard",
	Long: `Flightdash explores per-timestep reconstruction losses of a flight
anomaly detector. A shared cursor and time/altitude filters drive four linked
views: the flight path, the loss series, the top contributing features and
the feature loss heatmap.

Run without a subcommand to open the interactive dashboard.`,
	SilenceUsage: true,
	RunE:         runDash,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/flightdash/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	cmdconfig.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FLIGHTDASH")
	// e.g., FLIGHTDASH_DATA_SOURCE for data.source
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig reads and validates the merged configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg. When no log directory is
// configured, logs go to fallbackDir; an empty fallbackDir means stderr.
func newLogger(cfg *config.Config, fallbackDir string) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	dir := cfg.Logging.LogDir()
	if dir == "" {
		dir = fallbackDir
	}
	return logging.NewLogger(dir, cfg.Logging.Level)
}

// defaultLogDir is where interactive commands log when logging.dir is unset,
// keeping JSON lines off the terminal.
func defaultLogDir() string {
	return filepath.Join(config.ConfigDir(), "logs")
}

// newSession builds a dashboard session over the configured source.
func newSession(cfg *config.Config, logger *logging.Logger) (*dashboard.Session, error) {
	src, err := source.New(cfg.Data.SourceOptions())
	if err != nil {
		return nil, err
	}
	return dashboard.NewSession(src, dashboard.Config{
		Options: cfg.Views.Options(),
		Timeout: cfg.Data.Timeout(),
		Logger:  logger,
	}), nil
}

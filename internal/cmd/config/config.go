// Package config provides CLI commands for managing flightdash configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/flightdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify flightdash configuration",
	Long: `View or modify flightdash configuration.

Without arguments, displays the effective configuration.
Use subcommands to validate, modify, or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	RunE:  runConfigValidate,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  flightdash config set data.source file
  flightdash config set data.dir ~/flights/run1
  flightdash config set views.percentile 0.99

Valid keys:
  data.source            - Data source: mock, file, http
  data.dir               - Directory read by the file source
  data.url               - Base URL of the http source
  data.seed              - Mock source seed
  data.timeout_seconds   - Per-fetch timeout (0 = none)
  views.top_n            - Features ranked before "other"
  views.percentile       - Loss outlier percentile in [0, 1]
  views.heatmap_columns  - Maximum heatmap width
  views.maneuver_radius  - Turn smoothing half width
  tui.theme              - Theme name or YAML theme file
  tui.show_help          - Show the key binding footer (true/false)
  tui.heatmap_rows       - Heatmap rows drawn in the terminal
  server.addr            - HTTP listen address
  server.max_sessions    - Concurrent API sessions (0 = unlimited)
  logging.enabled        - Enable logging (true/false)
  logging.level          - debug, info, warn, error
  logging.dir            - Log directory (empty = stderr)
  watch.enabled          - Reload file sources on change (true/false)
  watch.debounce_ms      - Quiet period before a reload`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/flightdash/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(themeCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// keyTypes lists the settable keys and how their values parse.
var keyTypes = map[string]string{
	"data.source":           "string",
	"data.dir":              "string",
	"data.url":              "string",
	"data.seed":             "int",
	"data.timeout_seconds":  "int",
	"views.top_n":           "int",
	"views.percentile":      "float",
	"views.heatmap_columns": "int",
	"views.maneuver_radius": "int",
	"tui.theme":             "string",
	"tui.show_help":         "bool",
	"tui.heatmap_rows":      "int",
	"server.addr":           "string",
	"server.max_sessions":   "int",
	"logging.enabled":       "bool",
	"logging.level":         "string",
	"logging.dir":           "string",
	"watch.enabled":         "bool",
	"watch.debounce_ms":     "int",
}

// ValidKeys returns the settable configuration keys in sorted order.
func ValidKeys() []string {
	keys := make([]string, 0, len(keyTypes))
	for k := range keyTypes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// parseValue converts a CLI string into the key's typed value.
func parseValue(key, value string) (any, error) {
	keyType, ok := keyTypes[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'flightdash config set --help' to see valid keys", key)
	}

	switch keyType {
	case "bool":
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case "int":
		v, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return v, nil
	case "float":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected number", key)
		}
		return v, nil
	}
	return value, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if _, err := appconfig.Load(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value, err := parseValue(key, args[1])
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, value)
	if _, err := appconfig.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("rejected %s = %v:\n%w", key, value, err)
	}

	// Ensure config directory exists
	configDir := appconfig.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := appconfig.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, value)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// defaultConfigContent is the commented template written by config init.
const defaultConfigContent = `# flightdash configuration

# Where raw series come from
data:
  # mock, file, or http
  source: mock
  # Directory holding trajectory/losses/feature-loss-matrix/features files (file source)
  dir: ""
  # Base URL serving /api/* endpoints (http source)
  url: ""
  # Seed for the deterministic mock source
  seed: 1
  # Per-fetch timeout in seconds (0 = no limit)
  timeout_seconds: 10

# Derived view tuning
views:
  top_n: 10
  percentile: 0.95
  heatmap_columns: 60
  maneuver_radius: 3

# Terminal dashboard
tui:
  # default, high-contrast, mono, or a path to a YAML theme file
  theme: default
  show_help: true
  heatmap_rows: 12

# HTTP API
server:
  addr: 127.0.0.1:8080
  # Concurrent client sessions; 0 means unlimited
  max_sessions: 64

logging:
  enabled: true
  # debug, info, warn, error
  level: info
  # Empty logs to stderr (the dashboard logs to the config directory instead)
  dir: ""

# Reload file sources when their files change
watch:
  enabled: true
  debounce_ms: 200
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'flightdash config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: FLIGHTDASH_* (e.g., FLIGHTDASH_DATA_SOURCE)")
	return nil
}

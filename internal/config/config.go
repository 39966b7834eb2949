package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/flightdash/internal/source"
	"github.com/Iron-Ham/flightdash/internal/view"
)

// Config represents the complete flightdash configuration
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Views   ViewsConfig   `mapstructure:"views"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// DataConfig selects where raw series come from
type DataConfig struct {
	// Source is the data source kind
	// Options: "mock", "file", "http"
	Source string `mapstructure:"source"`
	// Dir is the directory read by the file source
	Dir string `mapstructure:"dir"`
	// URL is the base URL of the http source, e.g. "http://localhost:8080"
	URL string `mapstructure:"url"`
	// Seed makes the mock source deterministic (default: 1)
	Seed int64 `mapstructure:"seed"`
	// TimeoutSeconds bounds each fetch (0 = no limit)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ViewsConfig tunes the derived views
type ViewsConfig struct {
	// TopN is how many features the top-features pane ranks before "other" (default: 10)
	TopN int `mapstructure:"top_n"`
	// Percentile is the loss outlier threshold, in [0, 1] (default: 0.95)
	Percentile float64 `mapstructure:"percentile"`
	// HeatmapColumns caps the heatmap's downsampled width (default: 60)
	HeatmapColumns int `mapstructure:"heatmap_columns"`
	// ManeuverRadius is the rolling-mean half width for maneuver scores (default: 3)
	ManeuverRadius int `mapstructure:"maneuver_radius"`
}

// TUIConfig controls the terminal dashboard
type TUIConfig struct {
	// Theme is a built-in theme name or a path to a YAML theme file
	// Options: "default", "high-contrast", "mono", or "/path/to/theme.yaml"
	Theme string `mapstructure:"theme"`
	// ShowHelp shows the key binding footer (default: true)
	ShowHelp bool `mapstructure:"show_help"`
	// HeatmapRows limits how many features the heatmap pane draws (default: 12)
	HeatmapRows int `mapstructure:"heatmap_rows"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	// Addr is the listen address (default: "127.0.0.1:8080")
	Addr string `mapstructure:"addr"`
	// MaxSessions caps concurrent client sessions; 0 means unlimited (default: 64)
	MaxSessions int `mapstructure:"max_sessions"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is active (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the log directory; empty logs to stderr
	Dir string `mapstructure:"dir"`
}

// WatchConfig controls reloading when file source data changes
type WatchConfig struct {
	// Enabled watches data.dir when the file source is used (default: true)
	Enabled bool `mapstructure:"enabled"`
	// DebounceMs is the quiet period before a reload (default: 200)
	DebounceMs int `mapstructure:"debounce_ms"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	defaults := view.DefaultOptions()
	return &Config{
		Data: DataConfig{
			Source:         string(source.KindMock),
			Dir:            "",
			URL:            "",
			Seed:           1,
			TimeoutSeconds: 10,
		},
		Views: ViewsConfig{
			TopN:           defaults.TopN,
			Percentile:     defaults.Percentile,
			HeatmapColumns: defaults.HeatmapColumns,
			ManeuverRadius: defaults.ManeuverRadius,
		},
		TUI: TUIConfig{
			Theme:       "default",
			ShowHelp:    true,
			HeatmapRows: 12,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			MaxSessions: 64,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "", // Empty means stderr
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 200,
		},
	}
}

// Timeout returns the per-fetch timeout as a Duration
func (c *DataConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SourceOptions converts the data section into source options
func (c *DataConfig) SourceOptions() source.Options {
	return source.Options{
		Kind:    source.Kind(c.Source),
		Seed:    c.Seed,
		Dir:     expandHome(c.Dir),
		URL:     c.URL,
		Timeout: c.Timeout(),
	}
}

// Options converts the views section into adapter options
func (c *ViewsConfig) Options() view.Options {
	return view.Options{
		TopN:           c.TopN,
		Percentile:     c.Percentile,
		HeatmapColumns: c.HeatmapColumns,
		ManeuverRadius: c.ManeuverRadius,
	}
}

// Debounce returns the watch quiet period as a Duration
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ShouldWatch reports whether a file source directory should be watched
func (c *Config) ShouldWatch() bool {
	return c.Watch.Enabled && c.Data.Source == string(source.KindFile) && c.Data.Dir != ""
}

// LogDir returns the resolved log directory, or "" for stderr
func (c *LoggingConfig) LogDir() string {
	return expandHome(c.Dir)
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Data defaults
	viper.SetDefault("data.source", defaults.Data.Source)
	viper.SetDefault("data.dir", defaults.Data.Dir)
	viper.SetDefault("data.url", defaults.Data.URL)
	viper.SetDefault("data.seed", defaults.Data.Seed)
	viper.SetDefault("data.timeout_seconds", defaults.Data.TimeoutSeconds)

	// Views defaults
	viper.SetDefault("views.top_n", defaults.Views.TopN)
	viper.SetDefault("views.percentile", defaults.Views.Percentile)
	viper.SetDefault("views.heatmap_columns", defaults.Views.HeatmapColumns)
	viper.SetDefault("views.maneuver_radius", defaults.Views.ManeuverRadius)

	// TUI defaults
	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.show_help", defaults.TUI.ShowHelp)
	viper.SetDefault("tui.heatmap_rows", defaults.TUI.HeatmapRows)

	// Server defaults
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.max_sessions", defaults.Server.MaxSessions)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Watch defaults
	viper.SetDefault("watch.enabled", defaults.Watch.Enabled)
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flightdash")
	}
	// Fall back to ~/.config/flightdash
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flightdash"
	}
	return filepath.Join(home, ".config", "flightdash")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// expandHome resolves a leading "~" to the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// BuiltinThemes returns the names of the themes compiled into the TUI
func BuiltinThemes() []string {
	return []string{"default", "high-contrast", "mono"}
}

package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Iron-Ham/flightdash/internal/source"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "views.top_n")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateData()...)
	errors = append(errors, c.validateViews()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateWatch()...)

	return errors
}

// validateData validates the DataConfig
func (c *Config) validateData() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(source.ValidKinds(), c.Data.Source) {
		errors = append(errors, ValidationError{
			Field:   "data.source",
			Value:   c.Data.Source,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(source.ValidKinds(), ", ")),
		})
	}

	switch source.Kind(c.Data.Source) {
	case source.KindFile:
		if c.Data.Dir == "" {
			errors = append(errors, ValidationError{
				Field:   "data.dir",
				Value:   c.Data.Dir,
				Message: "is required when data.source is \"file\"",
			})
		}
	case source.KindHTTP:
		u, err := url.Parse(c.Data.URL)
		if c.Data.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "data.url",
				Value:   c.Data.URL,
				Message: "must be an absolute http(s) URL when data.source is \"http\"",
			})
		}
	}

	if c.Data.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "data.timeout_seconds",
			Value:   c.Data.TimeoutSeconds,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateViews validates the ViewsConfig
func (c *Config) validateViews() []ValidationError {
	var errors []ValidationError

	if c.Views.TopN < 1 {
		errors = append(errors, ValidationError{
			Field:   "views.top_n",
			Value:   c.Views.TopN,
			Message: "must be at least 1",
		})
	}

	if c.Views.Percentile < 0 || c.Views.Percentile > 1 {
		errors = append(errors, ValidationError{
			Field:   "views.percentile",
			Value:   c.Views.Percentile,
			Message: "must be between 0 and 1",
		})
	}

	// Wider heatmaps do not fit any terminal and bloat HTTP responses
	const maxHeatmapColumns = 1000
	if c.Views.HeatmapColumns < 1 || c.Views.HeatmapColumns > maxHeatmapColumns {
		errors = append(errors, ValidationError{
			Field:   "views.heatmap_columns",
			Value:   c.Views.HeatmapColumns,
			Message: fmt.Sprintf("must be between 1 and %d", maxHeatmapColumns),
		})
	}

	if c.Views.ManeuverRadius < 0 {
		errors = append(errors, ValidationError{
			Field:   "views.maneuver_radius",
			Value:   c.Views.ManeuverRadius,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	theme := c.TUI.Theme
	if theme != "" && !slices.Contains(BuiltinThemes(), theme) {
		ext := strings.ToLower(filepath.Ext(theme))
		if ext != ".yaml" && ext != ".yml" {
			errors = append(errors, ValidationError{
				Field:   "tui.theme",
				Value:   theme,
				Message: fmt.Sprintf("must be one of: %s, or a .yaml theme file", strings.Join(BuiltinThemes(), ", ")),
			})
		}
	}

	if c.TUI.HeatmapRows < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.heatmap_rows",
			Value:   c.TUI.HeatmapRows,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if _, port, err := net.SplitHostPort(c.Server.Addr); err != nil || port == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must be host:port",
		})
	}

	if c.Server.MaxSessions < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.max_sessions",
			Value:   c.Server.MaxSessions,
			Message: "must be non-negative (0 for unlimited)",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if strings.ContainsRune(c.Logging.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	const maxDebounceMs = 60000
	if c.Watch.DebounceMs < 0 || c.Watch.DebounceMs > maxDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: fmt.Sprintf("must be between 0 and %d", maxDebounceMs),
		})
	}

	return errors
}

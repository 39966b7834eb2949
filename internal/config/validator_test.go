package config

import (
	"fmt"
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got errors: %v", errs)
	}
}

// hasError reports whether errs contains a failure for field.
func hasError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate_Data(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"unknown source", func(c *Config) { c.Data.Source = "kafka" }, "data.source", true},
		{"empty source", func(c *Config) { c.Data.Source = "" }, "data.source", true},
		{"file without dir", func(c *Config) { c.Data.Source = "file" }, "data.dir", true},
		{"file with dir", func(c *Config) { c.Data.Source = "file"; c.Data.Dir = "/data" }, "data.dir", false},
		{"http without url", func(c *Config) { c.Data.Source = "http" }, "data.url", true},
		{"http with relative url", func(c *Config) { c.Data.Source = "http"; c.Data.URL = "localhost:8080" }, "data.url", true},
		{"http with ftp url", func(c *Config) { c.Data.Source = "http"; c.Data.URL = "ftp://host" }, "data.url", true},
		{"http with url", func(c *Config) { c.Data.Source = "http"; c.Data.URL = "http://localhost:8080" }, "data.url", false},
		{"mock ignores url", func(c *Config) { c.Data.URL = "not a url" }, "data.url", false},
		{"negative timeout", func(c *Config) { c.Data.TimeoutSeconds = -1 }, "data.timeout_seconds", true},
		{"zero timeout", func(c *Config) { c.Data.TimeoutSeconds = 0 }, "data.timeout_seconds", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if got := hasError(cfg.Validate(), tt.field); got != tt.wantErr {
				t.Errorf("error for %s = %v, want %v", tt.field, got, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_Views(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"zero top_n", func(c *Config) { c.Views.TopN = 0 }, "views.top_n", true},
		{"one top_n", func(c *Config) { c.Views.TopN = 1 }, "views.top_n", false},
		{"negative percentile", func(c *Config) { c.Views.Percentile = -0.1 }, "views.percentile", true},
		{"percentile above one", func(c *Config) { c.Views.Percentile = 95 }, "views.percentile", true},
		{"percentile zero", func(c *Config) { c.Views.Percentile = 0 }, "views.percentile", false},
		{"percentile one", func(c *Config) { c.Views.Percentile = 1 }, "views.percentile", false},
		{"zero heatmap columns", func(c *Config) { c.Views.HeatmapColumns = 0 }, "views.heatmap_columns", true},
		{"excessive heatmap columns", func(c *Config) { c.Views.HeatmapColumns = 5000 }, "views.heatmap_columns", true},
		{"negative maneuver radius", func(c *Config) { c.Views.ManeuverRadius = -1 }, "views.maneuver_radius", true},
		{"zero maneuver radius", func(c *Config) { c.Views.ManeuverRadius = 0 }, "views.maneuver_radius", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if got := hasError(cfg.Validate(), tt.field); got != tt.wantErr {
				t.Errorf("error for %s = %v, want %v", tt.field, got, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_TUI(t *testing.T) {
	t.Run("builtin themes", func(t *testing.T) {
		for _, theme := range BuiltinThemes() {
			cfg := Default()
			cfg.TUI.Theme = theme
			if hasError(cfg.Validate(), "tui.theme") {
				t.Errorf("theme %q should be valid", theme)
			}
		}
	})

	t.Run("yaml theme file", func(t *testing.T) {
		for _, theme := range []string{"/home/me/dark.yaml", "themes/light.YML"} {
			cfg := Default()
			cfg.TUI.Theme = theme
			if hasError(cfg.Validate(), "tui.theme") {
				t.Errorf("theme %q should be valid", theme)
			}
		}
	})

	t.Run("unknown theme", func(t *testing.T) {
		cfg := Default()
		cfg.TUI.Theme = "solarized"
		if !hasError(cfg.Validate(), "tui.theme") {
			t.Error("expected error for unknown theme")
		}
	})

	t.Run("negative heatmap rows", func(t *testing.T) {
		cfg := Default()
		cfg.TUI.HeatmapRows = -2
		if !hasError(cfg.Validate(), "tui.heatmap_rows") {
			t.Error("expected error for negative heatmap_rows")
		}
	})
}

func TestConfig_Validate_Server(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"127.0.0.1:8080", false},
		{":9000", false},
		{"localhost:0", false},
		{"localhost", true},
		{"", true},
		{"127.0.0.1:", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			cfg := Default()
			cfg.Server.Addr = tt.addr
			if got := hasError(cfg.Validate(), "server.addr"); got != tt.wantErr {
				t.Errorf("error for %q = %v, want %v", tt.addr, got, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_ServerMaxSessions(t *testing.T) {
	tests := []struct {
		max     int
		wantErr bool
	}{
		{64, false},
		{1, false},
		{0, false},
		{-1, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.max), func(t *testing.T) {
			cfg := Default()
			cfg.Server.MaxSessions = tt.max
			if got := hasError(cfg.Validate(), "server.max_sessions"); got != tt.wantErr {
				t.Errorf("error for max_sessions %d = %v, want %v", tt.max, got, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	t.Run("valid levels", func(t *testing.T) {
		for _, level := range ValidLogLevels() {
			cfg := Default()
			cfg.Logging.Level = level
			if hasError(cfg.Validate(), "logging.level") {
				t.Errorf("level %q should be valid", level)
			}
		}
	})

	t.Run("empty level uses default", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = ""
		if hasError(cfg.Validate(), "logging.level") {
			t.Error("empty level should be valid")
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "verbose"
		if !hasError(cfg.Validate(), "logging.level") {
			t.Error("expected error for invalid level")
		}
	})

	t.Run("null byte in dir", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Dir = "/tmp/\x00logs"
		if !hasError(cfg.Validate(), "logging.dir") {
			t.Error("expected error for null byte in dir")
		}
	})
}

func TestConfig_Validate_Watch(t *testing.T) {
	tests := []struct {
		ms      int
		wantErr bool
	}{
		{0, false},
		{200, false},
		{60000, false},
		{-1, true},
		{60001, true},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Watch.DebounceMs = tt.ms
		if got := hasError(cfg.Validate(), "watch.debounce_ms"); got != tt.wantErr {
			t.Errorf("error for debounce %d = %v, want %v", tt.ms, got, tt.wantErr)
		}
	}
}

func TestValidLogLevels(t *testing.T) {
	levels := ValidLogLevels()
	expected := []string{"debug", "info", "warn", "error"}

	if len(levels) != len(expected) {
		t.Fatalf("ValidLogLevels() returned %d levels, want %d", len(levels), len(expected))
	}
	for i, level := range expected {
		if levels[i] != level {
			t.Errorf("ValidLogLevels()[%d] = %q, want %q", i, levels[i], level)
		}
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Views.TopN = 0
	cfg.Views.Percentile = 2
	cfg.Logging.Level = "loud"

	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Errorf("Validate() returned %d errors, want 3: %v", len(errs), errs)
	}
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/flightdash/internal/config"
)

// withTempConfigHome points the config directory at a temp dir and resets
// viper to defaults for the duration of the test.
func withTempConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	original := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", dir)
	viper.Reset()
	appconfig.SetDefaults()
	t.Cleanup(func() {
		_ = os.Setenv("XDG_CONFIG_HOME", original)
		viper.Reset()
	})
	return dir
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    bool
	}{
		{"data.source", "file", "file", false},
		{"data.seed", "42", 42, false},
		{"data.seed", "forty", nil, true},
		{"views.percentile", "0.99", 0.99, false},
		{"views.percentile", "high", nil, true},
		{"tui.show_help", "false", false, false},
		{"tui.show_help", "no", nil, true},
		{"completion.default_action", "prompt", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := parseValue(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestValidKeys_Sorted(t *testing.T) {
	keys := ValidKeys()
	if len(keys) != len(keyTypes) {
		t.Fatalf("ValidKeys() returned %d keys, want %d", len(keys), len(keyTypes))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Errorf("keys not sorted: %q before %q", keys[i-1], keys[i])
		}
	}
}

func TestRunConfigSet(t *testing.T) {
	dir := withTempConfigHome(t)

	var buf bytes.Buffer
	configSetCmd.SetOut(&buf)
	defer configSetCmd.SetOut(nil)

	if err := runConfigSet(configSetCmd, []string{"views.top_n", "5"}); err != nil {
		t.Fatalf("runConfigSet() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "flightdash", "config.yaml"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "top_n: 5") {
		t.Errorf("config file missing top_n: %s", data)
	}
}

func TestRunConfigSet_RejectsInvalid(t *testing.T) {
	withTempConfigHome(t)

	err := runConfigSet(configSetCmd, []string{"views.percentile", "1.5"})
	if err == nil {
		t.Fatal("expected percentile 1.5 to be rejected")
	}
	if got := viper.GetFloat64("views.percentile"); got != 0.95 {
		t.Errorf("rejected value should be reverted, got %v", got)
	}
}

func TestRunConfigValidate(t *testing.T) {
	withTempConfigHome(t)

	var buf bytes.Buffer
	configValidateCmd.SetOut(&buf)
	defer configValidateCmd.SetOut(nil)

	if err := runConfigValidate(configValidateCmd, nil); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if !strings.Contains(buf.String(), "valid") {
		t.Errorf("output = %q", buf.String())
	}

	viper.Set("data.source", "file")
	err := runConfigValidate(configValidateCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "data.dir") {
		t.Errorf("expected data.dir error, got %v", err)
	}
}

func TestRunConfigInit(t *testing.T) {
	dir := withTempConfigHome(t)

	var buf bytes.Buffer
	configInitCmd.SetOut(&buf)
	defer configInitCmd.SetOut(nil)

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}
	path := filepath.Join(dir, "flightdash", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// The template must load and validate
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if _, err := appconfig.Load(); err != nil {
		t.Errorf("template does not validate: %v", err)
	}

	if err := runConfigInit(configInitCmd, nil); err == nil {
		t.Error("second init should refuse to overwrite")
	}
}

func TestRunConfigShow(t *testing.T) {
	withTempConfigHome(t)

	var buf bytes.Buffer
	configShowCmd.SetOut(&buf)
	defer configShowCmd.SetOut(nil)

	if err := runConfigShow(configShowCmd, nil); err != nil {
		t.Fatalf("runConfigShow() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"using defaults", "source: mock", "percentile: 0.95"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/flightdash/internal/tui"
	"github.com/Iron-Ham/flightdash/internal/tui/styles"
	"github.com/Iron-Ham/flightdash/internal/watch"
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the interactive dashboard",
	Long: `Open the four-pane terminal dashboard over the configured data source.

When the source is a directory of series files and watching is enabled,
the dashboard reloads whenever a series file changes.`,
	RunE: runDash,
}

func init() {
	rootCmd.AddCommand(dashCmd)
}

func runDash(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, defaultLogDir())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Close() }()

	palette, err := styles.ResolvePalette(cfg.TUI.Theme)
	if err != nil {
		return fmt.Errorf("failed to load theme: %w", err)
	}

	session, err := newSession(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app := tui.New(ctx, session, tui.Options{
		Styles:      styles.New(palette),
		ShowHelp:    cfg.TUI.ShowHelp,
		HeatmapRows: cfg.TUI.HeatmapRows,
	})

	if cfg.ShouldWatch() {
		w, err := watch.New(cfg.Data.SourceOptions().Dir, cfg.Watch.Debounce(), logger)
		if err != nil {
			logger.Warn("file watching disabled", "error", err.Error())
		} else {
			app.WithWatcher(w)
		}
	}

	logger.Info("dashboard starting", "source", cfg.Data.Source)
	return app.Run()
}

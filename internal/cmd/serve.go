package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/flightdash/internal/server"
	"github.com/Iron-Ham/flightdash/internal/source"
	"github.com/Iron-Ham/flightdash/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the series and derived views over HTTP",
	Long: `Serve the raw series endpoints (/api/trajectory, /api/losses,
/api/feature-loss-matrix, /api/features), stateless derived views
(/api/views) and per-client dashboard sessions (/api/sessions).

Another flightdash can consume this server with data.source set to http.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, "")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Close() }()

	src, err := source.New(cfg.Data.SourceOptions())
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		Source:      src,
		Options:     cfg.Views.Options(),
		Timeout:     cfg.Data.Timeout(),
		Logger:      logger,
		MaxSessions: cfg.Server.MaxSessions,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Load(ctx); err != nil {
		logger.Warn("initial load incomplete", "error", err.Error())
	}

	if cfg.ShouldWatch() {
		w, err := watch.New(cfg.Data.SourceOptions().Dir, cfg.Watch.Debounce(), logger)
		if err != nil {
			logger.Warn("file watching disabled", "error", err.Error())
		} else {
			watch.RefreshOnChange(ctx, w, srv)
			w.Start()
			defer w.Stop()
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving flightdash on http://%s\n", cfg.Server.Addr)
	return srv.Start(ctx)
}

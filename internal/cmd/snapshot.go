package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/flightdash/internal/dashboard"
	"github.com/Iron-Ham/flightdash/internal/series"
	"github.com/Iron-Ham/flightdash/internal/view"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the derived views once and exit",
	Long: `Load every series, apply the given cursor and filters, and print the
four derived views.

Examples:
  # Views at the default cursor, as JSON
  flightdash snapshot

  # Restrict to t in [50,100] and altitude in [9000,11000], cursor at 80
  flightdash snapshot --time 50,100 --alt 9000:11000 --cursor 80

  # Aggregate mode with a human-readable summary
  flightdash snapshot --cursor none --format text`,
	RunE: runSnapshot,
}

var (
	snapshotCursor string
	snapshotTime   string
	snapshotAlt    string
	snapshotFormat string
)

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapshotCursor, "cursor", "", `cursor time step, or "none" for aggregate mode`)
	snapshotCmd.Flags().StringVar(&snapshotTime, "time", "", "time filter as min,max")
	snapshotCmd.Flags().StringVar(&snapshotAlt, "alt", "", "altitude filter as min,max")
	snapshotCmd.Flags().StringVar(&snapshotFormat, "format", "json", "output format (json/text)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(snapshotFormat)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format %q: must be json or text", snapshotFormat)
	}
	query, err := dashboard.ParseQuery(snapshotCursor, snapshotTime, snapshotAlt)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, "")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Close() }()

	session, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Per-series failures surface as failed views, not as a command error.
	if err := session.Load(ctx); err != nil {
		logger.Warn("load incomplete", "error", err.Error())
	}

	set := session.ViewsFor(query)
	out := cmd.OutOrStdout()
	if format == "text" {
		writeViewSummary(out, set)
		return nil
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode views: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// writeViewSummary prints one block per view.
func writeViewSummary(w io.Writer, set view.Set) {
	snap := set.Snapshot
	cursorText := "none (aggregate)"
	if snap.Cursor != nil {
		cursorText = fmt.Sprintf("t=%d", *snap.Cursor)
	}
	fmt.Fprintf(w, "cursor:   %s\n", cursorText)
	fmt.Fprintf(w, "time:     %s\n", rangeText(snap.TimeFilter, snap.TimeDomain))
	fmt.Fprintf(w, "altitude: %s\n", rangeText(snap.AltitudeFilter, snap.AltDomain))

	tv := set.Trajectory
	fmt.Fprintf(w, "\ntrajectory [%s]%s\n", tv.Status, errSuffix(tv.Error))
	if tv.Status == view.StatusReady {
		fmt.Fprintf(w, "  points %d/%d, track %.1f km\n", len(tv.Points), tv.Total, tv.TrackMeters/1000)
	}

	lv := set.Loss
	fmt.Fprintf(w, "\nloss [%s]%s\n", lv.Status, errSuffix(lv.Error))
	if lv.Status == view.StatusReady {
		fmt.Fprintf(w, "  points %d/%d, threshold %.4f, outliers %d\n",
			len(lv.Points), lv.Total, lv.Threshold, len(lv.Outliers))
		if lv.Selected != nil {
			fmt.Fprintf(w, "  selected t=%d loss %.4f\n", lv.Selected.T, lv.Selected.Value)
		}
	}

	fv := set.TopFeatures
	fmt.Fprintf(w, "\ntop features [%s, %s]%s\n", fv.Status, fv.Mode, errSuffix(fv.Error))
	for i, s := range fv.Top {
		name := s.Feature
		if s.Group != "" {
			name = s.Group + "/" + s.Feature
		}
		fmt.Fprintf(w, "  %2d. %-24s %.4f\n", i+1, name, s.Value)
	}
	if fv.OtherCount > 0 {
		fmt.Fprintf(w, "      %-24s %.4f\n", fmt.Sprintf("other (%d)", fv.OtherCount), fv.Other)
	}

	hv := set.Heatmap
	fmt.Fprintf(w, "\nheatmap [%s]%s\n", hv.Status, errSuffix(hv.Error))
	if hv.Status == view.StatusReady {
		fmt.Fprintf(w, "  %d features x %d columns, max %.4f\n", len(hv.Features), len(hv.Columns), hv.Max)
	}
}

func rangeText(filter, domain *series.Range) string {
	switch {
	case filter != nil:
		return filter.String()
	case domain != nil:
		return domain.String() + " (unfiltered)"
	default:
		return "unknown"
	}
}

func errSuffix(msg string) string {
	if msg == "" {
		return ""
	}
	return ": " + msg
}

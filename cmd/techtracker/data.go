package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/stats"
	"github.com/nhle/techtracker/internal/theme"
	"github.com/nhle/techtracker/internal/tracker"
	"github.com/nhle/techtracker/internal/transfer"
)

type statsOutput struct {
	stats.Report
	Deadlines map[deadline.Urgency]int `json:"deadlines"`
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning progress",
		Args:  cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			items := e.tracker.Snapshot()
			report := stats.Compute(items)
			due := stats.Deadlines(items, today())
			out := cmd.OutOrStdout()

			if asJSON {
				return encodeJSON(out, statsOutput{Report: report, Deadlines: due})
			}

			fmt.Fprintf(out, "Progress    %s %d%%\n", theme.ProgressBar(report.Percent, 30), report.Percent)
			fmt.Fprintf(out, "Total       %d\n", report.Total)
			fmt.Fprintf(out, "Completed   %d\n", report.Completed)
			fmt.Fprintf(out, "In progress %d\n", report.InProgress)
			fmt.Fprintf(out, "Not started %d\n", report.NotStarted)

			if len(report.Categories) > 0 {
				fmt.Fprintln(out, "\nCategories:")
				for _, c := range report.Categories {
					fmt.Fprintf(out, "  %-10s %d/%d (%d%%)\n", c.Category, c.Completed, c.Total, c.Percent)
				}
			}

			var urgent []string
			for _, u := range []deadline.Urgency{deadline.UrgencyOverdue, deadline.UrgencyToday, deadline.UrgencyUrgent} {
				if n := due[u]; n > 0 {
					urgent = append(urgent, fmt.Sprintf("%s %d", u, n))
				}
			}
			if len(urgent) > 0 {
				fmt.Fprintf(out, "\nDeadlines:  %s\n", strings.Join(urgent, ", "))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write a backup file",
		Long: `Write every technology to a backup file. When path is a directory or
omitted, the file is named tech-tracker-backup-<date>.<format>. Use "-"
to write to standard output. The format defaults to the exportFormat
setting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			f := e.current.ExportFormat
			if format != "" {
				f = model.ExportFormat(strings.ToLower(format))
			}
			snap := e.tracker.Export()

			if len(args) == 1 && args[0] == "-" {
				return transfer.Write(cmd.OutOrStdout(), f, snap)
			}

			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			written, err := transfer.WriteFile(path, f, snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d technologies to %s\n", len(snap.Technologies), written)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or csv")
	return cmd
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace all technologies with a JSON backup",
		Long: `Replace the whole collection with the technologies in a JSON backup.
Invalid records are skipped and listed; when nothing valid remains the
collection is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			im := transfer.NewImporter(time.Now)
			res, err := im.ImportFile(cmd.Context(), e.tracker, args[0])
			if res == nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range res.Rejected {
				fmt.Fprintf(out, "skipped record %d (id %d): %s\n", r.Index, r.ID, r.Reason)
			}
			if errors.Is(err, transfer.ErrNothingImported) {
				return err
			}
			fmt.Fprintf(out, "Imported %d technologies\n", len(res.Technologies))
			return err
		}),
	}
}

func newClearCmd(flags *rootFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all technologies and reset settings",
		Args:  cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			if !yes {
				return errors.New("clear deletes everything; pass --yes to confirm")
			}
			if err := e.tracker.Clear(cmd.Context()); err != nil {
				return err
			}
			if _, err := e.settings.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("technologies deleted, settings kept: %w", err)
			}
			if err := e.store.Delete(cmd.Context(), tracker.DefaultKey+tracker.QuarantineSuffix); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func newStorageCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Describe the database file",
		Long: `Print the database path, its schema version and every stored key
with its size and last write. A key ending in .quarantine holds records
that could not be loaded.`,
		Args: cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			ctx := cmd.Context()
			version, err := e.store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			keys, err := e.store.Keys(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database  %s\n", e.cfg.Data.Path)
			fmt.Fprintf(out, "Schema    v%d\n", version)
			for _, k := range keys {
				b, err := e.store.Get(ctx, k)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-28s %7d bytes  %s\n", k, len(b.Data), b.UpdatedAt.Local().Format(time.DateTime))
			}
			return nil
		}),
	}
}

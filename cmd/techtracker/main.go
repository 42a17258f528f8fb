// Package main implements the techtracker CLI. Without a subcommand it
// starts the terminal UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/techtracker/internal/app"
	"github.com/nhle/techtracker/internal/logging"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/reminder"
	"github.com/nhle/techtracker/internal/settings"
	"github.com/nhle/techtracker/internal/store"
	"github.com/nhle/techtracker/internal/theme"
	"github.com/nhle/techtracker/internal/tracker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	dbPath     string
	logFile    string
	verbose    bool
}

// env holds everything a command needs, opened from the config file.
type env struct {
	cfg      *model.AppConfig
	logger   *zap.Logger
	store    *store.SQLiteStore
	settings *settings.Manager
	current  model.Settings
	tracker  *tracker.Tracker

	// discardUnsaved skips the final flush. The terminal UI asks before
	// quitting with unsaved changes, so its answer stands.
	discardUnsaved bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "techtracker",
		Short: "Track the technologies you are learning",
		Long: `techtracker records technologies you want to study, moves each one
through not started, in progress and completed, and keeps notes,
deadlines and tags alongside. Run it without a subcommand for the
interactive terminal UI.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         withEnv(flags, runTUI),
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", model.DefaultConfigPath(), "config file")
	pf.StringVar(&flags.dbPath, "db", "", "database file (overrides data.path)")
	pf.StringVar(&flags.logFile, "log-file", "", "log file (overrides log.file)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newAddCmd(flags),
		newListCmd(flags),
		newShowCmd(flags),
		newAdvanceCmd(flags),
		newStatusCmd(flags),
		newNotesCmd(flags),
		newDeadlineCmd(flags),
		newTagsCmd(flags),
		newResourcesCmd(flags),
		newRemoveCmd(flags),
		newRandomCmd(flags),
		newCompleteAllCmd(flags),
		newResetCmd(flags),
		newStatsCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newClearCmd(flags),
		newStorageCmd(flags),
		newSettingsCmd(flags),
		newConfigCmd(flags),
	)

	return root
}

// withEnv opens the environment around fn and closes it afterwards.
func withEnv(flags *rootFlags, fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), flags)
		if err != nil {
			return err
		}
		return errors.Join(fn(cmd, e, args), e.close(context.Background()))
	}
}

func openEnv(ctx context.Context, flags *rootFlags) (*env, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := model.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.Data.Path = flags.dbPath
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	level := cfg.Log.Level
	if flags.verbose {
		level = "debug"
	}

	logger, err := logging.New(level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	s, err := store.NewSQLiteStore(cfg.Data.Path, store.WithLogger(logger.Named("store")))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	mgr := settings.NewManager(s, logger.Named("settings"))
	current, err := mgr.Load(ctx)
	if err != nil {
		logger.Warn("using default settings", zap.Error(err))
	}
	theme.Apply(current.Theme)

	tr, err := tracker.New(ctx, s,
		tracker.WithLogger(logger.Named("tracker")),
		tracker.WithAutoSave(current.AutoSave),
		tracker.WithSeed(),
	)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("loading technologies: %w", err)
	}

	logger.Debug("environment ready",
		zap.String("db", cfg.Data.Path),
		zap.Int("technologies", tr.Len()),
	)

	return &env{
		cfg:      cfg,
		logger:   logger,
		store:    s,
		settings: mgr,
		current:  current,
		tracker:  tr,
	}, nil
}

// close ends the session. Changes held back by a disabled autosave are
// written here unless discardUnsaved is set.
func (e *env) close(ctx context.Context) error {
	var flushErr error
	if e.tracker.Dirty() && !e.discardUnsaved {
		flushErr = e.tracker.Flush(ctx)
	}
	_ = e.logger.Sync()
	return errors.Join(flushErr, e.store.Close())
}

func runTUI(cmd *cobra.Command, e *env, _ []string) error {
	interval := time.Duration(e.cfg.Reminder.IntervalSec) * time.Second
	poller := reminder.New(e.tracker, interval, reminder.WithLogger(e.logger.Named("reminder")))
	defer poller.Stop()
	e.discardUnsaved = true

	m := app.New(app.Config{
		Tracker:   e.tracker,
		Settings:  e.settings,
		Current:   e.current,
		Reminders: poller,
		ExportDir: ".",
		Logger:    e.logger.Named("app"),
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}

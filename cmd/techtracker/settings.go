package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/settings"
)

func newSettingsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change application settings",
		Long: `Show or change the settings stored alongside the technologies:
theme, language, notifications, autoSave and exportFormat.`,
		Args: cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			return printSettings(cmd, e.current)
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <name>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
				v, err := settings.Get(e.current, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Change one setting",
			Args:  cobra.ExactArgs(2),
			RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
				s, err := e.settings.Set(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				e.current = s
				return e.tracker.SetAutoSave(cmd.Context(), s.AutoSave)
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default settings",
			Args:  cobra.NoArgs,
			RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
				s, err := e.settings.Reset(cmd.Context())
				if err != nil {
					return err
				}
				e.current = s
				return printSettings(cmd, s)
			}),
		},
	)

	return cmd
}

func printSettings(cmd *cobra.Command, s model.Settings) error {
	for _, name := range settings.Names {
		v, err := settings.Get(s, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, v)
	}
	return nil
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags.configPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; pass --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg, err := model.LoadConfig(path)
			if err != nil {
				return err
			}
			if flags.dbPath != "" {
				cfg.Data.Path = flags.dbPath
			}
			if err := model.SaveConfig(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd, &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), flags.configPath)
		},
	})

	return cmd
}

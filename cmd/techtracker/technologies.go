package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/tracker"
)

func newAddCmd(flags *rootFlags) *cobra.Command {
	var (
		description string
		status      string
		category    string
		difficulty  string
		due         string
		tags        []string
		resources   []string
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a technology",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			in := tracker.NewTechnology{
				Title:       strings.Join(args, " "),
				Description: description,
				Status:      model.Status(status),
				Notes:       notes,
				Category:    model.Category(category),
				Difficulty:  model.Difficulty(difficulty),
				Tags:        tags,
				Resources:   resources,
			}
			// Unparsed values go through as typed so the tracker reports them.
			if s, ok := model.ParseStatus(status); ok {
				in.Status = s
			}
			if c, ok := model.ParseCategory(category); ok {
				in.Category = c
			}
			if d, ok := model.ParseDifficulty(difficulty); ok {
				in.Difficulty = d
			}
			d, err := deadline.Parse(due)
			if err != nil {
				return err
			}
			in.Deadline = d

			tech, err := e.tracker.Add(cmd.Context(), in)
			if err != nil && !tracker.IsWarning(err) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d: %s\n", tech.ID, tech.Title)
			return err
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&description, "description", "d", "", "what it is and why it matters (required)")
	f.StringVarP(&status, "status", "s", "", "initial status: not-started, in-progress or completed")
	f.StringVarP(&category, "category", "c", "", "frontend, backend, database, devops, mobile, ai-ml, tools or other")
	f.StringVar(&difficulty, "difficulty", "", "beginner, intermediate, advanced or expert")
	f.StringVar(&due, "deadline", "", "deadline as YYYY-MM-DD")
	f.StringSliceVarP(&tags, "tag", "t", nil, "tag (repeatable or comma separated)")
	f.StringArrayVarP(&resources, "resource", "r", nil, "link or book (repeatable)")
	f.StringVar(&notes, "notes", "", "initial notes")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var (
		filter   tracker.Filter
		status   string
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List technologies",
		Args:    cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			if status != "" {
				s, ok := model.ParseStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				filter.Status = s
			}
			if category != "" {
				c, ok := model.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				filter.Category = c
			}

			items := e.tracker.List(filter)
			out := cmd.OutOrStdout()
			if asJSON {
				if items == nil {
					items = []model.Technology{}
				}
				return encodeJSON(out, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No technologies found.")
				return nil
			}
			fmt.Fprintln(out, renderTable(items, today()))
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&status, "status", "s", "", "only this status")
	f.StringVarP(&category, "category", "c", "", "only this category")
	f.StringVarP(&filter.Tag, "tag", "t", "", "only technologies with this tag")
	f.StringVarP(&filter.Query, "query", "q", "", "search title, description and tags")
	f.BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one technology",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tech, err := e.tracker.Get(id)
			if err != nil {
				return err
			}
			if asJSON {
				return encodeJSON(cmd.OutOrStdout(), tech)
			}
			writeDetail(cmd.OutOrStdout(), tech, today())
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newAdvanceCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <id>...",
		Short: "Move technologies to their next status",
		Long: `Move each technology one step through the cycle
not started, in progress, completed, and back to not started.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				tech, err := e.tracker.AdvanceStatus(cmd.Context(), id)
				if err != nil && !tracker.IsWarning(err) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s: %s\n", tech.ID, tech.Title, tech.Status.Label())
				if err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status <status> <id>...",
		Short: "Set the status of several technologies at once",
		Long: `Set the status of every listed technology. Ids that do not exist
are skipped.`,
		Args: cobra.MinimumNArgs(2),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			status, ok := model.ParseStatus(args[0])
			if !ok {
				return fmt.Errorf("unknown status %q", args[0])
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			n, err := e.tracker.BulkSetStatus(cmd.Context(), ids, status)
			if err != nil && !tracker.IsWarning(err) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d technologies set to %s\n", n, status.Label())
			return err
		}),
	}
}

func newNotesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <id> [text]",
		Short: "Replace the notes of a technology",
		Long:  `Replace the notes of a technology. Without text the notes are cleared.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.tracker.SetNotes(cmd.Context(), id, strings.Join(args[1:], " "))
		}),
	}
}

func newDeadlineCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "deadline <id> <YYYY-MM-DD|none>",
		Short: "Set or clear a deadline",
		Long: `Set a deadline between today and one year ahead, or clear it
with "none".`,
		Args: cobra.ExactArgs(2),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := deadline.Parse(args[1])
			if err != nil {
				return err
			}
			if d == nil {
				return e.tracker.ClearDeadline(cmd.Context(), id)
			}
			if err := e.tracker.SetDeadline(cmd.Context(), id, *d); err != nil {
				return err
			}
			days := deadline.DaysRemaining(*d, today())
			fmt.Fprintf(cmd.OutOrStdout(), "Deadline %s (%s)\n", d, deadline.Describe(days))
			return nil
		}),
	}
}

func newTagsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <id> [tag]...",
		Short: "Replace the tags of a technology",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var tags []string
			for _, a := range args[1:] {
				tags = append(tags, strings.Split(a, ",")...)
			}
			return e.tracker.SetTags(cmd.Context(), id, tags)
		}),
	}
}

func newResourcesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resources <id> [resource]...",
		Short: "Replace the learning resources of a technology",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.tracker.SetResources(cmd.Context(), id, args[1:])
		}),
	}
}

func newRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete technologies",
		Args:    cobra.MinimumNArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := e.tracker.Remove(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func newRandomCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Suggest a technology you have not started",
		Args:  cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			tech, ok := e.tracker.PickRandomUnstarted()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing left to start.")
				return nil
			}
			writeDetail(cmd.OutOrStdout(), tech, today())
			return nil
		}),
	}
}

func newCompleteAllCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "complete-all",
		Short: "Mark every technology completed",
		Args:  cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.tracker.MarkAllCompleted(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d technologies completed\n", e.tracker.Len())
			return nil
		}),
	}
}

func newResetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Set every technology back to not started",
		Args:  cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.tracker.ResetAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d technologies reset\n", e.tracker.Len())
			return nil
		}),
	}
}

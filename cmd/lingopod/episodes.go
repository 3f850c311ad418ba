package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lingopod/internal/cache"
	"lingopod/internal/language"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := cache.NewStore(cfg.EpisodeCacheDir(), ctx.ensureLogger())

			summaries, err := store.List()
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no cached episodes")
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{
					s.EpisodeID,
					s.Title,
					language.DisplayName(s.Language),
					formatDuration(s.Duration),
					string(s.Difficulty),
					strconv.Itoa(s.Segments),
					s.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Language", "Duration", "Difficulty", "Segments", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <episode-id>",
		Short: "Show an episode's segments and translations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := cache.NewStore(cfg.EpisodeCacheDir(), ctx.ensureLogger())

			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s, %s)\n",
				rec.Title, language.DisplayName(rec.Language), formatDuration(rec.Duration), rec.Difficulty)

			rows := make([][]string, 0, len(rec.Segments))
			for _, seg := range rec.Segments {
				rows = append(rows, []string{
					strconv.Itoa(seg.ID),
					seg.TimeRange(),
					seg.Text,
					seg.Translation,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Time", "Text", "Translation"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <episode-id>",
		Short: "Delete a cached episode and its audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := cache.NewStore(cfg.EpisodeCacheDir(), ctx.ensureLogger())

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d < time.Hour {
		return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

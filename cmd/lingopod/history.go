package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lingopod/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runs, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer runs.Close()

			recent, err := runs.Recent(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(recent) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(recent))
			for _, run := range recent {
				outcome := run.Outcome
				if run.CacheHit {
					outcome += " (cache)"
				}
				detail := run.URL
				if run.Error != "" {
					detail = run.Error
				}
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.EpisodeID,
					run.Language,
					outcome,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Episode", "Lang", "Outcome", "Started", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of runs to show")
	return cmd
}

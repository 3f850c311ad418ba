package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lingopod/internal/cache"
)

func newFlashcardsCommand(ctx *commandContext) *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:     "flashcards",
		Aliases: []string{"cards"},
		Short:   "Manage saved flashcards",
	}
	cmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "default", "Flashcard owner")

	cmd.AddCommand(newFlashcardsListCommand(ctx, &userFlag))
	cmd.AddCommand(newFlashcardsAddCommand(ctx, &userFlag))
	cmd.AddCommand(newFlashcardsRemoveCommand(ctx, &userFlag))
	return cmd
}

func flashcardStore(ctx *commandContext) (*cache.FlashcardStore, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewFlashcardStore(cfg.FlashcardDir(), ctx.ensureLogger()), nil
}

func newFlashcardsListCommand(ctx *commandContext, user *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the user's flashcards",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flashcardStore(ctx)
			if err != nil {
				return err
			}
			cards, err := store.List(*user)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no flashcards saved")
				return nil
			}

			rows := make([][]string, 0, len(cards))
			for _, card := range cards {
				rows = append(rows, []string{
					card.ID,
					card.Phrase,
					card.Translation,
					card.Context,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Phrase", "Translation", "Context"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newFlashcardsAddCommand(ctx *commandContext, user *string) *cobra.Command {
	var contextFlag string

	cmd := &cobra.Command{
		Use:   "add <phrase> <translation>",
		Short: "Save a new flashcard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flashcardStore(ctx)
			if err != nil {
				return err
			}
			card, err := store.Add(*user, args[0], args[1], contextFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", card.Phrase, card.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFlag, "context", "", "Sentence the phrase appeared in")
	return cmd
}

func newFlashcardsRemoveCommand(ctx *commandContext, user *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <card-id>",
		Short: "Delete a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flashcardStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Remove(*user, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lingopod/internal/api"
	"lingopod/internal/cache"
	"lingopod/internal/history"
	"lingopod/internal/pipeline"
	"lingopod/internal/services/translate"
	"lingopod/internal/services/whisper"
	"lingopod/internal/services/ytdlp"
	"lingopod/internal/transcript"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var languageFlag string
	var titleFlag string

	cmd := &cobra.Command{
		Use:   "process <url>",
		Short: "Process one episode in the foreground",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, runs, err := buildService(ctx)
			if err != nil {
				return err
			}
			if runs != nil {
				defer runs.Close()
			}

			_, episodeID, err := svc.StartProcessing(cmd.Context(), args[0], languageFlag, titleFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "episode %s\n", episodeID)

			interactive := isTerminal(cmd.OutOrStdout())
			lastMessage := ""
			for {
				status := svc.Status()
				if interactive {
					fmt.Fprintf(cmd.OutOrStdout(), "\r%-70s", fmt.Sprintf("[%3.0f%%] %s", status.Progress, status.Message))
				} else if status.Message != lastMessage {
					fmt.Fprintf(cmd.OutOrStdout(), "[%3.0f%%] %s\n", status.Progress, status.Message)
					lastMessage = status.Message
				}
				if status.State == pipeline.StateDone || status.State == pipeline.StateError {
					if interactive {
						fmt.Fprintln(cmd.OutOrStdout())
					}
					if status.State == pipeline.StateError {
						return fmt.Errorf("processing failed: %s", status.Error)
					}
					break
				}
				time.Sleep(250 * time.Millisecond)
			}

			rec, err := svc.Episode(episodeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q processed: %d segments, difficulty %s\n",
				rec.Title, len(rec.Segments), rec.Difficulty)
			return nil
		},
	}

	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Source language (code or English name)")
	cmd.Flags().StringVarP(&titleFlag, "title", "t", "", "Episode title override")
	return cmd
}

// buildService wires an in-process API service from configuration, for CLI
// commands that do their own processing instead of talking to a daemon.
func buildService(ctx *commandContext) (*api.Service, *history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := ctx.ensureLogger()

	source, target, err := cfg.LanguagePair()
	if err != nil {
		return nil, nil, err
	}

	runs, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return nil, nil, err
	}

	store := cache.NewStore(cfg.EpisodeCacheDir(), logger)
	flashcards := cache.NewFlashcardStore(cfg.FlashcardDir(), logger)
	assembler := transcript.NewAssembler(transcript.NewSegmenter(
		cfg.Segmenter.MinWords, cfg.Segmenter.MaxWords, cfg.Segmenter.MergeOverflow))

	downloader := ytdlp.NewClient(cfg.Downloader.Binary, cfg.Paths.AudioDir, cfg.Downloader.Timeout(), logger)
	transcriber := whisper.NewClient(cfg.Whisper.Binary, cfg.Whisper.Model, logger)
	translator := translate.NewClient(cfg.Translator.BaseURL, source, target, cfg.Translator.Timeout(), logger)

	controller := pipeline.NewController(assembler, store, runs, downloader, transcriber, translator, logger)
	return api.NewService(controller, store, flashcards, runs), runs, nil
}

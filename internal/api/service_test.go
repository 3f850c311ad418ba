package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lingopod/internal/cache"
	"lingopod/internal/episode"
	"lingopod/internal/pipeline"
	"lingopod/internal/services"
	"lingopod/internal/services/translate"
	"lingopod/internal/services/ytdlp"
	"lingopod/internal/transcript"
)

type stubDownloader struct{ dir string }

func (s stubDownloader) Download(_ context.Context, _, episodeID string, report func(float64, string)) (string, error) {
	path := filepath.Join(s.dir, "episode_"+episodeID+".mp3")
	if err := os.WriteFile(path, []byte("mp3"), 0o644); err != nil {
		return "", err
	}
	if report != nil {
		report(100, "done")
	}
	return path, nil
}

func (s stubDownloader) Info(context.Context, string) (ytdlp.Info, error) {
	return ytdlp.Info{Title: "Stub Episode", Duration: 30}, nil
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(context.Context, string, string, func(float64, string)) ([]transcript.Utterance, error) {
	return []transcript.Utterance{
		{Start: 0, End: 4, Text: "Hello there everyone, welcome back."},
	}, nil
}

type stubTranslator struct{}

func (stubTranslator) Translate(_ context.Context, text string) translate.Result {
	return translate.Result{Text: "PT: " + text}
}

func newTestService(t *testing.T) (*Service, *pipeline.Controller) {
	t.Helper()
	dir := t.TempDir()
	store := cache.NewStore(filepath.Join(dir, "episodes"), nil)
	flashcards := cache.NewFlashcardStore(filepath.Join(dir, "flashcards"), nil)
	assembler := transcript.NewAssembler(transcript.NewSegmenter(5, 15, 5))
	controller := pipeline.NewController(assembler, store, nil, stubDownloader{dir: dir}, stubTranscriber{}, stubTranslator{}, nil)
	return NewService(controller, store, flashcards, nil), controller
}

func TestStartProcessingNormalizesLanguage(t *testing.T) {
	svc, controller := newTestService(t)

	jobID, episodeID, err := svc.StartProcessing(context.Background(), "https://example.com/ep", "English", "")
	if err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	if jobID == "" || !episode.ValidID(episodeID) {
		t.Fatalf("unexpected ids: job=%q episode=%q", jobID, episodeID)
	}
	controller.Wait()

	rec, err := svc.Episode(episodeID)
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if rec.Language != "en" {
		t.Fatalf("language not normalized: %q", rec.Language)
	}
}

func TestStartProcessingRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	if _, _, err := svc.StartProcessing(context.Background(), "", "en", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty url, got %v", err)
	}
	if _, _, err := svc.StartProcessing(context.Background(), "https://x", "klingon", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for bad language, got %v", err)
	}
}

func TestSetDifficulty(t *testing.T) {
	svc, controller := newTestService(t)
	_, episodeID, err := svc.StartProcessing(context.Background(), "https://example.com/ep", "en", "")
	if err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	controller.Wait()

	if err := svc.SetDifficulty(episodeID, episode.DifficultyHard); err != nil {
		t.Fatalf("SetDifficulty: %v", err)
	}
	rec, err := svc.Episode(episodeID)
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if rec.Difficulty != episode.DifficultyHard {
		t.Fatalf("difficulty not updated: %v", rec.Difficulty)
	}

	if err := svc.SetDifficulty(episodeID, episode.Difficulty("impossible")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.SetDifficulty("00000000000000ff", episode.DifficultyEasy); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestSetDifficultyRefreshesUpdatedAt(t *testing.T) {
	svc, controller := newTestService(t)
	_, episodeID, err := svc.StartProcessing(context.Background(), "https://example.com/ep", "en", "")
	if err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	controller.Wait()

	rec, err := svc.Episode(episodeID)
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	stale := time.Now().Add(-24 * time.Hour).UTC()
	rec.UpdatedAt = stale
	if err := svc.store.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := svc.SetDifficulty(episodeID, episode.DifficultyMedium); err != nil {
		t.Fatalf("SetDifficulty: %v", err)
	}
	updated, err := svc.Episode(episodeID)
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if !updated.UpdatedAt.After(stale) {
		t.Fatalf("difficulty edit did not refresh UpdatedAt: still %v", updated.UpdatedAt)
	}
}

func TestQuizBuildsOptionsFromOtherCards(t *testing.T) {
	svc, _ := newTestService(t)
	phrases := map[string]string{
		"good morning": "bom dia",
		"thank you":    "obrigado",
		"goodbye":      "adeus",
		"please":       "por favor",
		"water":        "água",
	}
	for phrase, translation := range phrases {
		if _, err := svc.AddFlashcard("alice", phrase, translation, ""); err != nil {
			t.Fatalf("AddFlashcard(%q): %v", phrase, err)
		}
	}

	questions, err := svc.Quiz("alice", 3)
	if err != nil {
		t.Fatalf("Quiz: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if len(q.Options) != 4 {
			t.Errorf("question %q: expected 4 options, got %v", q.Phrase, q.Options)
		}
		if q.Answer != phrases[q.Phrase] {
			t.Errorf("question %q: wrong answer %q", q.Phrase, q.Answer)
		}
		found := false
		seen := map[string]bool{}
		for _, option := range q.Options {
			if option == q.Answer {
				found = true
			}
			if seen[option] {
				t.Errorf("question %q: duplicate option %q", q.Phrase, option)
			}
			seen[option] = true
		}
		if !found {
			t.Errorf("question %q: answer missing from options %v", q.Phrase, q.Options)
		}
	}
}

func TestQuizWithFewCards(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.AddFlashcard("bob", "water", "água", ""); err != nil {
		t.Fatalf("AddFlashcard: %v", err)
	}
	if _, err := svc.AddFlashcard("bob", "bread", "pão", ""); err != nil {
		t.Fatalf("AddFlashcard: %v", err)
	}

	questions, err := svc.Quiz("bob", 10)
	if err != nil {
		t.Fatalf("Quiz: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if len(q.Options) != 2 {
			t.Errorf("expected 2 options with 2 cards, got %v", q.Options)
		}
	}

	empty, err := svc.Quiz("nobody", 5)
	if err != nil {
		t.Fatalf("Quiz for empty user: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no questions, got %#v", empty)
	}
}

func TestDeleteEpisodeAndList(t *testing.T) {
	svc, controller := newTestService(t)
	_, episodeID, err := svc.StartProcessing(context.Background(), "https://example.com/ep", "en", "")
	if err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	controller.Wait()

	summaries, err := svc.Episodes()
	if err != nil {
		t.Fatalf("Episodes: %v", err)
	}
	if len(summaries) != 1 || summaries[0].EpisodeID != episodeID {
		t.Fatalf("unexpected listing: %#v", summaries)
	}

	if err := svc.DeleteEpisode(episodeID); err != nil {
		t.Fatalf("DeleteEpisode: %v", err)
	}
	if _, err := svc.Episode(episodeID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestStatusAndSegmentsPassThrough(t *testing.T) {
	svc, controller := newTestService(t)
	if svc.Status().State != pipeline.StateIdle {
		t.Fatalf("fresh service must be idle: %+v", svc.Status())
	}
	_, _, err := svc.StartProcessing(context.Background(), "https://example.com/ep", "en", "")
	if err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	controller.Wait()

	if svc.Status().State != pipeline.StateDone {
		t.Fatalf("expected done, got %+v", svc.Status())
	}
	if len(svc.Segments()) == 0 {
		t.Fatal("expected segments")
	}
}

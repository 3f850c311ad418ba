// Package api exposes the engine's operations as plain data calls: start a
// job, poll status, fetch segments, manage cached episodes, and work with
// flashcards. The HTTP layer in internal/daemon is a thin shell over this
// service.
package api

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"lingopod/internal/cache"
	"lingopod/internal/episode"
	"lingopod/internal/history"
	"lingopod/internal/language"
	"lingopod/internal/pipeline"
	"lingopod/internal/services"
	"lingopod/internal/transcript"
)

// Service bundles the pipeline controller with the persistence stores.
type Service struct {
	controller *pipeline.Controller
	store      *cache.Store
	flashcards *cache.FlashcardStore
	runs       *history.Store
}

// NewService wires the API service. runs may be nil when run history is
// disabled.
func NewService(controller *pipeline.Controller, store *cache.Store, flashcards *cache.FlashcardStore, runs *history.Store) *Service {
	return &Service{
		controller: controller,
		store:      store,
		flashcards: flashcards,
		runs:       runs,
	}
}

// StartProcessing kicks off a pipeline job for the URL. The language may be
// an ISO code or an English language name; it is normalized before use.
func (s *Service) StartProcessing(ctx context.Context, url, lang, title string) (jobID, episodeID string, err error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", "", services.Wrap(services.ErrValidation, "api", "start", "url required", nil)
	}
	iso := "en"
	if strings.TrimSpace(lang) != "" {
		iso = language.ToISO2(lang)
		if iso == "" {
			return "", "", services.Wrap(services.ErrValidation, "api", "start", "unrecognized language "+lang, nil)
		}
	}

	jobID, err = s.controller.Start(ctx, url, iso, strings.TrimSpace(title))
	if err != nil {
		return "", "", err
	}
	return jobID, episode.ID(url), nil
}

// Status returns the current job status snapshot.
func (s *Service) Status() pipeline.Status {
	return s.controller.Status()
}

// Segments returns the finished job's segments.
func (s *Service) Segments() []transcript.Segment {
	return s.controller.Segments()
}

// Episodes lists cached episode summaries.
func (s *Service) Episodes() ([]episode.Summary, error) {
	return s.store.List()
}

// Episode fetches one cached episode record.
func (s *Service) Episode(id string) (*episode.Record, error) {
	return s.store.Get(id)
}

// DeleteEpisode removes a cached episode and its audio file.
func (s *Service) DeleteEpisode(id string) error {
	return s.store.Delete(id)
}

// SetDifficulty overrides an episode's derived difficulty.
func (s *Service) SetDifficulty(id string, difficulty episode.Difficulty) error {
	if !difficulty.Valid() {
		return services.Wrap(services.ErrValidation, "api", "set-difficulty", "unknown difficulty "+string(difficulty), nil)
	}
	rec, err := s.store.Get(id)
	if err != nil {
		return err
	}
	rec.Difficulty = difficulty
	rec.UpdatedAt = time.Now().UTC()
	return s.store.Put(rec)
}

// AddFlashcard saves a phrase for the user.
func (s *Service) AddFlashcard(user, phrase, translation, context string) (cache.Flashcard, error) {
	return s.flashcards.Add(user, phrase, translation, context)
}

// Flashcards lists the user's saved cards.
func (s *Service) Flashcards(user string) ([]cache.Flashcard, error) {
	return s.flashcards.List(user)
}

// RemoveFlashcard deletes one of the user's cards.
func (s *Service) RemoveFlashcard(user, cardID string) error {
	return s.flashcards.Remove(user, cardID)
}

// QuizQuestion is one multiple-choice prompt built from a flashcard. Answer
// holds the correct translation; Options contains it plus up to three
// distractors drawn from the user's other cards, shuffled.
type QuizQuestion struct {
	CardID  string   `json:"card_id"`
	Phrase  string   `json:"phrase"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Quiz builds up to size multiple-choice questions from the user's cards.
func (s *Service) Quiz(user string, size int) ([]QuizQuestion, error) {
	cards, err := s.flashcards.List(user)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	if size <= 0 || size > len(cards) {
		size = len(cards)
	}

	shuffled := make([]cache.Flashcard, len(cards))
	copy(shuffled, cards)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	questions := make([]QuizQuestion, 0, size)
	for _, card := range shuffled[:size] {
		options := []string{card.Translation}
		for _, other := range shuffled {
			if len(options) == 4 {
				break
			}
			if other.ID == card.ID || other.Translation == card.Translation {
				continue
			}
			options = append(options, other.Translation)
		}
		rand.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
		questions = append(questions, QuizQuestion{
			CardID:  card.ID,
			Phrase:  card.Phrase,
			Options: options,
			Answer:  card.Translation,
		})
	}
	return questions, nil
}

// History returns the most recent pipeline runs, newest first. Returns an
// empty slice when run history is disabled.
func (s *Service) History(ctx context.Context, limit int) ([]history.Run, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.Recent(ctx, limit)
}

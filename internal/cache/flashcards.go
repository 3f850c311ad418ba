package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lingopod/internal/logging"
	"lingopod/internal/services"
)

// Flashcard is one saved phrase with its translation and the segment text it
// was taken from.
type Flashcard struct {
	ID          string    `json:"id"`
	Phrase      string    `json:"phrase"`
	Translation string    `json:"translation"`
	Context     string    `json:"context,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FlashcardStore keeps one JSON list per user under a base directory.
type FlashcardStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFlashcardStore creates a flashcard store rooted at dir.
func NewFlashcardStore(dir string, logger *slog.Logger) *FlashcardStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FlashcardStore{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "flashcards"),
	}
}

// sanitizeUser maps an arbitrary user identifier onto a safe filename stem.
// Anything outside [a-z0-9_-] becomes an underscore; an empty result falls
// back to "default".
func sanitizeUser(user string) string {
	user = strings.ToLower(strings.TrimSpace(user))
	var b strings.Builder
	for _, r := range user {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}

func (s *FlashcardStore) userPath(user string) string {
	return filepath.Join(s.dir, sanitizeUser(user)+".json")
}

// Add appends a new card for the user. Phrases are rejected when the user
// already has a card with the same phrase, compared case-insensitively.
func (s *FlashcardStore) Add(user, phrase, translation, context string) (Flashcard, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return Flashcard{}, services.Wrap(services.ErrValidation, "flashcards", "add", "empty phrase", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := s.load(user)
	if err != nil {
		return Flashcard{}, err
	}
	for _, card := range cards {
		if strings.EqualFold(card.Phrase, phrase) {
			return Flashcard{}, services.Wrap(services.ErrValidation, "flashcards", "add", "phrase already saved: "+phrase, nil)
		}
	}

	card := Flashcard{
		ID:          uuid.NewString(),
		Phrase:      phrase,
		Translation: strings.TrimSpace(translation),
		Context:     strings.TrimSpace(context),
		CreatedAt:   time.Now().UTC(),
	}
	cards = append(cards, card)
	if err := writeJSONAtomic(s.userPath(user), cards); err != nil {
		return Flashcard{}, services.Wrap(services.ErrCache, "flashcards", "add", "persist cards", err)
	}
	s.logger.Debug("added flashcard", logging.String("user", sanitizeUser(user)), logging.String("phrase", phrase))
	return card, nil
}

// List returns all cards for the user, oldest first. A user with no saved
// cards gets an empty list, not an error.
func (s *FlashcardStore) List(user string) ([]Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(user)
}

// Remove deletes the card with the given id. Returns services.ErrNotFound if
// the user has no such card.
func (s *FlashcardStore) Remove(user, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := s.load(user)
	if err != nil {
		return err
	}
	kept := cards[:0]
	found := false
	for _, card := range cards {
		if card.ID == cardID {
			found = true
			continue
		}
		kept = append(kept, card)
	}
	if !found {
		return services.Wrap(services.ErrNotFound, "flashcards", "remove", "card "+cardID, nil)
	}
	if err := writeJSONAtomic(s.userPath(user), kept); err != nil {
		return services.Wrap(services.ErrCache, "flashcards", "remove", "persist cards", err)
	}
	return nil
}

func (s *FlashcardStore) load(user string) ([]Flashcard, error) {
	data, err := os.ReadFile(s.userPath(user))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Flashcard{}, nil
		}
		return nil, services.Wrap(services.ErrCache, "flashcards", "load", "read cards", err)
	}
	if len(data) == 0 {
		return []Flashcard{}, nil
	}
	var cards []Flashcard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, services.Wrap(services.ErrCache, "flashcards", "load", "parse cards", err)
	}
	return cards, nil
}

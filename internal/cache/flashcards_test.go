package cache

import (
	"errors"
	"testing"

	"lingopod/internal/services"
)

func TestFlashcardAddAndList(t *testing.T) {
	store := NewFlashcardStore(t.TempDir(), nil)

	card, err := store.Add("alice", "good morning", "bom dia", "Good morning everyone.")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if card.ID == "" {
		t.Fatal("card must get an id")
	}

	cards, err := store.List("alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cards) != 1 || cards[0].Phrase != "good morning" || cards[0].Translation != "bom dia" {
		t.Fatalf("unexpected cards: %#v", cards)
	}
}

func TestFlashcardDuplicatePhraseRejected(t *testing.T) {
	store := NewFlashcardStore(t.TempDir(), nil)
	if _, err := store.Add("alice", "Good Morning", "bom dia", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := store.Add("alice", "good morning", "bom dia", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected case-insensitive duplicate rejection, got %v", err)
	}
	// Other users are a separate namespace.
	if _, err := store.Add("bob", "good morning", "bom dia", ""); err != nil {
		t.Fatalf("other user's add must succeed: %v", err)
	}
}

func TestFlashcardRemove(t *testing.T) {
	store := NewFlashcardStore(t.TempDir(), nil)
	card, err := store.Add("alice", "thank you", "obrigado", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Remove("alice", card.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	cards, err := store.List("alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("card not removed: %#v", cards)
	}
	if err := store.Remove("alice", card.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for second remove, got %v", err)
	}
}

func TestFlashcardEmptyPhraseRejected(t *testing.T) {
	store := NewFlashcardStore(t.TempDir(), nil)
	if _, err := store.Add("alice", "   ", "x", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeUser(t *testing.T) {
	cases := map[string]string{
		"Alice":         "alice",
		"../../etc":     "______etc",
		"user name":     "user_name",
		"":              "default",
		"  ":            "default",
		"bob-2_ok":      "bob-2_ok",
		"Păulo@example": "p_ulo_example",
	}
	for input, want := range cases {
		if got := sanitizeUser(input); got != want {
			t.Errorf("sanitizeUser(%q) = %q, want %q", input, got, want)
		}
	}
}

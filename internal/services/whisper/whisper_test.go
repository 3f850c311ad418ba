package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lingopod/internal/services"
)

const sampleOutput = `{
  "text": "Hello there. [Music]",
  "segments": [
    {"id": 0, "start": 0.0, "end": 4.2, "text": " Hello there everyone, welcome back."},
    {"id": 1, "start": 4.2, "end": 6.0, "text": " [Music]"},
    {"id": 2, "start": 6.0, "end": 6.0, "text": " degenerate span"},
    {"id": 3, "start": 6.0, "end": 9.5, "text": "   "}
  ]
}`

func TestLoadUtterances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episode.json")
	if err := os.WriteFile(path, []byte(sampleOutput), 0o644); err != nil {
		t.Fatal(err)
	}

	utterances, err := LoadUtterances(path)
	if err != nil {
		t.Fatalf("LoadUtterances: %v", err)
	}
	if len(utterances) != 2 {
		t.Fatalf("expected 2 utterances (blank and degenerate dropped), got %#v", utterances)
	}
	if utterances[0].Text != "Hello there everyone, welcome back." {
		t.Errorf("text not trimmed: %q", utterances[0].Text)
	}
	if utterances[0].Start != 0.0 || utterances[0].End != 4.2 {
		t.Errorf("timestamps mangled: %#v", utterances[0])
	}
}

func TestTranscribeInvokesBinaryAndParsesOutput(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "episode_0123456789abcdef.mp3")

	client := NewClient("whisper", "base", nil)
	var gotArgs []string
	client.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != "whisper" {
			t.Errorf("unexpected binary %q", name)
		}
		gotArgs = args
		return os.WriteFile(filepath.Join(dir, "episode_0123456789abcdef.json"), []byte(sampleOutput), 0o644)
	})

	var percents []float64
	utterances, err := client.Transcribe(context.Background(), audioPath, "en", func(percent float64, _ string) {
		percents = append(percents, percent)
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(utterances) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(utterances))
	}
	if len(percents) < 2 || percents[len(percents)-1] != 100 {
		t.Fatalf("expected start and completion reports, got %v", percents)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{audioPath, "--model base", "--output_format json", "--language en"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", want, gotArgs)
		}
	}
}

func TestTranscribeFailureWrapsTranscriptionError(t *testing.T) {
	client := NewClient("whisper", "base", nil)
	client.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("model not found")
	})
	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "a.mp3"), "en", nil)
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
}

func TestTranscribeMissingOutputIsError(t *testing.T) {
	client := NewClient("whisper", "base", nil)
	client.WithCommandRunner(func(context.Context, string, ...string) error {
		return nil // command "succeeds" but writes no JSON
	})
	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "a.mp3"), "en", nil)
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
}

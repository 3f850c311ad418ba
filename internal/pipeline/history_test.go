package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"lingopod/internal/history"
	"lingopod/internal/services"
)

func TestRunHistoryRecorded(t *testing.T) {
	f := newFixture(t)
	runs, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer runs.Close()
	f.controller.runs = runs

	url := "https://example.com/ep1"
	startAndWait(t, f, url) // full run
	startAndWait(t, f, url) // cache hit

	recorded, err := runs.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recorded) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(recorded))
	}
	if !recorded[0].CacheHit || recorded[0].Outcome != history.OutcomeDone {
		t.Fatalf("newest run should be a cache hit: %#v", recorded[0])
	}
	if recorded[1].CacheHit {
		t.Fatalf("first run must not be a cache hit: %#v", recorded[1])
	}
}

func TestRunHistoryRecordsFailure(t *testing.T) {
	f := newFixture(t)
	runs, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer runs.Close()
	f.controller.runs = runs
	f.downloader.failWith = services.Wrap(services.ErrDownload, "downloading", "fetch", "boom", nil)

	startAndWait(t, f, "https://example.com/ep1")

	recorded, err := runs.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recorded) != 1 || recorded[0].Outcome != history.OutcomeError || recorded[0].Error == "" {
		t.Fatalf("failure not recorded: %#v", recorded)
	}
}

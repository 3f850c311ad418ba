package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordStartAndFinish(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.RecordStart(ctx, "job-1", "0123456789abcdef", "https://example.com/ep", "en")
	if err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected a positive run id")
	}

	if err := store.RecordFinish(ctx, runID, nil, true); err != nil {
		t.Fatalf("RecordFinish: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Outcome != OutcomeDone || !run.CacheHit || run.Error != "" {
		t.Fatalf("unexpected run: %#v", run)
	}
	if run.FinishedAt == nil || run.FinishedAt.Before(run.StartedAt) {
		t.Fatalf("finish time not recorded: %#v", run)
	}
}

func TestRecordFinishWithError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.RecordStart(ctx, "job-2", "0123456789abcdef", "https://example.com/ep", "en")
	if err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if err := store.RecordFinish(ctx, runID, errors.New("download failed"), false); err != nil {
		t.Fatalf("RecordFinish: %v", err)
	}

	runs, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if runs[0].Outcome != OutcomeError || runs[0].Error != "download failed" {
		t.Fatalf("unexpected run: %#v", runs[0])
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, url := range []string{"https://a", "https://b", "https://c"} {
		if _, err := store.RecordStart(ctx, "job", "0123456789abcdef", url, "en"); err != nil {
			t.Fatalf("RecordStart %d: %v", i, err)
		}
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 || runs[0].URL != "https://c" || runs[1].URL != "https://b" {
		t.Fatalf("wrong order or limit: %#v", runs)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.RecordStart(context.Background(), "job", "0123456789abcdef", "https://x", "en"); err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected the run to survive reopen, got %#v", runs)
	}
}

// Package cache persists processed episodes and per-user flashcards as JSON
// files. Each record is one independent file written atomically via a
// temporary file, so concurrent readers never observe a partial write.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"lingopod/internal/episode"
	"lingopod/internal/logging"
	"lingopod/internal/services"
)

// Store manages one JSON file per episode under a base directory, addressed
// by episode id.
type Store struct {
	dir    string
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewStore creates an episode store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "cache"),
	}
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Get loads the record for an episode id. Returns services.ErrNotFound when
// no record exists.
func (s *Store) Get(id string) (*episode.Record, error) {
	if !episode.ValidID(id) {
		return nil, services.Wrap(services.ErrValidation, "cache", "get", fmt.Sprintf("invalid episode id %q", id), nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "cache", "get", "episode "+id, nil)
		}
		return nil, services.Wrap(services.ErrCache, "cache", "get", "read record", err)
	}

	var rec episode.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, services.Wrap(services.ErrCache, "cache", "get", "parse record", err)
	}
	return &rec, nil
}

// Put writes the record, replacing any previous version atomically.
func (s *Store) Put(rec *episode.Record) error {
	if rec == nil {
		return services.Wrap(services.ErrValidation, "cache", "put", "nil record", nil)
	}
	if !episode.ValidID(rec.EpisodeID) {
		return services.Wrap(services.ErrValidation, "cache", "put", fmt.Sprintf("invalid episode id %q", rec.EpisodeID), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSONAtomic(s.recordPath(rec.EpisodeID), rec); err != nil {
		return services.Wrap(services.ErrCache, "cache", "put", "persist record", err)
	}
	s.logger.Debug("persisted episode record",
		logging.String(logging.FieldEpisodeID, rec.EpisodeID),
		logging.Int("segments", len(rec.Segments)))
	return nil
}

// Delete removes the record and, best-effort, its referenced audio file.
// A failure to delete the audio file is logged and swallowed.
func (s *Store) Delete(id string) error {
	if !episode.ValidID(id) {
		return services.Wrap(services.ErrValidation, "cache", "delete", fmt.Sprintf("invalid episode id %q", id), nil)
	}

	rec, err := s.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrCache, "cache", "delete", "remove record", err)
	}
	if rec.AudioPath != "" {
		if err := os.Remove(rec.AudioPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("could not remove audio file",
				logging.String(logging.FieldEpisodeID, id),
				logging.String("audio_path", rec.AudioPath),
				logging.Error(err))
		}
	}
	s.logger.Debug("deleted episode record", logging.String(logging.FieldEpisodeID, id))
	return nil
}

// List returns summaries of all stored episodes ordered by difficulty
// ascending, then most recently updated first. Unreadable record files are
// skipped with a warning.
func (s *Store) List() ([]episode.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrCache, "cache", "list", "read cache directory", err)
	}

	summaries := make([]episode.Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Warn("could not read record file", logging.String("file", entry.Name()), logging.Error(err))
			continue
		}
		var rec episode.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			s.logger.Warn("skipping corrupt record file", logging.String("file", entry.Name()), logging.Error(err))
			continue
		}
		summaries = append(summaries, rec.Summarize())
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Difficulty.Rank() != summaries[j].Difficulty.Rank() {
			return summaries[i].Difficulty.Rank() < summaries[j].Difficulty.Rank()
		}
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// writeJSONAtomic marshals v and writes it via a temporary file followed by a
// rename, so readers see either the old or the new content.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Segmenter.MinWords != defaultMinWords || cfg.Segmenter.MaxWords != defaultMaxWords {
		t.Fatalf("unexpected segmenter defaults: %+v", cfg.Segmenter)
	}
	if cfg.Languages.Source != "en" || cfg.Languages.Target != "pt" {
		t.Fatalf("unexpected language defaults: %+v", cfg.Languages)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[languages]
source = "pt"
target = "en"

[segmenter]
min_words = 5
max_words = 7
merge_overflow = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing resolved path, got %q exists=%v", resolved, exists)
	}
	if cfg.Segmenter.MinWords != 5 || cfg.Segmenter.MaxWords != 7 || cfg.Segmenter.MergeOverflow != 2 {
		t.Fatalf("overrides not applied: %+v", cfg.Segmenter)
	}
	if cfg.Languages.Source != "pt" {
		t.Fatalf("language override not applied: %+v", cfg.Languages)
	}
}

func TestValidateRejectsInvertedBand(t *testing.T) {
	cfg := Default()
	cfg.Segmenter.MinWords = 10
	cfg.Segmenter.MaxWords = 5
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "max_words") {
		t.Fatalf("expected max_words error, got %v", err)
	}
}

func TestValidateRejectsSameLanguages(t *testing.T) {
	cfg := Default()
	cfg.Languages.Target = cfg.Languages.Source
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for identical source/target")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default()
	base := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.AudioDir = filepath.Join(base, "audio")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{cfg.EpisodeCacheDir(), cfg.FlashcardDir(), cfg.Paths.AudioDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("sample config should exist after CreateSample")
	}
	if cfg.Segmenter.MaxWords != defaultMaxWords {
		t.Fatalf("sample config should carry defaults, got %+v", cfg.Segmenter)
	}
}

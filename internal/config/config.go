package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	AudioDir string `toml:"audio_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
}

// Languages contains the default source and target language codes.
type Languages struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
}

// Segmenter contains the practice segment sizing band.
type Segmenter struct {
	MinWords      int `toml:"min_words"`
	MaxWords      int `toml:"max_words"`
	MergeOverflow int `toml:"merge_overflow"`
}

// Downloader contains configuration for audio fetching.
type Downloader struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the download timeout as a duration.
func (d Downloader) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// Whisper contains configuration for the transcription backend.
type Whisper struct {
	Binary string `toml:"binary"`
	Model  string `toml:"model"`
}

// Translator contains configuration for the translation backend.
type Translator struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request translation timeout as a duration.
func (t Translator) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lingopod.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Languages  Languages  `toml:"languages"`
	Segmenter  Segmenter  `toml:"segmenter"`
	Downloader Downloader `toml:"downloader"`
	Whisper    Whisper    `toml:"whisper"`
	Translator Translator `toml:"translator"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lingopod/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A missing file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lingopod.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.AudioDir, &c.Paths.LogDir} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Languages.Source = strings.ToLower(strings.TrimSpace(c.Languages.Source))
	c.Languages.Target = strings.ToLower(strings.TrimSpace(c.Languages.Target))
	c.Downloader.Binary = strings.TrimSpace(c.Downloader.Binary)
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	c.Translator.BaseURL = strings.TrimRight(strings.TrimSpace(c.Translator.BaseURL), "/")
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates the directories required for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.AudioDir, c.Paths.LogDir, c.EpisodeCacheDir(), c.FlashcardDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EpisodeCacheDir returns the directory holding per-episode cache records.
func (c *Config) EpisodeCacheDir() string {
	return filepath.Join(c.Paths.DataDir, "episodes")
}

// FlashcardDir returns the directory holding per-user flashcard lists.
func (c *Config) FlashcardDir() string {
	return filepath.Join(c.Paths.DataDir, "flashcards")
}

// HistoryDBPath returns the path of the run-history SQLite database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockFilePath returns the daemon singleton lock file location.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.DataDir, "lingopod.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

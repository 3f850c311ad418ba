package config

import (
	"errors"
	"fmt"

	"lingopod/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLanguages(); err != nil {
		return err
	}
	if err := c.validateSegmenter(); err != nil {
		return err
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.AudioDir == "" {
		return errors.New("paths.audio_dir must be set")
	}
	return nil
}

func (c *Config) validateLanguages() error {
	if language.ToISO2(c.Languages.Source) == "" {
		return fmt.Errorf("languages.source: unrecognized language code %q", c.Languages.Source)
	}
	if language.ToISO2(c.Languages.Target) == "" {
		return fmt.Errorf("languages.target: unrecognized language code %q", c.Languages.Target)
	}
	if c.Languages.Source == c.Languages.Target {
		return errors.New("languages.source and languages.target must differ")
	}
	return nil
}

// LanguagePair returns the configured source and target languages normalized
// to ISO 639-1 codes.
func (c *Config) LanguagePair() (source, target string, err error) {
	source = language.ToISO2(c.Languages.Source)
	if source == "" {
		return "", "", fmt.Errorf("languages.source: unrecognized language code %q", c.Languages.Source)
	}
	target = language.ToISO2(c.Languages.Target)
	if target == "" {
		return "", "", fmt.Errorf("languages.target: unrecognized language code %q", c.Languages.Target)
	}
	return source, target, nil
}

func (c *Config) validateSegmenter() error {
	if c.Segmenter.MinWords <= 0 {
		return errors.New("segmenter.min_words must be positive")
	}
	if c.Segmenter.MaxWords < c.Segmenter.MinWords {
		return errors.New("segmenter.max_words must be at least segmenter.min_words")
	}
	if c.Segmenter.MergeOverflow < 0 {
		return errors.New("segmenter.merge_overflow must not be negative")
	}
	return nil
}

func (c *Config) validateServices() error {
	if c.Downloader.Binary == "" {
		return errors.New("downloader.binary must be set")
	}
	if c.Downloader.TimeoutSeconds <= 0 {
		return errors.New("downloader.timeout_seconds must be positive")
	}
	if c.Whisper.Binary == "" {
		return errors.New("whisper.binary must be set")
	}
	if c.Translator.BaseURL == "" {
		return errors.New("translator.base_url must be set")
	}
	if c.Translator.TimeoutSeconds <= 0 {
		return errors.New("translator.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// Package whisper invokes the whisper command line tool for speech
// recognition and parses its JSON output into utterances.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lingopod/internal/logging"
	"lingopod/internal/services"
	"lingopod/internal/transcript"
)

// Client wraps the whisper binary.
type Client struct {
	binary string
	model  string
	logger *slog.Logger

	// commandRunner executes the binary. Overridable for tests.
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewClient builds a transcriber using the given binary and model name.
func NewClient(binary, model string, logger *slog.Logger) *Client {
	if binary == "" {
		binary = "whisper"
	}
	if model == "" {
		model = "base"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		binary: binary,
		model:  model,
		logger: logging.NewComponentLogger(logger, "whisper"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Client) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	c.commandRunner = runner
}

// Model returns the configured model name for logging.
func (c *Client) Model() string {
	return c.model
}

// Transcribe runs speech recognition over the audio file and returns the raw
// utterances in chronological order. The model inference dominates runtime
// and emits no machine-readable progress, so only coarse phase reports are
// issued.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string, report func(percent float64, message string)) ([]transcript.Utterance, error) {
	if audioPath == "" {
		return nil, services.Wrap(services.ErrTranscription, "transcribing", "prepare", "audio path required", nil)
	}
	outputDir := filepath.Dir(audioPath)

	if report != nil {
		report(10, "Transcribing audio with "+c.model+" model...")
	}

	args := []string{
		audioPath,
		"--model", c.model,
		"--output_format", "json",
		"--output_dir", outputDir,
	}
	if language != "" {
		args = append(args, "--language", language)
	}

	if err := c.run(ctx, c.binary, args...); err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribing", "invoke", audioPath, err)
	}

	jsonPath := outputJSONPath(audioPath)
	utterances, err := LoadUtterances(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribing", "parse", jsonPath, err)
	}

	if report != nil {
		report(100, fmt.Sprintf("Transcription complete: %d utterances", len(utterances)))
	}
	c.logger.Info("transcribed audio",
		logging.String("audio_path", audioPath),
		logging.Int("utterances", len(utterances)))
	return utterances, nil
}

func (c *Client) run(ctx context.Context, name string, args ...string) error {
	if c.commandRunner != nil {
		return c.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// outputJSONPath derives the JSON transcript path whisper writes next to the
// audio file.
func outputJSONPath(audioPath string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(filepath.Dir(audioPath), base+".json")
}

type whisperOutput struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// LoadUtterances parses a whisper JSON output file into ordered utterances.
// Entries with an empty text or a non-positive span are dropped.
func LoadUtterances(path string) ([]transcript.Utterance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}

	utterances := make([]transcript.Utterance, 0, len(out.Segments))
	for _, seg := range out.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" || seg.End <= seg.Start {
			continue
		}
		utterances = append(utterances, transcript.Utterance{Start: seg.Start, End: seg.End, Text: text})
	}
	return utterances, nil
}

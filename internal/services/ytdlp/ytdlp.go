// Package ytdlp fetches episode audio through the yt-dlp command line tool
// and extracts source metadata. Downloads are idempotent: audio already on
// disk is reused without touching the network.
package ytdlp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lingopod/internal/logging"
	"lingopod/internal/services"
)

// Info is the best-effort metadata yt-dlp reports for a URL.
type Info struct {
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
	Uploader  string  `json:"uploader"`
}

// Client wraps the yt-dlp binary.
type Client struct {
	binary   string
	audioDir string
	timeout  time.Duration
	logger   *slog.Logger

	// runCommand executes the binary and feeds each stdout line to onLine.
	// Overridable for tests.
	runCommand func(ctx context.Context, name string, args []string, onLine func(string)) error
}

// NewClient builds a downloader storing audio under audioDir.
func NewClient(binary, audioDir string, timeout time.Duration, logger *slog.Logger) *Client {
	if binary == "" {
		binary = "yt-dlp"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		binary:     binary,
		audioDir:   audioDir,
		timeout:    timeout,
		logger:     logging.NewComponentLogger(logger, "ytdlp"),
		runCommand: runStreaming,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Client) WithCommandRunner(runner func(ctx context.Context, name string, args []string, onLine func(string)) error) {
	c.runCommand = runner
}

// AudioPath returns the canonical on-disk location for an episode's audio.
func (c *Client) AudioPath(episodeID string) string {
	return filepath.Join(c.audioDir, "episode_"+episodeID+".mp3")
}

// progressRe matches yt-dlp's --newline download progress lines, e.g.
// "[download]  42.3% of 10.00MiB at 1.00MiB/s ETA 00:05".
var progressRe = regexp.MustCompile(`\[download\]\s+([0-9.]+)%`)

// Download fetches the URL's audio as mp3 and returns the local path. If the
// file already exists the download is skipped entirely.
func (c *Client) Download(ctx context.Context, url, episodeID string, report func(percent float64, message string)) (string, error) {
	path := c.AudioPath(episodeID)
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("audio already present", logging.String(logging.FieldEpisodeID, episodeID), logging.String("path", path))
		if report != nil {
			report(100, "Audio already downloaded, using cached file")
		}
		return path, nil
	}

	if err := os.MkdirAll(c.audioDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrDownload, "downloading", "prepare", "create audio directory", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	outputTemplate := filepath.Join(c.audioDir, "episode_"+episodeID+".%(ext)s")
	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--output", outputTemplate,
		"--newline",
		"--no-warnings",
		"--no-playlist",
		url,
	}

	err := c.runCommand(ctx, c.binary, args, func(line string) {
		if report == nil {
			return
		}
		if m := progressRe.FindStringSubmatch(line); m != nil {
			if percent, perr := strconv.ParseFloat(m[1], 64); perr == nil {
				report(percent, fmt.Sprintf("Downloading: %.1f%%", percent))
			}
		}
	})
	if err != nil {
		return "", services.Wrap(services.ErrDownload, "downloading", "fetch", url, err)
	}

	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrDownload, "downloading", "verify", "expected audio file missing: "+path, err)
	}
	if report != nil {
		report(100, "Download completed")
	}
	c.logger.Info("downloaded audio", logging.String(logging.FieldEpisodeID, episodeID), logging.String("path", path))
	return path, nil
}

// Info fetches title/duration/thumbnail metadata without downloading. Callers
// treat failure as non-fatal.
func (c *Client) Info(ctx context.Context, url string) (Info, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var sb strings.Builder
	args := []string{"--dump-json", "--no-warnings", "--skip-download", url}
	if err := c.runCommand(ctx, c.binary, args, func(line string) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}); err != nil {
		return Info{}, services.Wrap(services.ErrDownload, "downloading", "info", url, err)
	}

	var info Info
	if err := json.Unmarshal([]byte(strings.TrimSpace(sb.String())), &info); err != nil {
		return Info{}, services.Wrap(services.ErrDownload, "downloading", "info", "parse metadata", err)
	}
	return info, nil
}

// runStreaming executes a command and delivers stdout line by line. Stderr is
// folded into the returned error on failure.
func runStreaming(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var errBuf strings.Builder
	cmd.Stderr = &errBuf

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: stdout pipe: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: start: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(errBuf.String())
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", name, err, detail)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return scanner.Err()
}

// Package translate talks to a LibreTranslate-compatible HTTP endpoint.
// Translation failures are soft: each call yields a Result that is either the
// translated text or a tagged failure, never an error, so a flaky backend
// cannot abort a pipeline run.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"lingopod/internal/logging"
)

// Result carries either a translated string or a tagged failure.
type Result struct {
	Text   string
	Failed bool
	Reason string
}

// Value renders the result for storage in a segment: the translation on
// success, a bracketed error marker on failure.
func (r Result) Value() string {
	if r.Failed {
		return "[translation failed: " + r.Reason + "]"
	}
	return r.Text
}

func failure(reason string) Result {
	return Result{Failed: true, Reason: reason}
}

// Client is an HTTP client for a LibreTranslate-style /translate endpoint.
type Client struct {
	baseURL string
	source  string
	target  string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient builds a translator from source to target language codes.
func NewClient(baseURL, source, target string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		source:  source,
		target:  target,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logging.NewComponentLogger(logger, "translate"),
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate converts text to the target language. Empty input translates to
// the empty string without a network call.
func (c *Client) Translate(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Text: ""}
	}

	body, err := json.Marshal(translateRequest{Q: text, Source: c.source, Target: c.target, Format: "text"})
	if err != nil {
		return failure("encode request: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return failure("build request: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("translation request failed", logging.Error(err))
		return failure(err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return failure("read response: " + err.Error())
	}

	var parsed translateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return failure(fmt.Sprintf("status %d: unparseable response", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		reason := parsed.Error
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		c.logger.Warn("translation rejected", logging.Int("status", resp.StatusCode), logging.String("reason", reason))
		return failure(reason)
	}
	return Result{Text: parsed.TranslatedText}
}

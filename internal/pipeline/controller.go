// Package pipeline drives the single-flight episode processing job: download,
// transcribe, segment, translate, cache. Exactly one job may be active at a
// time; a second start call is rejected, not queued.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lingopod/internal/cache"
	"lingopod/internal/episode"
	"lingopod/internal/history"
	"lingopod/internal/logging"
	"lingopod/internal/services"
	"lingopod/internal/services/translate"
	"lingopod/internal/services/ytdlp"
	"lingopod/internal/transcript"
)

// Downloader fetches episode audio and source metadata.
type Downloader interface {
	Download(ctx context.Context, url, episodeID string, report func(percent float64, message string)) (string, error)
	Info(ctx context.Context, url string) (ytdlp.Info, error)
}

// Transcriber converts an audio file into chronological utterances.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string, report func(percent float64, message string)) ([]transcript.Utterance, error)
}

// Translator converts a segment's text to the target language. Failures are
// soft and surface in the result, never as an error.
type Translator interface {
	Translate(ctx context.Context, text string) translate.Result
}

// Progress sub-ranges per phase, on the overall 0-100 bar.
const (
	progressDownloadStart   = 2
	progressDownloadEnd     = 20
	progressTranscribeEnd   = 45
	progressAssembleEnd     = 60
	progressTranslateEnd    = 90
	progressCaching         = 95
	progressRedownloadEnd   = 90
	progressRedownloadCache = 95
)

// Controller owns the pipeline state machine.
type Controller struct {
	assembler   *transcript.Assembler
	store       *cache.Store
	runs        *history.Store
	downloader  Downloader
	transcriber Transcriber
	translator  Translator
	logger      *slog.Logger

	tracker *tracker

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewController wires the pipeline's collaborators. runs may be nil to skip
// run-history recording.
func NewController(assembler *transcript.Assembler, store *cache.Store, runs *history.Store, downloader Downloader, transcriber Transcriber, translator Translator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		assembler:   assembler,
		store:       store,
		runs:        runs,
		downloader:  downloader,
		transcriber: transcriber,
		translator:  translator,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		tracker:     newTracker(),
	}
}

// Start launches a background job for the URL. Returns the job id, or
// services.ErrJobRunning when another job is still active.
func (c *Controller) Start(ctx context.Context, url, language, title string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", services.Wrap(services.ErrValidation, "pipeline", "start", "url required", nil)
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return "", services.Wrap(services.ErrJobRunning, "pipeline", "start", "another episode is being processed", nil)
	}
	jobID := uuid.NewString()
	episodeID := episode.ID(url)
	c.running = true
	c.done = make(chan struct{})
	c.tracker.begin(jobID, episodeID)
	c.mu.Unlock()

	// The job must outlive the request that started it.
	jobCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			c.mu.Lock()
			c.running = false
			close(c.done)
			c.mu.Unlock()
		}()
		c.run(jobCtx, jobID, episodeID, url, language, title)
	}()

	return jobID, nil
}

// Status returns a snapshot of the current (or last) job.
func (c *Controller) Status() Status {
	return c.tracker.Snapshot()
}

// Segments returns the finished job's segments.
func (c *Controller) Segments() []transcript.Segment {
	return c.tracker.Segments()
}

// Wait blocks until the active job finishes. Returns immediately when no job
// is running.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	running := c.running
	c.mu.Unlock()
	if !running || done == nil {
		return
	}
	<-done
}

func (c *Controller) run(ctx context.Context, jobID, episodeID, url, language, title string) {
	c.logger.Info("job started",
		logging.String(logging.FieldJobID, jobID),
		logging.String(logging.FieldEpisodeID, episodeID))
	runID := c.recordStart(ctx, jobID, episodeID, url, language)

	cached, err := c.store.Get(episodeID)
	switch {
	case err == nil:
		c.runCached(ctx, runID, episodeID, url, cached)
		return
	case !errors.Is(err, services.ErrNotFound):
		// Unreadable record: log and process from scratch.
		c.logger.Warn("cache read failed, reprocessing",
			logging.String(logging.FieldEpisodeID, episodeID), logging.Error(err))
	}

	c.runFull(ctx, runID, episodeID, url, language, title)
}

// runCached handles an existing record: short-circuit to done when the audio
// file is still on disk, otherwise re-download only and refresh the record.
func (c *Controller) runCached(ctx context.Context, runID int64, episodeID, url string, rec *episode.Record) {
	if fileExists(rec.AudioPath) {
		c.logger.Info("cache hit", logging.String(logging.FieldEpisodeID, episodeID))
		c.tracker.complete(rec.Segments, "Loaded from cache")
		c.recordFinish(ctx, runID, nil, true)
		return
	}

	c.logger.Info("cached audio missing, re-fetching",
		logging.String(logging.FieldEpisodeID, episodeID),
		logging.String("audio_path", rec.AudioPath))
	c.tracker.setState(StateDownloading, 0, "Re-fetching audio...")
	audioPath, err := c.downloader.Download(ctx, url, episodeID, Scaled(c.tracker.report, 0, progressRedownloadEnd))
	if err != nil {
		c.fail(ctx, runID, err)
		return
	}

	c.tracker.setState(StateCaching, progressRedownloadCache, "Updating episode record...")
	rec.AudioPath = audioPath
	rec.UpdatedAt = time.Now().UTC()
	if err := c.store.Put(rec); err != nil {
		c.fail(ctx, runID, err)
		return
	}

	c.tracker.complete(rec.Segments, "Loaded from cache (audio re-fetched)")
	c.recordFinish(ctx, runID, nil, true)
}

func (c *Controller) runFull(ctx context.Context, runID int64, episodeID, url, language, title string) {
	c.tracker.setState(StateDownloading, progressDownloadStart, "Starting download...")

	info, infoErr := c.downloader.Info(ctx, url)
	if infoErr != nil {
		// Metadata is best-effort.
		c.logger.Warn("metadata lookup failed", logging.String("url", url), logging.Error(infoErr))
	}
	if title == "" {
		title = info.Title
	}
	if title == "" {
		title = url
	}

	audioPath, err := c.downloader.Download(ctx, url, episodeID, Scaled(c.tracker.report, progressDownloadStart, progressDownloadEnd))
	if err != nil {
		c.fail(ctx, runID, err)
		return
	}

	c.tracker.setState(StateTranscribing, progressDownloadEnd, "Transcribing audio...")
	utterances, err := c.transcriber.Transcribe(ctx, audioPath, language, Scaled(c.tracker.report, progressDownloadEnd, progressTranscribeEnd))
	if err != nil {
		c.fail(ctx, runID, err)
		return
	}

	segments := c.assembler.Assemble(utterances, Scaled(c.tracker.report, progressTranscribeEnd, progressAssembleEnd))

	c.tracker.setState(StateTranslating, progressAssembleEnd, "Translating segments...")
	translateReport := Scaled(c.tracker.report, progressAssembleEnd, progressTranslateEnd)
	for i := range segments {
		segments[i].Translation = c.translator.Translate(ctx, segments[i].Text).Value()
		translateReport(float64(i+1)/float64(len(segments))*100, "")
	}

	c.tracker.setState(StateCaching, progressCaching, "Saving episode...")
	duration := info.Duration
	if duration <= 0 && len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}
	now := time.Now().UTC()
	rec := &episode.Record{
		EpisodeID:  episodeID,
		URL:        url,
		Title:      title,
		Language:   language,
		AudioPath:  audioPath,
		Segments:   segments,
		Duration:   duration,
		Difficulty: episode.Classify(segments, duration),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.store.Put(rec); err != nil {
		c.fail(ctx, runID, err)
		return
	}

	c.logger.Info("episode processed",
		logging.String(logging.FieldEpisodeID, episodeID),
		logging.Int("segments", len(segments)),
		logging.String("difficulty", string(rec.Difficulty)))
	c.tracker.complete(segments, "Processing complete")
	c.recordFinish(ctx, runID, nil, false)
}

// fail terminates the job. Partially written state (such as a downloaded
// audio file) is left in place for reuse by the next attempt.
func (c *Controller) fail(ctx context.Context, runID int64, err error) {
	c.logger.Error("pipeline failed",
		logging.String(logging.FieldPhase, string(c.tracker.Snapshot().State)),
		logging.Error(err))
	c.tracker.fail(err)
	c.recordFinish(ctx, runID, err, false)
}

func (c *Controller) recordStart(ctx context.Context, jobID, episodeID, url, language string) int64 {
	if c.runs == nil {
		return 0
	}
	runID, err := c.runs.RecordStart(ctx, jobID, episodeID, url, language)
	if err != nil {
		c.logger.Warn("could not record run start", logging.Error(err))
		return 0
	}
	return runID
}

func (c *Controller) recordFinish(ctx context.Context, runID int64, runErr error, cacheHit bool) {
	if c.runs == nil || runID == 0 {
		return
	}
	if err := c.runs.RecordFinish(ctx, runID, runErr, cacheHit); err != nil {
		c.logger.Warn("could not record run finish", logging.Error(err))
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

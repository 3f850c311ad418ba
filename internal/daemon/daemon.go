// Package daemon wires the pipeline, stores, and HTTP API into a single
// long-running process with flock-based locking to prevent multiple
// instances from sharing one data directory.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"lingopod/internal/api"
	"lingopod/internal/cache"
	"lingopod/internal/config"
	"lingopod/internal/history"
	"lingopod/internal/logging"
	"lingopod/internal/pipeline"
	"lingopod/internal/services/translate"
	"lingopod/internal/services/whisper"
	"lingopod/internal/services/ytdlp"
	"lingopod/internal/transcript"
)

// Daemon owns the process lifecycle: singleton lock, run history database,
// and the API server.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *api.Service
	runs    *history.Store

	lockPath string
	lock     *flock.Flock
	server   *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon from configuration, wiring every collaborator.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	source, target, err := cfg.LanguagePair()
	if err != nil {
		return nil, err
	}

	runs, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	store := cache.NewStore(cfg.EpisodeCacheDir(), logger)
	flashcards := cache.NewFlashcardStore(cfg.FlashcardDir(), logger)
	assembler := transcript.NewAssembler(transcript.NewSegmenter(
		cfg.Segmenter.MinWords, cfg.Segmenter.MaxWords, cfg.Segmenter.MergeOverflow))

	downloader := ytdlp.NewClient(cfg.Downloader.Binary, cfg.Paths.AudioDir, cfg.Downloader.Timeout(), logger)
	transcriber := whisper.NewClient(cfg.Whisper.Binary, cfg.Whisper.Model, logger)
	translator := translate.NewClient(cfg.Translator.BaseURL, source, target, cfg.Translator.Timeout(), logger)

	controller := pipeline.NewController(assembler, store, runs, downloader, transcriber, translator, logger)
	service := api.NewService(controller, store, flashcards, runs)

	lockPath := cfg.LockFilePath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		service:  service,
		runs:     runs,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newAPIServer(cfg.Paths.APIBind, service, logger)
	return d, nil
}

// Service exposes the wired API service, mainly for CLI commands running
// in-process.
func (d *Daemon) Service() *api.Service {
	return d.service
}

// Start acquires the singleton lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lingopod instance is already running")
	}

	ctx, d.cancel = context.WithCancel(ctx)
	if err := d.server.start(ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("bind", d.cfg.Paths.APIBind))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.runs != nil {
		return d.runs.Close()
	}
	return nil
}

// Package watch re-resolves the build configuration when its override file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/exportcfg/internal/capability"
	"git.home.luguber.info/inful/exportcfg/internal/config"
	"git.home.luguber.info/inful/exportcfg/internal/logfields"
	"git.home.luguber.info/inful/exportcfg/internal/metrics"
	"git.home.luguber.info/inful/exportcfg/internal/retry"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of editor writes into one reload.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc receives each newly resolved configuration.
type ChangeFunc func(cfg *config.BuildConfig)

// Watcher monitors the override file and keeps the last valid configuration.
// An invalid edit is logged and the previous configuration stays active.
type Watcher struct {
	sources  config.Sources
	registry *capability.Registry
	onChange ChangeFunc
	recorder metrics.Recorder
	debounce time.Duration
	logger   *slog.Logger
	retry    retry.Policy
	poll     time.Duration

	watcher  *fsnotify.Watcher
	poller   *poller
	cancel   context.CancelFunc
	mu       sync.RWMutex
	current  *config.BuildConfig
	reloadCh chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithDebounce(d time.Duration) Option        { return func(w *Watcher) { w.debounce = d } }
func WithRecorder(r metrics.Recorder) Option     { return func(w *Watcher) { w.recorder = r } }
func WithOnChange(fn ChangeFunc) Option          { return func(w *Watcher) { w.onChange = fn } }
func WithLogger(l *slog.Logger) Option           { return func(w *Watcher) { w.logger = l } }
func WithRegistry(r *capability.Registry) Option { return func(w *Watcher) { w.registry = r } }
func WithRetryPolicy(p retry.Policy) Option      { return func(w *Watcher) { w.retry = p } }
func WithPollInterval(d time.Duration) Option    { return func(w *Watcher) { w.poll = d } }

// New creates a watcher for src.File. The file may not exist yet; creating
// it later triggers a reload.
func New(src config.Sources, opts ...Option) (*Watcher, error) {
	if src.File == "" {
		return nil, fmt.Errorf("watch: no override file configured")
	}
	abs, err := filepath.Abs(src.File)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	src.File = abs

	w := &Watcher{
		sources:  src,
		recorder: metrics.NoopRecorder{},
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		retry:    retry.DefaultPolicy(),
		reloadCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = capability.DefaultRegistry()
	}
	return w, nil
}

// Start resolves the initial configuration and begins watching. It fails if
// the initial configuration is invalid.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.Reload(); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory; editors often replace the file instead of writing it.
	dir := filepath.Dir(w.sources.File)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}
	w.watcher = fw

	if w.poll > 0 {
		p, err := newPoller(w.poll, w.triggerReload)
		if err != nil {
			_ = fw.Close()
			return err
		}
		w.poller = p
		p.start()
		w.logger.Debug("Polling configuration sources", "interval", w.poll, "job_id", p.jobID)
	}

	w.logger.Info("Starting configuration watcher", logfields.Path(w.sources.File))
	// Stop cancels this context so an in-flight retry backoff ends promptly.
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop ends watching and waits for the background goroutines.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.cancel != nil {
			w.cancel()
		}
		if w.poller != nil {
			err = w.poller.stop()
		}
		if w.watcher != nil {
			err = errors.Join(err, w.watcher.Close())
		}
	})
	w.wg.Wait()
	return err
}

// Current returns the active configuration.
func (w *Watcher) Current() *config.BuildConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Reload loads the sources and resolves again. On success the new
// configuration becomes current and onChange runs if it differs from the
// previous one. On failure the previous configuration is kept.
func (w *Watcher) Reload() error {
	start := time.Now()
	cfg, err := w.resolve()
	outcome := metrics.OutcomeOf(err)
	w.recorder.ObserveResolve(time.Since(start), outcome)
	w.recorder.IncReload(outcome)
	if err != nil {
		w.logger.Error("Failed to reload configuration", logfields.Path(w.sources.File), logfields.Error(err))
		return err
	}

	w.mu.Lock()
	prev := w.current
	changed := prev == nil || prev.Fingerprint() != cfg.Fingerprint()
	if changed {
		w.current = cfg
	}
	w.mu.Unlock()

	if !changed {
		w.logger.Debug("Configuration unchanged", logfields.Fingerprint(cfg.Fingerprint()))
		return nil
	}
	w.recorder.SetConfigInfo(cfg.Fingerprint())
	w.logger.Info("Configuration resolved",
		logfields.Fingerprint(cfg.Fingerprint()),
		logfields.Adapter(cfg.Adapter.Name),
		logfields.Fallback(cfg.Adapter.FallbackDocument))
	if w.onChange != nil {
		w.onChange(cfg)
	}
	return nil
}

func (w *Watcher) resolve() (*config.BuildConfig, error) {
	loaded, err := config.LoadSources(w.sources)
	if err != nil {
		return nil, err
	}
	for _, warn := range loaded.Warnings {
		w.logger.Warn("Configuration warning", "warning", warn)
	}
	return config.NewResolver(w.registry, config.WithOverrides(loaded.Overrides)).Resolve()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	name := filepath.Base(w.sources.File)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				w.logger.Debug("Config file change detected", logfields.Path(event.Name), "op", event.Op.String())
				w.triggerReload()
			case event.Has(fsnotify.Remove):
				w.logger.Warn("Config file removed", logfields.Path(event.Name))
				w.triggerReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.wg.Done()
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.reloadCh:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			// A save in progress can leave a truncated file behind.
			_ = w.retry.Do(ctx, retry.Retryable, w.Reload)
		}
	}
}

// triggerReload requests a debounced reload; pending requests coalesce.
func (w *Watcher) triggerReload() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}

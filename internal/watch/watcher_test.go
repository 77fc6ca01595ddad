package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"git.home.luguber.info/inful/exportcfg/internal/config"
	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"git.home.luguber.info/inful/exportcfg/internal/metrics"
	"git.home.luguber.info/inful/exportcfg/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes []metrics.Outcome
	info     string
}

func (c *countingRecorder) IncReload(o metrics.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *countingRecorder) SetConfigInfo(fp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = fp
}

func noEnv(string) (string, bool) { return "", false }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeOverrides(t *testing.T, path, fallback string) {
	t.Helper()
	content := "kit:\n  adapter:\n    fallback: " + fallback + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNew_RequiresFile(t *testing.T) {
	_, err := New(config.Sources{})
	assert.Error(t, err)
}

func TestReload_KeepsPreviousOnInvalidEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exportcfg.yaml")
	writeOverrides(t, path, "index.html")

	rec := &countingRecorder{}
	var changes []*config.BuildConfig
	w, err := New(config.Sources{File: path, Lookup: noEnv},
		WithRecorder(rec),
		WithLogger(quietLogger()),
		WithOnChange(func(cfg *config.BuildConfig) { changes = append(changes, cfg) }),
	)
	require.NoError(t, err)

	require.NoError(t, w.Reload())
	require.Len(t, changes, 1)
	first := w.Current()
	assert.Equal(t, "index.html", first.Adapter.FallbackDocument)
	assert.Equal(t, first.Fingerprint(), rec.info)

	// Same content: no change notification.
	require.NoError(t, w.Reload())
	assert.Len(t, changes, 1)

	writeOverrides(t, path, `""`)
	err = w.Reload()
	require.Error(t, err)
	assert.True(t, ferrors.IsInvalidOption(err))
	assert.Same(t, first, w.Current())

	writeOverrides(t, path, "200.html")
	require.NoError(t, w.Reload())
	require.Len(t, changes, 2)
	assert.Equal(t, "200.html", w.Current().Adapter.FallbackDocument)

	assert.Equal(t, []metrics.Outcome{
		metrics.OutcomeSuccess,
		metrics.OutcomeSuccess,
		metrics.OutcomeInvalidOption,
		metrics.OutcomeSuccess,
	}, rec.outcomes)
}

func TestStart_FailsOnInvalidInitialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exportcfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kit:\n  adapter:\n    name: netlify\n"), 0o600))

	w, err := New(config.Sources{File: path, Lookup: noEnv}, WithLogger(quietLogger()))
	require.NoError(t, err)
	err = w.Start(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.IsUnknownCapability(err))
	assert.Nil(t, w.Current())
	require.NoError(t, w.Stop())
}

func TestStart_ReloadsOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exportcfg.yaml")
	writeOverrides(t, path, "index.html")

	changed := make(chan *config.BuildConfig, 4)
	w, err := New(config.Sources{File: path, Lookup: noEnv},
		WithDebounce(20*time.Millisecond),
		WithLogger(quietLogger()),
		WithOnChange(func(cfg *config.BuildConfig) { changed <- cfg }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop()) }()

	initial := <-changed
	assert.Equal(t, "index.html", initial.Adapter.FallbackDocument)

	writeOverrides(t, path, "spa.html")

	select {
	case cfg := <-changed:
		assert.Equal(t, "spa.html", cfg.Adapter.FallbackDocument)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	assert.Equal(t, "spa.html", w.Current().Adapter.FallbackDocument)
}

func TestStop_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exportcfg.yaml")
	w, err := New(config.Sources{File: path, Lookup: noEnv}, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, config.DefaultFallbackDocument, w.Current().Adapter.FallbackDocument)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestStart_PollPicksUpEnvChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exportcfg.yaml")
	var fallback atomic.Value
	fallback.Store("index.html")
	lookup := func(key string) (string, bool) {
		if key == config.EnvPrefix+"FALLBACK" {
			return fallback.Load().(string), true
		}
		return "", false
	}

	changed := make(chan *config.BuildConfig, 4)
	w, err := New(config.Sources{File: path, Lookup: lookup},
		WithDebounce(time.Millisecond),
		WithPollInterval(20*time.Millisecond),
		WithLogger(quietLogger()),
		WithOnChange(func(cfg *config.BuildConfig) { changed <- cfg }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop()) }()
	<-changed

	fallback.Store("app.html")
	select {
	case cfg := <-changed:
		assert.Equal(t, "app.html", cfg.Adapter.FallbackDocument)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for poll reload")
	}
}

func TestReload_DetectsSettingsOnlyChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exportcfg.yaml")
	writeSettings := func(value string) {
		content := "preprocess:\n  settings:\n    scss:\n      1: " + value + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	writeSettings("a")

	var changes []*config.BuildConfig
	w, err := New(config.Sources{File: path, Lookup: noEnv},
		WithLogger(quietLogger()),
		WithOnChange(func(cfg *config.BuildConfig) { changes = append(changes, cfg) }),
	)
	require.NoError(t, err)

	require.NoError(t, w.Reload())
	writeSettings("b")
	require.NoError(t, w.Reload())
	require.Len(t, changes, 2)
	assert.Equal(t, map[string]any{"1": "b"}, w.Current().Preprocessor.Settings["scss"])

	writeOverrides(t, path, "200.html")
	require.NoError(t, w.Reload())
	require.Len(t, changes, 3)
	assert.Equal(t, "200.html", w.Current().Adapter.FallbackDocument)
}

func TestStop_InterruptsRetryBackoff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exportcfg.yaml")
	writeOverrides(t, path, "index.html")

	rec := &countingRecorder{}
	w, err := New(config.Sources{File: path, Lookup: noEnv},
		WithDebounce(time.Millisecond),
		WithRecorder(rec),
		WithLogger(quietLogger()),
		WithRetryPolicy(retry.NewPolicy(retry.ModeFixed, time.Hour, time.Hour, 5)),
	)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte("kit: [\n"), 0o600))
	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.outcomes) >= 2
	}, 5*time.Second, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Stop() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on retry backoff")
	}
	assert.Equal(t, "index.html", w.Current().Adapter.FallbackDocument)
}

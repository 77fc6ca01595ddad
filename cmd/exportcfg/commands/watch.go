package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/exportcfg/internal/config"
	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"git.home.luguber.info/inful/exportcfg/internal/logfields"
	"git.home.luguber.info/inful/exportcfg/internal/metrics"
	"git.home.luguber.info/inful/exportcfg/internal/retry"
	"git.home.luguber.info/inful/exportcfg/internal/watch"
	prom "github.com/prometheus/client_golang/prometheus"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Format       string        `short:"f" help:"Output format (yaml or json)" enum:"yaml,json" default:"yaml"`
	Write        string        `short:"w" help:"Rewrite this file on every change (stdout when empty)" type:"path"`
	MetricsAddr  string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (disabled when empty)"`
	Debounce     time.Duration `help:"Quiet period before a change is applied" default:"500ms"`
	Poll         time.Duration `name:"poll-interval" help:"Also re-resolve on this interval (disabled when zero)" default:"0s"`
	RetryMode    string        `name:"retry-mode" help:"Backoff between reload retries (fixed, linear, exponential)" default:"linear"`
	RetryInitial time.Duration `name:"retry-initial" help:"Delay before the first reload retry" default:"100ms"`
	RetryMax     time.Duration `name:"retry-max" help:"Upper bound for the reload retry delay" default:"2s"`
	RetryCount   int           `name:"retry-count" help:"Reload retries after a transient failure" default:"3"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, g, root)
}

// retryPolicy maps the retry flags onto a validated policy.
func (w *WatchCmd) retryPolicy() (retry.Policy, error) {
	mode, err := retry.ParseMode(w.RetryMode)
	if err != nil {
		return retry.Policy{}, err
	}
	if w.RetryCount < 0 {
		return retry.Policy{}, ferrors.InvalidOption("retry-count", w.RetryCount).
			WithContext("reason", "must not be negative").
			Build()
	}
	p := retry.NewPolicy(mode, w.RetryInitial, w.RetryMax, w.RetryCount)
	if err := p.Validate(); err != nil {
		return retry.Policy{}, err
	}
	return p, nil
}

func (w *WatchCmd) run(ctx context.Context, g *Global, root *CLI) error {
	policy, err := w.retryPolicy()
	if err != nil {
		return err
	}

	recorder := g.Recorder
	if w.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
		srv := &http.Server{Addr: w.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				g.Logger.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
		g.Logger.Info("Serving metrics", "addr", w.MetricsAddr)
	}

	src := root.Sources()
	src.FileRequired = false
	watcher, err := watch.New(src,
		watch.WithRegistry(g.Registry),
		watch.WithRecorder(recorder),
		watch.WithLogger(g.Logger),
		watch.WithDebounce(w.Debounce),
		watch.WithPollInterval(w.Poll),
		watch.WithRetryPolicy(policy),
		watch.WithOnChange(func(cfg *config.BuildConfig) {
			if err := emit(g, cfg, w.Format, w.Write); err != nil {
				g.Logger.Error("Failed to emit configuration", logfields.Error(err))
			}
		}),
	)
	if err != nil {
		return ferrors.RuntimeError("failed to create watcher").WithCause(err).Build()
	}
	if err := watcher.Start(ctx); err != nil {
		_ = watcher.Stop()
		return err
	}

	<-ctx.Done()
	g.Logger.Info("Shutdown signal received, stopping watcher")
	if err := watcher.Stop(); err != nil {
		return ferrors.RuntimeError("failed to stop watcher").WithCause(err).Build()
	}
	return nil
}

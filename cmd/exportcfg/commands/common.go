package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/exportcfg/internal/capability"
	"git.home.luguber.info/inful/exportcfg/internal/config"
	"git.home.luguber.info/inful/exportcfg/internal/logfields"
	"git.home.luguber.info/inful/exportcfg/internal/metrics"
	"github.com/alecthomas/kong"
	"github.com/google/uuid"
)

// DefaultConfigPath is the override file read when -c is not given. It is optional.
const DefaultConfigPath = "exportcfg.yaml"

// Global carries state shared by every subcommand.
type Global struct {
	Logger   *slog.Logger
	RunID    string
	Stdout   io.Writer
	Stderr   io.Writer
	Registry *capability.Registry
	Recorder metrics.Recorder
}

// NewGlobal returns the production defaults.
func NewGlobal() *Global {
	return &Global{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Registry: capability.DefaultRegistry(),
		Recorder: metrics.NoopRecorder{},
	}
}

// CLI definition & global flags.
type CLI struct {
	Config   string           `short:"c" help:"Override file path (optional unless set explicitly)" default:"exportcfg.yaml" type:"path"`
	EnvFiles []string         `name:"env-file" help:"Dotenv files consulted after the process environment (default .env, .env.local)"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Resolve  ResolveCmd  `cmd:"" default:"withargs" help:"Resolve the build configuration and print it"`
	Validate ValidateCmd `cmd:"" help:"Validate the build configuration"`
	Init     InitCmd     `cmd:"" help:"Write an example override file"`
	Verify   VerifyCmd   `cmd:"" help:"Check an emitted static bundle against the configuration"`
	Watch    WatchCmd    `cmd:"" help:"Re-resolve the configuration whenever the override file changes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	if g.Stderr == nil {
		g.Stderr = os.Stderr
	}
	g.RunID = uuid.NewString()
	g.Logger = slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level})).
		With(logfields.RunID(g.RunID))
	slog.SetDefault(g.Logger)
	return nil
}

// Sources maps the global flags onto override sources.
func (c *CLI) Sources() config.Sources {
	envFiles := c.EnvFiles
	if len(envFiles) == 0 {
		envFiles = config.DefaultEnvFiles
	}
	return config.Sources{
		File:         c.Config,
		FileRequired: !isDefaultConfigPath(c.Config),
		EnvFiles:     envFiles,
	}
}

// isDefaultConfigPath treats the kong-expanded default as "not set explicitly".
func isDefaultConfigPath(p string) bool {
	if p == DefaultConfigPath {
		return true
	}
	wd, err := os.Getwd()
	if err != nil {
		return false
	}
	return p == wd+string(os.PathSeparator)+DefaultConfigPath
}

// resolveConfig loads all override sources and resolves, recording the outcome.
func resolveConfig(g *Global, root *CLI) (*config.BuildConfig, error) {
	loaded, err := config.LoadSources(root.Sources())
	if err != nil {
		return nil, err
	}
	for _, w := range loaded.Warnings {
		g.Logger.Warn("Configuration warning", "warning", w)
	}
	if loaded.FileUsed {
		g.Logger.Debug("Loaded override file", logfields.Path(root.Config))
	}
	for _, f := range loaded.EnvFiles {
		g.Logger.Debug("Loaded env file", logfields.Path(f))
	}
	if loaded.Overrides.IsZero() {
		g.Logger.Debug("No overrides supplied, using defaults")
	}

	start := time.Now()
	cfg, err := config.NewResolver(g.Registry, config.WithOverrides(loaded.Overrides)).Resolve()
	elapsed := time.Since(start)
	outcome := metrics.OutcomeOf(err)
	g.Recorder.ObserveResolve(elapsed, outcome)
	g.Logger.Debug("Resolved configuration",
		logfields.Outcome(string(outcome)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	if err != nil {
		return nil, err
	}
	g.Logger.Debug("Build configuration",
		logfields.RenderMode(string(cfg.RenderMode)),
		logfields.Pages(len(cfg.Prerender.Pages)),
		logfields.Adapter(cfg.Adapter.Name),
		logfields.Fingerprint(cfg.Fingerprint()))
	for _, n := range config.Notes(cfg) {
		g.Logger.Info(n)
	}
	return cfg, nil
}

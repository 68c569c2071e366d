// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/adapters/fingerprint" //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/report"      //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/shell"       //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/statecache"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/toolchain"   //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/compiler"
	"go.trai.ch/kiln/internal/engine/gc"
	"go.trai.ch/kiln/internal/engine/pool"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	invoker      ports.ToolInvoker
	logger       ports.Logger
	metrics      ports.Metrics
	stdout       io.Writer
	workDir      string
	compilerOpts []compiler.Option
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	invoker ports.ToolInvoker,
	log ports.Logger,
	metrics ports.Metrics,
) *App {
	return &App{
		configLoader: loader,
		invoker:      invoker,
		logger:       log,
		metrics:      metrics,
		stdout:       os.Stdout,
	}
}

// WithOutput redirects the build, collection and status reports to w.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// WithWorkDir sets the directory kiln.yaml is discovered from. It defaults to the process
// working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithCompilerOptions appends options to every orchestrator the App creates.
// This is primarily used for testing to pin the platform and the clock.
func (a *App) WithCompilerOptions(opts ...compiler.Option) *App {
	a.compilerOpts = append(a.compilerOpts, opts...)
	return a
}

// SetJSONLogs switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogs(enabled bool) {
	if l, ok := a.logger.(interface{ SetJSON(enable bool) }); ok {
		l.SetJSON(enabled)
	}
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	ConfigPath string
	Jobs       int
	Sequential bool
	NoCache    bool
	Verbose    bool
	MetricsOut string
}

// Build builds the shared artifacts and the named targets, or every target when names is
// empty, then prints the batch report.
func (a *App) Build(ctx context.Context, names []string, opts BuildOptions) error {
	cfg, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	switch {
	case opts.Sequential:
		cfg.Jobs = 1
	case opts.Jobs > 0:
		cfg.Jobs = opts.Jobs
	}

	invoker := a.invoker
	if _, ok := invoker.(*shell.Invoker); ok && opts.Verbose {
		invoker = shell.NewInvoker(shell.WithEcho(a.logger))
	}

	orch := a.orchestrator(cfg, invoker, compiler.WithNoCache(opts.NoCache))
	batch, err := orch.Build(ctx, names)
	if err != nil {
		if mErr := a.writeMetrics(opts.MetricsOut); mErr != nil {
			a.logger.Error(mErr)
		}
		return err
	}

	report.NewRenderer(a.stdout).Batch(batch)

	if cfg.GCAfterBuild {
		stats, gcErr := a.collector(cfg).Run(ctx, false)
		if gcErr != nil {
			a.logger.Warn("link cache collection incomplete")
			a.logger.Error(gcErr)
		} else if stats.FilesRemoved > 0 {
			report.NewRenderer(a.stdout).GC(stats, false)
		}
	}

	if err := a.writeMetrics(opts.MetricsOut); err != nil {
		return err
	}

	if !batch.OK() {
		err := zerr.Wrap(domain.ErrBuildExecutionFailed, fmt.Sprintf("%d targets failed", len(batch.Failures)))
		return zerr.With(err, "unreported", batch.Unreported)
	}
	return nil
}

// GCOptions configuration for the GC method.
type GCOptions struct {
	ConfigPath string
	DryRun     bool
	MetricsOut string
}

// GC applies the configured cache policy to the link cache.
func (a *App) GC(ctx context.Context, opts GCOptions) error {
	cfg, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	stats, runErr := a.collector(cfg).Run(ctx, opts.DryRun)
	report.NewRenderer(a.stdout).GC(stats, opts.DryRun)

	return errors.Join(runErr, a.writeMetrics(opts.MetricsOut))
}

// StatusOptions configuration for the Status method.
type StatusOptions struct {
	ConfigPath string
}

// Status prints the state of the shared artifacts and what a collection would evict.
func (a *App) Status(ctx context.Context, opts StatusOptions) error {
	cfg, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	plan, err := a.collector(cfg).Plan(ctx)
	if err != nil {
		return err
	}

	report.NewRenderer(a.stdout).Status(domain.StatusReport{
		Root:         cfg.Root,
		BuildDir:     cfg.BuildDir,
		Targets:      len(cfg.Targets),
		Artifacts:    a.orchestrator(cfg, a.invoker).Status(),
		Fingerprints: fingerprint.Open(domain.FingerprintPath(cfg.BuildDir), fingerprint.WithLogger(a.logger)).Len(),
		Cache:        plan,
	})
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	// All also removes the link cache, which Clean keeps by default.
	All bool
}

// Clean removes build state and intermediate outputs.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	cfg, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	var errs error

	// Helper to remove a path and log the action
	remove := func(path string, name string) {
		if _, err := os.Stat(path); err != nil {
			return
		}
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if opts.All {
		remove(cfg.BuildDir, "build directory")
		return errs
	}

	remove(domain.ObjDir(cfg.BuildDir), "objects")
	remove(domain.UnityDir(cfg.BuildDir), "unity sources")
	remove(domain.LibDir(cfg.BuildDir), "shared artifacts")
	remove(domain.StateDir(cfg.BuildDir), "state cache")
	remove(domain.FingerprintPath(cfg.BuildDir), "fingerprints")
	remove(domain.PCHFingerprintPath(cfg.BuildDir), "header fingerprints")

	return errs
}

func (a *App) load(configPath string) (*domain.BuildConfig, error) {
	cwd := a.workDir
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		cwd = wd
	}
	if configPath != "" && !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}

	cfg, err := a.configLoader.Load(cwd, configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

func (a *App) orchestrator(cfg *domain.BuildConfig, invoker ports.ToolInvoker, opts ...compiler.Option) *compiler.Orchestrator {
	deps := compiler.Deps{
		Pool:      pool.New(cfg.Jobs),
		Invoker:   invoker,
		Toolchain: toolchain.New(cfg),
		Fingerprints: fingerprint.Open(
			domain.FingerprintPath(cfg.BuildDir),
			fingerprint.WithLogger(a.logger),
		),
		PCHFingerprints: fingerprint.Open(
			domain.PCHFingerprintPath(cfg.BuildDir),
			fingerprint.WithMtimeOnly(),
			fingerprint.WithLogger(a.logger),
		),
		LibraryState: statecache.New(
			domain.StateDir(cfg.BuildDir), domain.LibrarySubject, statecache.WithLogger(a.logger),
		),
		PCHState: statecache.New(
			domain.StateDir(cfg.BuildDir), domain.PCHSubject, statecache.WithLogger(a.logger),
		),
		Logger:  a.logger,
		Metrics: a.metrics,
	}
	return compiler.New(cfg, deps, append(opts, a.compilerOpts...)...)
}

func (a *App) collector(cfg *domain.BuildConfig) *gc.Collector {
	return gc.New(domain.BinDir(cfg.BuildDir), cfg.Cache,
		gc.WithLogger(a.logger),
		gc.WithMetrics(a.metrics),
	)
}

func (a *App) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := a.metrics.WriteTo(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics"), "path", path)
	}
	return nil
}

// Package compiler orchestrates the shared library, precompiled header and per-target builds.
package compiler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/pool"
	"go.trai.ch/zerr"
)

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Pool      *pool.Pool
	Invoker   ports.ToolInvoker
	Toolchain ports.Toolchain
	// Fingerprints is the hash-assisted store consulted for the library.
	Fingerprints ports.FingerprintStore
	// PCHFingerprints is the mtime-only store consulted for the precompiled header.
	PCHFingerprints ports.FingerprintStore
	LibraryState    ports.StateCache
	PCHState        ports.StateCache
	Logger          ports.Logger
	Metrics         ports.Metrics
}

// Orchestrator builds the shared artifacts and the targets of one configuration.
type Orchestrator struct {
	Deps

	cfg     *domain.BuildConfig
	goos    string
	noCache bool
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGOOS overrides the platform used to pick link flags and the executable suffix.
func WithGOOS(goos string) Option {
	return func(o *Orchestrator) {
		o.goos = goos
	}
}

// WithNoCache disables every reuse check, forcing a full rebuild.
func WithNoCache(noCache bool) Option {
	return func(o *Orchestrator) {
		o.noCache = noCache
	}
}

// WithClock overrides the clock used to refresh cached executables.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator for cfg.
func New(cfg *domain.BuildConfig, deps Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		Deps: deps,
		cfg:  cfg,
		goos: runtime.GOOS,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LibraryPath returns where the shared static library is archived.
func (o *Orchestrator) LibraryPath() string {
	return filepath.Join(domain.LibDir(o.cfg.BuildDir), "lib"+o.cfg.Library.Name+".a")
}

// PCHPath returns where the precompiled umbrella header is written.
func (o *Orchestrator) PCHPath() string {
	if o.cfg.PCH.Header == "" {
		return ""
	}
	return o.Toolchain.PrecompiledPath(o.cfg.PCH.Header, domain.LibDir(o.cfg.BuildDir))
}

// invoke runs argv and records it under kind. A start failure is returned as an error,
// a non-zero exit only through the result.
func (o *Orchestrator) invoke(ctx context.Context, kind string, argv []string) (domain.Result, error) {
	start := time.Now()
	res, err := o.Invoker.Invoke(ctx, argv, o.cfg.Root)
	o.Metrics.ObserveTool(kind, time.Since(start), err == nil && res.OK)
	return res, err
}

// compile compiles one translation unit into obj.
func (o *Orchestrator) compile(ctx context.Context, src, obj, pch string) (domain.Result, error) {
	if err := os.MkdirAll(filepath.Dir(obj), domain.DirPerm); err != nil {
		return domain.Result{}, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", obj)
	}
	return o.invoke(ctx, "compile", o.Toolchain.CompileCommand(src, obj, pch))
}

// objectPath mirrors src below dir, falling back to a hashed name for sources outside the root.
func (o *Orchestrator) objectPath(dir, src string) string {
	rel, err := filepath.Rel(o.cfg.Root, src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = fs.HashStrings([]string{src})[:8] + "_" + filepath.Base(src)
	}
	return filepath.Join(dir, rel+".o")
}

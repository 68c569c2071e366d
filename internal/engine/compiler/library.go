package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/pool"
	"go.trai.ch/zerr"
)

// LibrarySpec describes the shared static library.
type LibrarySpec struct {
	Name        string
	Sources     []string
	UnityChunks int
}

// Artifact is a shared build output and whether it was reused.
type Artifact struct {
	Path   string
	Reused bool
}

type unit struct {
	src string
	obj string
}

type unitOutcome struct {
	unit   unit
	result domain.Result
}

// BuildLibrary compiles every library unit concurrently and archives the objects.
// Any failed unit aborts the build with an error wrapping domain.ErrLibraryBuildFailed that
// carries every failed unit's output; no archive is left behind in that case.
func (o *Orchestrator) BuildLibrary(ctx context.Context, spec LibrarySpec) (Artifact, error) {
	if spec.Name == "" || len(spec.Sources) == 0 {
		return Artifact{}, zerr.Wrap(domain.ErrConfiguration, "library needs a name and at least one source")
	}

	lib := o.LibraryPath()
	tracked := o.trackedFiles(spec.Sources...)
	check := reuseCheck{
		name:         "library " + spec.Name,
		artifact:     lib,
		sources:      tracked,
		configHash:   o.configFingerprint("library", spec.Name, "unity="+strconv.Itoa(spec.UnityChunks)),
		state:        o.LibraryState,
		fingerprints: o.Fingerprints,
	}

	if o.canReuse(check) {
		o.Metrics.ObserveReuse(domain.LibrarySubject, true)
		o.Logger.Info("reusing " + filepath.Base(lib))
		return Artifact{Path: lib, Reused: true}, nil
	}
	o.Metrics.ObserveReuse(domain.LibrarySubject, false)

	snap := o.LibraryState.Snapshot(tracked)
	if err := o.LibraryState.Invalidate(); err != nil {
		return Artifact{}, err
	}
	discard(lib)

	units, err := o.libraryUnits(spec)
	if err != nil {
		return Artifact{}, err
	}
	o.Logger.Info("building " + filepath.Base(lib) + " from " + strconv.Itoa(len(units)) + " units")

	futures := make([]*pool.Future[unitOutcome], len(units))
	for i, u := range units {
		futures[i] = pool.Submit(ctx, o.Pool, func(ctx context.Context) (unitOutcome, error) {
			res, err := o.compile(ctx, u.src, u.obj, "")
			return unitOutcome{unit: u, result: res}, err
		})
	}

	var failures []error
	objs := make([]string, 0, len(units))
	for _, f := range futures {
		out, err := f.Wait(ctx)
		switch {
		case err != nil:
			failures = append(failures, err)
		case !out.result.OK:
			failures = append(failures, toolError(domain.ErrCompileFailed, filepath.Base(out.unit.src), out.result))
		default:
			objs = append(objs, out.unit.obj)
		}
	}

	if len(failures) > 0 {
		discard(lib)
		return Artifact{}, errors.Join(append([]error{domain.ErrLibraryBuildFailed}, failures...)...)
	}

	if err := o.archive(ctx, lib, objs); err != nil {
		discard(lib)
		return Artifact{}, err
	}

	if err := o.finish(check, snap); err != nil {
		return Artifact{}, err
	}
	o.primeFingerprints(tracked)

	return Artifact{Path: lib, Reused: false}, nil
}

// libraryUnits returns the unity chunks, or the sources themselves when unity is off.
func (o *Orchestrator) libraryUnits(spec LibrarySpec) ([]unit, error) {
	objDir := filepath.Join(domain.ObjDir(o.cfg.BuildDir), "lib")

	if spec.UnityChunks <= 0 {
		units := make([]unit, len(spec.Sources))
		for i, src := range spec.Sources {
			units[i] = unit{src: src, obj: o.objectPath(objDir, src)}
		}
		return units, nil
	}

	groups := Partition(o.cfg.Root, spec.Sources, spec.UnityChunks)
	chunks, err := WriteChunks(domain.UnityDir(o.cfg.BuildDir), objDir, groups)
	if err != nil {
		return nil, err
	}

	units := make([]unit, len(chunks))
	for i, c := range chunks {
		units[i] = unit{src: c.AggregatePath, obj: c.ObjectPath}
	}
	return units, nil
}

func (o *Orchestrator) archive(ctx context.Context, lib string, objs []string) error {
	if err := os.MkdirAll(filepath.Dir(lib), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", lib)
	}
	// Archivers append to an existing archive, so start from scratch.
	_ = os.Remove(lib)

	res, err := o.invoke(ctx, "archive", o.Toolchain.ArchiveCommand(lib, objs))
	if err != nil {
		return err
	}
	if !res.OK {
		return toolError(domain.ErrArchiveFailed, filepath.Base(lib), res)
	}
	return nil
}

// primeFingerprints records a baseline for every source so a later touch without a content
// change is not mistaken for an edit.
func (o *Orchestrator) primeFingerprints(sources []string) {
	for _, src := range sources {
		_, _ = o.Fingerprints.HasChanged(src, time.Time{})
	}
}

// toolError describes a non-zero tool exit. errors.Is matches sentinel.
func toolError(sentinel error, subject string, res domain.Result) error {
	err := zerr.With(zerr.Wrap(sentinel, subject), "exit_code", res.ExitCode)
	if out := strings.TrimSpace(res.Output); out != "" {
		err = zerr.With(err, "output", out)
	}
	return err
}

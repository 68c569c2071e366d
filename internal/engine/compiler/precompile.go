package compiler

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// BuildPCH precompiles the umbrella header unless the existing one can be reused.
// It returns an empty artifact when no header is configured.
func (o *Orchestrator) BuildPCH(ctx context.Context) (Artifact, error) {
	header := o.cfg.PCH.Header
	if header == "" {
		return Artifact{}, nil
	}

	out := o.PCHPath()
	tracked := o.trackedFiles(header)
	check := reuseCheck{
		name:         "precompiled header",
		artifact:     out,
		sources:      tracked,
		configHash:   o.configFingerprint("pch", header),
		state:        o.PCHState,
		fingerprints: o.PCHFingerprints,
	}

	if o.canReuse(check) {
		o.Metrics.ObserveReuse(domain.PCHSubject, true)
		o.Logger.Info("reusing " + filepath.Base(out))
		return Artifact{Path: out, Reused: true}, nil
	}
	o.Metrics.ObserveReuse(domain.PCHSubject, false)

	snap := o.PCHState.Snapshot(tracked)
	if err := o.PCHState.Invalidate(); err != nil {
		return Artifact{}, err
	}
	discard(out)

	if err := os.MkdirAll(filepath.Dir(out), domain.DirPerm); err != nil {
		return Artifact{}, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", out)
	}

	o.Logger.Info("precompiling " + filepath.Base(header))
	res, err := o.invoke(ctx, "pch", o.Toolchain.PrecompileCommand(header, out))
	if err != nil {
		discard(out)
		return Artifact{}, zerr.Wrap(err, domain.ErrPCHBuildFailed.Error())
	}
	if !res.OK {
		discard(out)
		return Artifact{}, toolError(domain.ErrPCHBuildFailed, filepath.Base(header), res)
	}

	if err := o.finish(check, snap); err != nil {
		return Artifact{}, err
	}
	return Artifact{Path: out}, nil
}

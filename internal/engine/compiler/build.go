package compiler

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// SelectTargets returns the configured targets named in names, or all of them when names is empty.
func SelectTargets(cfg *domain.BuildConfig, names []string) ([]domain.TargetConfig, error) {
	if len(names) == 0 {
		return cfg.Targets, nil
	}

	selected := make([]domain.TargetConfig, 0, len(names))
	for _, name := range names {
		t, ok := cfg.Target(name)
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrTargetNotFound, "unknown target"), "target", name)
		}
		selected = append(selected, t)
	}
	return selected, nil
}

// Build builds the shared library, then the precompiled header, then the named targets.
// The returned error is reserved for failures that stop the whole build; per-target
// failures are reported in the BatchReport. A precompiled header that fails to build only
// disables its use for this run.
func (o *Orchestrator) Build(ctx context.Context, names []string) (domain.BatchReport, error) {
	targets, err := SelectTargets(o.cfg, names)
	if err != nil {
		return domain.BatchReport{}, err
	}

	lib, err := o.BuildLibrary(ctx, LibrarySpec{
		Name:        o.cfg.Library.Name,
		Sources:     o.cfg.Library.Sources,
		UnityChunks: o.cfg.Library.UnityChunks,
	})
	if err != nil {
		return domain.BatchReport{}, err
	}

	pch, err := o.BuildPCH(ctx)
	if err != nil {
		o.Logger.Warn("continuing without precompiled header")
		o.Logger.Error(err)
		pch = Artifact{}
	}

	return o.BuildTargets(ctx, targets, Artifacts{Library: lib.Path, PCH: pch.Path}), nil
}

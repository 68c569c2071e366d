package compiler

import (
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// Status describes the shared artifacts without building or refreshing anything.
func (o *Orchestrator) Status() []domain.ArtifactStatus {
	out := []domain.ArtifactStatus{
		artifactStatus(domain.LibrarySubject, o.LibraryPath(), o.trackedFiles(o.cfg.Library.Sources...), o.LibraryState),
	}
	if o.cfg.PCH.Header != "" {
		out = append(out, artifactStatus(domain.PCHSubject, o.PCHPath(), o.trackedFiles(o.cfg.PCH.Header), o.PCHState))
	}
	return out
}

func artifactStatus(name, path string, sources []string, state ports.StateCache) domain.ArtifactStatus {
	st := domain.ArtifactStatus{Name: name, Path: path}
	if _, err := os.Stat(path); err == nil {
		st.Exists = true
	}
	if valid, err := state.IsValid(sources); err == nil {
		st.Valid = st.Exists && valid
	}
	if rec, err := state.Record(); err == nil {
		st.Record = rec
	}
	return st
}

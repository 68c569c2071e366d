package compiler

import (
	"os"
	"strings"

	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// reuseCheck describes a shared artifact and what it was built from.
type reuseCheck struct {
	name         string
	artifact     string
	sources      []string
	configHash   string
	state        ports.StateCache
	fingerprints ports.FingerprintStore
}

// configFingerprint hashes the source-independent part of the compiler invocation plus extra.
func (o *Orchestrator) configFingerprint(extra ...string) string {
	return fs.HashStrings(o.Toolchain.Fingerprint(), extra)
}

// canReuse reports whether the artifact may be used untouched. It must exist, its sidecar
// must hold the current config fingerprint, and either the state cache must still match the
// sources or no source may have changed since the artifact was written.
func (o *Orchestrator) canReuse(c reuseCheck) bool {
	if o.noCache {
		return false
	}

	info, err := os.Stat(c.artifact)
	if err != nil {
		return false
	}

	stored, err := os.ReadFile(domain.SidecarPath(c.artifact))
	if err != nil || strings.TrimSpace(string(stored)) != c.configHash {
		o.Logger.Info(c.name + ": configuration changed")
		return false
	}

	if valid, err := c.state.IsValid(c.sources); err == nil && valid {
		return true
	}

	for _, src := range c.sources {
		changed, err := c.fingerprints.HasChanged(src, info.ModTime())
		if err != nil || changed {
			return false
		}
	}

	// The sources match the artifact even though the recorded state does not, so refresh it.
	if err := c.state.Invalidate(); err == nil {
		o.commit(c.name, c.state, c.state.Snapshot(c.sources))
	}
	return true
}

// commit records snap and reports a lost race at info level only.
func (o *Orchestrator) commit(name string, state ports.StateCache, snap domain.StateSnapshot) {
	ok, err := state.Commit(snap)
	switch {
	case err != nil:
		o.Logger.Warn(name + ": could not record build state: " + err.Error())
	case !ok:
		o.Logger.Info(name + ": " + domain.ErrCacheRaceLost.Error() + ", a newer state is already recorded")
	}
}

// finish writes the sidecar and the state record of a freshly built artifact.
func (o *Orchestrator) finish(c reuseCheck, snap domain.StateSnapshot) error {
	if err := fs.WriteAtomic(domain.SidecarPath(c.artifact), []byte(c.configHash)); err != nil {
		return err
	}
	o.commit(c.name, c.state, snap)
	return nil
}

// discard removes an artifact and its sidecar. It runs before every rebuild as well as after a
// failed one, since the fingerprints may already describe the new sources.
func discard(artifact string) {
	_ = os.Remove(artifact)
	_ = os.Remove(domain.SidecarPath(artifact))
}

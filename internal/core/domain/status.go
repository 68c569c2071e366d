package domain

// ArtifactStatus describes a shared artifact without rebuilding it.
type ArtifactStatus struct {
	Name   string
	Path   string
	Exists bool
	// Valid reports whether the recorded file-set state still matches the sources.
	Valid  bool
	Record *AtomicCacheRecord
}

// StatusReport is the read-only view printed by the status command.
type StatusReport struct {
	Root      string
	BuildDir  string
	Targets   int
	Artifacts []ArtifactStatus
	// Fingerprints is the number of files the hash-assisted fingerprint store tracks.
	Fingerprints int
	// Cache is the collector plan for the current link cache under the configured policy.
	Cache GCStats
}

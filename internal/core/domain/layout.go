package domain

import "path/filepath"

const (
	// DefaultBuildDir is the default directory for kiln state and outputs.
	DefaultBuildDir = ".kiln"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "kiln.yaml"

	// FingerprintFileName is the hash-assisted fingerprint store file.
	FingerprintFileName = "fingerprints.json"

	// PCHFingerprintFileName is the mtime-only fingerprint store used for precompiled headers.
	PCHFingerprintFileName = "fingerprints-pch.json"

	// StateDirName holds the atomic state cache records and their lock files.
	StateDirName = "state"

	// ObjDirName holds compiled objects.
	ObjDirName = "obj"

	// UnityDirName holds generated unity aggregate sources.
	UnityDirName = "unity"

	// LibDirName holds the shared static library and precompiled header.
	LibDirName = "lib"

	// BinDirName holds cached linked executables, the directory the GC operates on.
	BinDirName = "bin"

	// ConfigSidecarExt is appended to an artifact path to name its config fingerprint sidecar.
	ConfigSidecarExt = ".cfg"

	// StateRecordExt is the suffix of an atomic state cache record file.
	StateRecordExt = ".state.json"

	// StateLockExt is the suffix of an atomic state cache lock file.
	StateLockExt = ".state.lock"

	// LibrarySubject is the state cache namespace of the shared static library.
	LibrarySubject = "library"

	// PCHSubject is the state cache namespace of the shared precompiled header.
	PCHSubject = "pch"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// FingerprintPath returns the hash-assisted fingerprint store file under buildDir.
func FingerprintPath(buildDir string) string {
	return filepath.Join(buildDir, FingerprintFileName)
}

// PCHFingerprintPath returns the mtime-only fingerprint store file under buildDir.
func PCHFingerprintPath(buildDir string) string {
	return filepath.Join(buildDir, PCHFingerprintFileName)
}

// StateDir returns the atomic state cache directory under buildDir.
func StateDir(buildDir string) string {
	return filepath.Join(buildDir, StateDirName)
}

// ObjDir returns the object directory under buildDir.
func ObjDir(buildDir string) string {
	return filepath.Join(buildDir, ObjDirName)
}

// UnityDir returns the unity aggregate directory under buildDir.
func UnityDir(buildDir string) string {
	return filepath.Join(buildDir, UnityDirName)
}

// LibDir returns the shared artifact directory under buildDir.
func LibDir(buildDir string) string {
	return filepath.Join(buildDir, LibDirName)
}

// BinDir returns the link cache directory under buildDir.
func BinDir(buildDir string) string {
	return filepath.Join(buildDir, BinDirName)
}

// SidecarPath returns the config fingerprint sidecar for an artifact.
func SidecarPath(artifact string) string {
	return artifact + ConfigSidecarExt
}

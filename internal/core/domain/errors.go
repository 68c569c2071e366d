package domain

import "go.trai.ch/zerr"

var (
	// ErrConfiguration is returned when a required configuration value is missing or invalid.
	ErrConfiguration = zerr.New("invalid configuration")

	// ErrConfigNotFound is returned when no kiln.yaml can be found.
	ErrConfigNotFound = zerr.New("could not find kiln.yaml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrToolInvocation is returned when the compiler, archiver or linker process could not be started.
	ErrToolInvocation = zerr.New("failed to start tool")

	// ErrCompileFailed is returned when a compiler invocation exits with a non-zero status.
	ErrCompileFailed = zerr.New("compilation failed")

	// ErrLinkFailed is returned when a linker invocation exits with a non-zero status.
	ErrLinkFailed = zerr.New("link failed")

	// ErrArchiveFailed is returned when the archiver exits with a non-zero status.
	ErrArchiveFailed = zerr.New("archive failed")

	// ErrTaskTimeout is returned when a submitted task did not finish within its deadline.
	ErrTaskTimeout = zerr.New("task timed out")

	// ErrLibraryBuildFailed is returned when any chunk of the shared library fails to compile.
	ErrLibraryBuildFailed = zerr.New("shared library build failed")

	// ErrPCHBuildFailed is returned when the precompiled header cannot be built.
	ErrPCHBuildFailed = zerr.New("precompiled header build failed")

	// ErrCacheRaceLost signals that a state commit was rejected because another process
	// already recorded a different file-set state.
	ErrCacheRaceLost = zerr.New("state cache commit rejected")

	// ErrBuildExecutionFailed is returned when one or more targets failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTargetNotFound is returned when a requested target is not configured.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrInvalidTransition is returned when a target is moved to a state its current state cannot reach.
	ErrInvalidTransition = zerr.New("invalid target state transition")

	// ErrStoreReadFailed is returned when a cache file cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache file")

	// ErrStoreWriteFailed is returned when a cache file cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache file")

	// ErrStoreMarshalFailed is returned when cache contents cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal cache contents")

	// ErrStoreCreateFailed is returned when a cache directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache directory")

	// ErrLockFailed is returned when the cross-process state lock cannot be acquired or released.
	ErrLockFailed = zerr.New("failed to lock state cache")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrSourceNotFound is returned when a source pattern matches no files.
	ErrSourceNotFound = zerr.New("source not found")

	// ErrUnityWriteFailed is returned when a unity aggregate file cannot be written.
	ErrUnityWriteFailed = zerr.New("failed to write unity aggregate")

	// ErrLinkCacheScanFailed is returned when the link cache directory cannot be read.
	ErrLinkCacheScanFailed = zerr.New("failed to scan link cache")

	// ErrLinkCacheDeleteFailed is returned when an evicted link artifact cannot be removed.
	ErrLinkCacheDeleteFailed = zerr.New("failed to remove link artifact")
)

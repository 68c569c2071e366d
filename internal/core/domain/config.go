package domain

import "time"

const (
	// DefaultMaxFailures is the number of reported failures after which a batch stops waiting.
	DefaultMaxFailures = 3

	// DefaultBatchTimeout bounds a whole target batch.
	DefaultBatchTimeout = 30 * time.Minute

	// DefaultTaskTimeout bounds a single target.
	DefaultTaskTimeout = 5 * time.Minute
)

// Toolchain holds the resolved argv prefixes of the native tools.
type Toolchain struct {
	Compiler []string
	Archiver []string
	Linker   []string
}

// LinkFlags holds link flags per platform family.
type LinkFlags struct {
	Posix   []string
	Windows []string
}

// LibraryConfig describes the shared static library every target links against.
type LibraryConfig struct {
	Name        string
	Sources     []string
	UnityChunks int
}

// PCHConfig names the umbrella header precompiled for eligible sources.
type PCHConfig struct {
	Header string
}

// TargetConfig describes one executable built from its own sources plus the shared library.
type TargetConfig struct {
	Name    string
	Sources []string
}

// Timeouts bounds batch execution.
type Timeouts struct {
	Batch time.Duration
	Task  time.Duration
}

// BuildConfig is the fully resolved input of a build. Paths are absolute.
type BuildConfig struct {
	Root         string
	BuildDir     string
	Jobs         int
	Toolchain    Toolchain
	Defines      []string
	Flags        []string
	IncludePaths []string
	LinkFlags    LinkFlags
	Library      LibraryConfig
	PCH          PCHConfig
	Targets      []TargetConfig
	Timeouts     Timeouts
	MaxFailures  int
	Cache        CachePolicy
	GCAfterBuild bool
}

// PlatformLinkFlags returns the link flags that apply on goos.
func (c *BuildConfig) PlatformLinkFlags(goos string) []string {
	if goos == "windows" {
		return c.LinkFlags.Windows
	}
	return c.LinkFlags.Posix
}

// Target returns the configured target with the given name.
func (c *BuildConfig) Target(name string) (TargetConfig, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return TargetConfig{}, false
}

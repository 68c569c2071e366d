package config

import (
	"time"

	"github.com/dustin/go-humanize"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Kilnfile represents the structure of kiln.yaml.
type Kilnfile struct {
	Version      string       `yaml:"version"`
	Root         string       `yaml:"root"`
	BuildDir     string       `yaml:"build_dir"`
	Jobs         int          `yaml:"jobs"`
	Toolchain    ToolchainDTO `yaml:"toolchain"`
	Defines      []string     `yaml:"defines"`
	Flags        []string     `yaml:"flags"`
	IncludePaths []string     `yaml:"include_paths"`
	LinkFlags    LinkFlagsDTO `yaml:"link_flags"`
	Library      LibraryDTO   `yaml:"library"`
	PCH          PCHDTO       `yaml:"pch"`
	Targets      []TargetDTO  `yaml:"targets"`
	Timeouts     TimeoutsDTO  `yaml:"timeouts"`
	MaxFailures  int          `yaml:"max_failures"`
	Cache        CacheDTO     `yaml:"cache"`
	GCAfterBuild bool         `yaml:"gc_after_build"`
}

// ToolchainDTO names the native tools. Each entry is an argv prefix.
type ToolchainDTO struct {
	Compiler []string `yaml:"compiler"`
	Archiver []string `yaml:"archiver"`
	Linker   []string `yaml:"linker"`
}

// LinkFlagsDTO holds link flags per platform family.
type LinkFlagsDTO struct {
	Posix   []string `yaml:"posix"`
	Windows []string `yaml:"windows"`
}

// LibraryDTO describes the shared static library.
type LibraryDTO struct {
	Name        string   `yaml:"name"`
	Sources     []string `yaml:"sources"`
	UnityChunks int      `yaml:"unity_chunks"`
}

// PCHDTO names the umbrella header.
type PCHDTO struct {
	Header string `yaml:"header"`
}

// TargetDTO describes one executable.
type TargetDTO struct {
	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources"`
}

// TimeoutsDTO uses Go duration syntax.
type TimeoutsDTO struct {
	Batch time.Duration `yaml:"batch"`
	Task  time.Duration `yaml:"task"`
}

// CacheDTO bounds the link cache.
type CacheDTO struct {
	MaxVersionsPerSubject int      `yaml:"max_versions_per_subject"`
	MaxAgeDays            int      `yaml:"max_age_days"`
	MaxTotalSize          ByteSize `yaml:"max_total_size"`
	PreserveAtLeastOne    *bool    `yaml:"preserve_at_least_one"`
}

// ByteSize accepts a plain byte count or a human string such as "2 GiB" or "500MB".
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		*b = 0
		return nil
	}
	n, err := humanize.ParseBytes(value.Value)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "invalid byte size"), "value", value.Value)
	}
	*b = ByteSize(n) //nolint:gosec // Sizes beyond 8 EiB are not meaningful here
	return nil
}

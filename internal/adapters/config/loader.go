// Package config loads kiln.yaml into a resolved build configuration.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only configuration schema version understood by this loader.
const SupportedVersion = "1"

var validNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.+-]*$`)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	Resolver *fs.Resolver
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger, resolver *fs.Resolver) *Loader {
	return &Loader{Logger: logger, Resolver: resolver}
}

// DiscoverRoot walks up from cwd to the first directory holding kiln.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	path, err := findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Load reads and resolves the configuration. An empty path discovers kiln.yaml from cwd;
// a relative path is taken relative to cwd.
func (l *Loader) Load(cwd, path string) (*domain.BuildConfig, error) {
	if path == "" {
		found, err := findConfiguration(cwd)
		if err != nil {
			return nil, err
		}
		path = found
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	var kf Kilnfile
	if err := readAndUnmarshalYAML(path, &kf); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	cfg, err := l.resolve(path, &kf)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

func findConfiguration(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "cwd", cwd)
	}

	for dir := abs; ; {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "searched every parent directory"), "cwd", cwd)
}

// readAndUnmarshalYAML decodes configPath strictly; unknown keys are parse errors.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered or given by the user
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

//nolint:cyclop // linear resolution of every section
func (l *Loader) resolve(configPath string, kf *Kilnfile) (*domain.BuildConfig, error) {
	if kf.Version != "" && kf.Version != SupportedVersion {
		return nil, invalid("unsupported version", "version", kf.Version)
	}

	root := resolveRoot(configPath, kf.Root)
	cfg := &domain.BuildConfig{
		Root:         root,
		BuildDir:     resolvePath(root, defaultString(kf.BuildDir, domain.DefaultBuildDir)),
		Jobs:         kf.Jobs,
		Defines:      kf.Defines,
		Flags:        kf.Flags,
		LinkFlags:    domain.LinkFlags{Posix: kf.LinkFlags.Posix, Windows: kf.LinkFlags.Windows},
		MaxFailures:  kf.MaxFailures,
		GCAfterBuild: kf.GCAfterBuild,
		Toolchain: domain.Toolchain{
			Compiler: kf.Toolchain.Compiler,
			Archiver: kf.Toolchain.Archiver,
			Linker:   kf.Toolchain.Linker,
		},
		Timeouts: domain.Timeouts{
			Batch: kf.Timeouts.Batch,
			Task:  kf.Timeouts.Task,
		},
		Cache: domain.CachePolicy{
			MaxVersionsPerSubject: kf.Cache.MaxVersionsPerSubject,
			MaxAgeDays:            kf.Cache.MaxAgeDays,
			MaxTotalSizeBytes:     int64(kf.Cache.MaxTotalSize),
			PreserveAtLeastOne:    kf.Cache.PreserveAtLeastOne == nil || *kf.Cache.PreserveAtLeastOne,
		},
	}

	if len(cfg.Toolchain.Compiler) == 0 {
		cfg.Toolchain.Compiler = defaultCompiler()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = domain.DefaultMaxFailures
	}
	if cfg.Timeouts.Batch == 0 {
		cfg.Timeouts.Batch = domain.DefaultBatchTimeout
	}
	if cfg.Timeouts.Task == 0 {
		cfg.Timeouts.Task = domain.DefaultTaskTimeout
	}

	if err := validateNumbers(kf); err != nil {
		return nil, err
	}

	for _, inc := range kf.IncludePaths {
		cfg.IncludePaths = append(cfg.IncludePaths, resolvePath(root, inc))
	}

	if !validNameRegex.MatchString(kf.Library.Name) {
		return nil, invalid("library name is missing or invalid", "library", kf.Library.Name)
	}
	if len(kf.Library.Sources) == 0 {
		return nil, invalid("library has no sources", "library", kf.Library.Name)
	}
	libSources, err := l.Resolver.ResolveSources(kf.Library.Sources, root)
	if err != nil {
		return nil, zerr.With(err, "library", kf.Library.Name)
	}
	cfg.Library = domain.LibraryConfig{
		Name:        kf.Library.Name,
		Sources:     libSources,
		UnityChunks: kf.Library.UnityChunks,
	}

	if kf.PCH.Header != "" {
		header := resolvePath(root, kf.PCH.Header)
		if info, err := os.Stat(header); err != nil || info.IsDir() {
			return nil, invalid("precompiled header not found", "header", kf.PCH.Header)
		}
		cfg.PCH.Header = header
	}

	seen := make(map[string]bool, len(kf.Targets))
	for _, t := range kf.Targets {
		if !validNameRegex.MatchString(t.Name) {
			return nil, invalid("target name is missing or invalid", "target", t.Name)
		}
		if seen[t.Name] {
			return nil, invalid("duplicate target", "target", t.Name)
		}
		seen[t.Name] = true

		if len(t.Sources) == 0 {
			return nil, invalid("target has no sources", "target", t.Name)
		}
		sources, err := l.Resolver.ResolveSources(t.Sources, root)
		if err != nil {
			return nil, zerr.With(err, "target", t.Name)
		}
		cfg.Targets = append(cfg.Targets, domain.TargetConfig{Name: t.Name, Sources: sources})
	}

	if len(cfg.Targets) == 0 && l.Logger != nil {
		l.Logger.Warn(domain.ConfigFileName + " defines no targets, only the library will be built")
	}

	return cfg, nil
}

func validateNumbers(kf *Kilnfile) error {
	checks := []struct {
		key   string
		value int64
	}{
		{"jobs", int64(kf.Jobs)},
		{"library.unity_chunks", int64(kf.Library.UnityChunks)},
		{"max_failures", int64(kf.MaxFailures)},
		{"timeouts.batch", int64(kf.Timeouts.Batch)},
		{"timeouts.task", int64(kf.Timeouts.Task)},
		{"cache.max_versions_per_subject", int64(kf.Cache.MaxVersionsPerSubject)},
		{"cache.max_age_days", int64(kf.Cache.MaxAgeDays)},
	}
	for _, c := range checks {
		if c.value < 0 {
			return invalid("value must not be negative", c.key, c.value)
		}
	}
	return nil
}

func invalid(msg, key string, value any) error {
	return zerr.With(zerr.Wrap(domain.ErrConfiguration, msg), key, value)
}

// defaultCompiler honors $CXX and falls back to c++.
func defaultCompiler() []string {
	if cxx := strings.Fields(os.Getenv("CXX")); len(cxx) > 0 {
		return cxx
	}
	return []string{"c++"}
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	return resolvePath(configDir, configuredRoot)
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

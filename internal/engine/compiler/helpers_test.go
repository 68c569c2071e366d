package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fingerprint"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/adapters/statecache"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/compiler"
	"go.trai.ch/kiln/internal/engine/pool"
	"go.uber.org/mock/gomock"
)

// scriptToolchain produces argv that fakeTools understands.
type scriptToolchain struct {
	flags []string
}

func (s *scriptToolchain) CompileCommand(src, obj, pch string) []string {
	argv := []string{"cc", src, "-o", obj}
	if pch != "" {
		argv = append(argv, "-include", pch)
	}
	return argv
}

func (s *scriptToolchain) PrecompileCommand(header, out string) []string {
	return []string{"pch", header, "-o", out}
}

func (s *scriptToolchain) PrecompiledPath(header, dir string) string {
	return filepath.Join(dir, filepath.Base(header)+".gch")
}

func (s *scriptToolchain) ArchiveCommand(lib string, objs []string) []string {
	return append([]string{"ar", lib}, objs...)
}

func (s *scriptToolchain) LinkCommand(exe string, objs []string, lib string, flags []string) []string {
	argv := append([]string{"ld", "-o", exe}, objs...)
	argv = append(argv, lib)
	return append(argv, flags...)
}

func (s *scriptToolchain) Fingerprint() []string {
	return append([]string{"cc"}, s.flags...)
}

// fakeTools emulates compiler, archiver and linker by copying file contents around.
type fakeTools struct {
	mu          sync.Mutex
	calls       [][]string
	failCompile map[string]bool
	failLink    map[string]bool
	failPCH     bool
	block       map[string]chan struct{}
	blocked     chan struct{}
}

func newFakeTools() *fakeTools {
	return &fakeTools{
		failCompile: map[string]bool{},
		failLink:    map[string]bool{},
		block:       map[string]chan struct{}{},
		blocked:     make(chan struct{}, 16),
	}
}

func (f *fakeTools) count(tool string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c[0] == tool {
			n++
		}
	}
	return n
}

func (f *fakeTools) compileArgv(srcBase string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c[0] == "cc" && filepath.Base(c[1]) == srcBase {
			return c
		}
	}
	return nil
}

func (f *fakeTools) invoke(_ context.Context, argv []string, _ string) (domain.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(argv))
	f.mu.Unlock()

	switch argv[0] {
	case "cc":
		src, obj := argv[1], argv[3]
		base := filepath.Base(src)
		if ch, ok := f.block[base]; ok {
			f.blocked <- struct{}{}
			<-ch
			return domain.Result{OK: false, Output: "interrupted", ExitCode: 1}, nil
		}
		if f.failCompile[base] {
			return domain.Result{OK: false, Output: "error: " + base + " does not compile", ExitCode: 1}, nil
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.Result{OK: true}, os.WriteFile(obj, append([]byte("obj:"), data...), 0o600)
	case "pch":
		if f.failPCH {
			return domain.Result{OK: false, Output: "error: bad header", ExitCode: 1}, nil
		}
		return domain.Result{OK: true}, os.WriteFile(argv[3], []byte("gch"), 0o600)
	case "ar":
		var blob []byte
		for _, obj := range argv[2:] {
			data, err := os.ReadFile(obj)
			if err != nil {
				return domain.Result{}, err
			}
			blob = append(blob, data...)
		}
		return domain.Result{OK: true}, os.WriteFile(argv[1], blob, 0o600)
	case "ld":
		exe := argv[2]
		name := strings.SplitN(filepath.Base(exe), "_", 2)[0]
		if f.failLink[name] {
			_ = os.WriteFile(exe, []byte("partial"), 0o600)
			return domain.Result{OK: false, Output: "undefined reference to main", ExitCode: 1}, nil
		}
		return domain.Result{OK: true}, os.WriteFile(exe, []byte(strings.Join(argv, " ")), 0o600)
	}
	return domain.Result{}, domain.ErrToolInvocation
}

type harness struct {
	t     *testing.T
	root  string
	cfg   *domain.BuildConfig
	tools *fakeTools
	tc    *scriptToolchain
	ctrl  *gomock.Controller
	now   time.Time
}

var baseTime = time.Now().Add(-72 * time.Hour).Truncate(time.Second)

func writeSource(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	src := func(rel, content string) string {
		p := filepath.Join(root, rel)
		writeSource(t, p, content, baseTime)
		return p
	}

	lib := []string{
		src("src/a.cpp", "int a() { return 1; }\n"),
		src("src/b.cpp", "int b() { return 2; }\n"),
		src("src/c.cpp", "int c() { return 3; }\n"),
	}
	header := src("include/all.h", "#pragma once\n")
	t1 := src("tests/t1.cpp", "#include \"all.h\"\nint main() {}\n")
	t2 := src("tests/t2.cpp", "#define FAST 1\n#include \"all.h\"\nint main() {}\n")

	cfg := &domain.BuildConfig{
		Root:     root,
		BuildDir:     filepath.Join(root, ".kiln"),
		IncludePaths: []string{filepath.Join(root, "include")},
		LinkFlags: domain.LinkFlags{
			Posix:   []string{"-pthread", "-lm"},
			Windows: []string{"/SUBSYSTEM:CONSOLE"},
		},
		Library: domain.LibraryConfig{Name: "core", Sources: lib, UnityChunks: 2},
		PCH:     domain.PCHConfig{Header: header},
		Targets: []domain.TargetConfig{
			{Name: "t1", Sources: []string{t1}},
			{Name: "t2", Sources: []string{t2}},
		},
		Timeouts:    domain.Timeouts{Batch: time.Minute, Task: time.Minute},
		MaxFailures: 3,
	}

	return &harness{
		t:     t,
		root:  root,
		cfg:   cfg,
		tools: newFakeTools(),
		tc:    &scriptToolchain{flags: []string{"-O2"}},
		ctrl:  gomock.NewController(t),
		now:   baseTime.Add(24 * time.Hour),
	}
}

// orchestrator builds a fresh orchestrator over the same build dir, like a new process would.
func (h *harness) orchestrator(opts ...compiler.Option) *compiler.Orchestrator {
	logger := mocks.NewMockLogger(h.ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	invoker := mocks.NewMockToolInvoker(h.ctrl)
	invoker.EXPECT().Invoke(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(h.tools.invoke).AnyTimes()

	buildDir := h.cfg.BuildDir
	deps := compiler.Deps{
		Pool:            pool.New(4),
		Invoker:         invoker,
		Toolchain:       h.tc,
		Fingerprints:    fingerprint.Open(domain.FingerprintPath(buildDir), fingerprint.WithLogger(logger)),
		PCHFingerprints: fingerprint.Open(domain.PCHFingerprintPath(buildDir), fingerprint.WithMtimeOnly()),
		LibraryState:    statecache.New(domain.StateDir(buildDir), domain.LibrarySubject),
		PCHState:        statecache.New(domain.StateDir(buildDir), domain.PCHSubject),
		Logger:          logger,
		Metrics:         metrics.NewNoop(),
	}

	opts = append([]compiler.Option{
		compiler.WithGOOS("linux"),
		compiler.WithClock(func() time.Time { return h.now }),
	}, opts...)
	return compiler.New(h.cfg, deps, opts...)
}

package compiler_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/compiler"
)

func TestBuildTargets_CompileFailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.tools.failCompile["t1.cpp"] = true

	report, err := h.orchestrator().Build(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, report.Targets, 2)
	require.Len(t, report.Failures, 1)
	assert.False(t, report.OK())

	failed := report.Failures[0]
	assert.Equal(t, "t1", failed.Name)
	assert.Equal(t, domain.StateCompileFailed, failed.State)
	assert.Equal(t, 1, failed.Compile.ExitCode)
	require.ErrorIs(t, failed.Err, domain.ErrCompileFailed)
	assert.Contains(t, failed.FailureOutput(), "does not compile")
	assert.Empty(t, failed.Executable)

	assert.Equal(t, domain.StateLinked, report.Targets[1].State)
	assert.Equal(t, 1, h.tools.count("ld"))
}

func TestBuildTargets_LinkFailureRemovesExecutable(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.tools.failLink["t2"] = true

	report, err := h.orchestrator().Build(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	failed := report.Failures[0]
	assert.Equal(t, domain.StateLinkFailed, failed.State)
	assert.Equal(t, 1, failed.Link.ExitCode)
	assert.False(t, failed.Link.OK)
	require.ErrorIs(t, failed.Err, domain.ErrLinkFailed)
	assert.Contains(t, failed.FailureOutput(), "undefined reference")
	assert.NoFileExists(t, failed.Executable)

	// A later run must link again rather than hit a partial file.
	delete(h.tools.failLink, "t2")
	report, err = h.orchestrator().Build(context.Background(), []string{"t2"})
	require.NoError(t, err)
	require.Len(t, report.Targets, 1)
	assert.False(t, report.Targets[0].CacheHit)
	assert.Equal(t, domain.StateLinked, report.Targets[0].State)
}

func TestBuildTargets_BreakerStopsReporting(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.cfg.MaxFailures = 2

	targets := make([]domain.TargetConfig, 5)
	for i := range targets {
		name := fmt.Sprintf("f%d", i)
		src := filepath.Join(h.root, "tests", name+".cpp")
		writeSource(t, src, "int main() { return 1 }\n", baseTime)
		h.tools.failCompile[name+".cpp"] = true
		targets[i] = domain.TargetConfig{Name: name, Sources: []string{src}}
	}

	report := h.orchestrator().BuildTargets(context.Background(), targets, compiler.Artifacts{})

	assert.Len(t, report.Failures, 2)
	assert.Len(t, report.Targets, 2)
	assert.Equal(t, 3, report.Unreported)
	assert.Zero(t, report.TimedOut)
	assert.False(t, report.OK())
}

func TestBuildTargets_TaskTimeout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.cfg.Timeouts.Task = 50 * time.Millisecond
	release := make(chan struct{})
	h.tools.block["t1.cpp"] = release
	t.Cleanup(func() { close(release) })

	art := buildShared(t, h)
	report := h.orchestrator().BuildTargets(context.Background(), h.cfg.Targets, art)

	require.Len(t, report.Targets, 2)
	assert.Equal(t, 1, report.TimedOut)

	timedOut := report.Targets[0]
	assert.Equal(t, "t1", timedOut.Name)
	assert.Equal(t, domain.StateCompileFailed, timedOut.State)
	assert.Equal(t, -1, timedOut.Compile.ExitCode)
	require.ErrorIs(t, timedOut.Err, domain.ErrTaskTimeout)

	assert.Equal(t, domain.StateLinked, report.Targets[1].State)
}

func TestBuildTargets_BatchTimeout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.cfg.Timeouts.Batch = 50 * time.Millisecond
	release := make(chan struct{})
	h.tools.block["t1.cpp"] = release
	h.tools.block["t2.cpp"] = release
	t.Cleanup(func() { close(release) })

	start := time.Now()
	report := h.orchestrator().BuildTargets(context.Background(), h.cfg.Targets, compiler.Artifacts{})

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, 2, report.TimedOut)
	require.Len(t, report.Failures, 2)
	for _, r := range report.Failures {
		assert.Equal(t, domain.StateCompileFailed, r.State)
		require.ErrorIs(t, r.Err, domain.ErrTaskTimeout)
	}
}

func TestBuildTargets_ExecutableSuffixFollowsPlatform(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	art := buildShared(t, h)
	report := h.orchestrator(compiler.WithGOOS("windows")).BuildTargets(context.Background(), h.cfg.Targets[:1], art)

	require.Len(t, report.Targets, 1)
	assert.Equal(t, ".exe", filepath.Ext(report.Targets[0].Executable))
	assert.Contains(t, h.tools.calls[len(h.tools.calls)-1], "/SUBSYSTEM:CONSOLE")
}

func TestBuildTargets_FlagChangeChangesKey(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	art := buildShared(t, h)
	first := h.orchestrator().BuildTargets(context.Background(), h.cfg.Targets[:1], art)

	h.cfg.LinkFlags.Posix = []string{"-lm"}
	second := h.orchestrator().BuildTargets(context.Background(), h.cfg.Targets[:1], art)

	require.True(t, first.OK())
	require.True(t, second.OK())
	assert.NotEqual(t, first.Targets[0].CacheKey, second.Targets[0].CacheKey)
	assert.False(t, second.Targets[0].CacheHit)
	assert.FileExists(t, first.Targets[0].Executable, "older versions stay for the collector")
}

func buildShared(t *testing.T, h *harness) compiler.Artifacts {
	t.Helper()

	orch := h.orchestrator()
	lib, err := orch.BuildLibrary(context.Background(), librarySpec(h))
	require.NoError(t, err)
	pch, err := orch.BuildPCH(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(lib.Path)
	require.NoError(t, err)
	return compiler.Artifacts{Library: lib.Path, PCH: pch.Path}
}

package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestRecorder_GatherAndWrite(t *testing.T) {
	t.Parallel()

	r := metrics.New()
	r.ObserveTool("compile", 150*time.Millisecond, true)
	r.ObserveTool("link", 20*time.Millisecond, false)
	r.ObserveReuse(domain.LibrarySubject, true)
	r.ObserveTarget(domain.StateLinked, true)
	r.ObserveGC(domain.GCStats{FilesRemoved: 2, BytesFreed: 2048, BytesKept: 4096}, false)

	mfs, err := r.Gatherer().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "kiln_tool_duration_seconds")
	assert.Contains(t, names, "kiln_artifact_reuse_total")
	assert.Contains(t, names, "kiln_targets_total")
	assert.Contains(t, names, "kiln_gc_kept_bytes")

	path := filepath.Join(t.TempDir(), "kiln.prom")
	require.NoError(t, r.WriteTo(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `kiln_targets_total{cache_hit="true",state="LINKED"} 1`)
	assert.Contains(t, string(data), `kiln_gc_freed_bytes_total{dry_run="false"} 2048`)
}

func TestRecorder_WriteToEmptyPath(t *testing.T) {
	t.Parallel()
	require.NoError(t, metrics.New().WriteTo(""))
}

func TestNoop(t *testing.T) {
	t.Parallel()

	m := metrics.NewNoop()
	m.ObserveTool("compile", time.Second, true)
	m.ObserveReuse("pch", false)
	m.ObserveTarget(domain.StateLinkFailed, false)
	m.ObserveGC(domain.GCStats{}, true)
	require.NoError(t, m.WriteTo("/nonexistent/dir/file"))
}

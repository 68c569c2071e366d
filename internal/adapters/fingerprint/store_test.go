package fingerprint_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fingerprint"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func writeAt(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestStore_HasChanged_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")
	writeAt(t, src, "int a;", base)
	store := fingerprint.Open(filepath.Join(dir, "fp.json"))

	reference := base.Add(-time.Hour)

	changed, err := store.HasChanged(src, reference)
	require.NoError(t, err)
	assert.True(t, changed, "first sighting has no baseline")

	changed, err = store.HasChanged(src, reference)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = store.HasChanged(src, reference)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStore_HasChanged_FastPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")
	writeAt(t, src, "int a;", base)
	store := fingerprint.Open(filepath.Join(dir, "fp.json"))

	changed, err := store.HasChanged(src, base)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, store.Len(), "fast path must not record anything")
}

func TestStore_HasChanged_TouchWithoutModify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")
	writeAt(t, src, "int a;", base)
	store := fingerprint.Open(filepath.Join(dir, "fp.json"))

	_, err := store.HasChanged(src, base.Add(-time.Hour))
	require.NoError(t, err)

	touched := base.Add(time.Minute)
	require.NoError(t, os.Chtimes(src, touched, touched))

	changed, err := store.HasChanged(src, base)
	require.NoError(t, err)
	assert.False(t, changed)

	entry, ok := store.Entry(src)
	require.True(t, ok)
	assert.InDelta(t, float64(touched.Unix()), entry.ModificationTime, 1e-6)
}

func TestStore_HasChanged_AppendDetected(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")
	writeAt(t, src, "int a;", base)
	store := fingerprint.Open(filepath.Join(dir, "fp.json"))

	_, err := store.HasChanged(src, base.Add(-time.Hour))
	require.NoError(t, err)

	writeAt(t, src, "int a;\n", base.Add(time.Minute))

	changed, err := store.HasChanged(src, base)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.HasChanged(src, base)
	require.NoError(t, err)
	assert.False(t, changed, "the new content is now the baseline")
}

func TestStore_MtimeOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "all.h")
	writeAt(t, src, "#pragma once", base)
	store := fingerprint.Open(filepath.Join(dir, "fp-pch.json"), fingerprint.WithMtimeOnly())

	changed, err := store.HasChanged(src, base.Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.HasChanged(src, base.Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, changed, "mtime-only mode never consults content")

	changed, err = store.HasChanged(src, base)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = store.HasChanged(src, base.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStore_HasChanged_Missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := fingerprint.Open(filepath.Join(dir, "fp.json"))

	_, err := store.HasChanged(filepath.Join(dir, "nope.cpp"), base)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStore_Persistence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")
	storePath := filepath.Join(dir, "cache", "fp.json")
	writeAt(t, src, "int a;", base)

	first := fingerprint.Open(storePath)
	_, err := first.HasChanged(src, base.Add(-time.Hour))
	require.NoError(t, err)

	second := fingerprint.Open(storePath)
	assert.Equal(t, 1, second.Len())

	changed, err := second.HasChanged(src, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, changed, "the reopened store shares the recorded baseline")
}

func TestStore_CorruptFileResets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	storePath := filepath.Join(dir, "fp.json")
	require.NoError(t, os.WriteFile(storePath, []byte("{ not json"), 0o600))

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	store := fingerprint.Open(storePath, fingerprint.WithLogger(logger))
	assert.Equal(t, 0, store.Len())

	src := filepath.Join(dir, "a.cpp")
	writeAt(t, src, "x", base)
	changed, err := store.HasChanged(src, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	reopened := fingerprint.Open(storePath)
	assert.Equal(t, 1, reopened.Len(), "the corrupt file is overwritten on the next mutation")
}

func TestStore_CanonicalKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")
	writeAt(t, src, "int a;", base)
	link := filepath.Join(dir, "link.cpp")
	if err := os.Symlink(src, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	store := fingerprint.Open(filepath.Join(dir, "fp.json"))
	_, err := store.HasChanged(src, base.Add(-time.Hour))
	require.NoError(t, err)

	changed, err := store.HasChanged(link, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Forget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")
	writeAt(t, src, "int a;", base)
	store := fingerprint.Open(filepath.Join(dir, "fp.json"))

	_, err := store.HasChanged(src, base.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, store.Forget(src))
	assert.Equal(t, 0, store.Len())
	require.NoError(t, store.Forget(src))

	changed, err := store.HasChanged(src, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStore_ConcurrentCallers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := fingerprint.Open(filepath.Join(dir, "fp.json"))

	const n = 16
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, "src"+string(rune('a'+i))+".cpp")
		writeAt(t, paths[i], paths[i], base)
	}

	var wg sync.WaitGroup
	for _, p := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.HasChanged(p, base.Add(-time.Hour))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, fingerprint.Open(filepath.Join(dir, "fp.json")).Len())
}

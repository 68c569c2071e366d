package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/compiler"
)

func TestLinkKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}
	lib := write("libcore.a", "lib")
	a := write("a.o", "a")
	b := write("b.o", "b")

	key, err := compiler.LinkKey(lib, []string{a, b}, []string{"-pthread", "-lm"})
	require.NoError(t, err)
	assert.Len(t, key, domain.CacheKeyLen)
	assert.Regexp(t, `^[0-9a-f]+$`, key)

	t.Run("flag order is irrelevant", func(t *testing.T) {
		t.Parallel()
		other, err := compiler.LinkKey(lib, []string{a, b}, []string{"-lm", "-pthread"})
		require.NoError(t, err)
		assert.Equal(t, key, other)
	})

	t.Run("object order matters", func(t *testing.T) {
		t.Parallel()
		other, err := compiler.LinkKey(lib, []string{b, a}, []string{"-pthread", "-lm"})
		require.NoError(t, err)
		assert.NotEqual(t, key, other)
	})

	t.Run("flags matter", func(t *testing.T) {
		t.Parallel()
		other, err := compiler.LinkKey(lib, []string{a, b}, []string{"-pthread"})
		require.NoError(t, err)
		assert.NotEqual(t, key, other)
	})

	t.Run("content not path", func(t *testing.T) {
		t.Parallel()
		copyDir := t.TempDir()
		lib2 := filepath.Join(copyDir, "libcore.a")
		require.NoError(t, os.WriteFile(lib2, []byte("lib"), 0o600))
		other, err := compiler.LinkKey(lib2, []string{a, b}, []string{"-pthread", "-lm"})
		require.NoError(t, err)
		assert.Equal(t, key, other)

		changed := filepath.Join(copyDir, "libother.a")
		require.NoError(t, os.WriteFile(changed, []byte("lib2"), 0o600))
		other, err = compiler.LinkKey(changed, []string{a, b}, []string{"-pthread", "-lm"})
		require.NoError(t, err)
		assert.NotEqual(t, key, other)
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()
		_, err := compiler.LinkKey(filepath.Join(dir, "nope.a"), nil, nil)
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

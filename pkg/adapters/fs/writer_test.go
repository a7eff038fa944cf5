package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceFile(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "index.md")
		require.NoError(t, replaceFile(dst, []byte("# index"), 0o600))

		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "# index", string(got))

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("Replaces Previous Document", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "history.md")
		require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))
		require.NoError(t, replaceFile(dst, []byte("new"), 0o644))

		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})

	t.Run("Missing Directory Is An Error", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "absent", "index.md")
		err := replaceFile(dst, []byte("x"), 0o644)
		require.Error(t, err)
		assert.Contains(t, err.Error(), dst)
	})

	t.Run("Staging Files Are Cleaned Up", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, replaceFile(filepath.Join(dir, "index.md"), []byte("a"), 0o644))

		// A directory in the way makes the rename fail after staging.
		blocked := filepath.Join(dir, "history.md")
		require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0o755))
		assert.Error(t, replaceFile(blocked, []byte("b"), 0o644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), e.Name())
		}
	})
}

func TestTextWriter(t *testing.T) {
	t.Run("Normalizes Line Endings", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "index.md")
		require.NoError(t, NewTextWriter().WriteText(dst, "a\r\nb\rc\n"))

		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "a\nb\nc\n", string(got))
	})

	t.Run("Zero Perm Uses Default", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "index.md")
		require.NoError(t, (&TextWriter{}).WriteText(dst, "x"))

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, DefaultFilePerm, info.Mode().Perm())
	})

	t.Run("Repairs Invalid UTF-8", func(t *testing.T) {
		assert.Equal(t, "ok\uFFFD", NormalizeText("ok\xff"))
		assert.Equal(t, "héllo", NormalizeText("héllo"))
	})
}

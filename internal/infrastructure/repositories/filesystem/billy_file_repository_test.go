//go:build unit

package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/manifestpush/internal/infrastructure/repositories/filesystem"
)

func TestBillyFileRepositoryReadFile(t *testing.T) {
	t.Parallel()

	t.Run("should return the complete file contents", func(t *testing.T) {
		t.Parallel()

		// given
		fs := memfs.New()
		require.NoError(t, util.WriteFile(fs, "build/manifest.json", []byte(`{"v":2}`), 0o644))
		repo := filesystem.NewBillyFileRepository(fs)

		// when
		data, err := repo.ReadFile("build/manifest.json")

		// then
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"v":2}`), data)
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		t.Parallel()

		// given
		repo := filesystem.NewBillyFileRepository(memfs.New())

		// when
		_, err := repo.ReadFile("missing.json")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.json")
	})

	t.Run("should refuse to read a directory", func(t *testing.T) {
		t.Parallel()

		// given
		fs := memfs.New()
		require.NoError(t, fs.MkdirAll("build", 0o755))
		repo := filesystem.NewBillyFileRepository(fs)

		// when
		_, err := repo.ReadFile("build")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})

	t.Run("should read empty files", func(t *testing.T) {
		t.Parallel()

		// given
		fs := memfs.New()
		require.NoError(t, util.WriteFile(fs, "empty.txt", nil, 0o644))
		repo := filesystem.NewBillyFileRepository(fs)

		// when
		data, err := repo.ReadFile("empty.txt")

		// then
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestWorkingDirFileRepositoryReadFile(t *testing.T) {
	t.Parallel()

	t.Run("should read an absolute host path", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "manifest.yaml")
		require.NoError(t, os.WriteFile(path, []byte("image: app:1.2.3\n"), 0o600))
		repo := filesystem.NewWorkingDirFileRepository()

		// when
		data, err := repo.ReadFile(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "image: app:1.2.3\n", string(data))
	})
}

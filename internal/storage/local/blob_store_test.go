// Package local_test tests the local filesystem blob store.
package local_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/launch-table-crawler/internal/storage"
	"github.com/JakeFAU/launch-table-crawler/internal/storage/local"
)

func TestNew(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		store, err := local.New(local.Config{BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("CreatesMissingBaseDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data", "launches")
		_, err := local.New(local.Config{BaseDir: dir})
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := local.New(local.Config{})
		assert.Error(t, err)
	})

	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "launches.json")
		require.NoError(t, os.WriteFile(file, []byte("[]"), 0o600))

		_, err := local.New(local.Config{BaseDir: file})
		assert.Error(t, err)
	})

	t.Run("BaseDirNotWritable", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}
		tempDir := t.TempDir()
		// #nosec G302 -- directory permissions adjusted intentionally for test coverage.
		require.NoError(t, os.Chmod(tempDir, 0o500))
		t.Cleanup(func() {
			// #nosec G302 -- reverting permissions to allow cleanup.
			_ = os.Chmod(tempDir, 0o700)
		})

		_, err := local.New(local.Config{BaseDir: tempDir})
		assert.Error(t, err)
	})
}

func TestPutObject(t *testing.T) {
	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("ValidPut", func(t *testing.T) {
		uri, err := store.PutObject(ctx, "launches.json", "application/json", strings.NewReader(`[{"flight":1}]`))
		require.NoError(t, err)
		assert.Equal(t, "file://"+filepath.Join(tempDir, "launches.json"), uri)

		// #nosec G304 -- test reads from the controlled temp directory.
		readData, err := os.ReadFile(filepath.Join(tempDir, "launches.json"))
		require.NoError(t, err)
		assert.Equal(t, `[{"flight":1}]`, string(readData))
	})

	t.Run("OverwriteReplacesContent", func(t *testing.T) {
		_, err := store.PutObject(ctx, "world.json", "application/json", strings.NewReader(`[1,2,3,4,5,6]`))
		require.NoError(t, err)
		_, err = store.PutObject(ctx, "world.json", "application/json", strings.NewReader(`[1]`))
		require.NoError(t, err)

		// #nosec G304 -- test reads from the controlled temp directory.
		readData, err := os.ReadFile(filepath.Join(tempDir, "world.json"))
		require.NoError(t, err)
		assert.Equal(t, `[1]`, string(readData))

		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-", "temp files must not be left behind")
		}
	})

	t.Run("EmptyPath", func(t *testing.T) {
		_, err := store.PutObject(ctx, "", "application/json", strings.NewReader("[]"))
		assert.Error(t, err)
	})

	t.Run("PathTraversal", func(t *testing.T) {
		_, err := store.PutObject(ctx, "../escape.json", "application/json", strings.NewReader("[]"))
		assert.ErrorContains(t, err, "path traversal")
	})

	t.Run("NestedPath", func(t *testing.T) {
		path := "2025/q1/world_launches_q1.json"
		uri, err := store.PutObject(ctx, path, "application/json", strings.NewReader("[]"))
		require.NoError(t, err)
		assert.Equal(t, "file://"+filepath.Join(tempDir, path), uri)
	})
}

func TestGetObject(t *testing.T) {
	store, err := local.New(local.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.PutObject(ctx, "f9_launches_2025.json", "application/json", strings.NewReader(`[]`))
	require.NoError(t, err)

	rc, err := store.GetObject(ctx, "f9_launches_2025.json")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, `[]`, string(body))

	_, err = store.GetObject(ctx, "missing.json")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetObject(ctx, "../../etc/passwd")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

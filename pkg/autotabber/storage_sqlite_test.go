//go:build !js && !wasm

package autotabber

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/AutoTabber/pkg/models"
)

func TestNewSQLiteStorageFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env", "history.sqlite3")
	t.Setenv("AUTOTAB_DB_PATH", path)

	store, err := NewSQLiteStorage("")
	require.NoError(t, err)
	defer store.Close()

	id, err := store.SaveRecording(models.Recording{Source: "env", Settings: models.Settings{Key: "C"}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = os.Stat(path)
	assert.NoError(t, err, "database should be created at AUTOTAB_DB_PATH")
}

func TestNewSQLiteStorageExplicitPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTOTAB_DB_PATH", filepath.Join(dir, "ignored.sqlite3"))
	path := filepath.Join(dir, "explicit.sqlite3")

	store, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ignored.sqlite3"))
	assert.True(t, os.IsNotExist(err))
}

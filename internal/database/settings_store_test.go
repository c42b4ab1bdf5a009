package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary SQLite DB for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Connect(dbPath)
	require.NoError(t, err, "Failed to connect to test DB")
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestSettingsStore_GetSet(t *testing.T) {
	db := setupTestDB(t)
	store := NewSettingsStore(db)
	ctx := context.Background()

	_, err := store.Get(ctx, "emoteSize")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "emoteSize", "2em"))
	v, err := store.Get(ctx, "emoteSize")
	require.NoError(t, err)
	assert.Equal(t, "2em", v)

	require.NoError(t, store.Set(ctx, "emoteSize", "28px"))
	v, err = store.Get(ctx, "emoteSize")
	require.NoError(t, err)
	assert.Equal(t, "28px", v)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"emoteSize": "28px"}, all)

	require.NoError(t, store.Delete(ctx, "emoteSize"))
	require.NoError(t, store.Delete(ctx, "emoteSize"))
	_, err = store.Get(ctx, "emoteSize")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConnect_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "settings.db")
	ctx := context.Background()

	db, err := Connect(dbPath)
	require.NoError(t, err)
	require.NoError(t, NewSettingsStore(db).Set(ctx, "emoteSize", "3em"))
	require.NoError(t, db.Close())

	db, err = Connect(dbPath)
	require.NoError(t, err, "migrations are idempotent")
	defer db.Close()
	v, err := NewSettingsStore(db).Get(ctx, "emoteSize")
	require.NoError(t, err)
	assert.Equal(t, "3em", v)
	assert.Equal(t, dbPath, db.Path())
}

func TestBackupRestore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "settings.db")
	backupPath := filepath.Join(dir, "backup.db")
	ctx := context.Background()

	db, err := Connect(dbPath)
	require.NoError(t, err)
	store := NewSettingsStore(db)
	require.NoError(t, store.Set(ctx, "emoteSize", "1em"))
	require.NoError(t, db.Backup(ctx, backupPath))
	require.NoError(t, store.Set(ctx, "emoteSize", "40px"))

	require.NoError(t, db.Restore(backupPath))

	db, err = Connect(dbPath)
	require.NoError(t, err)
	defer db.Close()
	v, err := NewSettingsStore(db).Get(ctx, "emoteSize")
	require.NoError(t, err)
	assert.Equal(t, "1em", v)
}

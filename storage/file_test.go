package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/pairwatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tracker.json")
}

func TestFileStore_MissingFileLoadsEmpty(t *testing.T) {
	store := NewFile(tempStorePath(t))

	entries, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFile(tempStorePath(t))
	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	saved := []core.Entry{
		{Address: "a", SentAt: sentAt},
		{Address: "b", SentAt: sentAt.Add(time.Minute)},
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a", loaded[0].Address)
	assert.True(t, loaded[0].SentAt.Equal(sentAt))
	assert.Equal(t, "b", loaded[1].Address)
}

func TestFileStore_LegacySchemaUpgraded(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte(`["A","B"]`), 0o644))

	store := NewFile(path)
	entries, err := store.Load()
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Address)
	assert.Equal(t, "B", entries[1].Address)
	assert.False(t, entries[0].SentAt.IsZero())

	// The file is rewritten in the new schema.
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var upgraded []core.Entry
	require.NoError(t, json.Unmarshal(data, &upgraded))
	require.Len(t, upgraded, 2)
	assert.Equal(t, "A", upgraded[0].Address)
}

func TestFileStore_EmptyFileLoadsEmpty(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	store := NewFile(path)
	entries, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStore_CorruptFileReturnsError(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	store := NewFile(path)
	_, err := store.Load()
	assert.Error(t, err)
}

func TestFileStore_SaveReplacesPreviousContent(t *testing.T) {
	store := NewFile(tempStorePath(t))
	sentAt := time.Now().UTC()

	require.NoError(t, store.Save([]core.Entry{{Address: "a", SentAt: sentAt}, {Address: "b", SentAt: sentAt}}))
	require.NoError(t, store.Save([]core.Entry{{Address: "b", SentAt: sentAt}}))

	entries, err := store.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Address)
}

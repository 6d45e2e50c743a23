package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"), "audit")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		err := store.Append(Entry{
			Actor:     "admin:9",
			Operation: "user.delete",
			Entity:    "user",
			EntityID:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	entries, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest first.
	assert.EqualValues(t, 3, entries[0].EntityID)
	assert.EqualValues(t, 1, entries[2].EntityID)
	assert.NotEmpty(t, entries[0].ID)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(Entry{Operation: "card.add", Entity: "card", EntityID: int64(i)}))
	}

	entries, err := store.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPurgeBefore(t *testing.T) {
	store := openTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()
	require.NoError(t, store.Append(Entry{Operation: "user.create", Entity: "user", EntityID: 1, Timestamp: old}))
	require.NoError(t, store.Append(Entry{Operation: "user.create", Entity: "user", EntityID: 2, Timestamp: recent}))

	require.NoError(t, store.PurgeBefore(time.Now().Add(-24*time.Hour)))

	entries, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].EntityID)
}

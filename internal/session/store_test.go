package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vereinsportal/internal/models"
)

func TestStore_SetCurrentClear(t *testing.T) {
	store := NewStore("")

	_, ok := store.Current()
	assert.False(t, ok, "fresh store must be logged out")

	sess := models.Session{Username: "anna", Role: models.RoleUser, Token: "tok"}
	require.NoError(t, store.Set(sess))

	got, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, sess, got)

	token, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "tok", token)

	require.NoError(t, store.Clear())
	_, ok = store.Current()
	assert.False(t, ok)
	_, ok = store.Token()
	assert.False(t, ok)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewStore(path)
	require.NoError(t, first.Load())
	require.NoError(t, first.Set(models.Session{Username: "anna", Role: models.RoleAdmin, Token: "tok"}))

	second := NewStore(path)
	require.NoError(t, second.Load())
	sess, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, "anna", sess.Username)
	assert.True(t, sess.IsAdmin())

	require.NoError(t, second.Clear())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "clear must remove the session file")

	third := NewStore(path)
	require.NoError(t, third.Load())
	_, ok = third.Current()
	assert.False(t, ok)
}

func TestStore_LoadMissingFileIsFine(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, store.Load())
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestStore_ClearTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	require.NoError(t, store.Set(models.Session{Username: "a", Token: "t"}))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}

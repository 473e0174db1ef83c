package boltstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvs/internal/boltstore"
	"kvs/internal/engine"
)

// TestStore_OpenCreatesMissingDirectory covers a fresh working directory with
// no "sled" subdirectory yet: Open must create the whole path itself rather
// than requiring it to already exist.
func TestStore_OpenCreatesMissingDirectory(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested", "sled")

	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	s, err := boltstore.Open(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("k", "v"))
	value, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestStore_SetGetRemove(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := boltstore.Open(dir)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v1"))
	value, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", value)

	require.NoError(t, s.Set("k", "v2"))
	value, ok, err = s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", value)

	require.NoError(t, s.Remove("k"))
	_, ok, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_RemoveAbsentKey(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := boltstore.Open(dir)
	require.NoError(t, err)
	defer s.Close()

	err = s.Remove("never-set")
	assert.ErrorIs(t, err, engine.ErrKeyNotFound)
}

func TestStore_PersistenceAcrossReopen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := boltstore.Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Close())

	s2, err := boltstore.Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	value, ok, err := s2.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", value)
}

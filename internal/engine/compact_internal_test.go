package engine

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyName(i int) string { return fmt.Sprintf("key-%d", i) }

// TestStore_CompactDeterministic calls compact directly so the post-compaction
// log size can be pinned down exactly: one live record per key, nothing else.
func TestStore_CompactDeterministic(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	const keys = 20
	for v := 0; v < 5; v++ {
		for k := 0; k < keys; k++ {
			require.NoError(t, s.Set(testKeyName(k), "value-for-"+testKeyName(k)))
		}
	}
	require.NoError(t, s.Remove(testKeyName(0)))

	require.NoError(t, s.compact())
	assert.Zero(t, s.uncompacted)
	assert.Len(t, s.index, keys)

	info, err := os.Stat(s.log.path)
	require.NoError(t, err)

	var want int64
	for _, entry := range s.index {
		want += entry.Len
	}
	assert.Equal(t, want, info.Size())

	_, ok, err := s.Get(testKeyName(0))
	require.NoError(t, err)
	assert.False(t, ok)

	for k := 1; k < keys; k++ {
		value, ok, err := s.Get(testKeyName(k))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "value-for-"+testKeyName(k), value)
	}
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetAbsent(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySetGetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	value, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire after its ttl")
}

func TestMemoryWatchFiresOnWriteAndDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var values [][]byte
	var present []bool
	stop := m.Watch("k", func(value []byte, ok bool) {
		values = append(values, value)
		present = append(present, ok)
	})
	defer stop()

	require.NoError(t, m.Set(ctx, "k", []byte("one"), 0))
	require.NoError(t, m.Delete(ctx, "k"))

	require.Len(t, values, 2)
	assert.Equal(t, []byte("one"), values[0])
	assert.Equal(t, []bool{true, false}, present)
}

func TestMemoryWatchStop(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	fired := 0
	stop := m.Watch("k", func([]byte, bool) { fired++ })
	require.NoError(t, m.Set(ctx, "k", []byte("a"), 0))
	stop()
	require.NoError(t, m.Set(ctx, "k", []byte("b"), 0))

	assert.Equal(t, 1, fired)
}

func TestMemoryWatchOtherKeyUntouched(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	fired := 0
	stop := m.Watch("k", func([]byte, bool) { fired++ })
	defer stop()

	require.NoError(t, m.Set(ctx, "other", []byte("x"), 0))
	assert.Zero(t, fired)
}

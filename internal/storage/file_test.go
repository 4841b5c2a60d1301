package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart:abc", []byte(`{"a":1}`)))

	got, err := s.Get(ctx, "cart:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestFileStore_GetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_KeySanitization(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	// Keys with separators must not escape the state dir.
	require.NoError(t, s.Set(ctx, "analytics_2026-08-30", []byte("x")))
	require.NoError(t, s.Set(ctx, "cart:1f2e/../../etc", []byte("y")))

	got, err := s.Get(ctx, "cart:1f2e/../../etc")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), got)
}

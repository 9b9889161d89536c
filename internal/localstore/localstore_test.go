package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get(context.Background(), KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyUsername, "alex"))

	value, ok, err := s.Get(ctx, KeyUsername)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alex", value)
}

func TestSetOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyDarkMode, "false"))
	require.NoError(t, s.Set(ctx, KeyDarkMode, "true"))

	value, ok, err := s.Get(ctx, KeyDarkMode)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestDeleteMultipleKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAccessToken, "at"))
	require.NoError(t, s.Set(ctx, KeyRefreshToken, "rt"))
	require.NoError(t, s.Set(ctx, KeyDarkMode, "true"))

	require.NoError(t, s.Delete(ctx, KeyAccessToken, KeyRefreshToken, "missing-key"))

	_, ok, _ := s.Get(ctx, KeyAccessToken)
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, KeyRefreshToken)
	assert.False(t, ok)

	// 未列出的键保留
	value, ok, _ := s.Get(ctx, KeyDarkMode)
	require.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyUsername, "alex"))
	require.NoError(t, s.Clear(ctx))

	_, ok, err := s.Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyUsername, "alex"))
	require.NoError(t, s.Close())

	s2, err := Open(ctx, path)
	require.NoError(t, err)
	defer s2.Close()

	value, ok, err := s2.Get(ctx, KeyUsername)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alex", value)
}

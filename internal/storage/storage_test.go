package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyAuthToken, "tok"))
	require.NoError(t, s.Set(ctx, KeyUserData, `{"id":"1"}`))

	v, err := s.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	require.NoError(t, s.Remove(ctx, KeyAuthToken, KeyUserData, KeyRefreshToken))
	_, err = s.Get(ctx, KeyUserData)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	f, err := NewFile(path)
	require.NoError(t, err)
	exerciseStore(t, f)
}

func TestFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, KeyRefreshToken, "refresh"))

	reopened, err := NewFile(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFile_CorruptContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	f, err := NewFile(path)
	require.NoError(t, err)
	_, err = f.Get(context.Background(), KeyAuthToken)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	rdb, err := DialRedis(context.Background(), server.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, server
}

func TestRedis(t *testing.T) {
	rdb, _ := newTestRedis(t)
	exerciseStore(t, NewRedis(rdb, ""))
}

func TestRedis_KeysArePrefixed(t *testing.T) {
	rdb, server := newTestRedis(t)
	s := NewRedis(rdb, "app:")

	require.NoError(t, s.Set(context.Background(), KeyUserData, `{"id":"1"}`))
	v, err := server.Get("app:" + KeyUserData)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, v)
	assert.False(t, server.Exists(KeyUserData))
}

func TestDialRedis_Unreachable(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	addr := server.Addr()
	server.Close()

	_, err = DialRedis(context.Background(), addr, "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

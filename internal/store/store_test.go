package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAuthStateConsumedOnce(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveAuthState(ctx, "state-1", "alice"))

	user, ok, err := s.ConsumeAuthState(ctx, "state-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", user)

	_, ok, err = s.ConsumeAuthState(ctx, "state-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownAuthState(t *testing.T) {
	_, ok, err := newStore(t).ConsumeAuthState(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, ok, err := s.Token(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveToken(ctx, "alice", "t1"))
	require.NoError(t, s.SaveToken(ctx, "alice", "t2"))
	tok, ok, err := s.Token(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t2", tok)

	require.NoError(t, s.DeleteToken(ctx, "alice"))
	_, ok, err = s.Token(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hovercard.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveToken(context.Background(), "bob", "tok"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	tok, ok, err := s.Token(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)
}

package storage

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/client/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Get(ctx, KeyWishlist)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyWishlist, []byte(`["p1"]`)))
	b, err := s.Get(ctx, KeyWishlist)
	require.NoError(t, err)
	assert.Equal(t, `["p1"]`, string(b))

	require.NoError(t, s.Delete(ctx, KeyWishlist))
	require.NoError(t, s.Delete(ctx, KeyWishlist))
	_, err = s.Get(ctx, KeyWishlist)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, SaveJSON(ctx, s, KeyCurrentIdentity, model.Identity{ID: "u1"}))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	var got model.Identity
	require.NoError(t, LoadJSON(ctx, s, KeyCurrentIdentity, &got))
	assert.Equal(t, "u1", got.ID)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestLoadJSON_Malformed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Set(ctx, KeyCartCache, []byte("{not json")))

	var lines []model.CartLine
	err := LoadJSON(ctx, s, KeyCartCache, &lines)
	assert.True(t, errors.Is(err, model.ErrMalformedPersistedState))
}

func TestLoadOrDiscard(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var ids []string
	ok, err := LoadOrDiscard(ctx, s, KeyWishlist, &ids, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyWishlist, []byte("garbage")))
	ok, err = LoadOrDiscard(ctx, s, KeyWishlist, &ids, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// 壊れたエントリは消える
	_, err = s.Get(ctx, KeyWishlist)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SaveJSON(ctx, s, KeyWishlist, []string{"p1", "p2"}))
	ok, err = LoadOrDiscard(ctx, s, KeyWishlist, &ids, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}

package session

import (
	"context"
	"testing"

	"storefront/internal/client/model"
	"storefront/internal/client/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.BadgerStore {
	t.Helper()
	s, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestManager_LoginPersistsAndLoadRestores(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	m := NewManager(store, nil)
	assert.Nil(t, m.Current())
	assert.True(t, m.ToggleLoginPanel())

	id := model.Identity{ID: "u1", Name: "Taro", Email: "taro@example.com", AccessToken: "tok"}
	require.NoError(t, m.Login(ctx, id))
	assert.Equal(t, &id, m.Current())
	assert.False(t, m.LoginPanelOpen())

	// 再起動
	m2 := NewManager(store, nil)
	m2.Load(ctx)
	assert.Equal(t, &id, m2.Current())
}

func TestManager_LoginDoesNotTouchCartOrWishlist(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, storage.KeyWishlist, []byte(`["p1"]`)))
	require.NoError(t, store.Set(ctx, storage.KeyCartCache, []byte(`[]`)))

	m := NewManager(store, nil)
	require.NoError(t, m.Login(ctx, model.Identity{ID: "u1"}))

	_, err := store.Get(ctx, storage.KeyWishlist)
	assert.NoError(t, err)
	_, err = store.Get(ctx, storage.KeyCartCache)
	assert.NoError(t, err)
}

func TestManager_LogoutErasesPersistedState(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	m := NewManager(store, nil)
	require.NoError(t, m.Login(ctx, model.Identity{ID: "u1"}))
	require.NoError(t, store.Set(ctx, storage.KeyCartCache, []byte(`[{"product_id":"p1","quantity":1}]`)))
	require.NoError(t, store.Set(ctx, storage.KeyWishlist, []byte(`["p1"]`)))
	require.NoError(t, store.Set(ctx, storage.KeyThemePreference, []byte(`"dark"`)))

	require.NoError(t, m.Logout(ctx))
	assert.Nil(t, m.Current())
	assert.False(t, m.Authenticated())

	for _, key := range []string{storage.KeyCurrentIdentity, storage.KeyCartCache, storage.KeyWishlist} {
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrNotFound, key)
	}
	// テーマは残る
	_, err := store.Get(ctx, storage.KeyThemePreference)
	assert.NoError(t, err)

	// 未ログインでもエラーにならない
	require.NoError(t, m.Logout(ctx))
}

func TestManager_LoadMalformedIdentity(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Set(ctx, storage.KeyCurrentIdentity, []byte("{broken")))

	m := NewManager(store, nil)
	m.Load(ctx)
	assert.Nil(t, m.Current())

	_, err := store.Get(ctx, storage.KeyCurrentIdentity)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_LoginRequiresID(t *testing.T) {
	m := NewManager(newStore(t), nil)
	assert.Error(t, m.Login(context.Background(), model.Identity{}))
	assert.Nil(t, m.Current())
}

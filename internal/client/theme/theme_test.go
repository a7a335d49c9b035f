package theme

import (
	"context"
	"testing"

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

func TestPreference_DefaultAndToggle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	p := New(store, nil)
	require.NoError(t, p.Load(ctx))
	assert.Equal(t, Light, p.Current())

	m, err := p.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Dark, m)

	p2 := New(store, nil)
	require.NoError(t, p2.Load(ctx))
	assert.Equal(t, Dark, p2.Current())

	m, err = p2.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, Light, m)
}

func TestPreference_InvalidStoredValue(t *testing.T) {
	cases := map[string]string{
		"unknown mode": `"sepia"`,
		"malformed":    `{"x"`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			require.NoError(t, store.Set(ctx, storage.KeyThemePreference, []byte(raw)))

			p := New(store, nil)
			require.NoError(t, p.Load(ctx))
			assert.Equal(t, Light, p.Current())

			_, err := store.Get(ctx, storage.KeyThemePreference)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestPreference_SetRejectsUnknown(t *testing.T) {
	p := New(newStore(t), nil)
	assert.Error(t, p.Set(context.Background(), Mode("blue")))
	assert.Equal(t, Light, p.Current())
}

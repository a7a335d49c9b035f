// Package wishlist is the local-only wishlist: an ordered set of product ids
// persisted under the wishlist key.
package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"storefront/internal/client/cart"
	"storefront/internal/client/model"
	"storefront/internal/client/storage"
)

type Wishlist struct {
	identity cart.IdentityProvider
	store    storage.Store
	logger   *slog.Logger

	mu  sync.RWMutex
	ids []string
}

// DI
func New(identity cart.IdentityProvider, store storage.Store, logger *slog.Logger) *Wishlist {
	if logger == nil {
		logger = slog.Default()
	}
	return &Wishlist{identity: identity, store: store, logger: logger}
}

// Reload re-reads the persisted wishlist. Malformed data reads as empty and is removed.
func (w *Wishlist) Reload(ctx context.Context) error {
	var ids []string
	if _, err := storage.LoadOrDiscard(ctx, w.store, storage.KeyWishlist, &ids, w.logger); err != nil {
		return err
	}

	w.mu.Lock()
	w.ids = dedupe(ids)
	w.mu.Unlock()
	return nil
}

// Toggle adds productID when absent, removes it when present, and reports
// whether it is now in the wishlist.
func (w *Wishlist) Toggle(ctx context.Context, productID string) (bool, error) {
	var added bool
	err := w.update(ctx, "toggle", func(ids []string) []string {
		if i := slices.Index(ids, productID); i >= 0 {
			return slices.Delete(ids, i, i+1)
		}
		added = true
		return append(ids, productID)
	})
	return added, err
}

func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	return w.update(ctx, "remove", func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool { return id == productID })
	})
}

func (w *Wishlist) Clear(ctx context.Context) error {
	return w.update(ctx, "clear", func([]string) []string { return nil })
}

func (w *Wishlist) Contains(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Contains(w.ids, productID)
}

// Items returns the ids in insertion order.
func (w *Wishlist) Items() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string{}, w.ids...)
}

func (w *Wishlist) update(ctx context.Context, op string, fn func([]string) []string) error {
	if w.identity.Current() == nil {
		return fmt.Errorf("wishlist %s: %w", op, model.ErrUnauthenticated)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := fn(append([]string{}, w.ids...))
	if next == nil {
		next = []string{}
	}
	if err := storage.SaveJSON(ctx, w.store, storage.KeyWishlist, next); err != nil {
		return fmt.Errorf("wishlist %s: %w", op, err)
	}
	w.ids = next
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

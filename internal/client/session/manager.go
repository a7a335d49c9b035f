// Package session holds the client's current identity (Anonymous or
// Authenticated) and persists it across restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"storefront/internal/client/model"
	"storefront/internal/client/storage"
)

type Manager struct {
	store  storage.Store
	logger *slog.Logger

	mu             sync.RWMutex
	identity       *model.Identity
	loginPanelOpen bool
}

// DI
func NewManager(store storage.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger}
}

// Load restores a persisted identity. A missing, unreadable or malformed entry
// leaves the manager Anonymous; it never fails.
func (m *Manager) Load(ctx context.Context) {
	var id model.Identity
	ok, err := storage.LoadOrDiscard(ctx, m.store, storage.KeyCurrentIdentity, &id, m.logger)
	if err != nil {
		m.logger.Warn("load identity failed", "error", err)
		return
	}
	if !ok || id.ID == "" {
		return
	}

	m.mu.Lock()
	m.identity = &id
	m.mu.Unlock()
}

// Login sets the current identity, closes the login panel and persists the identity.
// Cart and wishlist are not touched here.
func (m *Manager) Login(ctx context.Context, id model.Identity) error {
	if id.ID == "" {
		return errors.New("session: identity id is required")
	}

	m.mu.Lock()
	m.identity = &id
	m.loginPanelOpen = false
	m.mu.Unlock()

	if err := storage.SaveJSON(ctx, m.store, storage.KeyCurrentIdentity, id); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// Logout clears the identity and erases identity, cart cache and wishlist from
// Local Persistence. The server-side session is left alone.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.identity = nil
	m.mu.Unlock()

	var errs []error
	for _, key := range []string{storage.KeyCurrentIdentity, storage.KeyCartCache, storage.KeyWishlist} {
		if err := m.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// 開閉を反転して新しい値を返す
func (m *Manager) ToggleLoginPanel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginPanelOpen = !m.loginPanelOpen
	return m.loginPanelOpen
}

func (m *Manager) LoginPanelOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loginPanelOpen
}

// Current returns a copy of the identity, or nil when Anonymous.
func (m *Manager) Current() *model.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

func (m *Manager) Authenticated() bool {
	return m.Current() != nil
}

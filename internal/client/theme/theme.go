// Package theme persists the light/dark preference.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"storefront/internal/client/storage"
)

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

func (m Mode) Valid() bool {
	return m == Light || m == Dark
}

type Preference struct {
	store  storage.Store
	logger *slog.Logger

	mu   sync.RWMutex
	mode Mode
}

// DI
func New(store storage.Store, logger *slog.Logger) *Preference {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preference{store: store, logger: logger, mode: Light}
}

// Load reads the stored mode. Unknown or malformed values fall back to Light
// and the entry is removed.
func (p *Preference) Load(ctx context.Context) error {
	var m Mode
	ok, err := storage.LoadOrDiscard(ctx, p.store, storage.KeyThemePreference, &m, p.logger)
	if err != nil {
		return err
	}
	if ok && !m.Valid() {
		p.logger.Warn("discarding unknown theme", "value", string(m))
		if err := p.store.Delete(ctx, storage.KeyThemePreference); err != nil {
			return err
		}
		ok = false
	}
	if !ok {
		m = Light
	}

	p.mu.Lock()
	p.mode = m
	p.mu.Unlock()
	return nil
}

func (p *Preference) Current() Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

func (p *Preference) Set(ctx context.Context, m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("theme: unknown mode %q", m)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := storage.SaveJSON(ctx, p.store, storage.KeyThemePreference, m); err != nil {
		return err
	}
	p.mode = m
	return nil
}

// Toggle switches light<->dark and returns the new mode.
func (p *Preference) Toggle(ctx context.Context) (Mode, error) {
	next := Dark
	if p.Current() == Dark {
		next = Light
	}
	if err := p.Set(ctx, next); err != nil {
		return p.Current(), err
	}
	return next, nil
}

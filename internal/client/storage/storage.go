// Package storage is the client's Local Persistence: a small key-value store
// backed by BadgerDB. Every concern owns one fixed key.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"storefront/internal/client/model"

	"github.com/dgraph-io/badger/v4"
)

// 保存キー
const (
	KeyCurrentIdentity      = "current-identity"
	KeyCartCache            = "cart-cache"
	KeyWishlist             = "wishlist"
	KeyThemePreference      = "theme-preference"
	KeyOfflineWriteQueue    = "offline-write-queue"
	KeySessionCorrelationID = "session-correlation-id"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("key not found")

// Store is what the client components depend on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Config controls how the Badger database is opened.
type Config struct {
	// Path is the data directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in memory (tests, --ephemeral).
	InMemory bool
	// Logger receives Badger's internal logs. nil silences them.
	Logger *slog.Logger
}

// BadgerStore implements Store on top of *badger.DB.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens (or creates) the store described by cfg.
func Open(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("storage: path is required unless InMemory is set")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory is a shortcut for tests.
func OpenInMemory() (*BadgerStore, error) {
	return Open(Config{InMemory: true})
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return out, nil
}

func (s *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Delete は無いキーでも成功
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// LoadJSON reads key into v. A missing key returns ErrNotFound; bytes that do
// not decode return model.ErrMalformedPersistedState.
func LoadJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w: %v", key, model.ErrMalformedPersistedState, err)
	}
	return nil
}

func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, b)
}

// LoadOrDiscard reads key into v and reports whether a usable value was found.
// Corrupt entries are deleted so the concern starts empty next time.
func LoadOrDiscard(ctx context.Context, s Store, key string, v any, logger *slog.Logger) (bool, error) {
	err := LoadJSON(ctx, s, key, v)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	case errors.Is(err, model.ErrMalformedPersistedState):
		if logger != nil {
			logger.Warn("discarding malformed persisted state", "key", key, "error", err)
		}
		if derr := s.Delete(ctx, key); derr != nil {
			return false, derr
		}
		return false, nil
	default:
		return false, err
	}
}

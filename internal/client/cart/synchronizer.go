// Package cart keeps the in-memory cart of the current identity consistent
// with the remote cart by refetching after every write.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/client/model"
	"storefront/internal/client/remote"
	"storefront/internal/client/storage"
	"storefront/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 10 * time.Second

var ErrInvalidQuantity = errors.New("invalid quantity")

// IdentityProvider exposes the current identity (nil when Anonymous).
type IdentityProvider interface {
	Current() *model.Identity
}

type Option func(*Synchronizer)

func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithStore mirrors every refetched cart into the cart-cache key.
func WithStore(st storage.Store) Option {
	return func(s *Synchronizer) { s.store = st }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

type Synchronizer struct {
	identity IdentityProvider
	remote   remote.CartStore
	store    storage.Store
	logger   *slog.Logger
	timeout  time.Duration

	// 変更系は1つずつ
	writeMu sync.Mutex

	mu    sync.RWMutex
	lines []model.CartLine
	// identity が変わるたびに+1。古い取得結果を捨てる。
	gen uint64
	// 反映済みの取得の通し番号。これより前に始まった取得は捨てる。
	applied uint64

	// 取得開始ごとに+1
	seq atomic.Uint64

	refresh singleflight.Group
}

// DI
func New(identity IdentityProvider, rs remote.CartStore, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		identity: identity,
		remote:   rs,
		logger:   slog.Default(),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnIdentityChange empties the cart and, for a non-nil identity, loads that
// identity's remote cart. A failed load leaves the cart empty and returns an
// error wrapping the cause; callers treat it as non-fatal.
func (s *Synchronizer) OnIdentityChange(ctx context.Context, id *model.Identity) (err error) {
	defer func() { metrics.RecordSync("identity_change", err) }()

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.lines = nil
	if id == nil {
		// 前のユーザーのキャッシュを残さない
		s.dropCacheLocked(ctx)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	snap, err := s.fetch(ctx, *id)
	if err != nil {
		s.logger.Warn("load cart failed", "user_id", id.ID, "error", err)
		return fmt.Errorf("load cart: %w", err)
	}
	s.apply(ctx, gen, snap)
	return nil
}

// AddItem adds qty (default 1) of product and refetches. Coalescing of an
// existing line is done by the remote store.
func (s *Synchronizer) AddItem(ctx context.Context, p model.Product, qty int64) error {
	if qty <= 0 {
		qty = 1
	}
	return s.mutate(ctx, "add", func(ctx context.Context, id model.Identity) error {
		return s.remote.Add(ctx, id, p.ID, qty)
	})
}

func (s *Synchronizer) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove", func(ctx context.Context, id model.Identity) error {
		return s.remote.Remove(ctx, id, productID)
	})
}

// UpdateQuantity sets an explicit quantity; 0 removes the line.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, productID string, qty int64) error {
	if qty == 0 {
		return s.RemoveItem(ctx, productID)
	}
	if qty < 0 {
		return fmt.Errorf("update %s: %w: %d", productID, ErrInvalidQuantity, qty)
	}
	return s.mutate(ctx, "update_quantity", func(ctx context.Context, id model.Identity) error {
		return s.remote.SetQuantity(ctx, id, productID, qty)
	})
}

// Clear empties the remote cart in one call when the store supports
// remote.CartReplacer, otherwise removes the current lines one by one.
func (s *Synchronizer) Clear(ctx context.Context) (err error) {
	defer func() { metrics.RecordSync("clear", err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id, gen := s.current()
	if id == nil {
		return fmt.Errorf("clear: %w", model.ErrUnauthenticated)
	}

	if replacer, ok := s.remote.(remote.CartReplacer); ok {
		if err := s.call(ctx, func(ctx context.Context) error {
			return replacer.ReplaceCart(ctx, *id, nil)
		}); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	} else {
		for _, l := range s.Lines() {
			productID := l.ProductID
			if err := s.call(ctx, func(ctx context.Context) error {
				return s.remote.Remove(ctx, *id, productID)
			}); err != nil {
				return fmt.Errorf("clear %s: %w", productID, err)
			}
		}
	}

	s.apply(ctx, gen, snapshot{seq: s.seq.Add(1), lines: []model.CartLine{}})
	return nil
}

// Refresh re-reads the remote cart. Concurrent refreshes share one request.
func (s *Synchronizer) Refresh(ctx context.Context) (err error) {
	defer func() { metrics.RecordSync("refresh", err) }()

	id, gen := s.current()
	if id == nil {
		return fmt.Errorf("refresh: %w", model.ErrUnauthenticated)
	}

	v, err, _ := s.refresh.Do(id.ID, func() (interface{}, error) {
		return s.fetch(ctx, *id)
	})
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	s.apply(ctx, gen, v.(snapshot))
	return nil
}

// Lines returns a copy of the in-memory cart.
func (s *Synchronizer) Lines() []model.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CartLine{}, s.lines...)
}

func (s *Synchronizer) TotalPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalPrice(s.lines)
}

// TotalPrice is the sum of Price*Quantity; 0 for no lines.
func TotalPrice(lines []model.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Price * l.Quantity
	}
	return total
}

// Cached returns the last mirrored cart for offline display. Malformed data is
// discarded and reads as empty.
func (s *Synchronizer) Cached(ctx context.Context) ([]model.CartLine, error) {
	if s.store == nil {
		return []model.CartLine{}, nil
	}
	var lines []model.CartLine
	ok, err := storage.LoadOrDiscard(ctx, s.store, storage.KeyCartCache, &lines, s.logger)
	if err != nil {
		return nil, err
	}
	if !ok || lines == nil {
		return []model.CartLine{}, nil
	}
	return lines, nil
}

func (s *Synchronizer) mutate(ctx context.Context, op string, write func(context.Context, model.Identity) error) (err error) {
	defer func() { metrics.RecordSync(op, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id, gen := s.current()
	if id == nil {
		return fmt.Errorf("%s: %w", op, model.ErrUnauthenticated)
	}

	if err := s.call(ctx, func(ctx context.Context) error { return write(ctx, *id) }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	snap, err := s.fetch(ctx, *id)
	if err != nil {
		return fmt.Errorf("%s: refetch: %w", op, err)
	}
	s.apply(ctx, gen, snap)
	return nil
}

func (s *Synchronizer) current() (*model.Identity, uint64) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()
	return s.identity.Current(), gen
}

// snapshot is one remote read, numbered in the order the reads started.
type snapshot struct {
	seq   uint64
	lines []model.CartLine
}

func (s *Synchronizer) fetch(ctx context.Context, id model.Identity) (snapshot, error) {
	snap := snapshot{seq: s.seq.Add(1)}
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		snap.lines, err = s.remote.List(ctx, id)
		return err
	})
	if err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// call runs fn with the remote timeout. It returns when the deadline passes even
// if fn does not honour ctx.
func (s *Synchronizer) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, ctx.Err())
		}
		return ctx.Err()
	}
}

// apply replaces the cart unless the identity changed since gen was read or a
// read that started later has already been applied.
// The cache mirror is written under the same lock so a logout cannot race it.
func (s *Synchronizer) apply(ctx context.Context, gen uint64, snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || snap.seq < s.applied {
		metrics.StaleRefetchDiscarded.Inc()
		s.logger.Debug("discarding stale cart refetch", "seq", snap.seq, "applied", s.applied)
		return
	}
	s.applied = snap.seq
	s.lines = append([]model.CartLine{}, snap.lines...)

	if s.store == nil {
		return
	}
	if err := storage.SaveJSON(ctx, s.store, storage.KeyCartCache, s.lines); err != nil {
		s.logger.Warn("mirror cart cache failed", "error", err)
	}
}

func (s *Synchronizer) dropCacheLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, storage.KeyCartCache); err != nil {
		s.logger.Warn("drop cart cache failed", "error", err)
	}
}

// Package datalogger is the offline write queue for fire-and-forget data
// points. Entries that cannot be delivered are kept in memory and in Local
// Persistence and are drained in FIFO order once connectivity returns.
// Delivery is at-least-once.
package datalogger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/client/remote"
	"storefront/internal/client/storage"
	"storefront/internal/metrics"

	"github.com/google/uuid"
)

var ErrClosed = errors.New("datalogger: closed")

// Probe reports whether the backend is reachable.
type Probe func(ctx context.Context) bool

type Option func(*Logger)

func WithLogger(l *slog.Logger) Option {
	return func(d *Logger) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Logger) {
		if now != nil {
			d.now = now
		}
	}
}

// WithOnline sets the initial connectivity state (default online).
func WithOnline(online bool) Option {
	return func(d *Logger) { d.online = online }
}

type Logger struct {
	sink   remote.DataSink
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time

	// Flush は同時に1つ
	flushMu sync.Mutex

	mu        sync.Mutex
	queue     []remote.DataRecord
	online    bool
	closed    bool
	sessionID string

	stopWatch context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a logger and restores any entries left in the durable queue.
// A malformed durable queue is discarded.
func New(ctx context.Context, sink remote.DataSink, store storage.Store, opts ...Option) (*Logger, error) {
	l := &Logger{
		sink:   sink,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		online: true,
	}
	for _, opt := range opts {
		opt(l)
	}

	var queued []remote.DataRecord
	if _, err := storage.LoadOrDiscard(ctx, store, storage.KeyOfflineWriteQueue, &queued, l.logger); err != nil {
		return nil, fmt.Errorf("restore offline queue: %w", err)
	}
	l.queue = queued
	metrics.OfflineQueueDepth.Set(float64(len(l.queue)))

	sid, err := loadSessionID(ctx, store, l.logger)
	if err != nil {
		return nil, err
	}
	l.sessionID = sid

	return l, nil
}

func loadSessionID(ctx context.Context, store storage.Store, logger *slog.Logger) (string, error) {
	var sid string
	ok, err := storage.LoadOrDiscard(ctx, store, storage.KeySessionCorrelationID, &sid, logger)
	if err != nil {
		return "", fmt.Errorf("load session id: %w", err)
	}
	if ok && sid != "" {
		return sid, nil
	}

	sid = uuid.NewString()
	if err := storage.SaveJSON(ctx, store, storage.KeySessionCorrelationID, sid); err != nil {
		return "", fmt.Errorf("save session id: %w", err)
	}
	return sid, nil
}

// SessionID is attached to every entry.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Record delivers the entry right away when online and nothing is waiting.
// Otherwise it is queued behind earlier entries. Delivery failures are not
// returned; only marshal and persistence errors are.
func (l *Logger) Record(ctx context.Context, recordType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("record %s: %w", recordType, err)
	}
	entry := remote.DataRecord{
		Type:      recordType,
		Payload:   data,
		Timestamp: l.now().UTC(),
		SessionID: l.sessionID,
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	online, pending := l.online, len(l.queue)
	l.mu.Unlock()

	if online && pending == 0 {
		err := l.sink.SaveUserData(ctx, entry)
		if err == nil {
			return nil
		}
		l.logger.Warn("deliver failed, queueing", "type", recordType, "error", err)
	}

	if err := l.enqueue(ctx, entry); err != nil {
		return err
	}

	// 先に溜まっている分があれば順番に流す
	if online && pending > 0 {
		if _, err := l.Flush(ctx); err != nil {
			l.logger.Debug("flush after record stopped", "error", err)
		}
	}
	return nil
}

func (l *Logger) enqueue(ctx context.Context, entry remote.DataRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(l.queue, entry)
	return l.persistLocked(ctx)
}

// SetOnline updates connectivity. Going from offline to online drains the queue.
func (l *Logger) SetOnline(ctx context.Context, online bool) error {
	l.mu.Lock()
	was := l.online
	l.online = online
	l.mu.Unlock()

	if online && !was {
		l.logger.Info("connectivity restored, flushing offline queue")
		_, err := l.Flush(ctx)
		return err
	}
	return nil
}

func (l *Logger) Online() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.online
}

// Pending returns the number of queued entries.
func (l *Logger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Flush delivers queued entries oldest first, one at a time. The first failure
// stops the drain and leaves that entry at the front. It returns how many
// entries were delivered.
func (l *Logger) Flush(ctx context.Context) (int, error) {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	sent := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return sent, nil
		}
		entry := l.queue[0]
		l.mu.Unlock()

		if err := l.sink.SaveUserData(ctx, entry); err != nil {
			return sent, fmt.Errorf("flush: %d delivered, stopped at %s: %w", sent, entry.Type, err)
		}

		// Record は末尾にしか足さないので先頭は entry のまま
		l.mu.Lock()
		l.queue = l.queue[1:]
		err := l.persistLocked(ctx)
		l.mu.Unlock()
		sent++
		if err != nil {
			return sent, err
		}
	}
}

// ExportLocal returns the durable queue exactly as stored ("[]" when empty).
func (l *Logger) ExportLocal(ctx context.Context) ([]byte, error) {
	b, err := l.store.Get(ctx, storage.KeyOfflineWriteQueue)
	if errors.Is(err, storage.ErrNotFound) {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Watch polls probe every interval until ctx is done or Close is called. The
// result goes to SetOnline, and entries left over from a failed delivery are
// retried on every tick that finds the remote reachable.
func (l *Logger) Watch(ctx context.Context, probe Probe, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		cancel()
		return
	}
	if l.stopWatch != nil {
		l.stopWatch()
	}
	l.stopWatch = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.tick(ctx, probe)
			}
		}
	}()
}

func (l *Logger) tick(ctx context.Context, probe Probe) {
	online := probe(ctx)
	was := l.Online()
	if err := l.SetOnline(ctx, online); err != nil {
		l.logger.Debug("flush after reconnect stopped", "error", err)
		return
	}
	// オフライン→オンラインは SetOnline が流す
	if !online || !was || l.Pending() == 0 {
		return
	}
	if _, err := l.Flush(ctx); err != nil {
		l.logger.Debug("retry flush stopped", "error", err)
	}
}

// Close stops the watcher. Queued entries stay in Local Persistence.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	stop := l.stopWatch
	l.mu.Unlock()

	if stop != nil {
		stop()
	}
	l.wg.Wait()
	return nil
}

func (l *Logger) persistLocked(ctx context.Context) error {
	metrics.OfflineQueueDepth.Set(float64(len(l.queue)))
	if len(l.queue) == 0 {
		return l.store.Delete(ctx, storage.KeyOfflineWriteQueue)
	}
	if err := storage.SaveJSON(ctx, l.store, storage.KeyOfflineWriteQueue, l.queue); err != nil {
		return fmt.Errorf("persist offline queue: %w", err)
	}
	return nil
}

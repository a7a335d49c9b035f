// Package storefront wires the client core together: session, cart, wishlist,
// theme and the data logger share one Local Persistence store.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"storefront/internal/client/cart"
	"storefront/internal/client/datalogger"
	"storefront/internal/client/model"
	"storefront/internal/client/remote"
	"storefront/internal/client/session"
	"storefront/internal/client/storage"
	"storefront/internal/client/theme"
	"storefront/internal/client/wishlist"
)

// Backend is everything the core needs from the remote side.
type Backend interface {
	remote.CartStore
	remote.DataSink
}

type Config struct {
	Store   storage.Store
	Backend Backend
	Logger  *slog.Logger
	// 0 なら cart.DefaultTimeout
	Timeout time.Duration
	Offline bool
}

type Storefront struct {
	Session  *session.Manager
	Cart     *cart.Synchronizer
	Wishlist *wishlist.Wishlist
	Theme    *theme.Preference
	Data     *datalogger.Logger

	store  storage.Store
	logger *slog.Logger
}

func New(ctx context.Context, cfg Config) (*Storefront, error) {
	if cfg.Store == nil || cfg.Backend == nil {
		return nil, errors.New("storefront: store and backend are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sess := session.NewManager(cfg.Store, logger)

	opts := []cart.Option{cart.WithStore(cfg.Store), cart.WithLogger(logger)}
	if cfg.Timeout > 0 {
		opts = append(opts, cart.WithTimeout(cfg.Timeout))
	}
	syncer := cart.New(sess, cfg.Backend, opts...)

	data, err := datalogger.New(ctx, cfg.Backend, cfg.Store,
		datalogger.WithLogger(logger),
		datalogger.WithOnline(!cfg.Offline),
	)
	if err != nil {
		return nil, fmt.Errorf("data logger: %w", err)
	}

	return &Storefront{
		Session:  sess,
		Cart:     syncer,
		Wishlist: wishlist.New(sess, cfg.Store, logger),
		Theme:    theme.New(cfg.Store, logger),
		Data:     data,
		store:    cfg.Store,
		logger:   logger,
	}, nil
}

// Start restores persisted state. A failed cart load is logged and does not
// stop startup.
func (s *Storefront) Start(ctx context.Context) error {
	s.Session.Load(ctx)
	if err := s.Wishlist.Reload(ctx); err != nil {
		return err
	}
	if err := s.Theme.Load(ctx); err != nil {
		return err
	}

	if id := s.Session.Current(); id != nil {
		if err := s.Cart.OnIdentityChange(ctx, id); err != nil {
			s.logger.Warn("initial cart load failed", "user_id", id.ID, "error", err)
		}
	}
	return nil
}

func (s *Storefront) Login(ctx context.Context, id model.Identity) error {
	if err := s.Session.Login(ctx, id); err != nil {
		return err
	}
	if err := s.Cart.OnIdentityChange(ctx, s.Session.Current()); err != nil {
		s.logger.Warn("cart load after login failed", "user_id", id.ID, "error", err)
	}
	return s.Data.Record(ctx, "login", map[string]string{"userId": id.ID, "email": id.Email})
}

// Logout is local only; the caller decides whether to end the server session.
func (s *Storefront) Logout(ctx context.Context) error {
	prev := s.Session.Current()

	if err := s.Session.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := s.Cart.OnIdentityChange(ctx, nil); err != nil {
		return err
	}
	if err := s.Wishlist.Reload(ctx); err != nil {
		return err
	}

	payload := map[string]string{}
	if prev != nil {
		payload["userId"] = prev.ID
	}
	return s.Data.Record(ctx, "logout", payload)
}

// Close stops the data logger and closes the store when it is closable.
func (s *Storefront) Close() error {
	errs := []error{s.Data.Close()}
	if c, ok := s.store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

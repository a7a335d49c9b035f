// Package remotetest provides an in-memory backend for client tests.
package remotetest

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/client/model"
	"storefront/internal/client/remote"
)

// Store is an in-memory CartStore / CartReplacer / ActivitySink / DataSink.
// Carts are keyed by identity id and coalesce by product id like the real API.
type Store struct {
	mu sync.Mutex

	catalog map[string]model.Product
	carts   map[string][]model.CartLine

	// true の間は全呼び出しが ErrRemoteUnavailable
	failing bool
	// 呼び出し回数（メソッド名ごと）
	calls map[string]int

	activities []Activity
	data       []remote.DataRecord
}

type Activity struct {
	UserID string
	Action string
}

var (
	_ remote.CartStore    = (*Store)(nil)
	_ remote.CartReplacer = (*Store)(nil)
	_ remote.ActivitySink = (*Store)(nil)
	_ remote.DataSink     = (*Store)(nil)
)

func New(products ...model.Product) *Store {
	s := &Store{
		catalog: map[string]model.Product{},
		carts:   map[string][]model.CartLine{},
		calls:   map[string]int{},
	}
	for _, p := range products {
		s.catalog[p.ID] = p
	}
	return s
}

func (s *Store) SetFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Store) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Cart returns a copy of the stored cart for userID.
func (s *Store) Cart(userID string) []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CartLine(nil), s.carts[userID]...)
}

func (s *Store) enter(method string) error {
	s.calls[method]++
	if s.failing {
		return fmt.Errorf("%s: %w", method, model.ErrRemoteUnavailable)
	}
	return nil
}

func (s *Store) List(ctx context.Context, id model.Identity) ([]model.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("List"); err != nil {
		return nil, err
	}
	return append([]model.CartLine{}, s.carts[id.ID]...), nil
}

func (s *Store) Add(ctx context.Context, id model.Identity, productID string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Add"); err != nil {
		return err
	}
	lines := s.carts[id.ID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += qty
			return nil
		}
	}
	s.carts[id.ID] = append(lines, s.line(productID, qty))
	return nil
}

func (s *Store) SetQuantity(ctx context.Context, id model.Identity, productID string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetQuantity"); err != nil {
		return err
	}
	lines := s.carts[id.ID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = qty
			return nil
		}
	}
	s.carts[id.ID] = append(lines, s.line(productID, qty))
	return nil
}

func (s *Store) Remove(ctx context.Context, id model.Identity, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Remove"); err != nil {
		return err
	}
	lines := s.carts[id.ID]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.carts[id.ID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove %s: not found", productID)
}

func (s *Store) ReplaceCart(ctx context.Context, id model.Identity, lines []model.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ReplaceCart"); err != nil {
		return err
	}
	s.carts[id.ID] = append([]model.CartLine{}, lines...)
	return nil
}

func (s *Store) LogActivity(ctx context.Context, id model.Identity, action string, details any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("LogActivity"); err != nil {
		return err
	}
	s.activities = append(s.activities, Activity{UserID: id.ID, Action: action})
	return nil
}

func (s *Store) SaveUserData(ctx context.Context, rec remote.DataRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SaveUserData"); err != nil {
		return err
	}
	s.data = append(s.data, rec)
	return nil
}

func (s *Store) line(productID string, qty int64) model.CartLine {
	p := s.catalog[productID]
	return model.CartLine{
		ProductID: productID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  qty,
	}
}

// CartOnly hides ReplaceCart so callers fall back to per-line removal.
func (s *Store) CartOnly() remote.CartStore {
	return struct{ remote.CartStore }{s}
}

func (s *Store) LoggedActivities() []Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Activity(nil), s.activities...)
}

func (s *Store) SavedData() []remote.DataRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]remote.DataRecord(nil), s.data...)
}

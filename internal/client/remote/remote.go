// Package remote defines what the client core needs from the storefront backend
// and provides the HTTP adapter for the echo API.
package remote

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/client/model"
)

// CartStore is the remote cart. Add coalesces by product id on the server.
type CartStore interface {
	List(ctx context.Context, id model.Identity) ([]model.CartLine, error)
	Add(ctx context.Context, id model.Identity, productID string, qty int64) error
	SetQuantity(ctx context.Context, id model.Identity, productID string, qty int64) error
	Remove(ctx context.Context, id model.Identity, productID string) error
}

// CartReplacer is implemented by backends that can swap the whole cart in one call.
type CartReplacer interface {
	ReplaceCart(ctx context.Context, id model.Identity, lines []model.CartLine) error
}

type AuthClient interface {
	Register(ctx context.Context, name, email, password string) (model.Identity, error)
	Login(ctx context.Context, email, password string) (model.Identity, error)
	Logout(ctx context.Context, id model.Identity) error
	Session(ctx context.Context, id model.Identity) (model.SessionRecord, error)
}

type ActivitySink interface {
	LogActivity(ctx context.Context, id model.Identity, action string, details any) error
}

// データロガーの1件（キューにもこの形で入る）
type DataRecord struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"sessionId"`
}

type DataSink interface {
	SaveUserData(ctx context.Context, rec DataRecord) error
}

package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// Addは冪等（既にあればそのまま）
type WishlistRepository interface {
	Add(ctx context.Context, userID string, productID string) error
	Remove(ctx context.Context, userID string, productID string) error
	List(ctx context.Context, userID string) ([]model.WishlistItem, error)
}

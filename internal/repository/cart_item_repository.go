package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// ユーザー単位のカート明細。
// (userID, productID) で1行。同じ商品の追加は数量を加算する。
type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error)
	// 同一商品はプラス
	UpsertByUserAndProduct(ctx context.Context, item model.CartItem, addQty int64) error
	// 数量を指定値にする（行が無ければ作る）
	SetQuantity(ctx context.Context, item model.CartItem, qty int64) error
	// 無ければErrNotFound
	DeleteByUserAndProduct(ctx context.Context, userID string, productID string) error
	// 明細をまとめて削除
	ClearByUserID(ctx context.Context, userID string) error
}

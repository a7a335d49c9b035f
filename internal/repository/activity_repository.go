package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 操作ログの保存・一覧取得の約束。
type ActivityRepository interface {
	//操作ログを1件保存
	Create(ctx context.Context, a model.Activity) error

	//ユーザーの操作ログを新しい順に
	ListByUserID(ctx context.Context, userID string, limit int) ([]model.Activity, error)

	//全体の最近の操作ログ
	ListRecent(ctx context.Context, limit int) ([]model.Activity, error)
}

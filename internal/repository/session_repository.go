package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrSessionNotFound = errors.New("session not found")

// セッションの保存・取得・削除
// 期限切れはFindで見つからない扱い。Deleteは冪等。
type SessionRepository interface {
	Create(ctx context.Context, s model.Session) error
	FindByID(ctx context.Context, sessionID string) (model.Session, error)
	DeleteByID(ctx context.Context, sessionID string) error
	DeleteAllByUserID(ctx context.Context, userID string) error
}

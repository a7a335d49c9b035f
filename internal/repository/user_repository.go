package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// email重複
var ErrConflict = errors.New("conflict")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrConflict）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。無ければErrUserNotFound
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを一件取得する。無ければErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>アクティブかどうか・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID string) error
	// 新しい順に一覧
	List(ctx context.Context, limit int, offset int) ([]model.User, int64, error)
	// 有効ユーザー数と、since以降の登録数・ログイン数
	Stats(ctx context.Context, since time.Time) (UserStats, error)
}

type UserStats struct {
	TotalUsers       int64 `json:"total_users"`
	NewUsersToday    int64 `json:"new_users_today"`
	ActiveUsersToday int64 `json:"active_users_today"`
}

package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type sessionGormRepository struct {
	db  *gorm.DB //DB接続（GORM）
	now func() time.Time
}

// GORM実装（Redisが無い環境向け）
func NewSessionGormRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionGormRepository{db: db, now: time.Now}
}

// セッションを保存
func (r *sessionGormRepository) Create(ctx context.Context, s model.Session) error {
	//タイムアウトやキャンセルをDB処理に伝える
	return r.db.WithContext(ctx).Create(&s).Error
}

// 期限内のセッションを1件取得
func (r *sessionGormRepository) FindByID(ctx context.Context, sessionID string) (model.Session, error) {
	var s model.Session

	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", sessionID, r.now()).
		First(&s).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Session{}, repo.ErrSessionNotFound
		}
		return model.Session{}, err
	}

	return s, nil
}

// 1件削除（無くてもエラーにしない）
func (r *sessionGormRepository) DeleteByID(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		Delete(&model.Session{}).Error
}

// ユーザーのセッションを全部削除（強制ログアウト）
func (r *sessionGormRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Session{}).Error
}

package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type activityGormRepository struct {
	db *gorm.DB
}

func NewActivityGormRepository(db *gorm.DB) repo.ActivityRepository {
	return &activityGormRepository{db: db}
}

func (r *activityGormRepository) Create(ctx context.Context, a model.Activity) error {
	return r.db.WithContext(ctx).Create(&a).Error
}

func (r *activityGormRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), limit)
}

func (r *activityGormRepository) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	return r.list(ctx, r.db.WithContext(ctx), limit)
}

func (r *activityGormRepository) list(ctx context.Context, q *gorm.DB, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	//新しい順
	var logs []model.Activity
	if err := q.Model(&model.Activity{}).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// データロガーの受け口（ファイル保存など）
type UserDataRepository interface {
	Append(ctx context.Context, rec model.UserDataRecord) error
	// recordType が空なら全部
	List(ctx context.Context, recordType string) ([]model.UserDataRecord, error)
}

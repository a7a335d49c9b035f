package repository

import (
	"context"
	"time"
)

// 日次カウンタと履歴（キャッシュ側）
type CounterRepository interface {
	// 1回目だけ期限を設定してINCR
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	// 先頭に積んでmaxLenで切る
	PushHistory(ctx context.Context, key string, entry []byte, maxLen int64, ttl time.Duration) error
	History(ctx context.Context, key string) ([][]byte, error)
}

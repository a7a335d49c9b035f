// Package cache はRedisを使うキャッシュ層（セッション・カート・カウンタ）。
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// URL（redis://...）からクライアントを作り、疎通確認する。
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

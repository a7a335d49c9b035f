package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

type counterRedisRepository struct {
	client *redis.Client
}

func NewCounterRedisRepository(client *redis.Client) repo.CounterRepository {
	return &counterRedisRepository{client: client}
}

// INCRして、1になった時だけ期限を付ける
func (r *counterRedisRepository) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 && ttl > 0 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *counterRedisRepository) Get(ctx context.Context, key string) (int64, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (r *counterRedisRepository) PushHistory(ctx context.Context, key string, entry []byte, maxLen int64, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, entry)
	pipe.LTrim(ctx, key, 0, maxLen-1)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *counterRedisRepository) History(ctx context.Context, key string) ([][]byte, error) {
	vals, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		out = append(out, []byte(v))
	}
	return out, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

type sessionRedisRepository struct {
	client *redis.Client
	now    func() time.Time
}

// session:{id} にJSONで保存。TTLは作成時に決まり延長しない。
func NewSessionRedisRepository(client *redis.Client) repo.SessionRepository {
	return &sessionRedisRepository{client: client, now: time.Now}
}

func sessionKey(id string) string { return "session:" + id }

func userSessionsKey(userID string) string { return "user_sessions:" + userID }

func (r *sessionRedisRepository) Create(ctx context.Context, s model.Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), b, ttl)
	pipe.SAdd(ctx, userSessionsKey(s.UserID), s.ID)
	pipe.Expire(ctx, userSessionsKey(s.UserID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *sessionRedisRepository) FindByID(ctx context.Context, sessionID string) (model.Session, error) {
	b, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Session{}, repo.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, err
	}

	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		// 壊れた値は無かったことにする
		_ = r.client.Del(ctx, sessionKey(sessionID)).Err()
		return model.Session{}, repo.ErrSessionNotFound
	}
	if s.Expired(r.now()) {
		return model.Session{}, repo.ErrSessionNotFound
	}
	return s, nil
}

func (r *sessionRedisRepository) DeleteByID(ctx context.Context, sessionID string) error {
	s, err := r.FindByID(ctx, sessionID)
	if errors.Is(err, repo.ErrSessionNotFound) {
		return r.client.Del(ctx, sessionKey(sessionID)).Err()
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, userSessionsKey(s.UserID), sessionID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *sessionRedisRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))
	return r.client.Del(ctx, keys...).Err()
}

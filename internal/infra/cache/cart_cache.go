package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

// カートの保持期間（7日）
const CartTTL = 7 * 24 * time.Hour

// RDBのカートの前段に置くキャッシュ。
// 読み取りは cart:{userID} を優先し、書き込みはRDBに反映してから
// cart_ver:{userID} を進めてキーを消す。
// 読み取り側は取得前の版が変わっていないときだけキャッシュを書く。
type CachedCartRepository struct {
	next   repo.CartItemRepository
	client *redis.Client
	logger *slog.Logger
}

// DI
func NewCachedCartRepository(next repo.CartItemRepository, client *redis.Client, logger *slog.Logger) *CachedCartRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedCartRepository{next: next, client: client, logger: logger}
}

func cartKey(userID string) string { return "cart:" + userID }

func cartVersionKey(userID string) string { return "cart_ver:" + userID }

func (r *CachedCartRepository) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	b, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if err == nil {
		var items []model.CartItem
		if jerr := json.Unmarshal(b, &items); jerr == nil {
			return items, nil
		}
		r.logger.Warn("discarding malformed cart cache", "user_id", userID)
	} else if !errors.Is(err, redis.Nil) {
		// キャッシュが落ちていてもRDBから返す
		r.logger.Warn("cart cache read failed", "user_id", userID, "error", err)
	}

	// 版はRDBを読む前に取る
	ver, verr := r.client.Get(ctx, cartVersionKey(userID)).Result()
	if verr != nil && !errors.Is(verr, redis.Nil) {
		r.logger.Warn("cart version read failed", "user_id", userID, "error", verr)
	}

	items, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if verr == nil || errors.Is(verr, redis.Nil) {
		r.fill(ctx, userID, ver, items)
	}
	return items, nil
}

// fill stores items only while cart_ver:{userID} still equals ver, so a read
// that overlapped a write never puts the older rows back.
func (r *CachedCartRepository) fill(ctx context.Context, userID, ver string, items []model.CartItem) {
	b, err := json.Marshal(items)
	if err != nil {
		return
	}

	verKey := cartVersionKey(userID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != ver {
			return errCartVersionMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cartKey(userID), b, CartTTL)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil:
	case errors.Is(err, errCartVersionMoved), errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("cart changed during read, cache not filled", "user_id", userID)
	default:
		r.logger.Warn("cart cache write failed", "user_id", userID, "error", err)
	}
}

var errCartVersionMoved = errors.New("cart version moved")

func (r *CachedCartRepository) UpsertByUserAndProduct(ctx context.Context, item model.CartItem, addQty int64) error {
	if err := r.next.UpsertByUserAndProduct(ctx, item, addQty); err != nil {
		return err
	}
	return r.invalidate(ctx, item.UserID)
}

func (r *CachedCartRepository) SetQuantity(ctx context.Context, item model.CartItem, qty int64) error {
	if err := r.next.SetQuantity(ctx, item, qty); err != nil {
		return err
	}
	return r.invalidate(ctx, item.UserID)
}

func (r *CachedCartRepository) DeleteByUserAndProduct(ctx context.Context, userID string, productID string) error {
	if err := r.next.DeleteByUserAndProduct(ctx, userID, productID); err != nil {
		return err
	}
	return r.invalidate(ctx, userID)
}

func (r *CachedCartRepository) ClearByUserID(ctx context.Context, userID string) error {
	if err := r.next.ClearByUserID(ctx, userID); err != nil {
		return err
	}
	return r.invalidate(ctx, userID)
}

// 古いキャッシュが残ると読み取り後の整合が崩れるので、消せなければエラーにする
func (r *CachedCartRepository) invalidate(ctx context.Context, userID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, cartVersionKey(userID))
		pipe.Expire(ctx, cartVersionKey(userID), CartTTL)
		pipe.Del(ctx, cartKey(userID))
		return nil
	})
	return err
}

package firestore

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CartFirestoreRepository struct {
	client *firestore.Client
}

// DI
func NewCartFirestoreRepository(client *firestore.Client) *CartFirestoreRepository {
	return &CartFirestoreRepository{client: client}
}

func (r *CartFirestoreRepository) items(userID string) *firestore.CollectionRef {
	return r.client.Collection("carts").Doc(userID).Collection("items")
}

// 追加順で取得
func (r *CartFirestoreRepository) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	docs, err := r.items(userID).OrderBy("created_at", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	items := make([]model.CartItem, 0, len(docs))
	for _, d := range docs {
		var it model.CartItem
		if err := d.DataTo(&it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// 同一商品は数量加算（トランザクション内で読んでから書く）
func (r *CartFirestoreRepository) UpsertByUserAndProduct(ctx context.Context, item model.CartItem, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	ref := r.items(item.UserID).Doc(item.ProductID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if err == nil {
			return tx.Update(ref, []firestore.Update{
				{Path: "quantity", Value: firestore.Increment(addQty)},
				{Path: "updated_at", Value: time.Now()},
			})
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		return tx.Set(ref, newCartDoc(item, addQty))
	})
}

func (r *CartFirestoreRepository) SetQuantity(ctx context.Context, item model.CartItem, qty int64) error {
	if qty <= 0 {
		return errors.New("invalid quantity")
	}

	ref := r.items(item.UserID).Doc(item.ProductID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if err == nil {
			return tx.Update(ref, []firestore.Update{
				{Path: "quantity", Value: qty},
				{Path: "updated_at", Value: time.Now()},
			})
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		return tx.Set(ref, newCartDoc(item, qty))
	})
}

func (r *CartFirestoreRepository) DeleteByUserAndProduct(ctx context.Context, userID string, productID string) error {
	_, err := r.items(userID).Doc(productID).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return repo.ErrNotFound
	}
	return err
}

// 明細ドキュメントをまとめて削除
func (r *CartFirestoreRepository) ClearByUserID(ctx context.Context, userID string) error {
	refs, err := r.items(userID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func newCartDoc(item model.CartItem, qty int64) model.CartItem {
	now := time.Now()
	item.Quantity = qty
	item.CreatedAt = now
	item.UpdatedAt = now
	return item
}

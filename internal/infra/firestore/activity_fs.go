package firestore

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"cloud.google.com/go/firestore"
)

type activityFirestoreRepository struct {
	client *firestore.Client
}

func NewActivityFirestoreRepository(client *firestore.Client) repo.ActivityRepository {
	return &activityFirestoreRepository{client: client}
}

func (r *activityFirestoreRepository) col() *firestore.CollectionRef {
	return r.client.Collection("user_activities")
}

func (r *activityFirestoreRepository) Create(ctx context.Context, a model.Activity) error {
	_, _, err := r.col().Add(ctx, a)
	return err
}

func (r *activityFirestoreRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	return r.list(ctx, r.col().Where("user_id", "==", userID), limit)
}

func (r *activityFirestoreRepository) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	return r.list(ctx, r.col().Query, limit)
}

func (r *activityFirestoreRepository) list(ctx context.Context, q firestore.Query, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	docs, err := q.OrderBy("timestamp", firestore.Desc).Limit(limit).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	out := make([]model.Activity, 0, len(docs))
	for _, d := range docs {
		var a model.Activity
		if err := d.DataTo(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

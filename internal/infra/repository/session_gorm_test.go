package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionGorm_ExpiredIsNotFound(t *testing.T) {
	ctx := context.Background()
	r := NewSessionGormRepository(newTestDB(t))

	now := time.Now()
	require.NoError(t, r.Create(ctx, model.Session{ID: "live", UserID: "u1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}))
	require.NoError(t, r.Create(ctx, model.Session{ID: "old", UserID: "u1", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)}))

	s, err := r.FindByID(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)

	_, err = r.FindByID(ctx, "old")
	assert.ErrorIs(t, err, repo.ErrSessionNotFound)

	require.NoError(t, r.DeleteByID(ctx, "live"))
	require.NoError(t, r.DeleteByID(ctx, "live"))
	_, err = r.FindByID(ctx, "live")
	assert.ErrorIs(t, err, repo.ErrSessionNotFound)
}

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

func TestUserGorm_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	require.NoError(t, r.Create(ctx, &model.User{ID: "u1", Name: "A", Email: "a@example.com", PasswordHash: "x", Role: model.RoleUser, IsActive: true}))
	err := r.Create(ctx, &model.User{ID: "u2", Name: "B", Email: "a@example.com", PasswordHash: "x", Role: model.RoleUser, IsActive: true})
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func TestUserGorm_FindAndTokenVersion(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	_, err := r.FindByEmail(ctx, "none@example.com")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)

	require.NoError(t, r.Create(ctx, &model.User{ID: "u1", Name: "A", Email: "a@example.com", PasswordHash: "x", Role: model.RoleUser, IsActive: true, Preferences: model.DefaultPreferences()}))
	require.NoError(t, r.IncrementTokenVersion(ctx, "u1"))

	u, err := r.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.TokenVersion)
	assert.Equal(t, "light", u.Preferences.Theme)

	assert.ErrorIs(t, r.IncrementTokenVersion(ctx, "missing"), repo.ErrUserNotFound)

	users, total, err := r.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, users, 1)
}

func TestUserGorm_Stats(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	dayStart := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	yesterday := dayStart.Add(-12 * time.Hour)
	morning := dayStart.Add(9 * time.Hour)

	require.NoError(t, r.Create(ctx, &model.User{ID: "old", Name: "Old", Email: "old@example.com", PasswordHash: "x", Role: model.RoleUser, IsActive: true, CreatedAt: yesterday, UpdatedAt: yesterday, LastLoginAt: &morning}))
	require.NoError(t, r.Create(ctx, &model.User{ID: "new", Name: "New", Email: "new@example.com", PasswordHash: "x", Role: model.RoleUser, IsActive: true, CreatedAt: morning, UpdatedAt: morning}))

	st, err := r.Stats(ctx, dayStart)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalUsers)
	assert.Equal(t, int64(1), st.NewUsersToday)
	assert.Equal(t, int64(1), st.ActiveUsersToday)
}

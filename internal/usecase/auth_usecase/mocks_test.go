package auth

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementTokenVersion(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit int, offset int) ([]model.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Stats(ctx context.Context, since time.Time) (repository.UserStats, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(repository.UserStats), args.Error(1)
}

// =====================
// Mock: SessionRepository
// =====================

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s model.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (model.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(model.Session)
	return s, args.Error(1)
}

func (m *MockSessionRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// Mock: ActivityRepository
// =====================

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, a model.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	args := m.Called(ctx, userID, limit)
	items, _ := args.Get(0).([]model.Activity)
	return items, args.Error(1)
}

func (m *MockActivityRepository) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.Activity)
	return items, args.Error(1)
}

// =====================
// Helper
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqID struct {
	ids []string
	i   int
}

func (g *seqID) NewID() string {
	id := g.ids[g.i%len(g.ids)]
	g.i++
	return id
}

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

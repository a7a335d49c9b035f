package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: CartItemRepository
// =====================

type MockCartItemRepository struct {
	mock.Mock
}

func (m *MockCartItemRepository) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *MockCartItemRepository) UpsertByUserAndProduct(ctx context.Context, item model.CartItem, addQty int64) error {
	args := m.Called(ctx, item, addQty)
	return args.Error(0)
}

func (m *MockCartItemRepository) SetQuantity(ctx context.Context, item model.CartItem, qty int64) error {
	args := m.Called(ctx, item, qty)
	return args.Error(0)
}

func (m *MockCartItemRepository) DeleteByUserAndProduct(ctx context.Context, userID string, productID string) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockCartItemRepository) ClearByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// Mock: ProductRepository
// =====================

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
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

func (m *MockUserRepository) Stats(ctx context.Context, since time.Time) (repo.UserStats, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(repo.UserStats), args.Error(1)
}

// =====================
// Mock: UserDataRepository / Mailer
// =====================

type MockUserDataRepository struct {
	mock.Mock
}

func (m *MockUserDataRepository) Append(ctx context.Context, rec model.UserDataRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockUserDataRepository) List(ctx context.Context, recordType string) ([]model.UserDataRecord, error) {
	args := m.Called(ctx, recordType)
	items, _ := args.Get(0).([]model.UserDataRecord)
	return items, args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func requireHTTPStatus(err error) int {
	if he, ok := AsHTTPError(err); ok {
		return he.Status
	}
	return 0
}

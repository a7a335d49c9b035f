package auth

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRegisterUC(users *MockUserRepository, acts *MockActivityRepository) *RegisterUserUsecase {
	return NewRegisterUserUsecase(users, acts, NewBcryptPasswordHasher(4), &seqID{ids: []string{"user-1"}}, fixedClock{testNow}, nil)
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	acts := new(MockActivityRepository)

	users.On("FindByEmail", ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound).Once()
	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == "user-1" && u.Name == "Alice" && u.Email == "alice@example.com" &&
			u.PasswordHash != "secret1" && u.Role == model.RoleUser && u.IsActive
	})).Return(nil).Once()
	acts.On("Create", ctx, mock.MatchedBy(func(a model.Activity) bool {
		return a.UserID == "user-1" && a.Action == model.ActivityRegister
	})).Return(nil).Once()

	out, err := newRegisterUC(users, acts).Execute(ctx, RegisterUserInput{
		Name: " Alice ", Email: "Alice@Example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", out.User.ID)
	assert.True(t, NewBcryptPasswordVerifier().Verify("secret1", out.User.PasswordHash))

	users.AssertExpectations(t)
	acts.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)

	users.On("FindByEmail", ctx, "alice@example.com").Return(&model.User{ID: "x"}, nil).Once()

	_, err := newRegisterUC(users, new(MockActivityRepository)).Execute(ctx, RegisterUserInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_UniqueViolationIsDuplicate(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)

	users.On("FindByEmail", ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound).Once()
	users.On("Create", ctx, mock.Anything).Return(repository.ErrConflict).Once()

	_, err := newRegisterUC(users, new(MockActivityRepository)).Execute(ctx, RegisterUserInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	uc := newRegisterUC(new(MockUserRepository), new(MockActivityRepository))

	cases := []struct {
		name string
		in   RegisterUserInput
		want error
	}{
		{"no name", RegisterUserInput{Email: "a@example.com", Password: "secret1"}, ErrNameRequired},
		{"bad email", RegisterUserInput{Name: "A", Email: "not-an-email", Password: "secret1"}, ErrInvalidEmailFormat},
		{"short password", RegisterUserInput{Name: "A", Email: "a@example.com", Password: "abc"}, ErrPasswordTooShort},
		{"weak password", RegisterUserInput{Name: "A", Email: "a@example.com", Password: "password"}, ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

package auth

import (
	"context"
	"errors"

	"storefront/internal/repository"
)

var ErrTargetUserNotFound = errors.New("target user not found")

type ForceLogoutOutput struct {
	UserID          string `json:"user_id"`
	NewTokenVersion int    `json:"new_token_version"`
}

// token_version を上げて、セッションも全部消す
type ForceLogoutUsecase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// DI
func NewForceLogoutUsecase(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) *ForceLogoutUsecase {
	return &ForceLogoutUsecase{userRepo: userRepo, sessionRepo: sessionRepo}
}

func (u *ForceLogoutUsecase) Execute(ctx context.Context, targetUserID string) (ForceLogoutOutput, error) {
	var out ForceLogoutOutput

	if err := u.userRepo.IncrementTokenVersion(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrTargetUserNotFound
		}
		return out, err
	}

	if err := u.sessionRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		return out, err
	}

	user, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return out, err
	}

	out.UserID = user.ID
	out.NewTokenVersion = user.TokenVersion
	return out, nil
}

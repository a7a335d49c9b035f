package auth

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// セッションが無い・期限切れ
var ErrSessionExpired = errors.New("session expired")

type SessionOutput struct {
	Session model.Session `json:"session"`
	User    model.User    `json:"user"`
}

// GET /auth/session
type SessionUsecase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// DI
func NewSessionUsecase(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) *SessionUsecase {
	return &SessionUsecase{userRepo: userRepo, sessionRepo: sessionRepo}
}

func (u *SessionUsecase) Execute(ctx context.Context, sessionID string) (SessionOutput, error) {
	var out SessionOutput
	if sessionID == "" {
		return out, ErrSessionExpired
	}

	s, err := u.sessionRepo.FindByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return out, ErrSessionExpired
	}
	if err != nil {
		return out, err
	}

	user, err := u.userRepo.FindByID(ctx, s.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return out, ErrSessionExpired
	}
	if err != nil {
		return out, err
	}
	if !user.IsActive {
		return out, ErrUserInactive
	}

	out.Session = s
	out.User = *user
	return out, nil
}

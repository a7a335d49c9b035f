package auth

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type LogoutInput struct {
	SessionID string
	// 認証済みなら入る
	UserID    string
	IPAddress string
	UserAgent string
}

// セッションを消す。何度呼んでも成功。
type LogoutUsecase struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	activityRepo repository.ActivityRepository
	clock        Clock
	logger       *slog.Logger
}

// DI
func NewLogoutUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	activityRepo repository.ActivityRepository,
	clock Clock,
	logger *slog.Logger,
) *LogoutUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogoutUsecase{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		clock:        clock,
		logger:       logger,
	}
}

func (u *LogoutUsecase) Execute(ctx context.Context, in LogoutInput) error {
	if in.SessionID != "" {
		if err := u.sessionRepo.DeleteByID(ctx, in.SessionID); err != nil {
			return err
		}
	}

	if in.UserID == "" {
		return nil
	}

	email := ""
	if user, err := u.userRepo.FindByID(ctx, in.UserID); err == nil && user != nil {
		email = user.Email
	}

	logActivity(ctx, u.activityRepo, u.logger, model.Activity{
		UserID:      in.UserID,
		UserEmail:   email,
		Action:      model.ActivityLogout,
		DetailsJSON: `{}`,
		IPAddress:   in.IPAddress,
		UserAgent:   in.UserAgent,
		Timestamp:   u.clock.Now(),
	})
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

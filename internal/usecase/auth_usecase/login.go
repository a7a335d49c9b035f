package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// token 形（JwtAccessToken相当）
type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
}

// handlerがCookieに詰めるために必要な値
type LoginSideEffect struct {
	SessionID string
	ExpiresAt time.Time
}

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みユーザー
var ErrUserInactive = errors.New("user is inactive")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID string, role model.Role, tokenVersion int, sessionID string, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type LoginUsecase struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	activityRepo repository.ActivityRepository
	verifier     PasswordVerifier
	issuer       AccessTokenIssuer
	idGen        IDGenerator
	clock        Clock
	sessionTTL   time.Duration
	logger       *slog.Logger
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	activityRepo repository.ActivityRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *LoginUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginUsecase{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		verifier:     verifier,
		issuer:       issuer,
		idGen:        idGen,
		clock:        clock,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, LoginSideEffect, error) {
	var out LoginOutput
	var side LoginSideEffect

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, ErrInvalidCredentials
		}
		return out, side, err
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return out, side, ErrUserInactive
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, side, ErrInvalidCredentials
	}

	//セッション作成（作成時点から固定TTL）
	now := u.clock.Now()
	session := model.Session{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		UserAgent: in.UserAgent,
		ExpiresAt: now.Add(u.sessionTTL),
		CreatedAt: now,
	}
	if err := u.sessionRepo.Create(ctx, session); err != nil {
		return out, side, err
	}

	//AccessToken発行（セッションと同じ期限）
	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, session.ID, now)
	if err != nil {
		return out, side, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, side, err
	}

	logActivity(ctx, u.activityRepo, u.logger, model.Activity{
		UserID:      user.ID,
		UserEmail:   user.Email,
		Action:      model.ActivityLogin,
		DetailsJSON: `{}`,
		IPAddress:   in.IPAddress,
		UserAgent:   in.UserAgent,
		Timestamp:   now,
	})

	out.User = *user
	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}

	side.SessionID = session.ID
	side.ExpiresAt = session.ExpiresAt
	return out, side, nil
}

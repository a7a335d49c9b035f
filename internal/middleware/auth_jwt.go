package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/config"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // string
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
	CtxSessionIDKey    = "session_id"    // string
)

// ログイン時に発行するcookie名
const SessionCookieName = "session_id"

var errUnauthenticated = errors.New("unauthenticated")

// 認証済みの利用者
type principal struct {
	userID       string
	role         string
	tokenVersion int
	sessionID    string
}

// bearer JWT または session_id cookie で認証する。
// JWTの sid が消えたセッションを指していたら401（ログアウト済み）。
func AuthJWT(cfg config.Config, sessions repository.SessionRepository, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := authenticate(c, cfg, sessions, users)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			setPrincipal(c, p)
			return next(c)
		}
	}
}

// 認証できればcontextに入れる。できなくても通す（/api/track, /auth/logout 用）。
func OptionalAuth(cfg config.Config, sessions repository.SessionRepository, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p, err := authenticate(c, cfg, sessions, users); err == nil {
				setPrincipal(c, p)
			}
			return next(c)
		}
	}
}

func setPrincipal(c echo.Context, p principal) {
	c.Set(CtxUserIDKey, p.userID)
	c.Set(CtxUserRoleKey, p.role)
	c.Set(CtxTokenVersionKey, p.tokenVersion)
	if p.sessionID != "" {
		c.Set(CtxSessionIDKey, p.sessionID)
	}
}

func authenticate(c echo.Context, cfg config.Config, sessions repository.SessionRepository, users repository.UserRepository) (principal, error) {
	//Authorizationヘッダがあればそちらを優先
	if authz := c.Request().Header.Get("Authorization"); authz != "" {
		return fromBearer(c, authz, cfg, sessions)
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return principal{}, errUnauthenticated
	}
	return fromSessionCookie(c, cookie.Value, sessions, users)
}

func fromBearer(c echo.Context, authz string, cfg config.Config, sessions repository.SessionRepository) (principal, error) {
	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return principal{}, errUnauthenticated
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return principal{}, errUnauthenticated
	}

	//JWTをパースして検証する
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return principal{}, errUnauthenticated
	}

	//claimsを取り出す
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return principal{}, errUnauthenticated
	}

	userID, err := parseString(claims["sub"])
	if err != nil || userID == "" {
		return principal{}, errUnauthenticated
	}

	//roleを取り出す（USER/ADMIN）
	role, err := parseString(claims["role"])
	if err != nil || role == "" {
		return principal{}, errUnauthenticated
	}

	//token_versionを取り出す
	tv, err := parseInt(claims["tv"])
	if err != nil || tv < 0 {
		return principal{}, errUnauthenticated
	}

	//sidがあればセッションが生きているか確認
	sid, _ := parseString(claims["sid"])
	if sid != "" {
		s, err := sessions.FindByID(c.Request().Context(), sid)
		if err != nil || s.UserID != userID {
			return principal{}, errUnauthenticated
		}
	}

	return principal{userID: userID, role: role, tokenVersion: tv, sessionID: sid}, nil
}

// cookieはサーバー側のセッションとユーザーから組み立てる
func fromSessionCookie(c echo.Context, sessionID string, sessions repository.SessionRepository, users repository.UserRepository) (principal, error) {
	ctx := c.Request().Context()

	s, err := sessions.FindByID(ctx, sessionID)
	if err != nil {
		return principal{}, errUnauthenticated
	}

	user, err := users.FindByID(ctx, s.UserID)
	if err != nil || user == nil || !user.IsActive {
		return principal{}, errUnauthenticated
	}

	return principal{
		userID:       user.ID,
		role:         string(user.Role),
		tokenVersion: user.TokenVersion,
		sessionID:    s.ID,
	}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		i64, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return 0, err
		}
		return int(i64), nil
	default:
		return 0, errors.New("invalid int")
	}
}

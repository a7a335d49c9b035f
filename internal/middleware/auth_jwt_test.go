package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/cache"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// レスポンス確認用
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
	SessionID    string `json:"session_id"`
}

// =====================
// UserRepository モック
// =====================

type MockUserRepoForMiddleware struct {
	mock.Mock
}

func (m *MockUserRepoForMiddleware) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepoForMiddleware) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepoForMiddleware) IncrementTokenVersion(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepoForMiddleware) List(ctx context.Context, limit int, offset int) ([]model.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepoForMiddleware) Stats(ctx context.Context, since time.Time) (repository.UserStats, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(repository.UserStats), args.Error(1)
}

var _ repository.UserRepository = (*MockUserRepoForMiddleware)(nil)

// =====================
// helper
// =====================

const testSecret = "test-secret"

var cfg = config.Config{JWTSecret: testSecret}

func newSessions(t *testing.T) repository.SessionRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewSessionRedisRepository(client)
}

func mustMakeJWT(t *testing.T, secret string, sub string, role string, tv int, sid string, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  9999999999,
	}
	if sid != "" {
		claims["sid"] = sid
	}

	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func okHandler(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(string)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	tv, _ := c.Get(middleware.CtxTokenVersionKey).(int)
	sid, _ := c.Get(middleware.CtxSessionIDKey).(string)

	return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role, TokenVersion: tv, SessionID: sid})
}

func runRequest(t *testing.T, e *echo.Echo, authHeader string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func decodeMWOK(t *testing.T, rec *httptest.ResponseRecorder) mwOKResponse {
	t.Helper()
	var r mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

// =====================
// AuthJWT
// =====================

func TestMiddleware_AuthJWT_Unauthorized(t *testing.T) {
	sessions := newSessions(t)
	users := new(MockUserRepoForMiddleware)

	cases := map[string]string{
		"no header":     "",
		"bad scheme":    "Token abc.def.ghi",
		"bad signature": "Bearer " + mustMakeJWT(t, "wrong-secret", "u1", "USER", 0, "", jwt.SigningMethodHS256),
		"wrong alg":     "Bearer " + mustMakeJWT(t, testSecret, "u1", "USER", 0, "", jwt.SigningMethodHS512),
		"no role":       "Bearer " + mustMakeJWT(t, testSecret, "u1", "", 0, "", jwt.SigningMethodHS256),
		"dead session":  "Bearer " + mustMakeJWT(t, testSecret, "u1", "USER", 0, "logged-out", jwt.SigningMethodHS256),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", okHandler, middleware.AuthJWT(cfg, sessions, users))

			rec := runRequest(t, e, header, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

func TestMiddleware_AuthJWT_BearerWithLiveSession(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	require.NoError(t, sessions.Create(ctx, model.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now()}))

	e := echo.New()
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg, sessions, new(MockUserRepoForMiddleware)))

	raw := mustMakeJWT(t, testSecret, "u1", "USER", 7, "s1", jwt.SigningMethodHS256)
	rec := runRequest(t, e, "Bearer "+raw, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mwOKResponse{UserID: "u1", Role: "USER", TokenVersion: 7, SessionID: "s1"}, decodeMWOK(t, rec))

	// ログアウト後は同じトークンでも401
	require.NoError(t, sessions.DeleteByID(ctx, "s1"))
	rec = runRequest(t, e, "Bearer "+raw, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_AuthJWT_SessionCookie(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	users := new(MockUserRepoForMiddleware)
	require.NoError(t, sessions.Create(ctx, model.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now()}))

	users.On("FindByID", mock.Anything, "u1").Return(&model.User{ID: "u1", Role: model.RoleAdmin, TokenVersion: 2, IsActive: true}, nil)

	e := echo.New()
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg, sessions, users))

	rec := runRequest(t, e, "", &http.Cookie{Name: middleware.SessionCookieName, Value: "s1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mwOKResponse{UserID: "u1", Role: "ADMIN", TokenVersion: 2, SessionID: "s1"}, decodeMWOK(t, rec))

	rec = runRequest(t, e, "", &http.Cookie{Name: middleware.SessionCookieName, Value: "unknown"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_OptionalAuth_PassesAnonymous(t *testing.T) {
	e := echo.New()
	e.GET("/protected", okHandler, middleware.OptionalAuth(cfg, newSessions(t), new(MockUserRepoForMiddleware)))

	rec := runRequest(t, e, "Bearer garbage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decodeMWOK(t, rec).UserID)
}

// =====================
// TokenVersionGuard / AdminRoleGuard
// =====================

func TestMiddleware_TokenVersionGuard(t *testing.T) {
	users := new(MockUserRepoForMiddleware)
	users.On("FindByID", mock.Anything, "u1").Return(&model.User{ID: "u1", Role: model.RoleUser, TokenVersion: 5, IsActive: true}, nil)

	e := echo.New()
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg, newSessions(t), users), middleware.TokenVersionGuard(users))

	rec := runRequest(t, e, "Bearer "+mustMakeJWT(t, testSecret, "u1", "USER", 5, "", jwt.SigningMethodHS256), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 強制ログアウトで上がった後の古いトークン
	rec = runRequest(t, e, "Bearer "+mustMakeJWT(t, testSecret, "u1", "USER", 4, "", jwt.SigningMethodHS256), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_TokenVersionGuard_MissingContext(t *testing.T) {
	e := echo.New()
	e.GET("/protected", okHandler, middleware.TokenVersionGuard(new(MockUserRepoForMiddleware)))

	rec := runRequest(t, e, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_AdminRoleGuard(t *testing.T) {
	sessions := newSessions(t)
	users := new(MockUserRepoForMiddleware)

	e := echo.New()
	e.GET("/protected", okHandler, middleware.AuthJWT(cfg, sessions, users), middleware.AdminRoleGuard())

	rec := runRequest(t, e, "Bearer "+mustMakeJWT(t, testSecret, "u1", "USER", 0, "", jwt.SigningMethodHS256), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin only", decodeMWError(t, rec).Error)

	rec = runRequest(t, e, "Bearer "+mustMakeJWT(t, testSecret, "a1", "ADMIN", 0, "", jwt.SigningMethodHS256), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package handler

import (
	"errors"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// 認証ミドルウェアの部品
type AuthDeps struct {
	Cfg      config.Config
	Sessions repository.SessionRepository
	Users    repository.UserRepository
}

// JWT(or cookie) + token_version一致
func (d AuthDeps) Required() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.AuthJWT(d.Cfg, d.Sessions, d.Users),
		middleware.TokenVersionGuard(d.Users),
	}
}

// Required + ADMIN限定
func (d AuthDeps) Admin() []echo.MiddlewareFunc {
	return append(d.Required(), middleware.AdminRoleGuard())
}

func (d AuthDeps) Optional() echo.MiddlewareFunc {
	return middleware.OptionalAuth(d.Cfg, d.Sessions, d.Users)
}

// middleware.AuthJWT が c.Set した user_id を取り出す
func getUserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func getSessionIDFromContext(c echo.Context) string {
	id, _ := c.Get(middleware.CtxSessionIDKey).(string)
	return id
}

// Bind と validate をまとめて行う
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

// bindAndValidate のエラーをレスポンスにする
func writeBindError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return writeError(c, err)
}

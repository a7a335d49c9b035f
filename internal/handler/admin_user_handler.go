package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc            *usecase.AdminUserUsecase
	forceLogoutUC *auth.ForceLogoutUsecase
}

func NewAdminUserHandler(uc *usecase.AdminUserUsecase, forceLogoutUC *auth.ForceLogoutUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc, forceLogoutUC: forceLogoutUC}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, deps AuthDeps) {
	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group("/admin", deps.Admin()...)

	admin.GET("/users", h.list)
	admin.POST("/users/:id/force-logout", h.forceLogout)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, limit := 1, 50
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	res, err := h.forceLogoutUC.Execute(c.Request().Context(), userID)
	if errors.Is(err, auth.ErrTargetUserNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, res)
}

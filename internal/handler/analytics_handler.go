package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/track, /api/analytics
type AnalyticsHandler struct {
	uc *usecase.AnalyticsUsecase
}

// DI
func NewAnalyticsHandler(uc *usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

type trackRequest struct {
	Action string            `json:"action" validate:"required,notblank"`
	Data   usecase.TrackData `json:"data"`
}

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo, deps AuthDeps) {
	e.POST("/api/track", h.track, deps.Optional())
	e.GET("/api/analytics", h.analytics, deps.Admin()...)
}

// 未ログインでもカウンタは進む
func (h *AnalyticsHandler) track(c echo.Context) error {
	var req trackRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeBindError(c, err)
	}

	userID, _ := getUserIDFromContext(c)
	if err := h.uc.Track(c.Request().Context(), usecase.TrackInput{
		Action:    req.Action,
		Data:      req.Data,
		UserID:    userID,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "tracked"})
}

func (h *AnalyticsHandler) analytics(c echo.Context) error {
	switch c.QueryParam("type") {
	case "", "overview":
		out, err := h.uc.Overview(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	case "activities":
		out, err := h.uc.Activities(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid type"})
	}
}

package handler

import (
	"encoding/json"
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /user/activity, /user/history
type ActivityHandler struct {
	activityUC  *usecase.ActivityUsecase
	analyticsUC *usecase.AnalyticsUsecase
}

// DI
func NewActivityHandler(activityUC *usecase.ActivityUsecase, analyticsUC *usecase.AnalyticsUsecase) *ActivityHandler {
	return &ActivityHandler{activityUC: activityUC, analyticsUC: analyticsUC}
}

type logActivityRequest struct {
	Action  string          `json:"action" validate:"required,notblank"`
	Details json.RawMessage `json:"details"`
}

func (h *ActivityHandler) RegisterRoutes(e *echo.Echo, deps AuthDeps) {
	g := e.Group("/user", deps.Required()...)

	g.GET("/activity", h.list)
	g.POST("/activity", h.log)
	g.GET("/history", h.history)
}

func (h *ActivityHandler) log(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req logActivityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeBindError(c, err)
	}

	if err := h.activityUC.Log(c.Request().Context(), usecase.LogActivityInput{
		UserID:    userID,
		Action:    req.Action,
		Details:   req.Details,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{Message: "activity logged"})
}

func (h *ActivityHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.activityUC.ListMine(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ActivityHandler) history(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.analyticsUC.History(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

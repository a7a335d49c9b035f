package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// データロガーの送信先
type UserDataHandler struct {
	uc *usecase.UserDataUsecase
}

// DI
func NewUserDataHandler(uc *usecase.UserDataUsecase) *UserDataHandler {
	return &UserDataHandler{uc: uc}
}

type saveUserDataRequest struct {
	Type      string          `json:"type" validate:"required,notblank"`
	Data      json.RawMessage `json:"data"`
	Timestamp *time.Time      `json:"timestamp"`
	SessionID string          `json:"sessionId"`
	UserAgent string          `json:"userAgent"`
}

type emailUserDataRequest struct {
	Type string          `json:"type" validate:"required,notblank"`
	Data json.RawMessage `json:"data"`
}

func (h *UserDataHandler) RegisterRoutes(e *echo.Echo, deps AuthDeps) {
	e.POST("/api/save-user-data", h.save)
	e.POST("/api/email-user-data", h.email)
	e.GET("/api/download-data", h.download, deps.Admin()...)
}

func (h *UserDataHandler) save(c echo.Context) error {
	var req saveUserDataRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeBindError(c, err)
	}

	in := usecase.SaveUserDataInput{
		Type:      req.Type,
		Data:      req.Data,
		SessionID: req.SessionID,
		IP:        c.RealIP(),
		UserAgent: req.UserAgent,
	}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}
	if in.UserAgent == "" {
		in.UserAgent = c.Request().UserAgent()
	}

	if err := h.uc.Save(c.Request().Context(), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "data saved"})
}

func (h *UserDataHandler) email(c echo.Context) error {
	var req emailUserDataRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeBindError(c, err)
	}

	if err := h.uc.Email(c.Request().Context(), usecase.EmailUserDataInput{
		Type: req.Type,
		Data: req.Data,
		IP:   c.RealIP(),
	}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "email sent"})
}

// CSVダウンロード（?type= で絞り込み）
func (h *UserDataHandler) download(c echo.Context) error {
	recordType := c.QueryParam("type")

	var buf bytes.Buffer
	if err := h.uc.ExportCSV(c.Request().Context(), recordType, &buf); err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", h.uc.ExportFilename(recordType)))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

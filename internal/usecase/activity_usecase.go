package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 1ユーザーに返す件数
const myActivityLimit = 100

type ActivityUsecase struct {
	activityRepo repo.ActivityRepository
	now          func() time.Time
}

// DI
func NewActivityUsecase(activityRepo repo.ActivityRepository, now func() time.Time) *ActivityUsecase {
	if now == nil {
		now = time.Now
	}
	return &ActivityUsecase{activityRepo: activityRepo, now: now}
}

type LogActivityInput struct {
	UserID    string
	UserEmail string
	Action    string
	Details   json.RawMessage
	IPAddress string
	UserAgent string
}

type ActivityListResponse struct {
	Activities []model.Activity `json:"activities"`
}

func (u *ActivityUsecase) Log(ctx context.Context, in LogActivityInput) error {
	if in.UserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	action := strings.TrimSpace(in.Action)
	if action == "" || len(action) > 100 {
		return NewHTTPError(http.StatusBadRequest, "invalid action")
	}

	details := "{}"
	if len(in.Details) > 0 {
		if !json.Valid(in.Details) {
			return NewHTTPError(http.StatusBadRequest, "invalid details")
		}
		details = string(in.Details)
	}

	if err := u.activityRepo.Create(ctx, model.Activity{
		UserID:      in.UserID,
		UserEmail:   in.UserEmail,
		Action:      model.ActivityAction(action),
		DetailsJSON: details,
		IPAddress:   in.IPAddress,
		UserAgent:   in.UserAgent,
		Timestamp:   u.now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 自分の操作ログ（新しい順）
func (u *ActivityUsecase) ListMine(ctx context.Context, userID string) (ActivityListResponse, error) {
	if userID == "" {
		return ActivityListResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.activityRepo.ListByUserID(ctx, userID, myActivityLimit)
	if err != nil {
		return ActivityListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if items == nil {
		items = []model.Activity{}
	}
	return ActivityListResponse{Activities: items}, nil
}

package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
)

const (
	counterTTL = 24 * time.Hour
	historyTTL = 30 * 24 * time.Hour

	searchHistoryMax = 50
	viewHistoryMax   = 100
)

// /api/track と /api/analytics
// カウンタは日付ごとのキー（page_views:2026-10-19 など）。
type AnalyticsUsecase struct {
	counters     repo.CounterRepository
	activityRepo repo.ActivityRepository
	userRepo     repo.UserRepository
	logger       *slog.Logger
	now          func() time.Time
}

// DI
func NewAnalyticsUsecase(
	counters repo.CounterRepository,
	activityRepo repo.ActivityRepository,
	userRepo repo.UserRepository,
	logger *slog.Logger,
	now func() time.Time,
) *AnalyticsUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &AnalyticsUsecase{
		counters:     counters,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		logger:       logger,
		now:          now,
	}
}

// クライアントから届くイベントの中身
type TrackData struct {
	Page        string `json:"page,omitempty"`
	URL         string `json:"url,omitempty"`
	Query       string `json:"query,omitempty"`
	Results     int    `json:"results,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       int64  `json:"price,omitempty"`
	Quantity    int64  `json:"quantity,omitempty"`
}

type TrackInput struct {
	Action string
	Data   TrackData
	// ログイン中のみ
	UserID    string
	UserEmail string
	IPAddress string
	UserAgent string
}

type searchHistoryEntry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

type viewHistoryEntry struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Timestamp   time.Time `json:"timestamp"`
}

func (u *AnalyticsUsecase) today() string {
	return u.now().UTC().Format("2006-01-02")
}

func (u *AnalyticsUsecase) Track(ctx context.Context, in TrackInput) error {
	day := u.today()
	var details any

	switch model.ActivityAction(in.Action) {
	case model.ActivityPageView:
		if _, err := u.counters.Increment(ctx, "page_views:"+day, counterTTL); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "cache error")
		}
		details = TrackData{Page: in.Data.Page, URL: in.Data.URL}

	case model.ActivitySearch:
		if strings.TrimSpace(in.Data.Query) == "" {
			return NewHTTPError(http.StatusBadRequest, "query required")
		}
		if _, err := u.counters.Increment(ctx, "searches:"+day, counterTTL); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "cache error")
		}
		if in.UserID != "" {
			u.pushHistory(ctx, "search_history:"+in.UserID, searchHistoryEntry{Query: in.Data.Query, Timestamp: u.now()}, searchHistoryMax)
		}
		details = TrackData{Query: in.Data.Query, Results: in.Data.Results}

	case model.ActivityProductView:
		if in.Data.ProductID == "" {
			return NewHTTPError(http.StatusBadRequest, "productId required")
		}
		if _, err := u.counters.Increment(ctx, "popular:"+day+":"+in.Data.ProductID, counterTTL); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "cache error")
		}
		if in.UserID != "" {
			u.pushHistory(ctx, "view_history:"+in.UserID, viewHistoryEntry{ProductID: in.Data.ProductID, ProductName: in.Data.ProductName, Timestamp: u.now()}, viewHistoryMax)
		}
		details = TrackData{ProductID: in.Data.ProductID, ProductName: in.Data.ProductName, Category: in.Data.Category}

	case model.ActivityCartAdd:
		if _, err := u.counters.Increment(ctx, "cart_adds:"+day, counterTTL); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "cache error")
		}
		details = TrackData{ProductID: in.Data.ProductID, ProductName: in.Data.ProductName, Price: in.Data.Price, Quantity: in.Data.Quantity}

	default:
		return NewHTTPError(http.StatusBadRequest, "invalid action")
	}

	metrics.RecordTrack(in.Action)

	// 匿名はカウンタだけ
	if in.UserID == "" {
		return nil
	}

	b, _ := json.Marshal(details)
	if err := u.activityRepo.Create(ctx, model.Activity{
		UserID:      in.UserID,
		UserEmail:   in.UserEmail,
		Action:      model.ActivityAction(in.Action),
		DetailsJSON: string(b),
		IPAddress:   in.IPAddress,
		UserAgent:   in.UserAgent,
		Timestamp:   u.now(),
	}); err != nil {
		u.logger.Warn("activity log failed", "action", in.Action, "error", err)
	}
	return nil
}

// 履歴は失敗してもイベント自体は成功扱い
func (u *AnalyticsUsecase) pushHistory(ctx context.Context, key string, entry any, maxLen int64) {
	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := u.counters.PushHistory(ctx, key, b, maxLen, historyTTL); err != nil {
		u.logger.Warn("history push failed", "key", key, "error", err)
	}
}

type TodayCounters struct {
	PageViews int64 `json:"page_views"`
	Searches  int64 `json:"searches"`
	CartAdds  int64 `json:"cart_adds"`
}

type AnalyticsOverview struct {
	Users            repo.UserStats   `json:"users"`
	Today            TodayCounters    `json:"today"`
	RecentActivities []model.Activity `json:"recent_activities"`
}

func (u *AnalyticsUsecase) Overview(ctx context.Context) (AnalyticsOverview, error) {
	now := u.now().UTC()
	day := now.Format("2006-01-02")
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats, err := u.userRepo.Stats(ctx, dayStart)
	if err != nil {
		return AnalyticsOverview{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var today TodayCounters
	for key, dst := range map[string]*int64{
		"page_views:" + day: &today.PageViews,
		"searches:" + day:   &today.Searches,
		"cart_adds:" + day:  &today.CartAdds,
	} {
		v, err := u.counters.Get(ctx, key)
		if err != nil {
			return AnalyticsOverview{}, NewHTTPError(http.StatusInternalServerError, "cache error")
		}
		*dst = v
	}

	recent, err := u.activityRepo.ListRecent(ctx, 20)
	if err != nil {
		return AnalyticsOverview{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if recent == nil {
		recent = []model.Activity{}
	}

	return AnalyticsOverview{Users: stats, Today: today, RecentActivities: recent}, nil
}

// 全体の最近の操作ログ
func (u *AnalyticsUsecase) Activities(ctx context.Context) (ActivityListResponse, error) {
	items, err := u.activityRepo.ListRecent(ctx, 100)
	if err != nil {
		return ActivityListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if items == nil {
		items = []model.Activity{}
	}
	return ActivityListResponse{Activities: items}, nil
}

type HistoryResponse struct {
	Searches []json.RawMessage `json:"searches"`
	Views    []json.RawMessage `json:"views"`
}

// 自分の検索・閲覧履歴（新しい順）
func (u *AnalyticsUsecase) History(ctx context.Context, userID string) (HistoryResponse, error) {
	if userID == "" {
		return HistoryResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	searches, err := u.counters.History(ctx, "search_history:"+userID)
	if err != nil {
		return HistoryResponse{}, NewHTTPError(http.StatusInternalServerError, "cache error")
	}
	views, err := u.counters.History(ctx, "view_history:"+userID)
	if err != nil {
		return HistoryResponse{}, NewHTTPError(http.StatusInternalServerError, "cache error")
	}

	return HistoryResponse{Searches: toRaw(searches), Views: toRaw(views)}, nil
}

func toRaw(entries [][]byte) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		out = append(out, json.RawMessage(e))
	}
	return out
}

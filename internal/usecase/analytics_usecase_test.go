package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/cache"
	repo "storefront/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAnalyticsUC(t *testing.T, acts *MockActivityRepository, users *MockUserRepository) (*AnalyticsUsecase, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewAnalyticsUsecase(cache.NewCounterRedisRepository(client), acts, users, nil, fixedNow), mr
}

func TestAnalytics_TrackAnonymousOnlyCounts(t *testing.T) {
	ctx := context.Background()
	acts := new(MockActivityRepository)
	uc, mr := newAnalyticsUC(t, acts, new(MockUserRepository))

	require.NoError(t, uc.Track(ctx, TrackInput{Action: "page_view", Data: TrackData{Page: "home"}}))
	require.NoError(t, uc.Track(ctx, TrackInput{Action: "page_view"}))
	require.NoError(t, uc.Track(ctx, TrackInput{Action: "cart_add", Data: TrackData{ProductID: "p1"}}))

	v, err := mr.Get("page_views:2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	v, err = mr.Get("cart_adds:2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	acts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAnalytics_TrackLoggedInWritesHistoryAndActivity(t *testing.T) {
	ctx := context.Background()
	acts := new(MockActivityRepository)
	acts.On("Create", ctx, mock.MatchedBy(func(a model.Activity) bool {
		return a.UserID == "u1" && a.Action == model.ActivitySearch && a.DetailsJSON == `{"query":"coffee","results":3}`
	})).Return(nil).Once()
	acts.On("Create", ctx, mock.MatchedBy(func(a model.Activity) bool {
		return a.Action == model.ActivityProductView
	})).Return(nil).Once()

	uc, mr := newAnalyticsUC(t, acts, new(MockUserRepository))

	require.NoError(t, uc.Track(ctx, TrackInput{Action: "search", UserID: "u1", Data: TrackData{Query: "coffee", Results: 3}}))
	require.NoError(t, uc.Track(ctx, TrackInput{Action: "product_view", UserID: "u1", Data: TrackData{ProductID: "p1", ProductName: "Beans"}}))

	v, err := mr.Get("popular:2026-10-19:p1")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	h, err := uc.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, h.Searches, 1)
	require.Len(t, h.Views, 1)

	var entry searchHistoryEntry
	require.NoError(t, json.Unmarshal(h.Searches[0], &entry))
	assert.Equal(t, "coffee", entry.Query)

	acts.AssertExpectations(t)
}

func TestAnalytics_TrackRejectsUnknownAction(t *testing.T) {
	uc, _ := newAnalyticsUC(t, new(MockActivityRepository), new(MockUserRepository))

	err := uc.Track(context.Background(), TrackInput{Action: "checkout"})
	assert.Equal(t, http.StatusBadRequest, requireHTTPStatus(err))

	err = uc.Track(context.Background(), TrackInput{Action: "search"})
	assert.Equal(t, http.StatusBadRequest, requireHTTPStatus(err))
}

func TestAnalytics_Overview(t *testing.T) {
	ctx := context.Background()
	acts := new(MockActivityRepository)
	users := new(MockUserRepository)

	users.On("Stats", ctx, mock.Anything).Return(repo.UserStats{TotalUsers: 4, NewUsersToday: 1, ActiveUsersToday: 2}, nil).Once()
	acts.On("ListRecent", ctx, 20).Return([]model.Activity{{UserID: "u1", Action: model.ActivityLogin}}, nil).Once()

	uc, _ := newAnalyticsUC(t, acts, users)
	require.NoError(t, uc.Track(ctx, TrackInput{Action: "page_view"}))
	require.NoError(t, uc.Track(ctx, TrackInput{Action: "search", Data: TrackData{Query: "tea"}}))

	out, err := uc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Users.TotalUsers)
	assert.Equal(t, TodayCounters{PageViews: 1, Searches: 1, CartAdds: 0}, out.Today)
	assert.Len(t, out.RecentActivities, 1)
}

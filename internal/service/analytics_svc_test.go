package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
)

func TestAnalyticsService_Window(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnalyticsService(env.eventRepo, env.clock)

	w, err := svc.Window(0, DefaultAnalyticsDays)
	require.NoError(t, err)
	assert.Equal(t, 30, w.Days)
	assert.Equal(t, time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC), w.Since)

	w, err = svc.Window(1, DefaultAnalyticsDays)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), w.Since)

	for _, days := range []int{-1, 366} {
		_, err = svc.Window(days, DefaultAnalyticsDays)
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve), days)
	}
}

func TestParseTopScope(t *testing.T) {
	s, err := ParseTopScope("")
	require.NoError(t, err)
	assert.Equal(t, TopScopeLifetime, s)

	s, err = ParseTopScope("window")
	require.NoError(t, err)
	assert.Equal(t, TopScopeWindow, s)

	_, err = ParseTopScope("month")
	assert.Error(t, err)
}

func TestAnalyticsService_GetStoreAnalytics(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnalyticsService(env.eventRepo, env.clock)
	store, iphone, airpods := env.seedDemo(t)
	ctx := context.Background()

	day := func(d, h int) time.Time { return time.Date(2026, 5, d, h, 0, 0, 0, time.UTC) }
	src := func(s string) model.EventMeta { return model.EventMeta{UTMSource: &s} }

	// 窗口外（7 天窗口从 5/4 开始）
	require.NoError(t, env.db.Create(&model.ClickEvent{StoreID: store.ID, ProductID: airpods.ID, Marketplace: "amazon", CreatedAt: day(1, 10)}).Error)
	require.NoError(t, env.db.Create(&model.ClickEvent{StoreID: store.ID, ProductID: airpods.ID, Marketplace: "amazon", CreatedAt: day(2, 10)}).Error)
	// 窗口内
	for _, at := range []time.Time{day(9, 1), day(9, 23), day(10, 8)} {
		require.NoError(t, env.db.Create(&model.ClickEvent{StoreID: store.ID, ProductID: iphone.ID, Marketplace: "amazon", CreatedAt: at}).Error)
	}
	require.NoError(t, env.db.Create(&model.ClickEvent{StoreID: store.ID, ProductID: iphone.ID, Marketplace: "shopee", CreatedAt: day(10, 9)}).Error)

	require.NoError(t, env.db.Create(&model.ProductView{StoreID: store.ID, ProductID: airpods.ID, CreatedAt: day(5, 12)}).Error)
	require.NoError(t, env.db.Create(&model.StoreVisit{StoreID: store.ID, EventMeta: src("instagram"), CreatedAt: day(6, 12)}).Error)
	require.NoError(t, env.db.Create(&model.StoreVisit{StoreID: store.ID, EventMeta: src("instagram"), CreatedAt: day(7, 12)}).Error)
	require.NoError(t, env.db.Create(&model.StoreVisit{StoreID: store.ID, CreatedAt: day(7, 13)}).Error)

	// 其他店铺的数据不计入
	require.NoError(t, env.db.Create(&model.StoreVisit{StoreID: store.ID + 100, CreatedAt: day(7, 13)}).Error)

	res, err := svc.GetStoreAnalytics(ctx, store.ID, 7, TopScopeLifetime)
	require.NoError(t, err)

	assert.EqualValues(t, 4, res.Clicks.Total)
	assert.Equal(t, []repository.DayCount{{Date: "2026-05-09", Count: 2}, {Date: "2026-05-10", Count: 2}}, res.Clicks.ByDay)
	require.Len(t, res.Clicks.TopMarketplaces, 2)
	assert.Equal(t, repository.NameCount{Name: "amazon", Count: 3}, res.Clicks.TopMarketplaces[0])

	// lifetime：iphone 4 次，airpods 2 次
	require.Len(t, res.Clicks.TopProducts, 2)
	assert.Equal(t, iphone.ID, res.Clicks.TopProducts[0].ProductID)
	assert.EqualValues(t, 4, res.Clicks.TopProducts[0].Count)
	assert.EqualValues(t, 2, res.Clicks.TopProducts[1].Count)

	assert.EqualValues(t, 1, res.Views.Total)
	require.Len(t, res.Views.TopProducts, 2)
	assert.Equal(t, airpods.ID, res.Views.TopProducts[0].ProductID)

	assert.EqualValues(t, 3, res.Visits.Total)
	assert.Equal(t, []repository.NameCount{{Name: "instagram", Count: 2}}, res.Visits.BySource)

	// window：airpods 窗口内没有点击
	res, err = svc.GetStoreAnalytics(ctx, store.ID, 7, TopScopeWindow)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Clicks.TopProducts[1].Count)
}

func TestAnalyticsService_EmptyWindow(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnalyticsService(env.eventRepo, env.clock)
	store, _, _ := env.seedDemo(t)

	res, err := svc.GetStoreAnalytics(context.Background(), store.ID, 30, "")
	require.NoError(t, err)
	assert.Equal(t, TopScopeLifetime, res.TopScope)
	assert.Zero(t, res.Visits.Total)
	assert.Zero(t, res.Views.Total)
	assert.Zero(t, res.Clicks.Total)
	assert.Empty(t, res.Visits.ByDay)
	assert.Empty(t, res.Clicks.ByDay)
	assert.Empty(t, res.Clicks.TopMarketplaces)
}

func TestAnalyticsService_OverviewAndProductStats(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnalyticsService(env.eventRepo, env.clock)
	tracking := NewTrackingService(env.resolver, env.eventRepo, env.clock)
	store, iphone, _ := env.seedDemo(t)
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		_, err := tracking.RecordClick(ctx, ClickRequest{StoreSlug: "demo-store", ProductSlug: "iphone-15-pro-max", Marketplace: "amazon"})
		require.NoError(t, err)
	}
	require.NoError(t, tracking.RecordProductView(ctx, "demo-store", "iphone-15-pro-max", RequestMeta{}))

	ov, err := svc.GetOverview(ctx, store.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultOverviewDays, ov.Window.Days)
	assert.EqualValues(t, n, ov.TotalClicks)
	require.Len(t, ov.ClicksByDay, 1)
	assert.EqualValues(t, n, ov.ClicksByDay[0].Count)
	assert.Equal(t, "2026-05-10", ov.ClicksByDay[0].Date)

	ps, err := svc.GetProductStats(ctx, iphone.ID, 30)
	require.NoError(t, err)
	assert.EqualValues(t, n, ps.TotalClicks)
	assert.Equal(t, []repository.NameCount{{Name: "amazon", Count: n}}, ps.ByMarketplace)
	assert.EqualValues(t, 1, ps.TotalViews)
	require.Len(t, ps.ViewsByDay, 1)
}

// failingEventRepo 点击聚合失败
type failingEventRepo struct {
	repository.EventRepository
}

func (f failingEventRepo) CountTotal(ctx context.Context, kind model.EventKind, scope repository.EventScope) (int64, error) {
	if kind == model.EventKindClick {
		return 0, errors.New("connection reset")
	}
	return f.EventRepository.CountTotal(ctx, kind, scope)
}

func TestAnalyticsService_AllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnalyticsService(failingEventRepo{env.eventRepo}, env.clock)
	store, _, _ := env.seedDemo(t)

	res, err := svc.GetStoreAnalytics(context.Background(), store.ID, 7, TopScopeLifetime)
	assert.Nil(t, res)
	var ie *InternalError
	require.True(t, errors.As(err, &ie))
	assert.Contains(t, err.Error(), "connection reset")
}

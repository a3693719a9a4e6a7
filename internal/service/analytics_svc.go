package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
	"storefront_dev_v1/pkg/clock"
	"storefront_dev_v1/pkg/logger"
)

// ==================== 统计窗口 ====================

const (
	DefaultAnalyticsDays = 30
	DefaultOverviewDays  = 7
	MaxAnalyticsDays     = 365

	topProductsLimit = 10
	dimensionLimit   = 10
)

// TopScope 热门商品排行的时间范围
type TopScope string

const (
	TopScopeLifetime TopScope = "lifetime" // 全部历史
	TopScopeWindow   TopScope = "window"   // 与其余统计相同的窗口
)

// ParseTopScope 空串为 lifetime
func ParseTopScope(s string) (TopScope, error) {
	switch TopScope(s) {
	case "", TopScopeLifetime:
		return TopScopeLifetime, nil
	case TopScopeWindow:
		return TopScopeWindow, nil
	}
	return "", NewValidationError("invalid top_scope %q", s)
}

// Window 统计窗口：[Since, now]，Since 为 (今天 - days + 1) 的 UTC 零点
type Window struct {
	Days  int       `json:"days"`
	Since time.Time `json:"since"`
}

// ==================== 返回结构 ====================

type VisitStats struct {
	Total    int64                  `json:"total"`
	ByDay    []repository.DayCount  `json:"by_day"`
	BySource []repository.NameCount `json:"by_source"`
}

type ViewStats struct {
	Total       int64                     `json:"total"`
	ByDay       []repository.DayCount     `json:"by_day"`
	TopProducts []repository.ProductCount `json:"top_products"`
}

type ClickStats struct {
	Total           int64                     `json:"total"`
	ByDay           []repository.DayCount     `json:"by_day"`
	TopMarketplaces []repository.NameCount    `json:"top_marketplaces"`
	TopProducts     []repository.ProductCount `json:"top_products"`
}

// StoreAnalytics 店铺统计页
type StoreAnalytics struct {
	Window   Window     `json:"window"`
	TopScope TopScope   `json:"top_scope"`
	Visits   VisitStats `json:"store_visits"`
	Views    ViewStats  `json:"product_views"`
	Clicks   ClickStats `json:"clicks"`
}

// Overview 后台首页
type Overview struct {
	Window          Window                    `json:"window"`
	TotalClicks     int64                     `json:"total_clicks"`
	ClicksByDay     []repository.DayCount     `json:"clicks_by_day"`
	TopProducts     []repository.ProductCount `json:"top_products"`
	TopMarketplaces []repository.NameCount    `json:"top_marketplaces"`
}

// ProductStats 单商品统计
type ProductStats struct {
	Window        Window                 `json:"window"`
	TotalClicks   int64                  `json:"total_clicks"`
	ByMarketplace []repository.NameCount `json:"clicks_by_marketplace"`
	TotalViews    int64                  `json:"total_views"`
	ViewsByDay    []repository.DayCount  `json:"views_by_day"`
}

// ==================== AnalyticsService ====================

// AnalyticsService 统计聚合门面，只读
type AnalyticsService struct {
	eventRepo repository.EventRepository
	clock     clock.Clock
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(eventRepo repository.EventRepository, clk clock.Clock) *AnalyticsService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &AnalyticsService{eventRepo: eventRepo, clock: clk}
}

// Window 计算窗口；days 为 0 时取 def
func (s *AnalyticsService) Window(days, def int) (Window, error) {
	if days == 0 {
		days = def
	}
	if days < 1 || days > MaxAnalyticsDays {
		return Window{}, NewValidationError("days must be between 1 and %d", MaxAnalyticsDays)
	}
	since := clock.StartOfDay(s.clock.Now()).AddDate(0, 0, -(days - 1))
	return Window{Days: days, Since: since}, nil
}

// GetStoreAnalytics 访问 / 浏览 / 点击三组聚合并发执行，任一失败整体失败
func (s *AnalyticsService) GetStoreAnalytics(ctx context.Context, storeID int64, days int, topScope TopScope) (*StoreAnalytics, error) {
	w, err := s.Window(days, DefaultAnalyticsDays)
	if err != nil {
		return nil, err
	}
	if topScope == "" {
		topScope = TopScopeLifetime
	}
	var topSince *time.Time
	if topScope == TopScopeWindow {
		topSince = &w.Since
	}

	out := &StoreAnalytics{Window: w, TopScope: topScope}
	scope := repository.EventScope{StoreID: storeID, Since: &w.Since}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if out.Visits.Total, err = s.eventRepo.CountTotal(gctx, model.EventKindVisit, scope); err != nil {
			return err
		}
		if out.Visits.ByDay, err = s.eventRepo.CountByDay(gctx, model.EventKindVisit, scope); err != nil {
			return err
		}
		out.Visits.BySource, err = s.eventRepo.RankDimension(gctx, model.EventKindVisit, repository.DimensionUTMSource, scope, dimensionLimit)
		return err
	})

	g.Go(func() error {
		var err error
		if out.Views.Total, err = s.eventRepo.CountTotal(gctx, model.EventKindView, scope); err != nil {
			return err
		}
		if out.Views.ByDay, err = s.eventRepo.CountByDay(gctx, model.EventKindView, scope); err != nil {
			return err
		}
		out.Views.TopProducts, err = s.eventRepo.TopProducts(gctx, model.EventKindView, storeID, topSince, topProductsLimit)
		return err
	})

	g.Go(func() error {
		var err error
		if out.Clicks.Total, err = s.eventRepo.CountTotal(gctx, model.EventKindClick, scope); err != nil {
			return err
		}
		if out.Clicks.ByDay, err = s.eventRepo.CountByDay(gctx, model.EventKindClick, scope); err != nil {
			return err
		}
		if out.Clicks.TopMarketplaces, err = s.eventRepo.RankDimension(gctx, model.EventKindClick, repository.DimensionMarketplace, scope, dimensionLimit); err != nil {
			return err
		}
		out.Clicks.TopProducts, err = s.eventRepo.TopProducts(gctx, model.EventKindClick, storeID, topSince, topProductsLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.S().Errorf("[Analytics] 店铺 %d 统计失败: %v", storeID, err)
		return nil, Internal("store analytics", err)
	}
	return out, nil
}

// GetOverview 后台首页：点击趋势 + 热门商品（全部历史）+ 渠道排行
func (s *AnalyticsService) GetOverview(ctx context.Context, storeID int64, days int) (*Overview, error) {
	w, err := s.Window(days, DefaultOverviewDays)
	if err != nil {
		return nil, err
	}

	out := &Overview{Window: w}
	scope := repository.EventScope{StoreID: storeID, Since: &w.Since}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.ClicksByDay, err = s.eventRepo.CountByDay(gctx, model.EventKindClick, scope)
		return err
	})
	g.Go(func() error {
		var err error
		out.TopProducts, err = s.eventRepo.TopProducts(gctx, model.EventKindClick, storeID, nil, topProductsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		out.TopMarketplaces, err = s.eventRepo.RankDimension(gctx, model.EventKindClick, repository.DimensionMarketplace, scope, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.S().Errorf("[Analytics] 店铺 %d 概览失败: %v", storeID, err)
		return nil, Internal("overview", err)
	}

	for _, d := range out.ClicksByDay {
		out.TotalClicks += d.Count
	}
	return out, nil
}

// GetProductStats 单商品：点击总数、按渠道点击、浏览趋势
func (s *AnalyticsService) GetProductStats(ctx context.Context, productID int64, days int) (*ProductStats, error) {
	w, err := s.Window(days, DefaultAnalyticsDays)
	if err != nil {
		return nil, err
	}

	out := &ProductStats{Window: w}
	scope := repository.EventScope{ProductID: productID, Since: &w.Since}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if out.TotalClicks, err = s.eventRepo.CountTotal(gctx, model.EventKindClick, scope); err != nil {
			return err
		}
		out.ByMarketplace, err = s.eventRepo.RankDimension(gctx, model.EventKindClick, repository.DimensionMarketplace, scope, 0)
		return err
	})
	g.Go(func() error {
		var err error
		if out.TotalViews, err = s.eventRepo.CountTotal(gctx, model.EventKindView, scope); err != nil {
			return err
		}
		out.ViewsByDay, err = s.eventRepo.CountByDay(gctx, model.EventKindView, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.S().Errorf("[Analytics] 商品 %d 统计失败: %v", productID, err)
		return nil, Internal("product stats", err)
	}
	return out, nil
}

package service

import (
	"context"
	"strings"

	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
	"storefront_dev_v1/pkg/clock"
	"storefront_dev_v1/pkg/logger"
)

// ==================== 请求元数据 ====================

// RequestMeta 随埋点请求记录的元数据，空串落库为 NULL
type RequestMeta struct {
	Referrer  string
	UserAgent string
	IP        string
	UTM       UTM
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (m RequestMeta) toModel() model.EventMeta {
	return model.EventMeta{
		Referrer:    nullable(m.Referrer),
		UserAgent:   nullable(m.UserAgent),
		IP:          nullable(m.IP),
		UTMSource:   nullable(m.UTM.Source),
		UTMMedium:   nullable(m.UTM.Medium),
		UTMCampaign: nullable(m.UTM.Campaign),
	}
}

// ==================== TrackingService ====================

// TrackingService 点击 / 浏览 / 访问埋点
// 每次成功调用只写一行，不做去重
type TrackingService struct {
	resolver  *CatalogResolver
	eventRepo repository.EventRepository
	clock     clock.Clock
}

// NewTrackingService 创建埋点服务
func NewTrackingService(resolver *CatalogResolver, eventRepo repository.EventRepository, clk clock.Clock) *TrackingService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &TrackingService{
		resolver:  resolver,
		eventRepo: eventRepo,
		clock:     clk,
	}
}

// ClickRequest 点击埋点参数
type ClickRequest struct {
	StoreSlug   string
	ProductSlug string
	Marketplace string
	Meta        RequestMeta
	SkipRecord  bool // 只解析跳转地址，不写入（限流超限）
}

// RecordClick 记录点击并返回跳转地址
// 顺序：校验 -> 解析商品 -> 匹配渠道 -> 构造地址 -> 写入；任何一步失败都不写入
func (s *TrackingService) RecordClick(ctx context.Context, req ClickRequest) (string, error) {
	if req.StoreSlug == "" || req.ProductSlug == "" || req.Marketplace == "" {
		return "", ErrMissingParams
	}

	product, err := s.resolver.PublishedProduct(ctx, req.StoreSlug, req.ProductSlug)
	if err != nil {
		return "", Internal("resolve product", err)
	}
	if product == nil {
		return "", ErrProductNotFound
	}

	marketplace := strings.ToLower(req.Marketplace)
	link := product.FindLink(marketplace)
	if link == nil {
		return "", ErrLinkNotFound
	}

	dest, err := BuildDestination(link.URL, req.Meta.UTM)
	if err != nil {
		logger.S().Errorf("[Track] 推广链接无效 product=%d link=%d: %v", product.ID, link.ID, err)
		return "", err
	}
	if req.SkipRecord {
		return dest, nil
	}

	event := &model.ClickEvent{
		StoreID:     product.StoreID,
		ProductID:   product.ID,
		Marketplace: marketplace,
		EventMeta:   req.Meta.toModel(),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.eventRepo.CreateClick(ctx, event); err != nil {
		logger.S().Errorf("[Track] 写入点击失败 product=%d: %v", product.ID, err)
		return "", Internal("record click", err)
	}
	return dest, nil
}

// RecordProductView 记录商品浏览
func (s *TrackingService) RecordProductView(ctx context.Context, storeSlug, productSlug string, meta RequestMeta) error {
	if storeSlug == "" || productSlug == "" {
		return ErrMissingParams
	}

	product, err := s.resolver.PublishedProduct(ctx, storeSlug, productSlug)
	if err != nil {
		return Internal("resolve product", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	event := &model.ProductView{
		StoreID:   product.StoreID,
		ProductID: product.ID,
		EventMeta: meta.toModel(),
		CreatedAt: s.clock.Now(),
	}
	if err := s.eventRepo.CreateView(ctx, event); err != nil {
		logger.S().Errorf("[Track] 写入浏览失败 product=%d: %v", product.ID, err)
		return Internal("record product view", err)
	}
	return nil
}

// RecordStoreVisit 记录店铺访问
func (s *TrackingService) RecordStoreVisit(ctx context.Context, storeSlug string, meta RequestMeta) error {
	if storeSlug == "" {
		return ErrMissingParams
	}

	store, err := s.resolver.Store(ctx, storeSlug)
	if err != nil {
		return Internal("resolve store", err)
	}
	if store == nil {
		return ErrStoreNotFound
	}

	event := &model.StoreVisit{
		StoreID:   store.ID,
		EventMeta: meta.toModel(),
		CreatedAt: s.clock.Now(),
	}
	if err := s.eventRepo.CreateVisit(ctx, event); err != nil {
		logger.S().Errorf("[Track] 写入访问失败 store=%d: %v", store.ID, err)
		return Internal("record store visit", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/middleware"
	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
	"storefront_dev_v1/pkg/logger"
)

const (
	dashboardPageSize = 20
	publicPageSize    = 12
	maxProductSlugLen = 100
)

// ==================== ProductService 商品服务 ====================

// ProductService 商品管理（后台）与前台商品查询
type ProductService struct {
	productRepo repository.ProductRepository
	resolver    *CatalogResolver
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, resolver *CatalogResolver) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		resolver:    resolver,
	}
}

// ==================== 后台 ====================

// List 店铺商品列表，按更新时间倒序
func (s *ProductService) List(ctx context.Context, storeID int64, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	page, limit := pageParams(q, dashboardPageSize)
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		StoreID:   storeID,
		Keyword:   q.Search,
		Sort:      repository.SortUpdatedDesc,
		WithLinks: true,
		Page:      page,
		PageSize:  limit,
	})
	if err != nil {
		return nil, Internal("list products", err)
	}
	return dto.ToProductList(products, total, page, limit), nil
}

// Get 获取本店商品（含链接）
func (s *ProductService) Get(ctx context.Context, storeID, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, Internal("get product", err)
	}
	if product == nil || product.StoreID != storeID {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品，链接随商品一起写入
func (s *ProductService) Create(ctx context.Context, storeID int64, req *dto.CreateProductRequest) (*model.Product, error) {
	slug := strings.TrimSpace(req.Slug)
	if err := validateProductSlug(slug); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, NewValidationError("Title is required")
	}
	price, err := dto.ParsePrice(req.Price)
	if err != nil {
		return nil, NewValidationError("Invalid price")
	}
	links, err := validateLinks(req.Links)
	if err != nil {
		return nil, err
	}

	ok, err := s.productRepo.IsSlugAvailable(ctx, storeID, slug, 0)
	if err != nil {
		return nil, Internal("check slug", err)
	}
	if !ok {
		return nil, ErrSlugTaken
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	product := &model.Product{
		StoreID:     storeID,
		Slug:        slug,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Price:       price,
		Published:   published,
		Links:       links,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, Internal("create product", err)
	}

	logger.S().Infof("[Product] 店铺 %d 新建商品 %s", storeID, slug)
	return s.Get(ctx, storeID, product.ID)
}

// Update 部分更新；req.Links 非 nil 时在同一事务内整体替换链接
func (s *ProductService) Update(ctx context.Context, storeID, id int64, req *dto.UpdateProductRequest) (*model.Product, error) {
	product, err := s.Get(ctx, storeID, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, NewValidationError("Title is required")
		}
		fields["title"] = title
	}
	if req.Slug != nil && *req.Slug != product.Slug {
		slug := strings.TrimSpace(*req.Slug)
		if err := validateProductSlug(slug); err != nil {
			return nil, err
		}
		ok, err := s.productRepo.IsSlugAvailable(ctx, storeID, slug, id)
		if err != nil {
			return nil, Internal("check slug", err)
		}
		if !ok {
			return nil, ErrSlugTaken
		}
		fields["slug"] = slug
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.ImageURL != nil {
		img := strings.TrimSpace(*req.ImageURL)
		if img != "" && !isHTTPURL(img) {
			return nil, NewValidationError("Invalid image URL")
		}
		fields["image_url"] = img
	}
	if req.Price != nil {
		price, err := dto.ParsePrice(*req.Price)
		if err != nil {
			return nil, NewValidationError("Invalid price")
		}
		fields["price"] = price
	}
	if req.Published != nil {
		fields["published"] = *req.Published
	}

	var links []model.AffiliateLink
	if req.Links != nil {
		if links, err = validateLinks(*req.Links); err != nil {
			return nil, err
		}
	}

	err = s.productRepo.Transaction(ctx, func(txRepo repository.ProductRepository) error {
		if len(fields) > 0 {
			if err := txRepo.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
		}
		if req.Links != nil {
			return txRepo.ReplaceLinks(ctx, id, links)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, Internal("update product", err)
	}

	newSlug, _ := fields["slug"].(string)
	s.resolver.InvalidateProduct(ctx, storeID, product.Slug, newSlug)
	return s.Get(ctx, storeID, id)
}

// ReplaceLinks 整体替换推广链接
func (s *ProductService) ReplaceLinks(ctx context.Context, storeID, id int64, in []dto.AffiliateLinkInput) (*model.Product, error) {
	product, err := s.Get(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	links, err := validateLinks(in)
	if err != nil {
		return nil, err
	}

	err = s.productRepo.Transaction(ctx, func(txRepo repository.ProductRepository) error {
		return txRepo.ReplaceLinks(ctx, id, links)
	})
	if err != nil {
		return nil, Internal("replace links", err)
	}

	s.resolver.InvalidateProduct(ctx, storeID, product.Slug)
	return s.Get(ctx, storeID, id)
}

// Delete 删除商品及其链接，历史埋点保留
func (s *ProductService) Delete(ctx context.Context, storeID, id int64) error {
	product, err := s.Get(ctx, storeID, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return Internal("delete product", err)
	}
	s.resolver.InvalidateProduct(ctx, storeID, product.Slug)
	logger.S().Infof("[Product] 店铺 %d 删除商品 %s", storeID, product.Slug)
	return nil
}

// ==================== 前台 ====================

// ListPublic 前台已发布商品，按创建时间倒序
func (s *ProductService) ListPublic(ctx context.Context, storeSlug string, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	store, err := s.resolver.Store(ctx, storeSlug)
	if err != nil {
		return nil, Internal("get store", err)
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}

	page, limit := pageParams(q, publicPageSize)
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		StoreID:       store.ID,
		PublishedOnly: true,
		Keyword:       q.Search,
		Sort:          repository.SortCreatedDesc,
		WithLinks:     true,
		Page:          page,
		PageSize:      limit,
	})
	if err != nil {
		return nil, Internal("list products", err)
	}
	return dto.ToProductList(products, total, page, limit), nil
}

// GetPublic 前台商品详情
func (s *ProductService) GetPublic(ctx context.Context, storeSlug, productSlug string) (*model.Product, error) {
	product, err := s.resolver.PublishedProduct(ctx, storeSlug, productSlug)
	if err != nil {
		return nil, Internal("get product", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// OGMetadata 商品分享卡片信息
func (s *ProductService) OGMetadata(ctx context.Context, storeSlug, productSlug string, links StorefrontLinks) (*dto.OGMetadata, error) {
	if storeSlug == "" || productSlug == "" {
		return nil, ErrMissingParams
	}
	product, err := s.GetPublic(ctx, storeSlug, productSlug)
	if err != nil {
		return nil, err
	}

	meta := &dto.OGMetadata{
		Title:       product.Title,
		Description: product.Description,
		ImageURL:    product.ImageURL,
		Price:       dto.FormatPrice(product.Price),
		URL:         links.Product(storeSlug, productSlug),
	}
	if product.Store != nil {
		meta.Store.Name = product.Store.Name
		meta.Store.Slug = product.Store.Slug
	}
	return meta, nil
}

// ==================== 工具函数 ====================

func pageParams(q dto.ProductListQuery, defLimit int) (int, int) {
	page, limit := q.Page, q.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defLimit
	}
	return page, limit
}

func validateProductSlug(slug string) error {
	if slug == "" || len(slug) > maxProductSlugLen || !middleware.IsSlug(slug) {
		return NewValidationError("Invalid slug")
	}
	return nil
}

// validateLinks 渠道名必填、URL 必须是 http(s) 绝对地址
func validateLinks(in []dto.AffiliateLinkInput) ([]model.AffiliateLink, error) {
	links := dto.ToLinks(in)
	for i, l := range links {
		if l.Marketplace == "" {
			return nil, NewValidationError("links[%d]: marketplace is required", i)
		}
		if !isHTTPURL(l.URL) {
			return nil, NewValidationError("links[%d]: invalid url", i)
		}
	}
	return links, nil
}

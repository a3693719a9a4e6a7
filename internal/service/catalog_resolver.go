package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
	"storefront_dev_v1/pkg/cache"
	"storefront_dev_v1/pkg/logger"
)

// CatalogResolver 按 slug 解析店铺 / 已发布商品
// 读路径走缓存，未命中时用 singleflight 合并并发回源
type CatalogResolver struct {
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
	ttl         time.Duration
	group       singleflight.Group
}

// NewCatalogResolver 创建解析器，c 为 nil 时不缓存
func NewCatalogResolver(storeRepo repository.StoreRepository, productRepo repository.ProductRepository, c cache.Cache, ttl time.Duration) *CatalogResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogResolver{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		cache:       c,
		ttl:         ttl,
	}
}

func storeKey(slug string) string {
	return "store:" + slug
}

func productKey(storeID int64, productSlug string) string {
	return fmt.Sprintf("product:%d:%s", storeID, productSlug)
}

// Store 按 slug 查找店铺，不存在返回 nil
func (r *CatalogResolver) Store(ctx context.Context, slug string) (*model.Store, error) {
	var store *model.Store
	err := r.load(ctx, storeKey(slug), &store, func(ctx context.Context) (interface{}, error) {
		return r.storeRepo.GetBySlug(ctx, slug)
	})
	return store, err
}

// PublishedProduct 按店铺 slug + 商品 slug 查找已发布商品（含链接），不存在返回 nil
func (r *CatalogResolver) PublishedProduct(ctx context.Context, storeSlug, productSlug string) (*model.Product, error) {
	store, err := r.Store(ctx, storeSlug)
	if err != nil || store == nil {
		return nil, err
	}

	var product *model.Product
	err = r.load(ctx, productKey(store.ID, productSlug), &product, func(ctx context.Context) (interface{}, error) {
		return r.productRepo.FindPublishedBySlugs(ctx, storeSlug, productSlug)
	})
	return product, err
}

// InvalidateStore 店铺变更后清除缓存
func (r *CatalogResolver) InvalidateStore(ctx context.Context, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, storeKey(s))
		}
	}
	r.invalidate(ctx, keys)
}

// InvalidateProduct 商品变更后清除缓存
func (r *CatalogResolver) InvalidateProduct(ctx context.Context, storeID int64, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, productKey(storeID, s))
		}
	}
	r.invalidate(ctx, keys)
}

// InvalidateStoreProducts 店铺资料变更后清除其全部商品缓存（商品缓存内嵌店铺信息）
func (r *CatalogResolver) InvalidateStoreProducts(ctx context.Context, storeID int64) {
	if r.cache == nil {
		return
	}
	slugs, err := r.productRepo.ListSlugs(ctx, storeID)
	if err != nil {
		logger.S().Warnf("[Catalog] 查询店铺 %d 商品失败: %v", storeID, err)
		return
	}
	r.InvalidateProduct(ctx, storeID, slugs...)
}

func (r *CatalogResolver) invalidate(ctx context.Context, keys []string) {
	if r.cache == nil || len(keys) == 0 {
		return
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		logger.S().Warnf("[Catalog] 清除缓存失败 %v: %v", keys, err)
	}
}

// load 读缓存 -> 回源 -> 回写；不缓存"不存在"
// 回源结果由所有等待者共享，fetch 使用脱离调用方取消的 ctx
func (r *CatalogResolver) load(ctx context.Context, key string, dest interface{}, fetch func(ctx context.Context) (interface{}, error)) error {
	if r.cache != nil {
		raw, err := r.cache.Get(ctx, key)
		if err == nil {
			if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
				return nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			// 缓存故障不影响主流程
			logger.S().Warnf("[Catalog] 读取缓存失败 %s: %v", key, err)
		}
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		obj, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(obj)
		if err != nil {
			return nil, err
		}
		if r.cache != nil && string(raw) != "null" {
			if err := r.cache.Set(shared, key, raw, r.ttl); err != nil {
				logger.S().Warnf("[Catalog] 写入缓存失败 %s: %v", key, err)
			}
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

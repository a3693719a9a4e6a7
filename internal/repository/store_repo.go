package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront_dev_v1/internal/model"
)

// ==================== 接口定义 ====================

// StoreRepository 店铺仓储接口
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	GetBySlug(ctx context.Context, slug string) (*model.Store, error)
	GetByOwnerID(ctx context.Context, ownerID int64) (*model.Store, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// IsSlugAvailable slug 是否可用，excludeID 为当前店铺（更新时排除自身）
	IsSlugAvailable(ctx context.Context, slug string, excludeID int64) (bool, error)

	// ListSitemapEntries 站点地图：所有店铺及其已发布商品
	ListSitemapEntries(ctx context.Context) ([]SitemapStore, error)
}

// SitemapStore 站点地图条目
type SitemapStore struct {
	Slug      string
	UpdatedAt time.Time
	Products  []SitemapProduct
}

// SitemapProduct 站点地图商品条目
type SitemapProduct struct {
	Slug      string
	UpdatedAt time.Time
}

// ==================== 仓储实现 ====================

type storeRepo struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓储
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *storeRepo) first(ctx context.Context, query interface{}, args ...interface{}) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Where(query, args...).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *storeRepo) GetBySlug(ctx context.Context, slug string) (*model.Store, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *storeRepo) GetByOwnerID(ctx context.Context, ownerID int64) (*model.Store, error) {
	return r.first(ctx, "owner_id = ?", ownerID)
}

func (r *storeRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Store{BaseModel: model.BaseModel{ID: id}}).
		Updates(fields).Error
}

func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	// sqlite 未开启外键时不会级联，这里显式删除商品与链接
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productIDs := tx.Model(&model.Product{}).Select("id").Where("store_id = ?", id)
		if err := tx.Where("product_id IN (?)", productIDs).Delete(&model.AffiliateLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Store{}, id).Error
	})
}

func (r *storeRepo) IsSlugAvailable(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Store{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *storeRepo) ListSitemapEntries(ctx context.Context) ([]SitemapStore, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).
		Select("id", "slug", "updated_at").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "store_id", "slug", "updated_at").
				Where("published = ?", true).
				Order("updated_at DESC")
		}).
		Order("id ASC").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}

	entries := make([]SitemapStore, 0, len(stores))
	for _, s := range stores {
		entry := SitemapStore{Slug: s.Slug, UpdatedAt: s.UpdatedAt}
		for _, p := range s.Products {
			entry.Products = append(entry.Products, SitemapProduct{Slug: p.Slug, UpdatedAt: p.UpdatedAt})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

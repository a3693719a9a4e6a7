package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"storefront_dev_v1/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)

	// FindPublishedBySlugs 按店铺 slug + 商品 slug 查找已发布商品（含链接与店铺）
	FindPublishedBySlugs(ctx context.Context, storeSlug, productSlug string) (*model.Product, error)
	IsSlugAvailable(ctx context.Context, storeID int64, slug string, excludeID int64) (bool, error)
	// ListSlugs 店铺下全部商品 slug（含未发布）
	ListSlugs(ctx context.Context, storeID int64) ([]string, error)

	// 推广链接：整体替换
	ReplaceLinks(ctx context.Context, productID int64, links []model.AffiliateLink) error

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

// ==================== 过滤条件 ====================

// ProductSort 列表排序
type ProductSort string

const (
	SortUpdatedDesc ProductSort = "updated_at DESC" // 后台
	SortCreatedDesc ProductSort = "created_at DESC" // 前台
)

// ProductFilter 商品过滤条件
type ProductFilter struct {
	StoreID       int64
	PublishedOnly bool
	Keyword       string // 标题包含，忽略大小写
	Sort          ProductSort
	WithLinks     bool
	Page          int
	PageSize      int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Product{BaseModel: model.BaseModel{ID: id}}).
		Updates(fields).Error
}

func (r *productRepo) ListSlugs(ctx context.Context, storeID int64) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("store_id = ?", storeID).
		Pluck("slug", &slugs).Error
	return slugs, err
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.AffiliateLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, id).Error
	})
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.StoreID > 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Sort == "" {
		filter.Sort = SortUpdatedDesc
	}

	if filter.WithLinks {
		query = query.Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order(string(filter.Sort)).
		Order("id DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) FindPublishedBySlugs(ctx context.Context, storeSlug, productSlug string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Joins("Store").
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("\"Store\".slug = ? AND products.slug = ? AND products.published = ?", storeSlug, productSlug, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) IsSlugAvailable(ctx context.Context, storeID int64, slug string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("store_id = ? AND slug = ?", storeID, slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *productRepo) ReplaceLinks(ctx context.Context, productID int64, links []model.AffiliateLink) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&model.AffiliateLink{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	for i := range links {
		links[i].ID = 0
		links[i].ProductID = productID
	}
	return db.Create(&links).Error
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

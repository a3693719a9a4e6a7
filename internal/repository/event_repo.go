package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront_dev_v1/internal/model"
)

// ==================== 接口定义 ====================

// EventRepository 埋点事件仓储：只追加写入 + 分组聚合读取
type EventRepository interface {
	// 写入（单行插入，不做去重）
	CreateClick(ctx context.Context, event *model.ClickEvent) error
	CreateView(ctx context.Context, event *model.ProductView) error
	CreateVisit(ctx context.Context, event *model.StoreVisit) error

	// 聚合
	CountTotal(ctx context.Context, kind model.EventKind, scope EventScope) (int64, error)
	CountByDay(ctx context.Context, kind model.EventKind, scope EventScope) ([]DayCount, error)
	RankDimension(ctx context.Context, kind model.EventKind, dim Dimension, scope EventScope, limit int) ([]NameCount, error)
	TopProducts(ctx context.Context, kind model.EventKind, storeID int64, since *time.Time, limit int) ([]ProductCount, error)
}

// EventScope 聚合范围：店铺或商品 + 起始时间（含）
type EventScope struct {
	StoreID   int64
	ProductID int64
	Since     *time.Time // nil 表示不限时间
}

// Dimension 可排名的维度列
type Dimension string

const (
	DimensionMarketplace Dimension = "marketplace"
	DimensionUTMSource   Dimension = "utm_source"
	DimensionUTMMedium   Dimension = "utm_medium"
	DimensionUTMCampaign Dimension = "utm_campaign"
)

// DayCount 按 UTC 自然日的计数
type DayCount struct {
	Date  string `json:"date" gorm:"column:day"`
	Count int64  `json:"count" gorm:"column:total"`
}

// NameCount 维度值计数
type NameCount struct {
	Name  string `json:"name" gorm:"column:name"`
	Count int64  `json:"count" gorm:"column:total"`
}

// ProductCount 商品计数
type ProductCount struct {
	ProductID int64  `json:"product_id" gorm:"column:product_id"`
	Title     string `json:"title" gorm:"column:title"`
	Slug      string `json:"slug" gorm:"column:slug"`
	Count     int64  `json:"count" gorm:"column:total"`
}

// ErrUnsupportedAggregation 事件类型不支持该聚合
var ErrUnsupportedAggregation = errors.New("unsupported aggregation")

// ==================== 仓储实现 ====================

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓储
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) CreateClick(ctx context.Context, event *model.ClickEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) CreateView(ctx context.Context, event *model.ProductView) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) CreateVisit(ctx context.Context, event *model.StoreVisit) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ==================== 聚合查询 ====================

// scoped 构造带范围条件的查询
func (r *eventRepo) scoped(ctx context.Context, kind model.EventKind, scope EventScope) (*gorm.DB, error) {
	table := kind.TableName()
	if table == "" {
		return nil, fmt.Errorf("%w: 未知事件类型 %q", ErrUnsupportedAggregation, kind)
	}

	query := r.db.WithContext(ctx).Table(table)
	if scope.StoreID > 0 {
		query = query.Where("store_id = ?", scope.StoreID)
	}
	if scope.ProductID > 0 {
		if kind == model.EventKindVisit {
			return nil, fmt.Errorf("%w: 店铺访问没有商品维度", ErrUnsupportedAggregation)
		}
		query = query.Where("product_id = ?", scope.ProductID)
	}
	if scope.Since != nil {
		query = query.Where("created_at >= ?", scope.Since.UTC())
	}
	return query, nil
}

func (r *eventRepo) CountTotal(ctx context.Context, kind model.EventKind, scope EventScope) (int64, error) {
	query, err := r.scoped(ctx, kind, scope)
	if err != nil {
		return 0, err
	}
	var total int64
	err = query.Count(&total).Error
	return total, err
}

func (r *eventRepo) CountByDay(ctx context.Context, kind model.EventKind, scope EventScope) ([]DayCount, error) {
	query, err := r.scoped(ctx, kind, scope)
	if err != nil {
		return nil, err
	}

	day := dayExpr(r.db)
	rows := make([]DayCount, 0)
	err = query.
		Select(day + " AS day, COUNT(*) AS total").
		Group(day).
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *eventRepo) RankDimension(ctx context.Context, kind model.EventKind, dim Dimension, scope EventScope, limit int) ([]NameCount, error) {
	switch dim {
	case DimensionMarketplace:
		if kind != model.EventKindClick {
			return nil, fmt.Errorf("%w: 仅点击事件有 marketplace", ErrUnsupportedAggregation)
		}
	case DimensionUTMSource, DimensionUTMMedium, DimensionUTMCampaign:
	default:
		return nil, fmt.Errorf("%w: 未知维度 %q", ErrUnsupportedAggregation, dim)
	}

	query, err := r.scoped(ctx, kind, scope)
	if err != nil {
		return nil, err
	}

	col := string(dim)
	rows := make([]NameCount, 0)
	query = query.
		Select(col + " AS name, COUNT(*) AS total").
		Where(col + " IS NOT NULL").
		Group(col).
		Order("total DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err = query.Scan(&rows).Error
	return rows, err
}

func (r *eventRepo) TopProducts(ctx context.Context, kind model.EventKind, storeID int64, since *time.Time, limit int) ([]ProductCount, error) {
	if kind != model.EventKindClick && kind != model.EventKindView {
		return nil, fmt.Errorf("%w: %q 没有商品维度", ErrUnsupportedAggregation, kind)
	}

	join := "LEFT JOIN " + kind.TableName() + " AS e ON e.product_id = p.id"
	var args []interface{}
	if since != nil {
		join += " AND e.created_at >= ?"
		args = append(args, since.UTC())
	}

	rows := make([]ProductCount, 0)
	query := r.db.WithContext(ctx).
		Table("products AS p").
		Select("p.id AS product_id, p.title AS title, p.slug AS slug, COUNT(e.id) AS total").
		Joins(join, args...).
		Where("p.store_id = ?", storeID).
		Group("p.id, p.title, p.slug").
		Order("total DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&rows).Error
	return rows, err
}

// dayExpr created_at 截断到 UTC 自然日的 SQL 表达式
func dayExpr(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	default: // sqlite
		return "strftime('%Y-%m-%d', created_at)"
	}
}

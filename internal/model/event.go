package model

import "time"

// EventKind 埋点事件类型
type EventKind string

const (
	EventKindClick EventKind = "click"
	EventKindView  EventKind = "product_view"
	EventKindVisit EventKind = "store_visit"
)

// TableName 事件类型对应的表名（分区主表）
func (k EventKind) TableName() string {
	switch k {
	case EventKindClick:
		return ClickEvent{}.TableName()
	case EventKindView:
		return ProductView{}.TableName()
	case EventKindVisit:
		return StoreVisit{}.TableName()
	}
	return ""
}

// EventMeta 三类事件共有的请求元数据，缺失即为 NULL
type EventMeta struct {
	Referrer    *string `gorm:"column:referrer;size:2048" json:"referrer"`
	UserAgent   *string `gorm:"column:user_agent;size:1024" json:"user_agent"`
	IP          *string `gorm:"column:ip;size:64" json:"ip"`
	UTMSource   *string `gorm:"column:utm_source;size:255" json:"utm_source"`
	UTMMedium   *string `gorm:"column:utm_medium;size:255" json:"utm_medium"`
	UTMCampaign *string `gorm:"column:utm_campaign;size:255" json:"utm_campaign"`
}

// ==================== 事件表 ====================
// 只追加，不更新；不建外键，商品删除后历史数据保留。
// Postgres 下按 created_at 月分区，见 pkg/database/partitions。

// ClickEvent 推广链接点击
type ClickEvent struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID     int64     `gorm:"not null;index:idx_click_events_store_created,priority:1" json:"store_id"`
	ProductID   int64     `gorm:"not null;index:idx_click_events_product_created,priority:1" json:"product_id"`
	Marketplace string    `gorm:"size:100;not null" json:"marketplace"`
	EventMeta   `gorm:"embedded"`
	CreatedAt   time.Time `gorm:"not null;index:idx_click_events_store_created,priority:2;index:idx_click_events_product_created,priority:2" json:"created_at"`
}

func (ClickEvent) TableName() string {
	return "click_events"
}

// ProductView 商品详情浏览
type ProductView struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID   int64     `gorm:"not null;index:idx_product_views_store_created,priority:1" json:"store_id"`
	ProductID int64     `gorm:"not null;index:idx_product_views_product_created,priority:1" json:"product_id"`
	EventMeta `gorm:"embedded"`
	CreatedAt time.Time `gorm:"not null;index:idx_product_views_store_created,priority:2;index:idx_product_views_product_created,priority:2" json:"created_at"`
}

func (ProductView) TableName() string {
	return "product_views"
}

// StoreVisit 店铺首页访问
type StoreVisit struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID   int64     `gorm:"not null;index:idx_store_visits_store_created,priority:1" json:"store_id"`
	EventMeta `gorm:"embedded"`
	CreatedAt time.Time `gorm:"not null;index:idx_store_visits_store_created,priority:2" json:"created_at"`
}

func (StoreVisit) TableName() string {
	return "store_visits"
}

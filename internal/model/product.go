package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product 店铺商品
type Product struct {
	BaseModel
	AuditMixin

	StoreID     int64               `gorm:"not null;uniqueIndex:idx_products_store_slug,priority:1;index:idx_products_store_updated,priority:1" json:"store_id"`
	Slug        string              `gorm:"size:100;not null;uniqueIndex:idx_products_store_slug,priority:2" json:"slug"`
	Title       string              `gorm:"size:200;not null" json:"title"`
	Description string              `gorm:"size:2000" json:"description"`
	ImageURL    string              `gorm:"size:1024" json:"image_url"`
	Price       decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price"`
	Published   bool                `gorm:"not null;index" json:"published"`

	Store *Store          `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Links []AffiliateLink `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"links"`
}

func (Product) TableName() string {
	return "products"
}

// FindLink 按市场名称（忽略大小写）查找推广链接
func (p *Product) FindLink(marketplace string) *AffiliateLink {
	for i := range p.Links {
		if strings.EqualFold(p.Links[i].Marketplace, marketplace) {
			return &p.Links[i]
		}
	}
	return nil
}

// AffiliateLink 商品在某个市场的推广链接
type AffiliateLink struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	Marketplace string    `gorm:"size:100;not null" json:"marketplace"`
	URL         string    `gorm:"size:2048;not null" json:"url"`
	Note        string    `gorm:"size:200" json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AffiliateLink) TableName() string {
	return "affiliate_links"
}

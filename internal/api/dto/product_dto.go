package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront_dev_v1/internal/model"
)

// ==================== 请求 DTO ====================

// AffiliateLinkInput 推广链接
type AffiliateLinkInput struct {
	Marketplace string `json:"marketplace" binding:"required,max=100"`
	URL         string `json:"url" binding:"required,url,max=2048"`
	Note        string `json:"note" binding:"max=200"`
}

// CreateProductRequest 创建商品
type CreateProductRequest struct {
	Title       string               `json:"title" binding:"required,max=200"`
	Slug        string               `json:"slug" binding:"required,slug,max=100"`
	Description string               `json:"description" binding:"max=2000"`
	ImageURL    string               `json:"image_url" binding:"omitempty,url,max=2048"`
	Price       string               `json:"price"` // "99,90" 或 "99.90"，空串表示无价格
	Published   *bool                `json:"published"`
	Links       []AffiliateLinkInput `json:"links" binding:"omitempty,dive"`
}

// UpdateProductRequest 部分更新；Links 非 nil 时整体替换
type UpdateProductRequest struct {
	Title       *string               `json:"title" binding:"omitempty,min=1,max=200"`
	Slug        *string               `json:"slug" binding:"omitempty,slug,max=100"`
	Description *string               `json:"description" binding:"omitempty,max=2000"`
	ImageURL    *string               `json:"image_url" binding:"omitempty,max=2048"`
	Price       *string               `json:"price"`
	Published   *bool                 `json:"published"`
	Links       *[]AffiliateLinkInput `json:"links" binding:"omitempty,dive"`
}

// ReplaceLinksRequest 替换推广链接
type ReplaceLinksRequest struct {
	Links []AffiliateLinkInput `json:"links" binding:"dive"`
}

// ProductListQuery 列表查询参数
type ProductListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search" binding:"max=100"`
}

// ToLinks 转为模型（id 由仓储重建）
func ToLinks(in []AffiliateLinkInput) []model.AffiliateLink {
	links := make([]model.AffiliateLink, 0, len(in))
	for _, l := range in {
		links = append(links, model.AffiliateLink{
			Marketplace: strings.TrimSpace(l.Marketplace),
			URL:         strings.TrimSpace(l.URL),
			Note:        l.Note,
		})
	}
	return links
}

// ==================== 价格 ====================

var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice 解析价格：接受 "," 作小数点，保留两位小数；空串返回无效值
func ParsePrice(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	// "1.299,90" 这种千分位写法不接受
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		return decimal.NullDecimal{}, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, ErrInvalidPrice
	}
	return decimal.NewNullDecimal(d.Round(2)), nil
}

// FormatPrice 两位小数字符串，无价格返回 nil
func FormatPrice(p decimal.NullDecimal) *string {
	if !p.Valid {
		return nil
	}
	s := p.Decimal.StringFixed(2)
	return &s
}

// ==================== 响应 DTO ====================

// LinkResponse 推广链接
type LinkResponse struct {
	ID          int64  `json:"id"`
	Marketplace string `json:"marketplace"`
	URL         string `json:"url"`
	Note        string `json:"note,omitempty"`
}

// ProductResponse 商品
type ProductResponse struct {
	ID          int64          `json:"id"`
	StoreID     int64          `json:"store_id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url"`
	Price       *string        `json:"price"`
	Published   bool           `json:"published"`
	Links       []LinkResponse `json:"links"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProductListResponse 分页列表
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ToProductResponse 模型转响应
func ToProductResponse(p *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       FormatPrice(p.Price),
		Published:   p.Published,
		Links:       make([]LinkResponse, 0, len(p.Links)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, l := range p.Links {
		resp.Links = append(resp.Links, LinkResponse{ID: l.ID, Marketplace: l.Marketplace, URL: l.URL, Note: l.Note})
	}
	return resp
}

// ToProductList 列表转换
func ToProductList(products []model.Product, total int64, page, limit int) *ProductListResponse {
	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, ToProductResponse(&products[i]))
	}
	return &ProductListResponse{Items: items, Total: total, Page: page, Limit: limit}
}

// OGMetadata 商品分享卡片
type OGMetadata struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Price       *string `json:"price"`
	URL         string  `json:"url"`
	Store       struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"store"`
}

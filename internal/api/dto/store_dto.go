package dto

import (
	"time"

	"storefront_dev_v1/internal/model"
)

// ==================== 外观 ====================

// ThemeRequest 主题表单，字段均可省略
type ThemeRequest struct {
	PrimaryColor     string `json:"primaryColor" binding:"hexcolor_or_empty"`
	Layout           string `json:"layout" binding:"omitempty,oneof=grid list"`
	Preset           string `json:"preset" binding:"omitempty,oneof=light dim"`
	HeaderStyle      string `json:"headerStyle" binding:"omitempty,oneof=minimalist centered"`
	ProductSize      string `json:"productSize" binding:"omitempty,oneof=small medium large"`
	ShowPrices       *bool  `json:"showPrices"`
	ShowDescriptions *bool  `json:"showDescriptions"`
	ShowLogo         *bool  `json:"showLogo"`
}

// ToModel 转为存储结构
func (r *ThemeRequest) ToModel() model.ThemeConfig {
	if r == nil {
		return model.ThemeConfig{}
	}
	return model.ThemeConfig{
		PrimaryColor:     r.PrimaryColor,
		Layout:           model.ThemeLayout(r.Layout),
		Preset:           model.ThemePreset(r.Preset),
		HeaderStyle:      model.HeaderStyle(r.HeaderStyle),
		ProductSize:      model.ProductSize(r.ProductSize),
		ShowPrices:       r.ShowPrices,
		ShowDescriptions: r.ShowDescriptions,
		ShowLogo:         r.ShowLogo,
	}
}

// PreviewRequest 外观预览（不落库）
type PreviewRequest struct {
	Name        string        `json:"name" binding:"max=100"`
	Description string        `json:"description" binding:"max=500"`
	Logo        string        `json:"logo"`
	Theme       *ThemeRequest `json:"theme"`
}

// ==================== 店铺设置 ====================

// UpdateStoreRequest 部分更新，nil 字段不修改
type UpdateStoreRequest struct {
	Name        *string       `json:"name" binding:"omitempty,min=1,max=100"`
	Slug        *string       `json:"slug" binding:"omitempty,slug,max=50"`
	Description *string       `json:"description" binding:"omitempty,max=500"`
	Logo        *string       `json:"logo"` // URL、data URL 或空串（清除）
	Language    *string       `json:"language" binding:"omitempty,oneof=en pt-BR"`
	Theme       *ThemeRequest `json:"theme"`
}

// StoreResponse 后台店铺信息
type StoreResponse struct {
	ID          int64             `json:"id"`
	Slug        string            `json:"slug"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Logo        string            `json:"logo"`
	Language    model.Language    `json:"language"`
	Theme       model.ThemeConfig `json:"theme"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToStoreResponse 模型转响应
func ToStoreResponse(s *model.Store) *StoreResponse {
	if s == nil {
		return nil
	}
	return &StoreResponse{
		ID:          s.ID,
		Slug:        s.Slug,
		Name:        s.Name,
		Description: s.Description,
		Logo:        s.Logo,
		Language:    s.Language,
		Theme:       s.ThemeConfig(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

package model

import (
	"gorm.io/datatypes"
)

// Language 店铺前台语言
type Language string

const (
	LanguageEN   Language = "en"
	LanguagePTBR Language = "pt-BR"
)

// DefaultLanguage 新店铺默认语言
const DefaultLanguage = LanguagePTBR

// ==================== 主题配置 ====================

type ThemeLayout string

const (
	ThemeLayoutGrid ThemeLayout = "grid"
	ThemeLayoutList ThemeLayout = "list"
)

type ThemePreset string

const (
	ThemePresetLight ThemePreset = "light"
	ThemePresetDim   ThemePreset = "dim"
)

type HeaderStyle string

const (
	HeaderStyleMinimalist HeaderStyle = "minimalist"
	HeaderStyleCentered   HeaderStyle = "centered"
)

type ProductSize string

const (
	ProductSizeSmall  ProductSize = "small"
	ProductSizeMedium ProductSize = "medium"
	ProductSizeLarge  ProductSize = "large"
)

// ThemeConfig 店铺外观配置
// 所有字段可缺省，缺省值见 service.ResolveTheme
type ThemeConfig struct {
	PrimaryColor     string      `json:"primaryColor,omitempty"`
	Layout           ThemeLayout `json:"layout,omitempty"`
	Preset           ThemePreset `json:"preset,omitempty"`
	HeaderStyle      HeaderStyle `json:"headerStyle,omitempty"`
	ProductSize      ProductSize `json:"productSize,omitempty"`
	ShowPrices       *bool       `json:"showPrices,omitempty"`
	ShowDescriptions *bool       `json:"showDescriptions,omitempty"`
	ShowLogo         *bool       `json:"showLogo,omitempty"`
}

// ==================== Store ====================

// Store 店铺（租户前台）
type Store struct {
	BaseModel
	AuditMixin

	OwnerID     int64                           `gorm:"uniqueIndex;not null" json:"owner_id"`
	Slug        string                          `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Name        string                          `gorm:"size:100;not null" json:"name"`
	Description string                          `gorm:"size:500" json:"description"`
	Logo        string                          `gorm:"type:text" json:"logo"` // 图片 URL
	Theme       datatypes.JSONType[ThemeConfig] `json:"theme"`
	Language    Language                        `gorm:"size:8;not null" json:"language"`

	Products []Product `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}

// ThemeConfig 取出主题配置
func (s *Store) ThemeConfig() ThemeConfig {
	return s.Theme.Data()
}

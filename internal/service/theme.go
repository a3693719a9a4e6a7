package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"storefront_dev_v1/internal/model"
)

// ==================== 主题默认值 ====================

const (
	DefaultPrimaryColor = "#3b82f6"
	DefaultLayout       = model.ThemeLayoutGrid
	DefaultPreset       = model.ThemePresetLight
	DefaultHeaderStyle  = model.HeaderStyleMinimalist
	DefaultProductSize  = model.ProductSizeMedium

	// 没有店铺名时的占位首字母
	defaultLogoInitial = "M"
)

// ThemePalette 预设对应的配色
type ThemePalette struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Border     string `json:"border"`
	Primary    string `json:"primary"`
}

var palettes = map[model.ThemePreset]ThemePalette{
	model.ThemePresetLight: {Background: "#ffffff", Text: "#111827", Border: "#e5e7eb"},
	model.ThemePresetDim:   {Background: "#1f2937", Text: "#f9fafb", Border: "#374151"},
}

// 商品卡片尺寸 -> 网格列数
var gridColumns = map[model.ProductSize]int{
	model.ProductSizeSmall:  4,
	model.ProductSizeMedium: 3,
	model.ProductSizeLarge:  2,
}

// ThemeView 填充默认值后的主题，前台与预览直接使用
type ThemeView struct {
	PrimaryColor     string            `json:"primaryColor"`
	Layout           model.ThemeLayout `json:"layout"`
	Preset           model.ThemePreset `json:"preset"`
	HeaderStyle      model.HeaderStyle `json:"headerStyle"`
	ProductSize      model.ProductSize `json:"productSize"`
	ShowPrices       bool              `json:"showPrices"`
	ShowDescriptions bool              `json:"showDescriptions"`
	ShowLogo         bool              `json:"showLogo"`

	Palette     ThemePalette `json:"palette"`
	HeaderAlign string       `json:"headerAlign"` // left | center
	Columns     int          `json:"columns"`     // grid 布局下的列数，list 为 1
}

// ResolveTheme 由配置推导展示用主题，纯函数
func ResolveTheme(cfg model.ThemeConfig) ThemeView {
	v := ThemeView{
		PrimaryColor:     orDefault(cfg.PrimaryColor, DefaultPrimaryColor),
		Layout:           orDefault(cfg.Layout, DefaultLayout),
		Preset:           orDefault(cfg.Preset, DefaultPreset),
		HeaderStyle:      orDefault(cfg.HeaderStyle, DefaultHeaderStyle),
		ProductSize:      orDefault(cfg.ProductSize, DefaultProductSize),
		ShowPrices:       boolOrTrue(cfg.ShowPrices),
		ShowDescriptions: boolOrTrue(cfg.ShowDescriptions),
		ShowLogo:         boolOrTrue(cfg.ShowLogo),
	}

	palette, ok := palettes[v.Preset]
	if !ok {
		palette = palettes[DefaultPreset]
	}
	palette.Primary = v.PrimaryColor
	v.Palette = palette

	v.HeaderAlign = "left"
	if v.HeaderStyle == model.HeaderStyleCentered {
		v.HeaderAlign = "center"
	}

	v.Columns = 1
	if v.Layout == model.ThemeLayoutGrid {
		if n, ok := gridColumns[v.ProductSize]; ok {
			v.Columns = n
		} else {
			v.Columns = gridColumns[DefaultProductSize]
		}
	}
	return v
}

// LogoInitial 无 logo 时的占位字母：店铺名首字符大写
func LogoInitial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultLogoInitial
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// StorePreview 外观预览：表单状态 -> 只读视图
type StorePreview struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Logo        string    `json:"logo,omitempty"`
	LogoInitial string    `json:"logoInitial"`
	Theme       ThemeView `json:"theme"`
}

// BuildPreview 组装预览视图，不落库
func BuildPreview(name, description, logo string, cfg model.ThemeConfig) StorePreview {
	theme := ResolveTheme(cfg)
	p := StorePreview{
		Name:        name,
		Description: description,
		LogoInitial: LogoInitial(name),
		Theme:       theme,
	}
	if theme.ShowLogo {
		p.Logo = logo
	}
	return p
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func boolOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

package service

import (
	"net/url"
	"strings"
)

// DefaultStorefrontPath 前台店铺页面的路径前缀
const DefaultStorefrontPath = "/loja"

// StorefrontLinks 前台页面地址：<base><prefix>/<store>[/<product>]
type StorefrontLinks struct {
	baseURL string
	prefix  string
}

// NewStorefrontLinks prefix 为空时使用 DefaultStorefrontPath，传 "/" 表示挂在根路径
func NewStorefrontLinks(baseURL, prefix string) StorefrontLinks {
	if prefix == "" {
		prefix = DefaultStorefrontPath
	}
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix = "/" + prefix
	}
	return StorefrontLinks{baseURL: strings.TrimRight(baseURL, "/"), prefix: prefix}
}

// Home 站点首页
func (l StorefrontLinks) Home() string {
	return l.baseURL
}

// Store 店铺页
func (l StorefrontLinks) Store(storeSlug string) string {
	return l.baseURL + l.prefix + "/" + url.PathEscape(storeSlug)
}

// Product 商品页
func (l StorefrontLinks) Product(storeSlug, productSlug string) string {
	return l.Store(storeSlug) + "/" + url.PathEscape(productSlug)
}

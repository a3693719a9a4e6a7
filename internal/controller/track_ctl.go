package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront_dev_v1/internal/middleware"
	"storefront_dev_v1/internal/service"
)

// TrackController 前台埋点：点击跳转、商品浏览、店铺访问
type TrackController struct {
	tracking *service.TrackingService
}

func NewTrackController(tracking *service.TrackingService) *TrackController {
	return &TrackController{tracking: tracking}
}

// requestMeta 请求头与 utm 参数
func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		Referrer:  c.GetHeader("Referer"),
		UserAgent: c.GetHeader("User-Agent"),
		IP:        forwardedIP(c.GetHeader("X-Forwarded-For")),
		UTM: service.UTM{
			Source:   c.Query("utm_source"),
			Medium:   c.Query("utm_medium"),
			Campaign: c.Query("utm_campaign"),
		},
	}
}

// forwardedIP X-Forwarded-For 的第一个地址
func forwardedIP(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(first)
}

// Click 记录点击并 302 跳转到推广链接；限流超限时照常跳转但不记录
// @Summary 推广链接点击
// @Tags Track
// @Param store query string true "店铺 slug"
// @Param product query string true "商品 slug"
// @Param m query string true "市场名称（忽略大小写）"
// @Param utm_source query string false "utm_source"
// @Param utm_medium query string false "utm_medium"
// @Param utm_campaign query string false "utm_campaign"
// @Success 302 "跳转到推广链接"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/track/click [get]
func (ctrl *TrackController) Click(c *gin.Context) {
	dest, err := ctrl.tracking.RecordClick(c.Request.Context(), service.ClickRequest{
		StoreSlug:   c.Query("store"),
		ProductSlug: c.Query("product"),
		Marketplace: c.Query("m"),
		Meta:        requestMeta(c),
		SkipRecord:  middleware.TrackLimited(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, dest)
}

// ProductView 记录商品浏览
// @Summary 商品浏览埋点
// @Tags Track
// @Produce json
// @Param store query string true "店铺 slug"
// @Param product query string true "商品 slug"
// @Param utm_source query string false "utm_source"
// @Param utm_medium query string false "utm_medium"
// @Param utm_campaign query string false "utm_campaign"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/track/product-view [get]
func (ctrl *TrackController) ProductView(c *gin.Context) {
	err := ctrl.tracking.RecordProductView(c.Request.Context(), c.Query("store"), c.Query("product"), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// StoreVisit 记录店铺访问
// @Summary 店铺访问埋点
// @Tags Track
// @Produce json
// @Param store query string true "店铺 slug"
// @Param utm_source query string false "utm_source"
// @Param utm_medium query string false "utm_medium"
// @Param utm_campaign query string false "utm_campaign"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/track/store-visit [get]
func (ctrl *TrackController) StoreVisit(c *gin.Context) {
	if err := ctrl.tracking.RecordStoreVisit(c.Request.Context(), c.Query("store"), requestMeta(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

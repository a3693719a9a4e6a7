package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_dev_v1/internal/service"
)

// ==================== AnalyticsController 数据统计 ====================

type AnalyticsController struct {
	analytics      *service.AnalyticsService
	storeService   *service.StoreService
	productService *service.ProductService
}

func NewAnalyticsController(analytics *service.AnalyticsService, storeService *service.StoreService, productService *service.ProductService) *AnalyticsController {
	return &AnalyticsController{
		analytics:      analytics,
		storeService:   storeService,
		productService: productService,
	}
}

// StoreAnalytics 店铺统计
// @Summary 店铺统计
// @Description 访问、浏览、点击的总数与按天统计；top_scope 决定热门商品按全部历史还是统计窗口排名
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param days query int false "统计天数 1-365" default(30)
// @Param top_scope query string false "lifetime | window" default(lifetime)
// @Success 200 {object} service.StoreAnalytics
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/analytics [get]
func (ctrl *AnalyticsController) StoreAnalytics(c *gin.Context) {
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	scope, err := service.ParseTopScope(c.Query("top_scope"))
	if err != nil {
		respondError(c, err)
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	result, err := ctrl.analytics.GetStoreAnalytics(c.Request.Context(), store.ID, days, scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Overview 后台首页概览
// @Summary 概览
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param days query int false "统计天数 1-365" default(7)
// @Success 200 {object} service.Overview
// @Failure 400 {object} map[string]string
// @Router /api/analytics/overview [get]
func (ctrl *AnalyticsController) Overview(c *gin.Context) {
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	result, err := ctrl.analytics.GetOverview(c.Request.Context(), store.ID, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ProductStats 单个商品统计
// @Summary 商品统计
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param days query int false "统计天数 1-365" default(30)
// @Success 200 {object} service.ProductStats
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id}/stats [get]
func (ctrl *AnalyticsController) ProductStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	// 只能看本店商品
	if _, err := ctrl.productService.Get(c.Request.Context(), store.ID, id); err != nil {
		respondError(c, err)
		return
	}
	result, err := ctrl.analytics.GetProductStats(c.Request.Context(), id, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

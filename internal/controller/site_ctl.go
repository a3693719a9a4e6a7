package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"storefront_dev_v1/internal/service"
)

// SiteController 站点级接口：sitemap、健康检查
type SiteController struct {
	sitemap *service.SitemapService
	db      *gorm.DB
}

func NewSiteController(sitemap *service.SitemapService, db *gorm.DB) *SiteController {
	return &SiteController{sitemap: sitemap, db: db}
}

// Sitemap sitemap.xml
// @Summary 站点地图
// @Tags Site
// @Produce xml
// @Success 200 {string} string "sitemap.xml"
// @Router /sitemap.xml [get]
func (ctrl *SiteController) Sitemap(c *gin.Context) {
	body, err := ctrl.sitemap.Build(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Healthz 健康检查，检测数据库连通性
// @Summary 健康检查
// @Tags Site
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (ctrl *SiteController) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := ctrl.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "storefront_dev_v1/docs"
	"storefront_dev_v1/internal/controller"
	"storefront_dev_v1/internal/middleware"
	"storefront_dev_v1/pkg/logger"
)

// Controllers 路由依赖的所有控制器
type Controllers struct {
	Auth      *controller.AuthController
	Store     *controller.StoreController
	Product   *controller.ProductController
	Public    *controller.PublicController
	Track     *controller.TrackController
	Analytics *controller.AnalyticsController
	Site      *controller.SiteController
}

// Options 路由附加配置
type Options struct {
	TrackLimiter   *middleware.TrackLimiter // 埋点限流，nil 不限流
	TrustedProxies []string                 // 可信代理 CIDR，为空时 ClientIP 只取连接地址
	UploadDir      string                   // 本地存储目录，非空时挂载 /uploads
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl *Controllers, opts Options) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 站点级
	r.GET("/healthz", ctl.Site.Healthz)
	r.GET("/sitemap.xml", ctl.Site.Sitemap)
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	// 3. API 路由组
	api := r.Group("/api")
	{
		// 埋点：前台直接调用，按 IP 限流；点击超限仍跳转，只是不记录
		track := api.Group("/track")
		{
			click, enforce := []gin.HandlerFunc{}, []gin.HandlerFunc{}
			if opts.TrackLimiter != nil {
				click = append(click, opts.TrackLimiter.Mark())
				enforce = append(enforce, opts.TrackLimiter.Enforce())
			}
			track.GET("/click", append(click, ctl.Track.Click)...)
			track.GET("/product-view", append(enforce, ctl.Track.ProductView)...)
			track.GET("/store-visit", append(enforce, ctl.Track.StoreVisit)...)
		}

		// 邮件登录
		auth := api.Group("/auth")
		{
			auth.POST("/email-link", ctl.Auth.RequestEmailLink)
			auth.GET("/verify", ctl.Auth.Verify)
			auth.POST("/refresh", ctl.Auth.RefreshToken)
			auth.GET("/me", middleware.JWTAuth(), ctl.Auth.Me)
		}

		// 前台店铺
		public := api.Group("/public/stores/:slug")
		{
			public.GET("", ctl.Public.GetStore)
			public.GET("/products", ctl.Public.ListProducts)
			public.GET("/products/:productSlug", ctl.Public.GetProduct)
		}
		api.GET("/products/og", ctl.Product.OG)

		// 后台：需要登录
		authed := api.Group("", middleware.JWTAuth(), middleware.AuditContext())
		{
			authed.GET("/user/store", ctl.Store.GetMine)
			authed.PATCH("/stores/:slug", ctl.Store.Update)
			authed.POST("/stores/:slug/appearance/preview", ctl.Store.Preview)

			products := authed.Group("/products")
			{
				products.GET("", ctl.Product.List)
				products.POST("", ctl.Product.Create)
				products.GET("/:id", ctl.Product.Get)
				products.PATCH("/:id", ctl.Product.Update)
				products.DELETE("/:id", ctl.Product.Delete)
				products.PUT("/:id/links", ctl.Product.ReplaceLinks)
				products.GET("/:id/stats", ctl.Analytics.ProductStats)
			}

			authed.GET("/analytics", ctl.Analytics.StoreAnalytics)
			authed.GET("/analytics/overview", ctl.Analytics.Overview)
		}
	}
}

// New 创建 gin 引擎并挂载通用中间件
func New(ctl *Controllers, opts Options, mws ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.S().Warnf("[Router] 可信代理配置无效 %v: %v", opts.TrustedProxies, err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(mws...)
	InitRoutes(r, ctl, opts)
	return r
}

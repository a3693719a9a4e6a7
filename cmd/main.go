package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront_dev_v1/internal/config"
	"storefront_dev_v1/internal/controller"
	"storefront_dev_v1/internal/middleware"
	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
	"storefront_dev_v1/internal/router"
	"storefront_dev_v1/internal/service"
	"storefront_dev_v1/internal/task"
	"storefront_dev_v1/pkg/cache"
	"storefront_dev_v1/pkg/clock"
	"storefront_dev_v1/pkg/database"
	"storefront_dev_v1/pkg/logger"
)

// @title           Storefront API
// @version         1.0
// @description     多租户导购店铺：店铺/商品管理、推广链接跳转与访问统计
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	zl, err := logger.Init(cfg.App.Mode, cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 1. 初始化数据库
	db, partitions := initDatabase(cfg)

	// 2. 初始化依赖
	deps := initDependencies(cfg, db)

	// 3. 启动定时任务
	tasks := initTasks(cfg, deps, partitions)
	tasks.Start()

	// 4. 初始化路由
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		zl.Fatal("注册校验器失败", zap.Error(err))
	}
	r := router.New(deps.Controllers, deps.RouterOptions, middleware.RequestLogger(zl), middleware.Recovery(zl))

	// 5. 启动服务
	startServer(cfg, r, func(ctx context.Context) {
		tasks.Stop(ctx)
		if deps.Redis != nil {
			_ = deps.Redis.Close()
		}
	})
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB            *gorm.DB
	Redis         *redis.Client
	Repos         *Repositories
	Services      *Services
	Controllers   *router.Controllers
	RouterOptions router.Options
}

// Repositories 仓库集合
type Repositories struct {
	User       repository.UserRepository
	LoginToken repository.LoginTokenRepository
	Store      repository.StoreRepository
	Product    repository.ProductRepository
	Event      repository.EventRepository
}

// Services 服务集合
type Services struct {
	Auth      *service.AuthService
	Store     *service.StoreService
	Product   *service.ProductService
	Tracking  *service.TrackingService
	Analytics *service.AnalyticsService
	Sitemap   *service.SitemapService
	Storage   *service.StorageService
}

// ==================== 初始化函数 ====================

// initDatabase 连接数据库、建表，启用分区时返回分区管理器
func initDatabase(cfg *config.Config) (*gorm.DB, *database.PartitionManager) {
	db, err := database.InitDB(database.Options{
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		logger.L().Fatal("数据库初始化失败", zap.Error(err))
	}

	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		logger.L().Fatal("注册审计回调失败", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	partitions, err := database.Migrate(ctx, db, database.MigrateOptions{
		Models: []interface{}{
			// Account
			&model.User{}, &model.LoginToken{},
			// Catalog
			&model.Store{}, &model.Product{}, &model.AffiliateLink{},
		},
		EventModels: []interface{}{
			&model.ClickEvent{}, &model.ProductView{}, &model.StoreVisit{},
		},
		Partitioned:  cfg.Database.Partitioned,
		FutureMonths: cfg.Database.FutureMonths,
	})
	if err != nil {
		logger.L().Fatal("数据库迁移失败", zap.Error(err))
	}
	return db, partitions
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	})

	// -------- Repo 层 --------
	repos := &Repositories{
		User:       repository.NewUserRepository(db),
		LoginToken: repository.NewLoginTokenRepository(db),
		Store:      repository.NewStoreRepository(db),
		Product:    repository.NewProductRepository(db),
		Event:      repository.NewEventRepository(db),
	}

	// -------- 缓存 --------
	redisClient, c := initCache(cfg)
	resolver := service.NewCatalogResolver(repos.Store, repos.Product, c, cfg.Redis.CacheTTL)

	// -------- 存储 & 邮件 --------
	provider, err := service.NewStorageProvider(cfg.Storage, cfg.App.PublicBaseURL)
	if err != nil {
		logger.L().Fatal("存储服务初始化失败", zap.Error(err))
	}
	storageSvc := service.NewStorageService(provider, cfg.Storage)

	mailer, err := service.NewMailSender(cfg.Mail, !cfg.IsProduction())
	if err != nil {
		logger.L().Fatal("邮件服务初始化失败", zap.Error(err))
	}

	// -------- 业务服务 --------
	clk := clock.RealClock{}
	links := service.NewStorefrontLinks(cfg.App.PublicBaseURL, cfg.App.StorefrontPath)
	services := &Services{
		Storage: storageSvc,
		Auth: service.NewAuthService(repos.User, repos.LoginToken, mailer, middleware.NewCooldownLimiter(), clk, service.AuthConfig{
			PublicBaseURL: cfg.App.PublicBaseURL,
			TokenTTL:      cfg.Mail.TokenTTL,
			Cooldown:      cfg.Mail.Cooldown,
		}),
		Store:     service.NewStoreService(repos.Store, storageSvc, resolver, clk),
		Product:   service.NewProductService(repos.Product, resolver),
		Tracking:  service.NewTrackingService(resolver, repos.Event, clk),
		Analytics: service.NewAnalyticsService(repos.Event, clk),
		Sitemap:   service.NewSitemapService(repos.Store, links),
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:      controller.NewAuthController(services.Auth),
		Store:     controller.NewStoreController(services.Store),
		Product:   controller.NewProductController(services.Product, services.Store, links),
		Public:    controller.NewPublicController(services.Store, services.Product),
		Track:     controller.NewTrackController(services.Tracking),
		Analytics: controller.NewAnalyticsController(services.Analytics, services.Store, services.Product),
		Site:      controller.NewSiteController(services.Sitemap, db),
	}

	trackLimiter, err := middleware.NewTrackRateLimiter(cfg.Track.RateLimit, redisClient)
	if err != nil {
		logger.L().Fatal("埋点限流初始化失败", zap.Error(err))
	}
	opts := router.Options{TrackLimiter: trackLimiter, TrustedProxies: cfg.Server.TrustedProxies}
	if local, ok := provider.(*service.LocalStorage); ok {
		opts.UploadDir = local.Dir()
	}

	return &Dependencies{
		DB:            db,
		Redis:         redisClient,
		Repos:         repos,
		Services:      services,
		Controllers:   controllers,
		RouterOptions: opts,
	}
}

// initCache 配置了 redis 则使用 Redis，否则退回进程内缓存
func initCache(cfg *config.Config) (*redis.Client, cache.Cache) {
	if cfg.Redis.URL == "" {
		logger.S().Info("[Cache] 未配置 redis，使用进程内缓存")
		return nil, cache.NewMemoryCache()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := cache.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		logger.S().Warnf("[Cache] %v，使用进程内缓存", err)
		return nil, cache.NewMemoryCache()
	}
	logger.S().Info("[Cache] redis 已连接")
	return client, cache.NewRedisCache(client, "storefront")
}

// ==================== 定时任务 ====================

// initTasks 注册定时任务
func initTasks(cfg *config.Config, deps *Dependencies, partitions *database.PartitionManager) *task.TaskManager {
	tm := task.NewTaskManager()

	// 事件表分区维护，仅 Postgres 分区模式
	if partitions != nil {
		if err := tm.Register(cfg.Tasks.PartitionCron, task.NewPartitionTask(partitions, cfg.Database.FutureMonths)); err != nil {
			logger.L().Fatal("注册分区任务失败", zap.Error(err))
		}
	}

	// 登录令牌清理
	if err := tm.Register(cfg.Tasks.TokenCleanupCron, task.NewTokenCleanupTask(deps.Services.Auth)); err != nil {
		logger.L().Fatal("注册令牌清理任务失败", zap.Error(err))
	}

	return tm
}

// ==================== 服务启动 ====================

// startServer 启动服务并在收到退出信号后优雅关闭
func startServer(cfg *config.Config, r *gin.Engine, onShutdown func(ctx context.Context)) {
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 异步启动服务
	go func() {
		logger.S().Infof("服务启动在 :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.S().Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("服务强制关闭", zap.Error(err))
	}
	onShutdown(ctx)

	logger.S().Info("服务已退出")
}

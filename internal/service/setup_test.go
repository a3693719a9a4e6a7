package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
	"storefront_dev_v1/pkg/cache"
	"storefront_dev_v1/pkg/clock"
)

// ==================== 测试辅助 ====================

// testNow 测试固定时间：2026-05-10 15:00 UTC
var testNow = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

type testEnv struct {
	db          *gorm.DB
	clock       *clock.MockClock
	cache       *cache.MemoryCache
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	eventRepo   repository.EventRepository
	userRepo    repository.UserRepository
	tokenRepo   repository.LoginTokenRepository
	resolver    *CatalogResolver
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.User{}, &model.LoginToken{},
		&model.Store{}, &model.Product{}, &model.AffiliateLink{},
		&model.ClickEvent{}, &model.ProductView{}, &model.StoreVisit{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &testEnv{
		db:          db,
		clock:       clock.NewMockClock(testNow),
		cache:       cache.NewMemoryCache(),
		storeRepo:   repository.NewStoreRepository(db),
		productRepo: repository.NewProductRepository(db),
		eventRepo:   repository.NewEventRepository(db),
		userRepo:    repository.NewUserRepository(db),
		tokenRepo:   repository.NewLoginTokenRepository(db),
	}
	env.resolver = NewCatalogResolver(env.storeRepo, env.productRepo, env.cache, time.Minute)
	return env
}

// seedDemo 创建 demo-store 与两个商品
func (e *testEnv) seedDemo(t *testing.T) (*model.Store, *model.Product, *model.Product) {
	t.Helper()
	store := &model.Store{OwnerID: 1, Slug: "demo-store", Name: "Demo Store", Language: model.DefaultLanguage}
	require.NoError(t, e.db.Create(store).Error)

	iphone := &model.Product{
		StoreID:   store.ID,
		Slug:      "iphone-15-pro-max",
		Title:     "iPhone 15 Pro Max",
		Price:     decimal.NewNullDecimal(decimal.RequireFromString("9999.00")),
		Published: true,
		Links: []model.AffiliateLink{
			{Marketplace: "amazon", URL: "https://amazon.com.br/dp/example"},
			{Marketplace: "Mercado Livre", URL: "https://mercadolivre.com.br/item?id=1&utm_medium=old"},
		},
	}
	require.NoError(t, e.db.Create(iphone).Error)

	airpods := &model.Product{
		StoreID:   store.ID,
		Slug:      "airpods-pro-2",
		Title:     "AirPods Pro 2",
		Published: true,
	}
	require.NoError(t, e.db.Create(airpods).Error)
	return store, iphone, airpods
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func boolPtr(b bool) *bool { return &b }

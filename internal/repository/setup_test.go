package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront_dev_v1/internal/model"
)

// ==================== 测试辅助 ====================

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
	// :memory: 每个连接是独立的库
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

func seedStore(t *testing.T, db *gorm.DB, ownerID int64, slug string) *model.Store {
	t.Helper()
	store := &model.Store{
		OwnerID:  ownerID,
		Slug:     slug,
		Name:     "Loja " + slug,
		Theme:    datatypes.NewJSONType(model.ThemeConfig{Layout: model.ThemeLayoutGrid}),
		Language: model.DefaultLanguage,
	}
	require.NoError(t, db.Create(store).Error)
	return store
}

func seedProduct(t *testing.T, db *gorm.DB, storeID int64, slug string, published bool, links ...model.AffiliateLink) *model.Product {
	t.Helper()
	p := &model.Product{
		StoreID:   storeID,
		Slug:      slug,
		Title:     "Product " + slug,
		Price:     decimal.NewNullDecimal(decimal.RequireFromString("99.90")),
		Published: published,
		Links:     links,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func strPtr(s string) *string { return &s }

func mustCreateClick(t *testing.T, repo EventRepository, storeID, productID int64, marketplace string, at time.Time) {
	t.Helper()
	require.NoError(t, repo.CreateClick(context.Background(), &model.ClickEvent{
		StoreID:     storeID,
		ProductID:   productID,
		Marketplace: marketplace,
		CreatedAt:   at,
	}))
}

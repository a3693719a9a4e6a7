package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront_dev_v1/internal/model"
)

func TestSeed_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Store{}, &model.Product{}, &model.AffiliateLink{}))

	ctx := context.Background()
	store, err := seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "demo-store", store.Slug)
	assert.Equal(t, "#3b82f6", store.ThemeConfig().PrimaryColor)

	_, err = seed(ctx, db)
	require.NoError(t, err)

	var users, products, links int64
	db.Model(&model.User{}).Count(&users)
	db.Model(&model.Product{}).Where("store_id = ?", store.ID).Count(&products)
	db.Model(&model.AffiliateLink{}).Count(&links)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 4, products)
	assert.EqualValues(t, 12, links)

	var iphone model.Product
	require.NoError(t, db.Preload("Links").Where("slug = ?", "iphone-15-pro-max").First(&iphone).Error)
	assert.Equal(t, "7999", iphone.Price.Decimal.String())
	require.NotNil(t, iphone.FindLink("Amazon"))
	assert.Equal(t, "https://amazon.com.br/dp/example", iphone.FindLink("AMAZON").URL)
}

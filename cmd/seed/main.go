package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront_dev_v1/internal/config"
	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/service"
	"storefront_dev_v1/pkg/database"
	"storefront_dev_v1/pkg/logger"
)

// 演示数据：demo@example.com / demo-store
func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if _, err := logger.Init(cfg.App.Mode, cfg.App.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.InitDB(database.Options{DSN: cfg.Database.DSN, LogLevel: cfg.Database.LogLevel})
	if err != nil {
		logger.L().Fatal("数据库初始化失败", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, err = database.Migrate(ctx, db, database.MigrateOptions{
		Models:       []interface{}{&model.User{}, &model.LoginToken{}, &model.Store{}, &model.Product{}, &model.AffiliateLink{}},
		EventModels:  []interface{}{&model.ClickEvent{}, &model.ProductView{}, &model.StoreVisit{}},
		Partitioned:  cfg.Database.Partitioned,
		FutureMonths: cfg.Database.FutureMonths,
	})
	if err != nil {
		logger.L().Fatal("数据库迁移失败", zap.Error(err))
	}

	store, err := seed(ctx, db)
	if err != nil {
		logger.L().Fatal("写入演示数据失败", zap.Error(err))
	}
	logger.S().Infof("演示店铺: %s", service.NewStorefrontLinks(cfg.App.PublicBaseURL, cfg.App.StorefrontPath).Store(store.Slug))
	logger.S().Infof("演示账号: %s", demoEmail)
}

const (
	demoEmail     = "demo@example.com"
	demoStoreSlug = "demo-store"
)

type demoProduct struct {
	slug, title, description, image, price string
}

var demoProducts = []demoProduct{
	{"iphone-15-pro-max", "iPhone 15 Pro Max",
		"O mais avançado iPhone com chip A17 Pro, câmera de 48MP e tela Super Retina XDR de 6.7\".",
		"https://images.unsplash.com/photo-1695048133142-1a20484d2569?w=400&h=400&fit=crop", "7999.00"},
	{"macbook-air-m2", "MacBook Air M2",
		"Notebook ultraportátil com chip M2, tela Liquid Retina de 13.6\" e até 18h de bateria.",
		"https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=400&h=400&fit=crop", "8999.00"},
	{"airpods-pro-2", "AirPods Pro 2",
		"Fones sem fio com cancelamento ativo de ruído e áudio espacial personalizado.",
		"https://images.unsplash.com/photo-1606220588913-b3aacb4d2f46?w=400&h=400&fit=crop", "2199.00"},
	{"apple-watch-series-9", "Apple Watch Series 9",
		"Smartwatch com chip S9, GPS e monitoramento de saúde avançado.",
		"https://images.unsplash.com/photo-1551698618-1dfe5d97d256?w=400&h=400&fit=crop", "3299.00"},
}

var demoLinks = []model.AffiliateLink{
	{Marketplace: "amazon", URL: "https://amazon.com.br/dp/example", Note: "Frete grátis"},
	{Marketplace: "mercado-livre", URL: "https://mercadolivre.com.br/example", Note: "Frete grátis"},
	{Marketplace: "magazine-luiza", URL: "https://magazineluiza.com.br/example", Note: "Frete grátis"},
}

// seed 幂等写入演示数据，已存在的记录保持不变
func seed(ctx context.Context, db *gorm.DB) (*model.Store, error) {
	var store model.Store
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := model.User{Email: demoEmail}
		if err := tx.Where(model.User{Email: demoEmail}).
			Attrs(model.User{Name: "Demo User"}).
			FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("创建用户: %w", err)
		}

		if err := tx.Where(model.Store{Slug: demoStoreSlug}).
			Attrs(model.Store{
				OwnerID:     user.ID,
				Name:        "Demo Store",
				Description: "Uma loja de demonstração com produtos incríveis",
				Language:    model.LanguagePTBR,
				Theme: datatypes.NewJSONType(model.ThemeConfig{
					PrimaryColor: "#3b82f6",
					Layout:       model.ThemeLayoutGrid,
					Preset:       model.ThemePresetLight,
				}),
			}).
			FirstOrCreate(&store).Error; err != nil {
			return fmt.Errorf("创建店铺: %w", err)
		}

		for _, p := range demoProducts {
			var product model.Product
			if err := tx.Where(model.Product{StoreID: store.ID, Slug: p.slug}).
				Attrs(model.Product{
					Title:       p.title,
					Description: p.description,
					ImageURL:    p.image,
					Price:       decimal.NewNullDecimal(decimal.RequireFromString(p.price)),
					Published:   true,
				}).
				FirstOrCreate(&product).Error; err != nil {
				return fmt.Errorf("创建商品 %s: %w", p.slug, err)
			}

			// 已有链接的商品不再补充
			var linkCount int64
			if err := tx.Model(&model.AffiliateLink{}).Where("product_id = ?", product.ID).Count(&linkCount).Error; err != nil {
				return err
			}
			if linkCount > 0 {
				continue
			}

			links := make([]model.AffiliateLink, len(demoLinks))
			for i, l := range demoLinks {
				l.ProductID = product.ID
				links[i] = l
			}
			if err := tx.Create(&links).Error; err != nil {
				return fmt.Errorf("创建推广链接 %s: %w", p.slug, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &store, nil
}

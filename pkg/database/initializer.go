package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	applog "storefront_dev_v1/pkg/logger"
)

// MigrateOptions 建表选项
type MigrateOptions struct {
	// 普通表，始终 AutoMigrate
	Models []interface{}

	// 事件表 Model；Postgres 且启用分区时改由 partitions/*.sql 建表
	EventModels []interface{}

	// 是否启用月分区（仅 Postgres 生效）
	Partitioned bool

	// 创建未来几个月的分区（默认 3）
	FutureMonths int
}

// Migrate 执行建表，启用分区时返回分区管理器，否则返回 nil
func Migrate(ctx context.Context, db *gorm.DB, opts MigrateOptions) (*PartitionManager, error) {
	start := time.Now()
	if opts.FutureMonths <= 0 {
		opts.FutureMonths = 3
	}

	if err := db.WithContext(ctx).AutoMigrate(opts.Models...); err != nil {
		return nil, fmt.Errorf("AutoMigrate 失败: %w", err)
	}

	if !opts.Partitioned || !IsPostgres(db) {
		if err := db.WithContext(ctx).AutoMigrate(opts.EventModels...); err != nil {
			return nil, fmt.Errorf("AutoMigrate 事件表失败: %w", err)
		}
		applog.S().Infof("[DB] 建表完成（未分区），耗时 %v", time.Since(start))
		return nil, nil
	}

	cfg, err := DefaultPartitionConfig()
	if err != nil {
		return nil, fmt.Errorf("加载分区配置失败: %w", err)
	}
	manager := NewPartitionManager(db, cfg)

	if err := manager.InitPartitionTables(ctx); err != nil {
		return nil, err
	}
	if err := manager.EnsureFuturePartitions(ctx, opts.FutureMonths); err != nil {
		return nil, err
	}

	if stats, err := manager.GetAllStats(ctx); err == nil {
		for _, s := range stats {
			applog.S().Infof("[DB] %s: %d 分区, %.2f MB",
				s.TableName, s.PartitionCount, float64(s.TotalSizeBytes)/1024/1024)
		}
	}

	applog.S().Infof("[DB] 建表完成，耗时 %v", time.Since(start))
	return manager, nil
}

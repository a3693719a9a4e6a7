package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "storefront_dev_v1/pkg/logger"
)

// PartitionManager 事件表月分区管理（仅 Postgres）
type PartitionManager struct {
	db     *gorm.DB
	config *PartitionConfig
	now    func() time.Time
}

// NewPartitionManager 创建分区管理器
func NewPartitionManager(db *gorm.DB, config *PartitionConfig) *PartitionManager {
	return &PartitionManager{
		db:     db,
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Config 分区配置
func (m *PartitionManager) Config() *PartitionConfig {
	return m.config
}

// PartitionName 分区名：<table>_y<YYYY>m<MM>
func PartitionName(tableName string, month time.Time) string {
	return fmt.Sprintf("%s_y%dm%02d", tableName, month.Year(), month.Month())
}

// monthStart 所在月第一天（UTC）
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ==================== 初始化 ====================

// InitPartitionTables 创建分区主表（已存在则跳过）
func (m *PartitionManager) InitPartitionTables(ctx context.Context) error {
	for _, table := range m.config.Tables {
		exists, err := m.relationExists(ctx, table.TableName)
		if err != nil {
			return fmt.Errorf("检查表 %s 失败: %w", table.TableName, err)
		}
		if exists {
			continue
		}

		applog.S().Infof("[Partition] 创建分区表 %s", table.TableName)
		if err := m.db.WithContext(ctx).Exec(table.SQLContent).Error; err != nil {
			return fmt.Errorf("创建表 %s 失败: %w", table.TableName, err)
		}
	}
	return nil
}

func (m *PartitionManager) relationExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM pg_tables
		WHERE schemaname = current_schema() AND tablename = ?
	`, name).Scan(&count).Error
	return count > 0, err
}

// ==================== 分区创建 ====================

// EnsureFuturePartitions 确保当月及未来 monthsAhead 个月的分区存在
func (m *PartitionManager) EnsureFuturePartitions(ctx context.Context, monthsAhead int) error {
	current := monthStart(m.now())
	var failed []string
	for i := 0; i <= monthsAhead; i++ {
		month := current.AddDate(0, i, 0)
		for _, table := range m.config.Tables {
			if err := m.createPartitionIfNotExists(ctx, table.TableName, month); err != nil {
				applog.S().Warnf("[Partition] 创建 %s 分区失败: %v", table.TableName, err)
				failed = append(failed, PartitionName(table.TableName, month))
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("分区创建失败: %v", failed)
	}
	return nil
}

func (m *PartitionManager) createPartitionIfNotExists(ctx context.Context, tableName string, month time.Time) error {
	start := monthStart(month)
	end := start.AddDate(0, 1, 0)
	name := PartitionName(tableName, start)

	exists, err := m.relationExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	sql := fmt.Sprintf(
		`CREATE TABLE %s PARTITION OF %s FOR VALUES FROM ('%s') TO ('%s')`,
		name, tableName, start.Format("2006-01-02"), end.Format("2006-01-02"),
	)
	if err := m.db.WithContext(ctx).Exec(sql).Error; err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("创建分区 %s 失败: %w", name, err)
	}

	applog.S().Infof("[Partition] 创建分区 %s", name)
	return nil
}

// ==================== 分区清理 ====================

// CleanupExpiredPartitions 删除超出保留期的分区，返回删除数量
func (m *PartitionManager) CleanupExpiredPartitions(ctx context.Context) (int, error) {
	dropped := 0
	for _, table := range m.config.Tables {
		if table.RetentionMonth == 0 {
			continue // 永久保留
		}

		cutoff := monthStart(m.now()).AddDate(0, -table.RetentionMonth, 0)
		count, err := m.dropPartitionsBefore(ctx, table.TableName, cutoff)
		if err != nil {
			return dropped, fmt.Errorf("清理 %s 过期分区失败: %w", table.TableName, err)
		}
		dropped += count
	}
	return dropped, nil
}

func (m *PartitionManager) dropPartitionsBefore(ctx context.Context, tableName string, before time.Time) (int, error) {
	partitions, err := m.ListPartitions(ctx, tableName)
	if err != nil {
		return 0, err
	}

	dropped := 0
	for _, p := range partitions {
		month, err := ParsePartitionMonth(p.Name, tableName)
		if err != nil || !month.Before(before) {
			continue
		}

		applog.S().Infof("[Partition] 删除过期分区 %s", p.Name)
		if err := m.db.WithContext(ctx).Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", p.Name)).Error; err != nil {
			applog.S().Warnf("[Partition] 删除 %s 失败: %v", p.Name, err)
			continue
		}
		dropped++
	}
	return dropped, nil
}

// ParsePartitionMonth 从分区名解析月份
func ParsePartitionMonth(partitionName, tableName string) (time.Time, error) {
	if !strings.HasPrefix(partitionName, tableName+"_y") {
		return time.Time{}, fmt.Errorf("非 %s 的分区: %s", tableName, partitionName)
	}
	suffix := strings.TrimPrefix(partitionName, tableName+"_y")

	var year, month int
	if _, err := fmt.Sscanf(suffix, "%dm%d", &year, &month); err != nil {
		return time.Time{}, fmt.Errorf("无效分区名 %s: %w", partitionName, err)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("无效分区月份: %s", partitionName)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// ==================== 分区查询 ====================

// PartitionInfo 分区信息
type PartitionInfo struct {
	Name      string `gorm:"column:partition_name"`
	Range     string `gorm:"column:partition_range"`
	SizeBytes int64  `gorm:"column:size_bytes"`
}

// ListPartitions 列出表的所有分区
func (m *PartitionManager) ListPartitions(ctx context.Context, tableName string) ([]PartitionInfo, error) {
	var partitions []PartitionInfo
	err := m.db.WithContext(ctx).Raw(`
		SELECT
			child.relname AS partition_name,
			pg_get_expr(child.relpartbound, child.oid) AS partition_range,
			pg_total_relation_size(child.oid) AS size_bytes
		FROM pg_inherits
		JOIN pg_class parent ON pg_inherits.inhparent = parent.oid
		JOIN pg_class child ON pg_inherits.inhrelid = child.oid
		WHERE parent.relname = ?
		ORDER BY child.relname
	`, tableName).Scan(&partitions).Error
	return partitions, err
}

// TableStats 表统计
type TableStats struct {
	TableName      string `gorm:"column:table_name"`
	PartitionCount int    `gorm:"column:partition_count"`
	TotalSizeBytes int64  `gorm:"column:total_size_bytes"`
}

// GetAllStats 获取所有分区表统计
func (m *PartitionManager) GetAllStats(ctx context.Context) ([]TableStats, error) {
	var stats []TableStats
	names := m.config.GetTableNames()
	if len(names) == 0 {
		return stats, nil
	}

	err := m.db.WithContext(ctx).Raw(`
		SELECT
			parent.relname AS table_name,
			COUNT(child.relname) AS partition_count,
			COALESCE(SUM(pg_total_relation_size(child.oid)), 0) AS total_size_bytes
		FROM pg_inherits
		JOIN pg_class parent ON pg_inherits.inhparent = parent.oid
		JOIN pg_class child ON pg_inherits.inhrelid = child.oid
		WHERE parent.relname IN ?
		GROUP BY parent.relname
		ORDER BY parent.relname
	`, names).Scan(&stats).Error
	return stats, err
}

// HealthCheck 检查当月与下月分区是否就绪
func (m *PartitionManager) HealthCheck(ctx context.Context) error {
	current := monthStart(m.now())
	next := current.AddDate(0, 1, 0)

	var missing []string
	for _, table := range m.config.Tables {
		for _, month := range []time.Time{current, next} {
			name := PartitionName(table.TableName, month)
			exists, err := m.relationExists(ctx, name)
			if err != nil {
				return err
			}
			if !exists {
				missing = append(missing, name)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("缺失分区: %v", missing)
	}
	return nil
}

package database

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

// partitionFS 嵌入的分区建表 SQL 与保留策略
//
//go:embed partitions/*.sql partitions/*.conf
var partitionFS embed.FS

const partitionRoot = "partitions"

// PartitionTableConfig 分区表配置
type PartitionTableConfig struct {
	TableName      string // 表名
	RetentionMonth int    // 保留月数（0=永久）
	SQLContent     string // 建表 SQL
}

// PartitionConfig 分区配置
type PartitionConfig struct {
	Tables []PartitionTableConfig
}

// DefaultPartitionConfig 加载内置的事件表分区配置
func DefaultPartitionConfig() (*PartitionConfig, error) {
	return LoadPartitionConfig(partitionFS, partitionRoot)
}

// LoadPartitionConfig 从文件系统加载配置：<root>/partition_tables.conf + <root>/<table>.sql
func LoadPartitionConfig(fsys fs.FS, root string) (*PartitionConfig, error) {
	confData, err := fs.ReadFile(fsys, path.Join(root, "partition_tables.conf"))
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg, err := ParsePartitionConfig(string(confData))
	if err != nil {
		return nil, err
	}

	for i := range cfg.Tables {
		sqlFile := cfg.Tables[i].TableName + ".sql"
		sqlData, err := fs.ReadFile(fsys, path.Join(root, sqlFile))
		if err != nil {
			return nil, fmt.Errorf("读取 SQL 文件 %s 失败: %w", sqlFile, err)
		}
		cfg.Tables[i].SQLContent = string(sqlData)
	}

	return cfg, nil
}

// ParsePartitionConfig 解析 "表名,保留月数" 格式，# 开头为注释
func ParsePartitionConfig(content string) (*PartitionConfig, error) {
	cfg := &PartitionConfig{}
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("配置第 %d 行格式错误: %s", lineNum, line)
		}

		retention, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || retention < 0 {
			return nil, fmt.Errorf("配置第 %d 行保留月数无效: %s", lineNum, parts[1])
		}

		cfg.Tables = append(cfg.Tables, PartitionTableConfig{
			TableName:      strings.TrimSpace(parts[0]),
			RetentionMonth: retention,
		})
	}

	return cfg, scanner.Err()
}

// GetTableNames 获取所有分区表名
func (c *PartitionConfig) GetTableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.TableName
	}
	return names
}

// GetTable 获取指定表配置
func (c *PartitionConfig) GetTable(name string) *PartitionTableConfig {
	for i := range c.Tables {
		if c.Tables[i].TableName == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// IsPartitionedTable 检查是否为分区表
func (c *PartitionConfig) IsPartitionedTable(name string) bool {
	return c.GetTable(name) != nil
}

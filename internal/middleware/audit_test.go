package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type auditedRow struct {
	ID        int64
	Name      string
	CreatedBy int64
	UpdatedBy int64
}

func TestRegisterAuditCallbacks(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	require.NoError(t, db.AutoMigrate(&auditedRow{}))
	require.NoError(t, RegisterAuditCallbacks(db))

	ctx := WithAuditInfo(context.Background(), 9, "a@example.com")
	row := &auditedRow{Name: "x"}
	require.NoError(t, db.WithContext(ctx).Create(row).Error)
	assert.EqualValues(t, 9, row.CreatedBy)
	assert.EqualValues(t, 9, row.UpdatedBy)

	// map 更新也要带上 updated_by
	ctx2 := WithAuditInfo(context.Background(), 11, "b@example.com")
	require.NoError(t, db.WithContext(ctx2).Model(&auditedRow{ID: row.ID}).Updates(map[string]interface{}{"name": "y"}).Error)

	var got auditedRow
	require.NoError(t, db.First(&got, row.ID).Error)
	assert.Equal(t, "y", got.Name)
	assert.EqualValues(t, 9, got.CreatedBy)
	assert.EqualValues(t, 11, got.UpdatedBy)

	// 无审计信息时不写
	plain := &auditedRow{Name: "z"}
	require.NoError(t, db.Create(plain).Error)
	assert.Zero(t, plain.CreatedBy)
}

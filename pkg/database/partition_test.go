package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDefaultPartitionConfig(t *testing.T) {
	cfg, err := DefaultPartitionConfig()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"click_events", "product_views", "store_visits"}, cfg.GetTableNames())
	for _, table := range cfg.Tables {
		assert.Contains(t, table.SQLContent, "PARTITION BY RANGE (created_at)", table.TableName)
		assert.Equal(t, 24, table.RetentionMonth)
	}
	assert.True(t, cfg.IsPartitionedTable("click_events"))
	assert.False(t, cfg.IsPartitionedTable("products"))
}

func TestParsePartitionConfig(t *testing.T) {
	cfg, err := ParsePartitionConfig("# comment\n\nclick_events, 12\nstore_visits,0\n")
	require.NoError(t, err)
	require.Len(t, cfg.Tables, 2)
	assert.Equal(t, 12, cfg.Tables[0].RetentionMonth)
	assert.Equal(t, 0, cfg.GetTable("store_visits").RetentionMonth)

	_, err = ParsePartitionConfig("click_events")
	assert.Error(t, err)

	_, err = ParsePartitionConfig("click_events,abc")
	assert.Error(t, err)

	_, err = ParsePartitionConfig("click_events,-1")
	assert.Error(t, err)
}

func TestPartitionName_RoundTrip(t *testing.T) {
	month := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	name := PartitionName("click_events", month)
	assert.Equal(t, "click_events_y2026m03", name)

	parsed, err := ParsePartitionMonth(name, "click_events")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(month))

	_, err = ParsePartitionMonth("store_visits_y2026m03", "click_events")
	assert.Error(t, err)
	_, err = ParsePartitionMonth("click_events_y2026m13", "click_events")
	assert.Error(t, err)
}

type migrateTestEvent struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (migrateTestEvent) TableName() string { return "click_events" }

type migrateTestStore struct {
	ID   int64 `gorm:"primaryKey"`
	Slug string
}

func (migrateTestStore) TableName() string { return "stores" }

func TestMigrate_SqliteFallsBackToAutoMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	manager, err := Migrate(context.Background(), db, MigrateOptions{
		Models:      []interface{}{&migrateTestStore{}},
		EventModels: []interface{}{&migrateTestEvent{}},
		Partitioned: true,
	})
	require.NoError(t, err)
	assert.Nil(t, manager)

	assert.True(t, db.Migrator().HasTable("stores"))
	assert.True(t, db.Migrator().HasTable("click_events"))
	assert.False(t, IsPostgres(db))
}

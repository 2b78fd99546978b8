package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unitychat/unitychat/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "chat.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestMigrate(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"users", "user_settings", "messages",
		"user_bans", "user_mutes",
		"guilds", "guild_members", "tags",
	} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}
}

func TestSeedTags(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedTags(db))

	var tags []model.Tag
	require.NoError(t, db.Order("required_level ASC").Find(&tags).Error)
	require.Len(t, tags, 5)
	assert.Equal(t, "Rookie", tags[0].Name)
	assert.Equal(t, 1, tags[0].RequiredLevel)
	assert.Equal(t, "Legend", tags[4].Name)

	// Seeding again must not duplicate the set.
	require.NoError(t, SeedTags(db))
	var count int64
	require.NoError(t, db.Model(&model.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN("localhost", "5432", "chat", "secret", "chatdb")
	assert.Equal(t, "host=localhost port=5432 user=chat password=secret dbname=chatdb sslmode=disable", dsn)
}

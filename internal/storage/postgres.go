package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unitychat/unitychat/internal/model"
)

// InitPostgres opens the database, configures the connection pool and
// migrates every table the chat uses.
func InitPostgres(dsn string, maxIdleConns, maxOpenConns int) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for all chat models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.UserSettings{},
		&model.Message{},
		&model.Ban{},
		&model.Mute{},
		&model.Guild{},
		&model.GuildMember{},
		&model.Tag{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// BuildDSN assembles a postgres DSN from config fields.
func BuildDSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// SeedTags inserts the default level tags when the table is empty,
// so a fresh install decorates users from the start. Deployments may
// replace the set directly in the table.
func SeedTags(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Tag{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count tags: %w", err)
	}
	if count > 0 {
		return nil
	}

	tags := []model.Tag{
		{Name: "Rookie", ColorHex: "#9e9e9e", RequiredLevel: 1},
		{Name: "Regular", ColorHex: "#4caf50", RequiredLevel: 5},
		{Name: "Veteran", ColorHex: "#2196f3", RequiredLevel: 10},
		{Name: "Elite", ColorHex: "#9c27b0", RequiredLevel: 20},
		{Name: "Legend", ColorHex: "#ff9800", RequiredLevel: 35},
	}
	if err := db.Create(&tags).Error; err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}
	return nil
}

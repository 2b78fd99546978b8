package model

import (
	"time"
)

// User is a registered chat account. Rows are never hard-deleted; bans
// live in the moderation ledger, not on the user itself.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null;type:varchar(255)" json:"username"`
	Email        string `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	PasswordHash string `gorm:"not null;type:varchar(255)" json:"-"`
	DisplayName  string `gorm:"not null;type:varchar(255)" json:"display_name"`
	AvatarURL    string `json:"avatar_url"`
	CustomStatus string `json:"custom_status"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"is_admin"`

	Level       int `gorm:"not null;default:1" json:"level"`
	Experience  int `gorm:"not null;default:0" json:"experience"`
	NextLevelXP int `gorm:"not null" json:"next_level_xp"`

	IsOnline bool       `gorm:"not null;default:false" json:"is_online"`
	LastSeen *time.Time `json:"last_seen"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserSettings holds per-user display preferences, upserted as a whole.
type UserSettings struct {
	UserID               uint   `gorm:"primaryKey" json:"user_id"`
	Theme                string `gorm:"type:varchar(32)" json:"theme"`
	FontSize             int    `json:"font_size"`
	NotificationsEnabled bool   `gorm:"not null;default:true" json:"notifications_enabled"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

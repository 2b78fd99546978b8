package model

import "time"

type Guild struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;type:varchar(255)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Guild) TableName() string {
	return "guilds"
}

// GuildMember links a user to a guild. A user belongs to at most one
// guild at a time; the check happens at the application level before
// insert.
type GuildMember struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	GuildID uint `gorm:"index;not null" json:"guild_id"`
	UserID  uint `gorm:"index;not null" json:"user_id"`

	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

func (GuildMember) TableName() string {
	return "guild_members"
}

// GuildView carries the aggregate fields the guild list and detail pages
// show alongside the row itself.
type GuildView struct {
	Guild
	CreatorUsername string `json:"creator_username,omitempty"`
	MemberCount     int64  `json:"member_count"`
}

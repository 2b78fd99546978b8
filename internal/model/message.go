package model

import (
	"time"
)

// MessageType distinguishes ordinary chat from server-generated entries.
type MessageType string

const (
	MessageTypeText         MessageType = "text"
	MessageTypeSystem       MessageType = "system"
	MessageTypeAnnouncement MessageType = "announcement"
)

// Reaction is one (user, emoji) pair on a message. The full set is
// stored as a JSON document on the message row; toggling a pair that is
// already present removes it.
type Reaction struct {
	UserID uint   `json:"user_id"`
	Emoji  string `json:"emoji"`
}

// Message is one entry in the chat log.
//
// IDs come from the snowflake generator, so the primary key doubles as
// the creation-order key. Rows are soft-deleted (hidden, never removed)
// and bodies may be rewritten in place by moderation.
type Message struct {
	ID      int64       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID  uint        `gorm:"index;not null" json:"user_id"`
	GuildID *uint       `gorm:"index" json:"guild_id,omitempty"`
	Body    string      `gorm:"column:message;type:text;not null" json:"message"`
	Type    MessageType `gorm:"column:message_type;type:varchar(16);not null;default:text" json:"message_type"`

	Reactions []Reaction `gorm:"serializer:json" json:"reactions"`

	// Quote back-reference plus a snapshot of the quoted text at quote
	// time. The snapshot is intentionally not kept in sync with later
	// edits or deletes of the original.
	QuotedMessageID *int64 `gorm:"index" json:"quoted_message_id,omitempty"`
	QuotedText      string `gorm:"type:text" json:"quoted_text,omitempty"`

	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	IsEdited  bool       `gorm:"not null;default:false" json:"is_edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageView is a message joined with the author attributes the chat
// client renders next to it.
type MessageView struct {
	Message
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	AuthorAdmin bool   `json:"is_author_admin"`
	UserLevel   int    `json:"user_level"`
	Experience  int    `json:"experience"`
	NextLevelXP int    `json:"next_level_xp"`
}

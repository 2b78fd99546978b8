package model

import (
	"time"
)

// Ban is one entry in the ban ledger. At most one row per user may be
// active at a time; the invariant is enforced by the service at write
// time, not by a database constraint.
type Ban struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	BannedBy uint   `gorm:"not null" json:"banned_by"`
	Reason   string `gorm:"type:text" json:"reason"`

	IsActive  bool       `gorm:"not null;default:true;index" json:"is_active"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Ban) TableName() string {
	return "user_bans"
}

// Mute is a timed posting restriction. A mute is in effect iff it is
// active and its expiry is still in the future. Historical rows are
// retained, and several concurrent mutes on one user are allowed; the
// effective one is the latest by expiry.
type Mute struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	UserID          uint `gorm:"index;not null" json:"user_id"`
	MutedBy         uint `gorm:"not null" json:"muted_by"`
	DurationMinutes int  `gorm:"not null" json:"duration_minutes"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Mute) TableName() string {
	return "user_mutes"
}

// BanView / MuteView are ledger rows joined with the usernames the admin
// panel displays.
type BanView struct {
	Ban
	Username         string `json:"username"`
	DisplayName      string `json:"display_name"`
	BannedByUsername string `json:"banned_by_username"`
}

type MuteView struct {
	Mute
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	MutedByUsername string `json:"muted_by_username"`
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
)

// IModerationRepository defines the interface for the ban/mute ledger
type IModerationRepository interface {
	CreateBan(ctx context.Context, ban *model.Ban) error
	FindActiveBan(ctx context.Context, userID uint) (*model.Ban, error)
	DeactivateBans(ctx context.Context, userID uint, revokedAt time.Time) (int64, error)
	ListActiveBans(ctx context.Context) ([]*model.BanView, error)

	CreateMute(ctx context.Context, mute *model.Mute) error
	FindEffectiveMute(ctx context.Context, userID uint, now time.Time) (*model.Mute, error)
	DeactivateMutes(ctx context.Context, userID uint, now time.Time) (int64, error)
	ListActiveMutes(ctx context.Context, now time.Time) ([]*model.MuteView, error)
}

type ModerationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) IModerationRepository {
	return &ModerationRepository{db: db}
}

func (r *ModerationRepository) CreateBan(ctx context.Context, ban *model.Ban) error {
	return r.db.WithContext(ctx).Create(ban).Error
}

// FindActiveBan returns the most recent active ban for a user, or
// gorm.ErrRecordNotFound when none exists.
func (r *ModerationRepository) FindActiveBan(ctx context.Context, userID uint) (*model.Ban, error) {
	var ban model.Ban
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&ban).Error
	if err != nil {
		return nil, err
	}
	return &ban, nil
}

func (r *ModerationRepository) DeactivateBans(ctx context.Context, userID uint, revokedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Ban{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]any{
			"is_active":  false,
			"revoked_at": revokedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *ModerationRepository) ListActiveBans(ctx context.Context) ([]*model.BanView, error) {
	var views []*model.BanView
	err := r.db.WithContext(ctx).
		Model(&model.Ban{}).
		Select(`user_bans.*,
			users.username AS username,
			users.display_name AS display_name,
			admins.username AS banned_by_username`).
		Joins("JOIN users ON users.id = user_bans.user_id").
		Joins("JOIN users AS admins ON admins.id = user_bans.banned_by").
		Where("user_bans.is_active = ?", true).
		Order("user_bans.created_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *ModerationRepository) CreateMute(ctx context.Context, mute *model.Mute) error {
	return r.db.WithContext(ctx).Create(mute).Error
}

// FindEffectiveMute returns the active, unexpired mute with the latest
// expiry, or gorm.ErrRecordNotFound.
func (r *ModerationRepository) FindEffectiveMute(ctx context.Context, userID uint, now time.Time) (*model.Mute, error) {
	var mute model.Mute
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now).
		Order("expires_at DESC").
		First(&mute).Error
	if err != nil {
		return nil, err
	}
	return &mute, nil
}

func (r *ModerationRepository) DeactivateMutes(ctx context.Context, userID uint, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Mute{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]any{
			"is_active":  false,
			"expires_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *ModerationRepository) ListActiveMutes(ctx context.Context, now time.Time) ([]*model.MuteView, error) {
	var views []*model.MuteView
	err := r.db.WithContext(ctx).
		Model(&model.Mute{}).
		Select(`user_mutes.*,
			users.username AS username,
			users.display_name AS display_name,
			admins.username AS muted_by_username`).
		Joins("JOIN users ON users.id = user_mutes.user_id").
		Joins("JOIN users AS admins ON admins.id = user_mutes.muted_by").
		Where("user_mutes.is_active = ? AND user_mutes.expires_at > ?", true, now).
		Order("user_mutes.created_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

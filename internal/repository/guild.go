package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
)

// IGuildRepository defines the interface for guild and membership data
type IGuildRepository interface {
	Create(ctx context.Context, guild *model.Guild) error
	FindByID(ctx context.Context, id uint) (*model.Guild, error)
	FindView(ctx context.Context, id uint) (*model.GuildView, error)
	ListForUser(ctx context.Context, userID uint) ([]*model.GuildView, error)
	AddMember(ctx context.Context, member *model.GuildMember) error
	RemoveMember(ctx context.Context, guildID, userID uint) error
	IsMember(ctx context.Context, guildID, userID uint) (bool, error)
	MemberOfAnyGuild(ctx context.Context, userID uint) (bool, error)
}

type GuildRepository struct {
	db *gorm.DB
}

func NewGuildRepository(db *gorm.DB) IGuildRepository {
	return &GuildRepository{db: db}
}

func (r *GuildRepository) Create(ctx context.Context, guild *model.Guild) error {
	return r.db.WithContext(ctx).Create(guild).Error
}

func (r *GuildRepository) FindByID(ctx context.Context, id uint) (*model.Guild, error) {
	var guild model.Guild
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&guild).Error; err != nil {
		return nil, err
	}
	return &guild, nil
}

func (r *GuildRepository) FindView(ctx context.Context, id uint) (*model.GuildView, error) {
	var view model.GuildView
	err := r.db.WithContext(ctx).
		Model(&model.Guild{}).
		Select(`guilds.*,
			users.username AS creator_username,
			(SELECT COUNT(*) FROM guild_members WHERE guild_members.guild_id = guilds.id) AS member_count`).
		Joins("JOIN users ON users.id = guilds.creator_id").
		Where("guilds.id = ?", id).
		Scan(&view).Error
	if err != nil {
		return nil, err
	}
	if view.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &view, nil
}

func (r *GuildRepository) ListForUser(ctx context.Context, userID uint) ([]*model.GuildView, error) {
	var views []*model.GuildView
	err := r.db.WithContext(ctx).
		Model(&model.Guild{}).
		Select(`guilds.*,
			(SELECT COUNT(*) FROM guild_members WHERE guild_members.guild_id = guilds.id) AS member_count`).
		Joins("JOIN guild_members AS gm ON gm.guild_id = guilds.id").
		Where("gm.user_id = ?", userID).
		Order("guilds.created_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *GuildRepository) AddMember(ctx context.Context, member *model.GuildMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *GuildRepository) RemoveMember(ctx context.Context, guildID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Delete(&model.GuildMember{}).Error
}

func (r *GuildRepository) IsMember(ctx context.Context, guildID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.GuildMember{}).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MemberOfAnyGuild backs the single-guild membership invariant.
func (r *GuildRepository) MemberOfAnyGuild(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.GuildMember{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

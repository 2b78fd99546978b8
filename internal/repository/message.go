package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
)

// messageViewSelect lists the author columns joined onto every message
// the client renders.
const messageViewSelect = `messages.*,
	users.username AS username,
	users.display_name AS display_name,
	users.avatar_url AS avatar_url,
	users.is_admin AS author_admin,
	users.level AS user_level,
	users.experience AS experience,
	users.next_level_xp AS next_level_xp`

// IMessageRepository defines the interface for message log operations
type IMessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	Save(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id int64) (*model.Message, error)
	FindView(ctx context.Context, id int64) (*model.MessageView, error)
	ListLatest(ctx context.Context, limit int) ([]*model.MessageView, error)
	ListGuild(ctx context.Context, guildID uint) ([]*model.MessageView, error)
	ListAnnouncements(ctx context.Context) ([]*model.Message, error)
	SoftDeleteByAuthor(ctx context.Context, id int64, userID uint) (int64, error)
	SoftDeleteAll(ctx context.Context) error
	RedactAllByUser(ctx context.Context, userID uint, placeholder string) error
	SetBody(ctx context.Context, id int64, body string, editedAt time.Time) error
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) IMessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) Save(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindView(ctx context.Context, id int64) (*model.MessageView, error) {
	var view model.MessageView
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select(messageViewSelect).
		Joins("JOIN users ON users.id = messages.user_id").
		Where("messages.id = ?", id).
		Scan(&view).Error
	if err != nil {
		return nil, err
	}
	if view.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &view, nil
}

// ListLatest returns the newest non-deleted global messages, newest
// first. Guild-scoped messages are excluded from the global log.
func (r *MessageRepository) ListLatest(ctx context.Context, limit int) ([]*model.MessageView, error) {
	var views []*model.MessageView
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select(messageViewSelect).
		Joins("JOIN users ON users.id = messages.user_id").
		Where("messages.is_deleted = ?", false).
		Where("messages.guild_id IS NULL").
		Order("messages.id DESC").
		Limit(limit).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *MessageRepository) ListGuild(ctx context.Context, guildID uint) ([]*model.MessageView, error) {
	var views []*model.MessageView
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select(messageViewSelect).
		Joins("JOIN users ON users.id = messages.user_id").
		Where("messages.is_deleted = ?", false).
		Where("messages.guild_id = ?", guildID).
		Order("messages.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *MessageRepository) ListAnnouncements(ctx context.Context) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("message_type = ?", model.MessageTypeAnnouncement).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SoftDeleteByAuthor hides a message only when the requester authored
// it; the affected-row count distinguishes not-found from not-yours.
func (r *MessageRepository) SoftDeleteByAuthor(ctx context.Context, id int64, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_deleted", true)
	return result.RowsAffected, result.Error
}

func (r *MessageRepository) SoftDeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("is_deleted = ?", false).
		Update("is_deleted", true).Error
}

func (r *MessageRepository) RedactAllByUser(ctx context.Context, userID uint, placeholder string) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("user_id = ?", userID).
		Update("message", placeholder).Error
}

func (r *MessageRepository) SetBody(ctx context.Context, id int64, body string, editedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"message":   body,
			"is_edited": true,
			"edited_at": editedAt,
		}).Error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
	"github.com/unitychat/unitychat/internal/repository"
	"github.com/unitychat/unitychat/utils/snowflake"
)

var (
	ErrMessageNotFound       = errors.New("message not found")
	ErrInvalidMessageContent = errors.New("invalid message content")
	ErrNotGuildMember        = errors.New("user is not a member of this guild")
)

const (
	maxMessageLength = 2000

	// AdminDeletedPlaceholder replaces a body redacted through the
	// privileged delete path; the row itself stays.
	AdminDeletedPlaceholder = "Deleted by admin!"
)

// BannedError rejects a post from a banned user, carrying the ban row
// for the structured 403 detail.
type BannedError struct {
	Ban *model.Ban
}

func (e *BannedError) Error() string {
	return "account is banned from sending messages"
}

// MutedError rejects a post from a muted user.
type MutedError struct {
	RemainingMinutes int
}

func (e *MutedError) Error() string {
	return fmt.Sprintf("account is muted for another %d minute(s)", e.RemainingMinutes)
}

// PostResult pairs the stored message with the author's updated stats
// so the client can refresh its XP display in the same round trip.
type PostResult struct {
	Message *model.MessageView `json:"message"`
	Stats   *Stats             `json:"user_stats"`
}

// IMessageService defines the interface for the message log
type IMessageService interface {
	Post(ctx context.Context, userID uint, body string, msgType model.MessageType) (*PostResult, error)
	List(ctx context.Context, limit int) ([]*model.MessageView, error)
	SoftDelete(ctx context.Context, id int64, requesterID uint) error
	AdminRedact(ctx context.Context, id int64, adminID uint) error
	Edit(ctx context.Context, id int64, newBody string) error
	React(ctx context.Context, id int64, userID uint, emoji string) ([]model.Reaction, error)
	Quote(ctx context.Context, originalID int64, quotedText, newBody string, userID uint) (*model.MessageView, error)
	ClearAll(ctx context.Context) error
	Announce(ctx context.Context, adminID uint, body string) (*model.Message, error)
	ListAnnouncements(ctx context.Context) ([]*model.Message, error)
	PostToGuild(ctx context.Context, userID, guildID uint, body string) (*model.MessageView, error)
	ListGuild(ctx context.Context, guildID, userID uint) ([]*model.MessageView, error)
}

type MessageService struct {
	messageRepo repository.IMessageRepository
	guildRepo   repository.IGuildRepository
	moderation  IModerationService
	xp          IXPService
	ids         *snowflake.Generator
}

func NewMessageService(
	messageRepo repository.IMessageRepository,
	guildRepo repository.IGuildRepository,
	moderation IModerationService,
	xp IXPService,
	ids *snowflake.Generator,
) IMessageService {
	return &MessageService{
		messageRepo: messageRepo,
		guildRepo:   guildRepo,
		moderation:  moderation,
		xp:          xp,
		ids:         ids,
	}
}

// Post appends a message after consulting the moderation ledger, then
// accrues experience keyed on body length. The moderation check and
// the insert are separate statements; a ban landing between them can
// still let this message through (known gap, inherited upstream).
func (s *MessageService) Post(ctx context.Context, userID uint, body string, msgType model.MessageType) (*PostResult, error) {
	if len(body) == 0 || len(body) > maxMessageLength {
		return nil, ErrInvalidMessageContent
	}
	if msgType == "" {
		msgType = model.MessageTypeText
	}

	status, err := s.moderation.IsBlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status.Banned {
		return nil, &BannedError{Ban: status.Ban}
	}
	if status.Muted {
		return nil, &MutedError{RemainingMinutes: status.RemainingMinutes}
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	msg := &model.Message{
		ID:     id,
		UserID: userID,
		Body:   body,
		Type:   msgType,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	stats, err := s.xp.Accrue(ctx, userID, len(body))
	if err != nil {
		return nil, fmt.Errorf("failed to accrue experience: %w", err)
	}

	view, err := s.messageRepo.FindView(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}

	return &PostResult{Message: view, Stats: stats}, nil
}

// List returns up to limit non-deleted messages ordered oldest-first
// for rendering. Soft-deleted rows stay in the store but never appear
// here.
func (s *MessageService) List(ctx context.Context, limit int) ([]*model.MessageView, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	views, err := s.messageRepo.ListLatest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	// The repository returns newest-first; the chat renders oldest-first.
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
	return views, nil
}

// SoftDelete hides a message through the ordinary path: only the
// original author qualifies. A missing row and a foreign author both
// come back as ErrMessageNotFound.
func (s *MessageService) SoftDelete(ctx context.Context, id int64, requesterID uint) error {
	affected, err := s.messageRepo.SoftDeleteByAuthor(ctx, id, requesterID)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// AdminRedact overwrites the body in place and marks the message
// edited, then announces the redaction. The row is preserved.
func (s *MessageService) AdminRedact(ctx context.Context, id int64, adminID uint) error {
	if _, err := s.findMessage(ctx, id); err != nil {
		return err
	}

	if err := s.messageRepo.SetBody(ctx, id, AdminDeletedPlaceholder, time.Now()); err != nil {
		return fmt.Errorf("failed to redact message: %w", err)
	}

	announceID, err := s.ids.NextID()
	if err != nil {
		return fmt.Errorf("failed to generate message id: %w", err)
	}
	system := &model.Message{
		ID:     announceID,
		UserID: adminID,
		Body:   "!System: A message was deleted by an admin!",
		Type:   model.MessageTypeSystem,
	}
	if err := s.messageRepo.Create(ctx, system); err != nil {
		return fmt.Errorf("failed to append system message: %w", err)
	}
	return nil
}

// Edit rewrites a message body and stamps it edited. Callers gate this
// behind the admin check.
func (s *MessageService) Edit(ctx context.Context, id int64, newBody string) error {
	if len(newBody) == 0 || len(newBody) > maxMessageLength {
		return ErrInvalidMessageContent
	}
	if _, err := s.findMessage(ctx, id); err != nil {
		return err
	}
	if err := s.messageRepo.SetBody(ctx, id, newBody, time.Now()); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// React toggles a (user, emoji) pair on the message's reaction set and
// returns the resulting set. Applying the same toggle twice restores
// the original set.
func (s *MessageService) React(ctx context.Context, id int64, userID uint, emoji string) ([]model.Reaction, error) {
	if emoji == "" {
		return nil, ErrInvalidMessageContent
	}

	msg, err := s.findMessage(ctx, id)
	if err != nil {
		return nil, err
	}

	found := -1
	for i, r := range msg.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			found = i
			break
		}
	}
	if found >= 0 {
		msg.Reactions = append(msg.Reactions[:found], msg.Reactions[found+1:]...)
	} else {
		msg.Reactions = append(msg.Reactions, model.Reaction{UserID: userID, Emoji: emoji})
	}

	if err := s.messageRepo.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save reactions: %w", err)
	}
	return msg.Reactions, nil
}

// Quote creates a new message with a back-reference to the original and
// a snapshot of its quoted text. The snapshot is never re-synced with
// later edits or deletes of the original.
func (s *MessageService) Quote(ctx context.Context, originalID int64, quotedText, newBody string, userID uint) (*model.MessageView, error) {
	if len(newBody) == 0 || len(newBody) > maxMessageLength {
		return nil, ErrInvalidMessageContent
	}

	if _, err := s.findMessage(ctx, originalID); err != nil {
		return nil, err
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	msg := &model.Message{
		ID:              id,
		UserID:          userID,
		Body:            newBody,
		Type:            model.MessageTypeText,
		QuotedMessageID: &originalID,
		QuotedText:      quotedText,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	view, err := s.messageRepo.FindView(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	return view, nil
}

// ClearAll soft-deletes every message unconditionally. Rows remain for
// audit; the visible log drops to zero.
func (s *MessageService) ClearAll(ctx context.Context) error {
	if err := s.messageRepo.SoftDeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}

// Announce posts an announcement-type message. Admin-authored, so it
// skips the ban/mute precondition entirely.
func (s *MessageService) Announce(ctx context.Context, adminID uint, body string) (*model.Message, error) {
	if len(body) == 0 || len(body) > maxMessageLength {
		return nil, ErrInvalidMessageContent
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}
	msg := &model.Message{
		ID:     id,
		UserID: adminID,
		Body:   body,
		Type:   model.MessageTypeAnnouncement,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save announcement: %w", err)
	}
	return msg, nil
}

func (s *MessageService) ListAnnouncements(ctx context.Context) ([]*model.Message, error) {
	return s.messageRepo.ListAnnouncements(ctx)
}

// PostToGuild appends a message to a guild channel. Membership is
// checked before the write.
func (s *MessageService) PostToGuild(ctx context.Context, userID, guildID uint, body string) (*model.MessageView, error) {
	if len(body) == 0 || len(body) > maxMessageLength {
		return nil, ErrInvalidMessageContent
	}

	if err := s.requireMembership(ctx, guildID, userID); err != nil {
		return nil, err
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}
	msg := &model.Message{
		ID:      id,
		UserID:  userID,
		GuildID: &guildID,
		Body:    body,
		Type:    model.MessageTypeText,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	view, err := s.messageRepo.FindView(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	return view, nil
}

// ListGuild returns a guild's messages oldest-first, after a membership
// check.
func (s *MessageService) ListGuild(ctx context.Context, guildID, userID uint) ([]*model.MessageView, error) {
	if err := s.requireMembership(ctx, guildID, userID); err != nil {
		return nil, err
	}
	views, err := s.messageRepo.ListGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve guild messages: %w", err)
	}
	return views, nil
}

func (s *MessageService) requireMembership(ctx context.Context, guildID, userID uint) error {
	isMember, err := s.guildRepo.IsMember(ctx, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to check guild membership: %w", err)
	}
	if !isMember {
		return ErrNotGuildMember
	}
	return nil
}

func (s *MessageService) findMessage(ctx context.Context, id int64) (*model.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return msg, nil
}

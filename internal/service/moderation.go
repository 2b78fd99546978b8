package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
	"github.com/unitychat/unitychat/internal/repository"
	"github.com/unitychat/unitychat/utils/snowflake"
)

var (
	ErrNotBanned     = errors.New("user is not currently banned")
	ErrAlreadyBanned = errors.New("user is already banned")
)

const (
	// BannedPlaceholder overwrites every prior message body of a banned
	// user. The redaction is irreversible on purpose: retention loses to
	// abuse mitigation here.
	BannedPlaceholder = "User Banned!"

	// DefaultMuteMinutes applies when the requested duration is missing
	// or unparsable.
	DefaultMuteMinutes = 5
)

// BlockStatus is the moderation verdict consulted before every post.
type BlockStatus struct {
	Banned           bool       `json:"banned"`
	Ban              *model.Ban `json:"ban_info,omitempty"`
	Muted            bool       `json:"muted"`
	RemainingMinutes int        `json:"remaining_minutes,omitempty"`
}

// IModerationService defines the interface for the ban/mute ledger
type IModerationService interface {
	IsBlocked(ctx context.Context, userID uint) (*BlockStatus, error)
	Ban(ctx context.Context, username, reason string, adminID uint) (*model.Ban, error)
	Unban(ctx context.Context, username string, adminID uint) error
	Mute(ctx context.Context, username string, durationMinutes int, adminID uint) (*model.Mute, error)
	Unmute(ctx context.Context, username string, adminID uint) error
	ListBans(ctx context.Context) ([]*model.BanView, error)
	ListMutes(ctx context.Context) ([]*model.MuteView, error)
}

type ModerationService struct {
	modRepo     repository.IModerationRepository
	userRepo    repository.IUserRepository
	messageRepo repository.IMessageRepository
	ids         *snowflake.Generator
}

func NewModerationService(
	modRepo repository.IModerationRepository,
	userRepo repository.IUserRepository,
	messageRepo repository.IMessageRepository,
	ids *snowflake.Generator,
) IModerationService {
	return &ModerationService{
		modRepo:     modRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		ids:         ids,
	}
}

// IsBlocked reports whether a user may post: an active ban wins over a
// mute; a mute counts only while unexpired. Remaining time is rounded
// up to whole minutes.
func (s *ModerationService) IsBlocked(ctx context.Context, userID uint) (*BlockStatus, error) {
	status := &BlockStatus{}

	ban, err := s.modRepo.FindActiveBan(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check ban: %w", err)
	}
	if ban != nil {
		status.Banned = true
		status.Ban = ban
		return status, nil
	}

	now := time.Now()
	mute, err := s.modRepo.FindEffectiveMute(ctx, userID, now)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check mute: %w", err)
	}
	if mute != nil {
		status.Muted = true
		status.RemainingMinutes = int(math.Ceil(mute.ExpiresAt.Sub(now).Minutes()))
	}

	return status, nil
}

// Ban records an active ban, forces the user offline, redacts all of
// their prior messages and announces the ban with a system message.
// A user carries at most one active ban: banning someone who already has
// one fails with ErrAlreadyBanned instead of stacking a second row.
// The statements are unsequenced: a mid-sequence store failure can
// leave the ban recorded without its announcement (known gap, matches
// the upstream behavior).
func (s *ModerationService) Ban(ctx context.Context, username, reason string, adminID uint) (*model.Ban, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	existing, err := s.modRepo.FindActiveBan(ctx, user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check ban: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyBanned
	}

	ban := &model.Ban{
		UserID:   user.ID,
		BannedBy: adminID,
		Reason:   reason,
		IsActive: true,
	}
	if err := s.modRepo.CreateBan(ctx, ban); err != nil {
		return nil, fmt.Errorf("failed to record ban: %w", err)
	}

	if err := s.userRepo.SetOffline(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to set user offline: %w", err)
	}

	if err := s.messageRepo.RedactAllByUser(ctx, user.ID, BannedPlaceholder); err != nil {
		return nil, fmt.Errorf("failed to redact messages: %w", err)
	}

	text := fmt.Sprintf("!System: %s was banned! Reason: %s", username, reason)
	if err := s.systemMessage(ctx, adminID, text); err != nil {
		return nil, err
	}

	return ban, nil
}

// Unban deactivates the user's active ban and records the revocation
// time. Fails with ErrNotBanned when no active ban exists.
func (s *ModerationService) Unban(ctx context.Context, username string, adminID uint) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}

	affected, err := s.modRepo.DeactivateBans(ctx, user.ID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke ban: %w", err)
	}
	if affected == 0 {
		return ErrNotBanned
	}

	text := fmt.Sprintf("!System: %s was unbanned!", username)
	return s.systemMessage(ctx, adminID, text)
}

// Mute silences a user for the given number of minutes (default 5).
// Existing mutes are not checked; with several concurrent rows the
// effective mute is the latest by expiry.
func (s *ModerationService) Mute(ctx context.Context, username string, durationMinutes int, adminID uint) (*model.Mute, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if durationMinutes <= 0 {
		durationMinutes = DefaultMuteMinutes
	}

	mute := &model.Mute{
		UserID:          user.ID,
		MutedBy:         adminID,
		DurationMinutes: durationMinutes,
		ExpiresAt:       time.Now().Add(time.Duration(durationMinutes) * time.Minute),
		IsActive:        true,
	}
	if err := s.modRepo.CreateMute(ctx, mute); err != nil {
		return nil, fmt.Errorf("failed to record mute: %w", err)
	}

	text := fmt.Sprintf("!System: %s was muted for %d minute(s)!", username, durationMinutes)
	if err := s.systemMessage(ctx, adminID, text); err != nil {
		return nil, err
	}

	return mute, nil
}

// Unmute deactivates all of the user's active mutes.
func (s *ModerationService) Unmute(ctx context.Context, username string, adminID uint) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}

	if _, err := s.modRepo.DeactivateMutes(ctx, user.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to lift mute: %w", err)
	}

	text := fmt.Sprintf("!System: %s was unmuted!", username)
	return s.systemMessage(ctx, adminID, text)
}

func (s *ModerationService) ListBans(ctx context.Context) ([]*model.BanView, error) {
	return s.modRepo.ListActiveBans(ctx)
}

func (s *ModerationService) ListMutes(ctx context.Context) ([]*model.MuteView, error) {
	return s.modRepo.ListActiveMutes(ctx, time.Now())
}

func (s *ModerationService) findUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *ModerationService) systemMessage(ctx context.Context, adminID uint, text string) error {
	id, err := s.ids.NextID()
	if err != nil {
		return fmt.Errorf("failed to generate message id: %w", err)
	}
	msg := &model.Message{
		ID:     id,
		UserID: adminID,
		Body:   text,
		Type:   model.MessageTypeSystem,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to append system message: %w", err)
	}
	return nil
}

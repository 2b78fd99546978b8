package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
	"github.com/unitychat/unitychat/internal/repository"
)

var (
	ErrGuildNotFound  = errors.New("guild not found")
	ErrAlreadyInGuild = errors.New("user is already a member of a guild")
)

// CreateGuildRequest represents a request to create a new guild
type CreateGuildRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=50"`
	Description string `json:"description" binding:"max=500"`
}

// IGuildService defines the interface for guild management operations
type IGuildService interface {
	Create(ctx context.Context, userID uint, name, description string) (*model.Guild, error)
	Get(ctx context.Context, guildID uint) (*model.GuildView, error)
	ListForUser(ctx context.Context, userID uint) ([]*model.GuildView, error)
	Invite(ctx context.Context, guildID uint, username string) error
	Join(ctx context.Context, guildID, userID uint) error
	Leave(ctx context.Context, guildID, userID uint) error
}

type GuildService struct {
	guildRepo repository.IGuildRepository
	userRepo  repository.IUserRepository
}

func NewGuildService(guildRepo repository.IGuildRepository, userRepo repository.IUserRepository) IGuildService {
	return &GuildService{
		guildRepo: guildRepo,
		userRepo:  userRepo,
	}
}

// Create makes a new guild with the caller as creator and first member.
// A user can belong to only one guild, so a caller who is already a
// member anywhere is rejected.
func (s *GuildService) Create(ctx context.Context, userID uint, name, description string) (*model.Guild, error) {
	inGuild, err := s.guildRepo.MemberOfAnyGuild(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check guild membership: %w", err)
	}
	if inGuild {
		return nil, ErrAlreadyInGuild
	}

	guild := &model.Guild{
		Name:        name,
		Description: description,
		CreatorID:   userID,
	}
	if err := s.guildRepo.Create(ctx, guild); err != nil {
		return nil, fmt.Errorf("failed to create guild: %w", err)
	}

	member := &model.GuildMember{GuildID: guild.ID, UserID: userID}
	if err := s.guildRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add creator to guild: %w", err)
	}

	return guild, nil
}

func (s *GuildService) Get(ctx context.Context, guildID uint) (*model.GuildView, error) {
	view, err := s.guildRepo.FindView(ctx, guildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuildNotFound
		}
		return nil, fmt.Errorf("failed to find guild: %w", err)
	}
	return view, nil
}

func (s *GuildService) ListForUser(ctx context.Context, userID uint) ([]*model.GuildView, error) {
	views, err := s.guildRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	return views, nil
}

// Invite adds a user to a guild by username. The invitee must not
// already belong to any guild.
func (s *GuildService) Invite(ctx context.Context, guildID uint, username string) error {
	if _, err := s.guildRepo.FindByID(ctx, guildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuildNotFound
		}
		return fmt.Errorf("failed to find guild: %w", err)
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	return s.addMember(ctx, guildID, user.ID)
}

// Join adds the caller to a guild, subject to the single-guild rule.
func (s *GuildService) Join(ctx context.Context, guildID, userID uint) error {
	if _, err := s.guildRepo.FindByID(ctx, guildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuildNotFound
		}
		return fmt.Errorf("failed to find guild: %w", err)
	}
	return s.addMember(ctx, guildID, userID)
}

func (s *GuildService) Leave(ctx context.Context, guildID, userID uint) error {
	if err := s.guildRepo.RemoveMember(ctx, guildID, userID); err != nil {
		return fmt.Errorf("failed to leave guild: %w", err)
	}
	return nil
}

func (s *GuildService) addMember(ctx context.Context, guildID, userID uint) error {
	inGuild, err := s.guildRepo.MemberOfAnyGuild(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check guild membership: %w", err)
	}
	if inGuild {
		return ErrAlreadyInGuild
	}

	member := &model.GuildMember{GuildID: guildID, UserID: userID}
	if err := s.guildRepo.AddMember(ctx, member); err != nil {
		return fmt.Errorf("failed to add guild member: %w", err)
	}
	return nil
}

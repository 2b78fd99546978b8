package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
	"github.com/unitychat/unitychat/internal/repository"
)

// UpdateSettingsRequest carries the display preferences a user may
// change about themselves.
type UpdateSettingsRequest struct {
	DisplayName   string `json:"display_name" binding:"max=64"`
	CustomStatus  string `json:"custom_status" binding:"max=128"`
	Theme         string `json:"theme" binding:"max=32"`
	FontSize      int    `json:"font_size"`
	Notifications bool   `json:"notifications"`
}

// IUserService defines the interface for user profile operations
type IUserService interface {
	UpdateSettings(ctx context.Context, userID uint, req *UpdateSettingsRequest) error
	OnlineCount(ctx context.Context) (int64, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type UserService struct {
	userRepo repository.IUserRepository
	tagRepo  repository.ITagRepository
}

func NewUserService(userRepo repository.IUserRepository, tagRepo repository.ITagRepository) IUserService {
	return &UserService{
		userRepo: userRepo,
		tagRepo:  tagRepo,
	}
}

// UpdateSettings writes profile fields onto the user row and upserts
// the settings row in one pass.
func (s *UserService) UpdateSettings(ctx context.Context, userID uint, req *UpdateSettingsRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	user.CustomStatus = req.CustomStatus
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	settings := &model.UserSettings{
		UserID:               userID,
		Theme:                req.Theme,
		FontSize:             req.FontSize,
		NotificationsEnabled: req.Notifications,
	}
	if err := s.userRepo.UpsertSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// OnlineCount reports how many users are currently flagged online.
func (s *UserService) OnlineCount(ctx context.Context) (int64, error) {
	count, err := s.userRepo.CountOnline(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count online users: %w", err)
	}
	return count, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

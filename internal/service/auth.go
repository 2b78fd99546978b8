package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
	"github.com/unitychat/unitychat/internal/repository"
	"github.com/unitychat/unitychat/middleware/jwt"
)

var (
	ErrUserAlreadyExists  = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=20"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=64"`
	DisplayName string `json:"display_name" binding:"max=64"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned for both registration and login
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Presence marks users online in a TTL store. Implementations may be
// absent (nil) in tests and in setups without redis.
type Presence interface {
	SetUserOnline(ctx context.Context, userID uint, ttl time.Duration) error
	RemoveUserOnline(ctx context.Context, userID uint) error
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, userID uint) error
}

type AuthService struct {
	userRepo     repository.IUserRepository
	tokenManager *jwt.TokenManager
	presence     Presence
}

func NewAuthService(userRepo repository.IUserRepository, tokenManager *jwt.TokenManager, presence Presence) IAuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		presence:     presence,
	}
}

// Register creates a new account. Username and email must both be
// unused; the password is stored only as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		Level:        1,
		NextLevelXP:  ThresholdForLevel(1),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokenManager.GenerateToken(user.ID, user.Username, user.DisplayName, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials, marks the user online and issues a token
// carrying id, username, display name and the admin flag.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := verifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.IsOnline = true
	user.LastSeen = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if s.presence != nil {
		// Presence is advisory; a redis failure must not block login.
		_ = s.presence.SetUserOnline(ctx, user.ID, time.Hour)
	}

	token, err := s.tokenManager.GenerateToken(user.ID, user.Username, user.DisplayName, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// Logout clears the online flag and drops the presence key. The token
// itself stays valid until expiry; only the visible state changes.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.userRepo.SetOffline(ctx, userID); err != nil {
		return fmt.Errorf("failed to set user offline: %w", err)
	}
	if s.presence != nil {
		_ = s.presence.RemoveUserOnline(ctx, userID)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

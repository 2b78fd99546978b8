package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/repository"
)

// The original system computed experience in a stored procedure whose
// only documented behavior was "longer message, more xp". The concrete
// curve here keeps that contract and nothing else:
//
//	gain(n)      = 10 + min(n, 200)/4      (monotonic in message length)
//	threshold(l) = 100 * l * l             (next-level requirement)
//
// Gains are strictly positive, so experience never decreases and levels
// never regress.
const (
	xpBaseGain       = 10
	xpLengthCap      = 200
	xpLengthDivisor  = 4
	levelCurveFactor = 100
)

// MessageGain returns the experience earned for a message of the given
// length.
func MessageGain(messageLength int) int {
	if messageLength < 0 {
		messageLength = 0
	}
	if messageLength > xpLengthCap {
		messageLength = xpLengthCap
	}
	return xpBaseGain + messageLength/xpLengthDivisor
}

// ThresholdForLevel returns the experience required to leave the given
// level.
func ThresholdForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return levelCurveFactor * level * level
}

// Stats is the level/xp snapshot returned to the client after accrual.
type Stats struct {
	Level       int `json:"level"`
	Experience  int `json:"experience"`
	NextLevelXP int `json:"next_level_xp"`
}

// IXPService defines the interface for experience accrual
type IXPService interface {
	Accrue(ctx context.Context, userID uint, messageLength int) (*Stats, error)
	StatsFor(ctx context.Context, userID uint) (*Stats, error)
}

type XPService struct {
	userRepo repository.IUserRepository
}

func NewXPService(userRepo repository.IUserRepository) IXPService {
	return &XPService{userRepo: userRepo}
}

// Accrue adds experience for one message and applies any level-ups.
// Experience carries over the threshold; a single large gain can cross
// several levels.
func (s *XPService) Accrue(ctx context.Context, userID uint, messageLength int) (*Stats, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.Experience += MessageGain(messageLength)
	for user.Experience >= user.NextLevelXP {
		user.Level++
		user.NextLevelXP = ThresholdForLevel(user.Level)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}

	return &Stats{
		Level:       user.Level,
		Experience:  user.Experience,
		NextLevelXP: user.NextLevelXP,
	}, nil
}

// StatsFor returns the current level/xp snapshot without accruing.
func (s *XPService) StatsFor(ctx context.Context, userID uint) (*Stats, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &Stats{
		Level:       user.Level,
		Experience:  user.Experience,
		NextLevelXP: user.NextLevelXP,
	}, nil
}

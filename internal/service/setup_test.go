package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unitychat/unitychat/internal/model"
	"github.com/unitychat/unitychat/internal/repository"
	"github.com/unitychat/unitychat/internal/storage"
	"github.com/unitychat/unitychat/middleware/jwt"
	"github.com/unitychat/unitychat/utils/snowflake"
)

// fixture bundles every service over one throwaway sqlite database so a
// test can drive the full stack without postgres.
type fixture struct {
	db *gorm.DB

	userRepo    repository.IUserRepository
	messageRepo repository.IMessageRepository

	auth       IAuthService
	moderation IModerationService
	messages   IMessageService
	xp         IXPService
	commands   ICommandService
	guilds     IGuildService
	users      IUserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "chat.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	ids, err := snowflake.NewGenerator(1)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	moderationRepo := repository.NewModerationRepository(db)
	guildRepo := repository.NewGuildRepository(db)
	tagRepo := repository.NewTagRepository(db)

	xp := NewXPService(userRepo)
	moderation := NewModerationService(moderationRepo, userRepo, messageRepo, ids)
	messages := NewMessageService(messageRepo, guildRepo, moderation, xp, ids)

	return &fixture{
		db:          db,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		auth:        NewAuthService(userRepo, jwt.NewTokenManager("test-secret", 1), nil),
		moderation:  moderation,
		messages:    messages,
		xp:          xp,
		commands:    NewCommandService(moderation, messages),
		guilds:      NewGuildService(guildRepo, userRepo),
		users:       NewUserService(userRepo, tagRepo),
	}
}

// createUser inserts an account directly, bypassing registration.
func (f *fixture) createUser(t *testing.T, username string, isAdmin bool) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@test.local",
		PasswordHash: "x",
		DisplayName:  username,
		IsAdmin:      isAdmin,
		Level:        1,
		NextLevelXP:  ThresholdForLevel(1),
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

// post sends a plain text message and fails the test on any error.
func (f *fixture) post(t *testing.T, userID uint, body string) *model.MessageView {
	t.Helper()

	result, err := f.messages.Post(context.Background(), userID, body, model.MessageTypeText)
	require.NoError(t, err)
	return result.Message
}

package main

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unitychat/unitychat/config"
	"github.com/unitychat/unitychat/internal/api"
	"github.com/unitychat/unitychat/internal/handler"
	"github.com/unitychat/unitychat/internal/repository"
	"github.com/unitychat/unitychat/internal/service"
	"github.com/unitychat/unitychat/internal/storage"
	"github.com/unitychat/unitychat/middleware/jwt"
	logger "github.com/unitychat/unitychat/middleware/log"
	"github.com/unitychat/unitychat/utils/snowflake"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLogger.Close()

	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	db, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		log.Fatalf("failed to init postgres: %v", err)
	}
	if err := storage.SeedTags(db); err != nil {
		log.Fatalf("failed to seed tags: %v", err)
	}

	redisClient, err := storage.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("failed to init redis: %v", err)
	}
	defer redisClient.Close()

	ids, err := snowflake.NewGenerator(1)
	if err != nil {
		log.Fatalf("failed to init id generator: %v", err)
	}

	tokenManager := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	moderationRepo := repository.NewModerationRepository(db)
	guildRepo := repository.NewGuildRepository(db)
	tagRepo := repository.NewTagRepository(db)

	xpService := service.NewXPService(userRepo)
	moderationService := service.NewModerationService(moderationRepo, userRepo, messageRepo, ids)
	messageService := service.NewMessageService(messageRepo, guildRepo, moderationService, xpService, ids)
	commandService := service.NewCommandService(moderationService, messageService)
	authService := service.NewAuthService(userRepo, tokenManager, redisClient)
	guildService := service.NewGuildService(guildRepo, userRepo)
	userService := service.NewUserService(userRepo, tagRepo)

	authHandler := handler.NewAuthHandler(authService)
	messageHandler := handler.NewMessageHandler(messageService)
	userHandler := handler.NewUserHandler(userService, xpService, messageService)
	adminHandler := handler.NewAdminHandler(commandService, moderationService, messageService, userService)
	guildHandler := handler.NewGuildHandler(guildService, messageService)

	mm := api.NewMiddlewareManager(tokenManager, redisClient, appLogger.Logger, &cfg.RateLimit)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	api.RegisterRoutes(r, mm, db, authHandler, messageHandler, userHandler, adminHandler, guildHandler)

	appLogger.Info("starting server on port " + strconv.Itoa(cfg.Server.Port))
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

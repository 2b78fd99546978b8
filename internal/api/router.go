package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/handler"
)

// RegisterRoutes wires every endpoint onto the engine. The liveness and
// diagnostic endpoints sit outside the /api group and need no token.
func RegisterRoutes(
	r *gin.Engine,
	mm *MiddlewareManager,
	db *gorm.DB,
	authHandler *handler.AuthHandler,
	messageHandler *handler.MessageHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	guildHandler *handler.GuildHandler,
) {
	r.Use(mm.Recovery(), mm.Logger(), mm.CORS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Connectivity diagnostic. The one place raw store errors go to the
	// client, so a broken deployment is debuggable from curl.
	r.GET("/test", func(c *gin.Context) {
		var now time.Time
		if err := db.WithContext(c.Request.Context()).Raw("SELECT NOW()").Scan(&now).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db_time": now})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", mm.RateLimitByEndpoint("register"), authHandler.Register)
		auth.POST("/login", mm.RateLimitByEndpoint("login"), authHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(mm.JWTAuth(), mm.RateLimitByEndpoint("api"))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		messages := protected.Group("/messages")
		{
			messages.GET("", messageHandler.List)
			messages.POST("", mm.RateLimitByEndpoint("message"), messageHandler.Send)
			messages.DELETE("/:id", messageHandler.Delete)
			messages.POST("/:id/react", messageHandler.React)
			messages.POST("/quote", mm.RateLimitByEndpoint("message"), messageHandler.Quote)
		}

		users := protected.Group("/users")
		{
			users.GET("/online", userHandler.OnlineCount)
			users.POST("/settings", userHandler.UpdateSettings)
			users.GET("/stats", userHandler.Stats)
		}

		protected.GET("/tags", userHandler.Tags)
		protected.GET("/announcements", userHandler.Announcements)

		guilds := protected.Group("/guilds")
		{
			guilds.GET("", guildHandler.List)
			guilds.POST("", guildHandler.Create)
			guilds.GET("/:id", guildHandler.Get)
			guilds.POST("/:id/invite", guildHandler.Invite)
			guilds.POST("/:id/join", guildHandler.Join)
			guilds.POST("/:id/leave", guildHandler.Leave)
			guilds.GET("/:id/messages", guildHandler.Messages)
			guilds.POST("/:id/messages", mm.RateLimitByEndpoint("message"), guildHandler.SendMessage)
		}

		admin := protected.Group("/admin")
		admin.Use(mm.AdminOnly())
		{
			admin.POST("/command", adminHandler.Command)
			admin.GET("/bans", adminHandler.ListBans)
			admin.GET("/mutes", adminHandler.ListMutes)
			admin.GET("/users", adminHandler.ListUsers)
			admin.DELETE("/messages/:id", adminHandler.RedactMessage)
		}
	}
}

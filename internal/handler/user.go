package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unitychat/unitychat/internal/model"
	"github.com/unitychat/unitychat/internal/service"
)

type UserHandler struct {
	userService    service.IUserService
	xpService      service.IXPService
	messageService service.IMessageService
}

func NewUserHandler(userService service.IUserService, xpService service.IXPService, messageService service.IMessageService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		xpService:      xpService,
		messageService: messageService,
	}
}

// OnlineCount returns how many users are currently online.
func (h *UserHandler) OnlineCount(c *gin.Context) {
	count, err := h.userService.OnlineCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count online users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// UpdateSettings writes the caller's display preferences.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	if err := h.userService.UpdateSettings(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "settings updated"})
}

// Stats returns the caller's level, experience, next threshold and the
// level tag they currently wear.
func (h *UserHandler) Stats(c *gin.Context) {
	userID := c.GetUint("user_id")
	stats, err := h.xpService.StatsFor(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		}
		return
	}

	tags, err := h.userService.ListTags(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"level":         stats.Level,
		"experience":    stats.Experience,
		"next_level_xp": stats.NextLevelXP,
		"tag":           model.TagForLevel(tags, stats.Level),
	})
}

// Tags lists the level tags ordered by threshold.
func (h *UserHandler) Tags(c *gin.Context) {
	tags, err := h.userService.ListTags(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tags"})
		return
	}
	c.JSON(http.StatusOK, tags)
}

// Announcements lists announcement messages newest-first.
func (h *UserHandler) Announcements(c *gin.Context) {
	messages, err := h.messageService.ListAnnouncements(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load announcements"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

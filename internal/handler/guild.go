package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unitychat/unitychat/internal/service"
)

type GuildHandler struct {
	guildService   service.IGuildService
	messageService service.IMessageService
}

func NewGuildHandler(guildService service.IGuildService, messageService service.IMessageService) *GuildHandler {
	return &GuildHandler{
		guildService:   guildService,
		messageService: messageService,
	}
}

// InviteRequest names the user to add to a guild.
type InviteRequest struct {
	Username string `json:"username" binding:"required"`
}

// GuildMessageRequest is the body for posting into a guild channel.
type GuildMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *GuildHandler) List(c *gin.Context) {
	userID := c.GetUint("user_id")
	guilds, err := h.guildService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list guilds"})
		return
	}
	c.JSON(http.StatusOK, guilds)
}

func (h *GuildHandler) Create(c *gin.Context) {
	var req service.CreateGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	guild, err := h.guildService.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyInGuild):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create guild"})
		}
		return
	}

	c.JSON(http.StatusCreated, guild)
}

func (h *GuildHandler) Get(c *gin.Context) {
	guildID, ok := h.guildID(c)
	if !ok {
		return
	}

	guild, err := h.guildService.Get(c.Request.Context(), guildID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGuildNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load guild"})
		}
		return
	}

	c.JSON(http.StatusOK, guild)
}

func (h *GuildHandler) Invite(c *gin.Context) {
	guildID, ok := h.guildID(c)
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.guildService.Invite(c.Request.Context(), guildID, req.Username); err != nil {
		switch {
		case errors.Is(err, service.ErrGuildNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyInGuild):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invite user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GuildHandler) Join(c *gin.Context) {
	guildID, ok := h.guildID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	if err := h.guildService.Join(c.Request.Context(), guildID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrGuildNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyInGuild):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join guild"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GuildHandler) Leave(c *gin.Context) {
	guildID, ok := h.guildID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	if err := h.guildService.Leave(c.Request.Context(), guildID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave guild"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GuildHandler) Messages(c *gin.Context) {
	guildID, ok := h.guildID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	messages, err := h.messageService.ListGuild(c.Request.Context(), guildID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotGuildMember):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load guild messages"})
		}
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *GuildHandler) SendMessage(c *gin.Context) {
	guildID, ok := h.guildID(c)
	if !ok {
		return
	}

	var req GuildMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	view, err := h.messageService.PostToGuild(c.Request.Context(), userID, guildID, req.Message)
	if err != nil {
		var bannedErr *service.BannedError
		var mutedErr *service.MutedError
		switch {
		case errors.Is(err, service.ErrNotGuildMember):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.As(err, &bannedErr):
			c.JSON(http.StatusForbidden, gin.H{"error": "you are banned", "ban_info": bannedErr.Ban})
		case errors.As(err, &mutedErr):
			c.JSON(http.StatusForbidden, gin.H{"error": "you are muted", "remaining_minutes": mutedErr.RemainingMinutes})
		case errors.Is(err, service.ErrInvalidMessageContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": view})
}

func (h *GuildHandler) guildID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
		return 0, false
	}
	return uint(id), true
}

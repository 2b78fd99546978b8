package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unitychat/unitychat/internal/service"
)

type AdminHandler struct {
	commandService    service.ICommandService
	moderationService service.IModerationService
	messageService    service.IMessageService
	userService       service.IUserService
}

func NewAdminHandler(
	commandService service.ICommandService,
	moderationService service.IModerationService,
	messageService service.IMessageService,
	userService service.IUserService,
) *AdminHandler {
	return &AdminHandler{
		commandService:    commandService,
		moderationService: moderationService,
		messageService:    messageService,
		userService:       userService,
	}
}

// CommandRequest is the POST /admin/command body.
type CommandRequest struct {
	Command string                `json:"command" binding:"required"`
	Params  service.CommandParams `json:"params"`
}

// Command parses and dispatches an admin slash-command. The admin gate
// runs in middleware before this handler.
func (h *AdminHandler) Command(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd, err := service.ParseCommand(req.Command, req.Params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.GetUint("user_id")
	confirmation, err := h.commandService.Dispatch(c.Request.Context(), adminID, cmd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotBanned),
			errors.Is(err, service.ErrAlreadyBanned),
			errors.Is(err, service.ErrInvalidMessageContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "command failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": confirmation})
}

// ListBans returns the active bans with usernames attached.
func (h *AdminHandler) ListBans(c *gin.Context) {
	bans, err := h.moderationService.ListBans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bans"})
		return
	}
	c.JSON(http.StatusOK, bans)
}

// ListMutes returns the active, unexpired mutes.
func (h *AdminHandler) ListMutes(c *gin.Context) {
	mutes, err := h.moderationService.ListMutes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list mutes"})
		return
	}
	c.JSON(http.StatusOK, mutes)
}

// ListUsers returns every account for the admin panel.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// RedactMessage overwrites a message body through the privileged path.
func (h *AdminHandler) RedactMessage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	adminID := c.GetUint("user_id")
	if err := h.messageService.AdminRedact(c.Request.Context(), id, adminID); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

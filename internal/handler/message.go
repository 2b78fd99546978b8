package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unitychat/unitychat/internal/model"
	"github.com/unitychat/unitychat/internal/service"
)

type MessageHandler struct {
	messageService service.IMessageService
}

func NewMessageHandler(messageService service.IMessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessageRequest is the POST /messages body.
type SendMessageRequest struct {
	Message     string            `json:"message" binding:"required"`
	MessageType model.MessageType `json:"message_type"`
}

// ReactRequest is the POST /messages/:id/react body.
type ReactRequest struct {
	Reaction string `json:"reaction" binding:"required"`
}

// QuoteRequest is the POST /messages/quote body.
type QuoteRequest struct {
	OriginalMessageID int64  `json:"original_message_id" binding:"required"`
	QuotedText        string `json:"quoted_text"`
	NewMessage        string `json:"new_message" binding:"required"`
}

// List returns the latest non-deleted messages oldest-first.
func (h *MessageHandler) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := h.messageService.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Send posts a message, subject to the moderation ledger.
func (h *MessageHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	result, err := h.messageService.Post(c.Request.Context(), userID, req.Message, req.MessageType)
	if err != nil {
		var banned *service.BannedError
		var muted *service.MutedError
		switch {
		case errors.As(err, &banned):
			c.JSON(http.StatusForbidden, gin.H{
				"error":    banned.Error(),
				"ban_info": banned.Ban,
			})
		case errors.As(err, &muted):
			c.JSON(http.StatusForbidden, gin.H{
				"error":             muted.Error(),
				"remaining_minutes": muted.RemainingMinutes,
			})
		case errors.Is(err, service.ErrInvalidMessageContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Delete soft-deletes the caller's own message.
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetUint("user_id")
	if err := h.messageService.SoftDelete(c.Request.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found or not yours to delete"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

// React toggles a reaction on a message.
func (h *MessageHandler) React(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	reactions, err := h.messageService.React(c.Request.Context(), id, userID, req.Reaction)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidMessageContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process reaction"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reactions": reactions})
}

// Quote posts a new message quoting an existing one.
func (h *MessageHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	msg, err := h.messageService.Quote(c.Request.Context(), req.OriginalMessageID, req.QuotedText, req.NewMessage, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "quoted message not found"})
		case errors.Is(err, service.ErrInvalidMessageContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to quote message"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg})
}

package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"vanish-chat/internal/observability"
	"vanish-chat/internal/repositories"
	"vanish-chat/internal/retention"
	"vanish-chat/internal/telemetry"
)

const maxContentLength = 10000

// MessageHandler manages the message lifecycle: send, list, edit, regret
// delete, read-mark and pin.
type MessageHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	emitter  *telemetry.EventEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository, emitter *telemetry.EventEmitter) *MessageHandler {
	return &MessageHandler{
		rooms:    rooms,
		messages: messages,
		emitter:  emitter,
	}
}

// SendMessage stores a message with a fixed 10-minute self-destruct window.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		RoomID         string `json:"roomId"`
		Content        string `json:"content"`
		SenderNickname string `json:"senderNickname"`
		SenderAvatar   string `json:"senderAvatar"`
		IsEncrypted    bool   `json:"isEncrypted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content cannot be empty"})
		return
	}
	// Characters, not bytes, so multibyte content gets the full limit.
	if utf8.RuneCountInString(content) > maxContentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content too long (max 10000 characters)"})
		return
	}
	if req.RoomID == "" || req.SenderNickname == "" || req.SenderAvatar == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.rooms.GetActiveRoom(ctx, req.RoomID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat room not found or expired"})
		return
	}

	expiresAt := time.Now().Add(retention.MessageTTL)
	id, err := h.messages.CreateMessage(ctx, req.RoomID, content, req.SenderNickname, req.SenderAvatar, req.IsEncrypted, expiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create message"})
		return
	}

	observability.IncMessageSent()
	h.emitter.Emit(ctx, "message_sent", requestIDFromContext(c), req.RoomID, map[string]any{
		"message_id": id,
		"encrypted":  req.IsEncrypted,
	})

	c.JSON(http.StatusCreated, gin.H{"messageId": id})
}

// GetMessages purges expired messages, then returns the room's visible
// messages in chronological order.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	roomID := c.Param("roomId")

	ctx := c.Request.Context()
	if _, err := h.rooms.GetActiveRoom(ctx, roomID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat room not found or expired"})
		return
	}

	if purged, err := h.messages.PurgeExpiredMessages(ctx); err == nil {
		observability.AddPurgedRows("messages", purged)
	}

	msgs, err := h.messages.ListVisible(ctx, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// EditMessage rewrites a message within the 30-second edit window,
// preserving the pristine content on the first edit.
func (h *MessageHandler) EditMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	var req struct {
		NewContent  string `json:"newContent"`
		IsEncrypted *bool  `json:"isEncrypted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(req.NewContent)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content cannot be empty"})
		return
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content too long (max 10000 characters)"})
		return
	}

	ctx := c.Request.Context()
	msg, err := h.messages.GetLive(ctx, messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found or expired"})
		return
	}

	if err := retention.CanEdit(msg, time.Now()); err != nil {
		switch {
		case errors.Is(err, retention.ErrMessageGone):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found or expired"})
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "message can only be edited within 30 seconds of sending"})
		}
		return
	}

	// Encryption is sticky: once a message is ciphertext it stays flagged
	// unless the edit explicitly re-encrypts.
	encrypted := msg.IsEncrypted || (req.IsEncrypted != nil && *req.IsEncrypted)

	if err := h.messages.UpdateContent(ctx, messageID, content, encrypted); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not edit message"})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteMessage soft-deletes a message within the 3-second regret window.
// Only the sender may delete, and deletion is terminal.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	var req struct {
		SenderNickname string `json:"senderNickname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.SenderNickname) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sender nickname is required"})
		return
	}

	ctx := c.Request.Context()
	msg, err := h.messages.GetLive(ctx, messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found, expired, or already deleted"})
		return
	}

	if err := retention.CanDelete(msg, req.SenderNickname, time.Now()); err != nil {
		switch {
		case errors.Is(err, retention.ErrMessageGone):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found, expired, or already deleted"})
		case errors.Is(err, retention.ErrNotSender):
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only delete your own messages"})
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "message can only be deleted within 3 seconds of sending"})
		}
		return
	}

	if err := h.messages.SoftDelete(ctx, messageID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkRead stamps the read timestamp exactly once. Repeat calls are
// no-ops; the self-destruct clock is unaffected either way.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.messages.GetLive(ctx, messageID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found or expired"})
		return
	}

	if err := h.messages.MarkRead(ctx, messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark message read"})
		return
	}

	c.Status(http.StatusNoContent)
}

// PinMessage pins or unpins a message. No time window, any caller.
func (h *MessageHandler) PinMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	var req struct {
		IsPinned *bool `json:"isPinned" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.messages.GetLive(ctx, messageID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found or expired"})
		return
	}

	if err := h.messages.SetPinned(ctx, messageID, *req.IsPinned); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not pin message"})
		return
	}

	c.Status(http.StatusNoContent)
}

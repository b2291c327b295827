package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vanish-chat/internal/observability"
	"vanish-chat/internal/repositories"
)

// PresenceHandler manages participant activity and typing indicators.
type PresenceHandler struct {
	rooms    repositories.RoomRepository
	presence repositories.PresenceRepository
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(rooms repositories.RoomRepository, presence repositories.PresenceRepository) *PresenceHandler {
	return &PresenceHandler{
		rooms:    rooms,
		presence: presence,
	}
}

// UpdateTyping records a typing indicator for the user, latest wins.
func (h *PresenceHandler) UpdateTyping(c *gin.Context) {
	var req struct {
		RoomID       string `json:"roomId"`
		UserNickname string `json:"userNickname"`
		UserAvatar   string `json:"userAvatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoomID == "" || req.UserNickname == "" || req.UserAvatar == "" {
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

	if purged, err := h.presence.PurgeStaleTyping(ctx); err == nil {
		observability.AddPurgedRows("typing", purged)
	}

	if err := h.presence.SetTyping(ctx, req.RoomID, req.UserNickname, req.UserAvatar); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update typing indicator"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetTyping returns live typing indicators for a room, most recent first.
func (h *PresenceHandler) GetTyping(c *gin.Context) {
	roomID := c.Param("roomId")

	ctx := c.Request.Context()
	if purged, err := h.presence.PurgeStaleTyping(ctx); err == nil {
		observability.AddPurgedRows("typing", purged)
	}

	typingUsers, err := h.presence.ListTyping(ctx, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load typing indicators"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"typingUsers": typingUsers})
}

// LeaveRoom removes the participant immediately.
func (h *PresenceHandler) LeaveRoom(c *gin.Context) {
	var req struct {
		RoomID       string `json:"roomId"`
		UserNickname string `json:"userNickname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoomID == "" || req.UserNickname == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room id and user nickname are required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.presence.RemoveParticipant(ctx, req.RoomID, req.UserNickname); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave room"})
		return
	}
	if _, err := h.presence.SyncParticipantCount(ctx, req.RoomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave room"})
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateActivity refreshes the heartbeat and purges participants silent
// past the presence TTL.
func (h *PresenceHandler) UpdateActivity(c *gin.Context) {
	var req struct {
		RoomID       string `json:"roomId"`
		UserNickname string `json:"userNickname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoomID == "" || req.UserNickname == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room id and user nickname are required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.presence.Heartbeat(ctx, req.RoomID, req.UserNickname); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update activity"})
		return
	}
	if purged, err := h.presence.PurgeStaleParticipants(ctx, req.RoomID); err == nil {
		observability.AddPurgedRows("participants", purged)
	}
	if _, err := h.presence.SyncParticipantCount(ctx, req.RoomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update activity"})
		return
	}

	c.Status(http.StatusNoContent)
}

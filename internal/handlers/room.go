package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vanish-chat/internal/auth"
	"vanish-chat/internal/identity"
	"vanish-chat/internal/models"
	"vanish-chat/internal/observability"
	"vanish-chat/internal/repositories"
	"vanish-chat/internal/retention"
	"vanish-chat/internal/telemetry"
)

// RoomHandler manages room creation, joining and theming.
type RoomHandler struct {
	rooms    repositories.RoomRepository
	presence repositories.PresenceRepository
	ids      *identity.Generator
	emitter  *telemetry.EventEmitter
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(rooms repositories.RoomRepository, presence repositories.PresenceRepository, ids *identity.Generator, emitter *telemetry.EventEmitter) *RoomHandler {
	return &RoomHandler{
		rooms:    rooms,
		presence: presence,
		ids:      ids,
		emitter:  emitter,
	}
}

// CreateRoom creates a new password-protected room with a 24h lifetime.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		Password         string `json:"password"`
		ThemeMode        string `json:"theme_mode"`
		MaxParticipants  *int   `json:"max_participants"`
		EnableEncryption *bool  `json:"enable_encryption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	if len(req.Password) < 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 4 characters long"})
		return
	}
	if len(req.Password) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password too long (max 100 characters)"})
		return
	}

	themeMode := req.ThemeMode
	if themeMode == "" {
		themeMode = models.ThemeDark
	}
	if !models.ValidTheme(themeMode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid theme mode"})
		return
	}

	if req.MaxParticipants != nil {
		if *req.MaxParticipants < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maximum participants must be at least 2"})
			return
		}
		if *req.MaxParticipants > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maximum participants cannot exceed 50"})
			return
		}
	}

	// Encryption is on unless explicitly disabled.
	encryptionEnabled := req.EnableEncryption == nil || *req.EnableEncryption

	ctx := c.Request.Context()
	if purged, err := h.rooms.PurgeExpiredRooms(ctx); err == nil {
		observability.AddPurgedRows("rooms", purged)
	}

	roomID, err := identity.NewRoomID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat room"})
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat room"})
		return
	}

	now := time.Now()
	room := models.Room{
		ID:                roomID,
		PasswordHash:      passwordHash,
		CreatedAt:         now,
		ExpiresAt:         now.Add(retention.RoomTTL),
		ThemeMode:         themeMode,
		MaxParticipants:   req.MaxParticipants,
		EncryptionEnabled: encryptionEnabled,
	}
	if err := h.rooms.CreateRoom(ctx, room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat room"})
		return
	}

	observability.IncRoomCreated()
	h.emitter.Emit(ctx, "room_created", requestIDFromContext(c), roomID, map[string]any{
		"encryption_enabled": encryptionEnabled,
		"max_participants":   req.MaxParticipants,
	})

	c.JSON(http.StatusCreated, gin.H{
		"roomId":            roomID,
		"encryptionEnabled": encryptionEnabled,
	})
}

// JoinRoom verifies the room password and assigns a fresh anonymous
// identity to the caller.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req struct {
		RoomID   string `json:"roomId"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.RoomID = strings.TrimSpace(req.RoomID)
	if req.RoomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room id is required"})
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	ctx := c.Request.Context()
	if purged, err := h.rooms.PurgeExpiredRooms(ctx); err == nil {
		observability.AddPurgedRows("rooms", purged)
	}

	room, err := h.rooms.GetActiveRoom(ctx, req.RoomID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat room not found or expired"})
		return
	}

	if !auth.VerifyPassword(req.Password, room.PasswordHash) {
		observability.IncRoomJoin("denied")
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid password"})
		return
	}

	if purged, err := h.presence.PurgeStaleParticipants(ctx, room.ID); err == nil {
		observability.AddPurgedRows("participants", purged)
	}

	count, err := h.presence.SyncParticipantCount(ctx, room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}
	if room.MaxParticipants != nil && count >= *room.MaxParticipants {
		observability.IncRoomJoin("full")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "room has reached maximum participant limit"})
		return
	}

	nickname := h.ids.Nickname()
	avatar := h.ids.Avatar()
	if err := h.presence.UpsertParticipant(ctx, room.ID, nickname, avatar); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}

	count, err = h.presence.SyncParticipantCount(ctx, room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}

	observability.IncRoomJoin("ok")
	h.emitter.Emit(ctx, "room_joined", requestIDFromContext(c), room.ID, map[string]any{
		"current_participants": count,
	})

	c.JSON(http.StatusOK, gin.H{
		"nickname":             nickname,
		"avatar":               avatar,
		"theme_mode":           room.ThemeMode,
		"current_participants": count,
		"max_participants":     room.MaxParticipants,
		"encryption_enabled":   room.EncryptionEnabled,
	})
}

// UpdateTheme switches the room between dark and light mode.
func (h *RoomHandler) UpdateTheme(c *gin.Context) {
	roomID := c.Param("roomId")

	var req struct {
		ThemeMode string `json:"themeMode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidTheme(req.ThemeMode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid theme mode is required (dark or light)"})
		return
	}

	if err := h.rooms.UpdateTheme(c.Request.Context(), roomID, req.ThemeMode); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat room not found or expired"})
		return
	}

	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"vanish-chat/internal/observability"
	"vanish-chat/internal/repositories"
	"vanish-chat/internal/telemetry"
)

// CleanupHandler exposes the administrative purge endpoint. Purges are
// idempotent and safe to call at any time.
type CleanupHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	emitter  *telemetry.EventEmitter
}

// NewCleanupHandler builds a CleanupHandler.
func NewCleanupHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository, emitter *telemetry.EventEmitter) *CleanupHandler {
	return &CleanupHandler{
		rooms:    rooms,
		messages: messages,
		emitter:  emitter,
	}
}

// Cleanup deletes all globally expired messages and rooms.
func (h *CleanupHandler) Cleanup(c *gin.Context) {
	ctx, span := otel.Tracer("vanish-chat/cleanup").Start(c.Request.Context(), "cleanup.run")
	defer span.End()

	purgedMessages, err := h.messages.PurgeExpiredMessages(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	observability.AddPurgedRows("messages", purgedMessages)

	purgedRooms, err := h.rooms.PurgeExpiredRooms(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	observability.AddPurgedRows("rooms", purgedRooms)

	h.emitter.Emit(ctx, "cleanup_run", requestIDFromContext(c), "", map[string]any{
		"purged_messages": purgedMessages,
		"purged_rooms":    purgedRooms,
	})

	c.JSON(http.StatusOK, gin.H{
		"purged_messages": purgedMessages,
		"purged_rooms":    purgedRooms,
	})
}

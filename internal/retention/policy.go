// Package retention holds the pure lifecycle rules for rooms, messages,
// participants and typing indicators. Everything here is a function of a
// record plus the current time; the repositories and handlers apply the
// decisions.
package retention

import (
	"errors"
	"time"

	"vanish-chat/internal/models"
)

// Lifecycle windows.
const (
	RoomTTL      = 24 * time.Hour
	MessageTTL   = 10 * time.Minute
	EditWindow   = 30 * time.Second
	DeleteWindow = 3 * time.Second
	PresenceTTL  = 5 * time.Minute
	TypingTTL    = 5 * time.Second
)

var (
	// ErrMessageGone covers expired, soft-deleted and absent messages.
	// Callers must not be able to tell those cases apart.
	ErrMessageGone = errors.New("message not found, expired, or deleted")

	ErrEditWindowClosed   = errors.New("edit window closed")
	ErrDeleteWindowClosed = errors.New("delete window closed")
	ErrNotSender          = errors.New("only the sender may delete a message")
)

// RoomActive reports whether the room has not yet expired.
func RoomActive(room models.Room, now time.Time) bool {
	return now.Before(room.ExpiresAt)
}

// MessageVisible reports whether the message may appear in listings.
// Visibility never depends on ReadAt; the self-destruct window is
// absolute from creation.
func MessageVisible(msg models.Message, now time.Time) bool {
	return !msg.IsDeleted && now.Before(msg.ExpiresAt)
}

// CanEdit decides whether the message may still be edited. Edits are open
// to any participant; only the window is enforced.
func CanEdit(msg models.Message, now time.Time) error {
	if msg.IsDeleted || !now.Before(msg.ExpiresAt) {
		return ErrMessageGone
	}
	if now.Sub(msg.CreatedAt) > EditWindow {
		return ErrEditWindowClosed
	}
	return nil
}

// CanDelete decides whether requester may soft-delete the message. The
// regret window is strictly tighter than the edit window and is reserved
// for the sender.
func CanDelete(msg models.Message, requester string, now time.Time) error {
	if msg.IsDeleted || !now.Before(msg.ExpiresAt) {
		return ErrMessageGone
	}
	if msg.SenderNickname != requester {
		return ErrNotSender
	}
	if now.Sub(msg.CreatedAt) > DeleteWindow {
		return ErrDeleteWindowClosed
	}
	return nil
}

// MarkRead stamps ReadAt once. Repeat calls return the message unchanged.
func MarkRead(msg models.Message, now time.Time) models.Message {
	if msg.ReadAt == nil {
		t := now
		msg.ReadAt = &t
	}
	return msg
}

// ApplyPin toggles the pinned flag. No window, any caller.
func ApplyPin(msg models.Message, pinned bool) models.Message {
	msg.IsPinned = pinned
	return msg
}

// ShouldPurgeMessage reports whether the message row may be removed.
func ShouldPurgeMessage(msg models.Message, now time.Time) bool {
	return !now.Before(msg.ExpiresAt)
}

// ShouldPurgeRoom reports whether the room row may be removed.
func ShouldPurgeRoom(room models.Room, now time.Time) bool {
	return !now.Before(room.ExpiresAt)
}

// ShouldPurgeParticipant reports whether the participant went silent past
// the presence TTL.
func ShouldPurgeParticipant(p models.RoomParticipant, now time.Time) bool {
	return now.Sub(p.LastSeen) > PresenceTTL
}

// ShouldPurgeTyping reports whether the typing indicator is stale.
func ShouldPurgeTyping(t models.TypingIndicator, now time.Time) bool {
	return now.Sub(t.Timestamp) > TypingTTL
}

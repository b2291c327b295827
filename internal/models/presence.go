package models

import "time"

// RoomParticipant tracks a server-assigned identity inside a room.
// Participants silent for more than the presence TTL are purged.
type RoomParticipant struct {
	RoomID       string    `db:"room_id" json:"room_id"`
	UserNickname string    `db:"user_nickname" json:"user_nickname"`
	UserAvatar   string    `db:"user_avatar" json:"user_avatar"`
	JoinedAt     time.Time `db:"joined_at" json:"joined_at"`
	LastSeen     time.Time `db:"last_seen" json:"last_seen"`
}

// TypingIndicator marks a participant as currently typing. At most one
// row exists per (room, nickname); re-typing replaces it.
type TypingIndicator struct {
	RoomID       string    `db:"room_id" json:"room_id"`
	UserNickname string    `db:"user_nickname" json:"user_nickname"`
	UserAvatar   string    `db:"user_avatar" json:"user_avatar"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
}

package models

import "time"

// Message represents a self-destructing chat message. ExpiresAt is fixed
// at creation time and is never moved by reads.
type Message struct {
	ID              int64      `db:"id" json:"id"`
	RoomID          string     `db:"room_id" json:"room_id"`
	Content         string     `db:"content" json:"content"`
	SenderNickname  string     `db:"sender_nickname" json:"sender_nickname"`
	SenderAvatar    string     `db:"sender_avatar" json:"sender_avatar"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt       time.Time  `db:"expires_at" json:"expires_at"`
	ReadAt          *time.Time `db:"read_at" json:"read_at,omitempty"`
	IsPinned        bool       `db:"is_pinned" json:"is_pinned"`
	IsEdited        bool       `db:"is_edited" json:"is_edited"`
	EditedAt        *time.Time `db:"edited_at" json:"edited_at,omitempty"`
	OriginalContent *string    `db:"original_content" json:"original_content,omitempty"`
	IsEncrypted     bool       `db:"is_encrypted" json:"is_encrypted"`
	IsDeleted       bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vanish-chat/internal/models"
)

var ErrRoomNotFound = errors.New("room not found or expired")

// RoomRepository abstracts chat room persistence.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room models.Room) error
	GetActiveRoom(ctx context.Context, roomID string) (models.Room, error)
	UpdateTheme(ctx context.Context, roomID string, themeMode string) error
	PurgeExpiredRooms(ctx context.Context) (int64, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// CreateRoom inserts a new room row.
func (r *RoomRepo) CreateRoom(ctx context.Context, room models.Room) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_rooms
        (id, password_hash, created_at, expires_at, theme_mode, max_participants, current_participants, encryption_enabled)
        VALUES ($1, $2, $3, $4, $5, $6, 0, $7)`,
		room.ID, room.PasswordHash, room.CreatedAt, room.ExpiresAt, room.ThemeMode, room.MaxParticipants, room.EncryptionEnabled)
	return err
}

// GetActiveRoom fetches a room that has not expired. Expired and absent
// rooms are indistinguishable to callers.
func (r *RoomRepo) GetActiveRoom(ctx context.Context, roomID string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT id, password_hash, created_at, expires_at, theme_mode,
        max_participants, current_participants, encryption_enabled
        FROM chat_rooms WHERE id=$1 AND expires_at > NOW()`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// UpdateTheme switches the room theme. Only active rooms are updatable.
func (r *RoomRepo) UpdateTheme(ctx context.Context, roomID string, themeMode string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chat_rooms SET theme_mode=$2 WHERE id=$1 AND expires_at > NOW()`, roomID, themeMode)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// PurgeExpiredRooms deletes every expired room. Messages, participants and
// typing rows follow via ON DELETE CASCADE.
func (r *RoomRepo) PurgeExpiredRooms(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_rooms WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

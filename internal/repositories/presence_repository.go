package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vanish-chat/internal/models"
)

// PresenceRepository tracks participants and typing indicators. Both are
// TTL-scoped: purges run eagerly as part of adjacent reads and writes,
// there is no background sweeper.
type PresenceRepository interface {
	UpsertParticipant(ctx context.Context, roomID, nickname, avatar string) error
	RemoveParticipant(ctx context.Context, roomID, nickname string) error
	Heartbeat(ctx context.Context, roomID, nickname string) error
	PurgeStaleParticipants(ctx context.Context, roomID string) (int64, error)
	SyncParticipantCount(ctx context.Context, roomID string) (int, error)
	SetTyping(ctx context.Context, roomID, nickname, avatar string) error
	ListTyping(ctx context.Context, roomID string) ([]models.TypingIndicator, error)
	PurgeStaleTyping(ctx context.Context) (int64, error)
}

// PresenceRepo is a sqlx implementation of PresenceRepository.
type PresenceRepo struct {
	db *sqlx.DB
}

// NewPresenceRepo constructs a PresenceRepo.
func NewPresenceRepo(db *sqlx.DB) *PresenceRepo {
	return &PresenceRepo{db: db}
}

// UpsertParticipant inserts the identity row or refreshes last_seen and
// avatar when the same nickname rejoins. The upsert is atomic, concurrent
// joins by the same nickname cannot lose updates.
func (r *PresenceRepo) UpsertParticipant(ctx context.Context, roomID, nickname, avatar string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO room_participants (room_id, user_nickname, user_avatar, last_seen)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (room_id, user_nickname)
        DO UPDATE SET last_seen = NOW(), user_avatar = EXCLUDED.user_avatar`,
		roomID, nickname, avatar)
	return err
}

// RemoveParticipant deletes the identity row unconditionally.
func (r *PresenceRepo) RemoveParticipant(ctx context.Context, roomID, nickname string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM room_participants
        WHERE room_id=$1 AND user_nickname=$2`, roomID, nickname)
	return err
}

// Heartbeat refreshes last_seen for the participant. Missing rows are not
// an error; a departed client may still be flushing timers.
func (r *PresenceRepo) Heartbeat(ctx context.Context, roomID, nickname string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE room_participants SET last_seen = NOW()
        WHERE room_id=$1 AND user_nickname=$2`, roomID, nickname)
	return err
}

// PurgeStaleParticipants removes participants silent past the presence TTL.
func (r *PresenceRepo) PurgeStaleParticipants(ctx context.Context, roomID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM room_participants
        WHERE room_id=$1 AND last_seen < NOW() - INTERVAL '5 minutes'`, roomID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SyncParticipantCount recomputes the cached participant count on the room
// row from the live participant set and returns the fresh value.
func (r *PresenceRepo) SyncParticipantCount(ctx context.Context, roomID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `UPDATE chat_rooms
        SET current_participants = (SELECT COUNT(*) FROM room_participants WHERE room_id=$1)
        WHERE id=$1
        RETURNING current_participants`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		// Room purged between operations; nothing to sync.
		return 0, nil
	}
	return count, err
}

// SetTyping records that the participant is typing. The primary key on
// (room_id, user_nickname) plus the upsert keeps at most one row per user,
// latest wins.
func (r *PresenceRepo) SetTyping(ctx context.Context, roomID, nickname, avatar string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO typing_indicators (room_id, user_nickname, user_avatar, timestamp)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (room_id, user_nickname)
        DO UPDATE SET timestamp = NOW(), user_avatar = EXCLUDED.user_avatar`,
		roomID, nickname, avatar)
	return err
}

// ListTyping returns live typing indicators, most recent typer first.
func (r *PresenceRepo) ListTyping(ctx context.Context, roomID string) ([]models.TypingIndicator, error) {
	var indicators []models.TypingIndicator
	err := r.db.SelectContext(ctx, &indicators, `SELECT room_id, user_nickname, user_avatar, timestamp
        FROM typing_indicators
        WHERE room_id=$1
        ORDER BY timestamp DESC`, roomID)
	return indicators, err
}

// PurgeStaleTyping removes indicators older than the typing TTL.
func (r *PresenceRepo) PurgeStaleTyping(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM typing_indicators
        WHERE timestamp < NOW() - INTERVAL '5 seconds'`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

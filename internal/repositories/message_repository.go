package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"vanish-chat/internal/models"
)

var ErrMessageNotFound = errors.New("message not found or expired")

const messageColumns = `id, room_id, content, sender_nickname, sender_avatar, created_at, expires_at,
        read_at, is_pinned, is_edited, edited_at, original_content, is_encrypted, is_deleted, deleted_at`

// MessageRepository defines persistence for self-destructing messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, roomID, content, sender, avatar string, encrypted bool, expiresAt time.Time) (int64, error)
	ListVisible(ctx context.Context, roomID string) ([]models.Message, error)
	GetLive(ctx context.Context, messageID int64) (models.Message, error)
	UpdateContent(ctx context.Context, messageID int64, content string, encrypted bool) error
	SoftDelete(ctx context.Context, messageID int64) error
	MarkRead(ctx context.Context, messageID int64) error
	SetPinned(ctx context.Context, messageID int64, pinned bool) error
	PurgeExpiredMessages(ctx context.Context) (int64, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message and returns its generated id.
func (r *MessageRepo) CreateMessage(ctx context.Context, roomID, content, sender, avatar string, encrypted bool, expiresAt time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages
        (room_id, content, sender_nickname, sender_avatar, expires_at, is_encrypted)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		roomID, content, sender, avatar, expiresAt, encrypted).Scan(&id)
	return id, err
}

// ListVisible returns the room's live messages in stable chronological
// order. Ties on created_at break by id so second-resolution collisions
// keep insert order.
func (r *MessageRepo) ListVisible(ctx context.Context, roomID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+`
        FROM messages
        WHERE room_id=$1 AND expires_at > NOW() AND is_deleted = FALSE
        ORDER BY created_at ASC, id ASC`, roomID)
	return msgs, err
}

// GetLive retrieves a single non-expired message. Soft-deleted rows are
// still returned; the retention policy decides what callers may do with
// them.
func (r *MessageRepo) GetLive(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+`
        FROM messages WHERE id=$1 AND expires_at > NOW()`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// UpdateContent rewrites the message body. The pristine first version is
// captured into original_content exactly once, on the first edit.
func (r *MessageRepo) UpdateContent(ctx context.Context, messageID int64, content string, encrypted bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages
        SET original_content = COALESCE(original_content, content),
            content = $2,
            is_edited = TRUE,
            edited_at = NOW(),
            is_encrypted = $3
        WHERE id=$1 AND expires_at > NOW() AND is_deleted = FALSE`,
		messageID, content, encrypted)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// SoftDelete flags the message as deleted. The row stays until the expiry
// purge removes it.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages
        SET is_deleted = TRUE, deleted_at = NOW()
        WHERE id=$1 AND is_deleted = FALSE`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkRead stamps read_at at most once. The guard in the WHERE clause
// makes the null-to-timestamp transition atomic; repeat calls are no-ops.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET read_at = NOW()
        WHERE id=$1 AND read_at IS NULL`, messageID)
	return err
}

// SetPinned toggles the pinned flag.
func (r *MessageRepo) SetPinned(ctx context.Context, messageID int64, pinned bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET is_pinned=$2 WHERE id=$1`, messageID, pinned)
	return err
}

// PurgeExpiredMessages deletes every message past its self-destruct time.
func (r *MessageRepo) PurgeExpiredMessages(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanish-chat/internal/models"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMessage(age time.Duration) models.Message {
	created := base.Add(-age)
	return models.Message{
		ID:             1,
		RoomID:         "room",
		Content:        "hi",
		SenderNickname: "SilentFox7",
		CreatedAt:      created,
		ExpiresAt:      created.Add(MessageTTL),
	}
}

func TestMessageVisibleExpiresAbsolutely(t *testing.T) {
	msg := newMessage(0)

	assert.True(t, MessageVisible(msg, base))
	assert.True(t, MessageVisible(msg, base.Add(MessageTTL-time.Second)))
	assert.False(t, MessageVisible(msg, base.Add(MessageTTL)))
	assert.False(t, MessageVisible(msg, base.Add(MessageTTL+time.Hour)))

	// Reading never extends or shortens the window.
	read := base.Add(time.Second)
	msg.ReadAt = &read
	assert.True(t, MessageVisible(msg, base.Add(MessageTTL-time.Second)))
	assert.False(t, MessageVisible(msg, base.Add(MessageTTL)))
}

func TestMessageVisibleDeletedIsTerminal(t *testing.T) {
	msg := newMessage(0)
	msg.IsDeleted = true
	assert.False(t, MessageVisible(msg, base))
}

func TestCanEditWindow(t *testing.T) {
	cases := []struct {
		name string
		age  time.Duration
		want error
	}{
		{"fresh", 0, nil},
		{"at boundary", EditWindow, nil},
		{"just past", EditWindow + time.Second, ErrEditWindowClosed},
		{"expired", MessageTTL + time.Second, ErrMessageGone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanEdit(newMessage(tc.age), base)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestCanEditDeletedMessage(t *testing.T) {
	msg := newMessage(0)
	msg.IsDeleted = true
	assert.ErrorIs(t, CanEdit(msg, base), ErrMessageGone)
}

func TestCanDeleteRegretWindow(t *testing.T) {
	sender := "SilentFox7"

	assert.NoError(t, CanDelete(newMessage(0), sender, base))
	assert.NoError(t, CanDelete(newMessage(DeleteWindow), sender, base))
	assert.ErrorIs(t, CanDelete(newMessage(DeleteWindow+500*time.Millisecond), sender, base), ErrDeleteWindowClosed)
	assert.ErrorIs(t, CanDelete(newMessage(0), "ShadowWolf3", base), ErrNotSender)

	deleted := newMessage(0)
	deleted.IsDeleted = true
	assert.ErrorIs(t, CanDelete(deleted, sender, base), ErrMessageGone)
}

func TestDeleteWindowInsideEditWindow(t *testing.T) {
	// At 3.5s the regret window is closed but editing is still open.
	msg := newMessage(3500 * time.Millisecond)
	assert.ErrorIs(t, CanDelete(msg, msg.SenderNickname, base), ErrDeleteWindowClosed)
	assert.NoError(t, CanEdit(msg, base))
}

func TestMarkReadIdempotent(t *testing.T) {
	msg := newMessage(0)

	once := MarkRead(msg, base)
	require.NotNil(t, once.ReadAt)
	assert.Equal(t, base, *once.ReadAt)

	twice := MarkRead(once, base.Add(time.Minute))
	require.NotNil(t, twice.ReadAt)
	assert.Equal(t, *once.ReadAt, *twice.ReadAt)
}

func TestApplyPinToggles(t *testing.T) {
	msg := newMessage(0)
	assert.True(t, ApplyPin(msg, true).IsPinned)
	assert.False(t, ApplyPin(ApplyPin(msg, true), false).IsPinned)
}

func TestRoomActive(t *testing.T) {
	room := models.Room{CreatedAt: base, ExpiresAt: base.Add(RoomTTL)}
	assert.True(t, RoomActive(room, base))
	assert.True(t, RoomActive(room, base.Add(RoomTTL-time.Minute)))
	assert.False(t, RoomActive(room, base.Add(RoomTTL)))
	assert.True(t, ShouldPurgeRoom(room, base.Add(RoomTTL)))
	assert.False(t, ShouldPurgeRoom(room, base))
}

func TestPurgePredicates(t *testing.T) {
	msg := newMessage(0)
	assert.False(t, ShouldPurgeMessage(msg, base))
	assert.True(t, ShouldPurgeMessage(msg, base.Add(MessageTTL)))

	p := models.RoomParticipant{LastSeen: base}
	assert.False(t, ShouldPurgeParticipant(p, base.Add(PresenceTTL)))
	assert.True(t, ShouldPurgeParticipant(p, base.Add(PresenceTTL+time.Second)))

	ti := models.TypingIndicator{Timestamp: base}
	assert.False(t, ShouldPurgeTyping(ti, base.Add(TypingTTL)))
	assert.True(t, ShouldPurgeTyping(ti, base.Add(TypingTTL+time.Second)))
}

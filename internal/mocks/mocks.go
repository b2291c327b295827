package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"vanish-chat/internal/models"
	"vanish-chat/internal/repositories"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, room models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepositoryMock) GetActiveRoom(ctx context.Context, roomID string) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) UpdateTheme(ctx context.Context, roomID string, themeMode string) error {
	args := m.Called(ctx, roomID, themeMode)
	return args.Error(0)
}

func (m *RoomRepositoryMock) PurgeExpiredRooms(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, roomID, content, sender, avatar string, encrypted bool, expiresAt time.Time) (int64, error) {
	args := m.Called(ctx, roomID, content, sender, avatar, encrypted, expiresAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) ListVisible(ctx context.Context, roomID string) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetLive(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateContent(ctx context.Context, messageID int64, content string, encrypted bool) error {
	args := m.Called(ctx, messageID, content, encrypted)
	return args.Error(0)
}

func (m *MessageRepositoryMock) SoftDelete(ctx context.Context, messageID int64) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, messageID int64) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) SetPinned(ctx context.Context, messageID int64, pinned bool) error {
	args := m.Called(ctx, messageID, pinned)
	return args.Error(0)
}

func (m *MessageRepositoryMock) PurgeExpiredMessages(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type PresenceRepositoryMock struct {
	mock.Mock
}

func (m *PresenceRepositoryMock) UpsertParticipant(ctx context.Context, roomID, nickname, avatar string) error {
	args := m.Called(ctx, roomID, nickname, avatar)
	return args.Error(0)
}

func (m *PresenceRepositoryMock) RemoveParticipant(ctx context.Context, roomID, nickname string) error {
	args := m.Called(ctx, roomID, nickname)
	return args.Error(0)
}

func (m *PresenceRepositoryMock) Heartbeat(ctx context.Context, roomID, nickname string) error {
	args := m.Called(ctx, roomID, nickname)
	return args.Error(0)
}

func (m *PresenceRepositoryMock) PurgeStaleParticipants(ctx context.Context, roomID string) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PresenceRepositoryMock) SyncParticipantCount(ctx context.Context, roomID string) (int, error) {
	args := m.Called(ctx, roomID)
	return args.Int(0), args.Error(1)
}

func (m *PresenceRepositoryMock) SetTyping(ctx context.Context, roomID, nickname, avatar string) error {
	args := m.Called(ctx, roomID, nickname, avatar)
	return args.Error(0)
}

func (m *PresenceRepositoryMock) ListTyping(ctx context.Context, roomID string) ([]models.TypingIndicator, error) {
	args := m.Called(ctx, roomID)
	var indicators []models.TypingIndicator
	if val := args.Get(0); val != nil {
		indicators = val.([]models.TypingIndicator)
	}
	return indicators, args.Error(1)
}

func (m *PresenceRepositoryMock) PurgeStaleTyping(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.PresenceRepository = (*PresenceRepositoryMock)(nil)

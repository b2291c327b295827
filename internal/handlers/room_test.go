package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vanish-chat/internal/auth"
	"vanish-chat/internal/identity"
	"vanish-chat/internal/mocks"
	"vanish-chat/internal/models"
	"vanish-chat/internal/repositories"
	"vanish-chat/internal/retention"
)

var hexRoomID = regexp.MustCompile(`^[0-9a-f]{32}$`)

func setupRoomRouter(handler *RoomHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chat/rooms", handler.CreateRoom)
	r.POST("/chat/rooms/join", handler.JoinRoom)
	r.PUT("/chat/rooms/:roomId/theme", handler.UpdateTheme)
	return r
}

func newRoomHandler(rooms *mocks.RoomRepositoryMock, presence *mocks.PresenceRepositoryMock) *RoomHandler {
	return NewRoomHandler(rooms, presence, identity.NewSeededGenerator(1), nil)
}

func activeRoom(id, password string) models.Room {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	return models.Room{
		ID:                id,
		PasswordHash:      hash,
		CreatedAt:         now,
		ExpiresAt:         now.Add(retention.RoomTTL),
		ThemeMode:         models.ThemeDark,
		EncryptionEnabled: true,
	}
}

func TestCreateRoomSuccess(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, new(mocks.PresenceRepositoryMock)))

	rooms.On("PurgeExpiredRooms", mock.Anything).Return(int64(0), nil).Once()
	rooms.On("CreateRoom", mock.Anything, mock.MatchedBy(func(room models.Room) bool {
		return hexRoomID.MatchString(room.ID) &&
			room.ThemeMode == models.ThemeDark &&
			room.EncryptionEnabled &&
			room.ExpiresAt.Sub(room.CreatedAt) == retention.RoomTTL
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chat/rooms", bytes.NewBufferString(`{"password":"abcd"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		RoomID            string `json:"roomId"`
		EncryptionEnabled bool   `json:"encryptionEnabled"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Regexp(t, hexRoomID, resp.RoomID)
	assert.True(t, resp.EncryptionEnabled)
	rooms.AssertExpectations(t)
}

func TestCreateRoomValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing password", `{}`},
		{"short password", `{"password":"abc"}`},
		{"long password", `{"password":"` + string(bytes.Repeat([]byte("x"), 101)) + `"}`},
		{"bad theme", `{"password":"abcd","theme_mode":"sepia"}`},
		{"cap too low", `{"password":"abcd","max_participants":1}`},
		{"cap too high", `{"password":"abcd","max_participants":51}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRoomRouter(newRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.PresenceRepositoryMock)))
			req := httptest.NewRequest(http.MethodPost, "/chat/rooms", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateRoomEncryptionOptOut(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, new(mocks.PresenceRepositoryMock)))

	rooms.On("PurgeExpiredRooms", mock.Anything).Return(int64(0), nil).Once()
	rooms.On("CreateRoom", mock.Anything, mock.MatchedBy(func(room models.Room) bool {
		return !room.EncryptionEnabled
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chat/rooms", bytes.NewBufferString(`{"password":"abcd","enable_encryption":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	rooms.AssertExpectations(t)
}

func TestJoinRoomSuccess(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	presence := new(mocks.PresenceRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, presence))

	room := activeRoom("a1b2", "abcd")
	rooms.On("PurgeExpiredRooms", mock.Anything).Return(int64(0), nil).Once()
	rooms.On("GetActiveRoom", mock.Anything, "a1b2").Return(room, nil).Once()
	presence.On("PurgeStaleParticipants", mock.Anything, "a1b2").Return(int64(0), nil).Once()
	presence.On("SyncParticipantCount", mock.Anything, "a1b2").Return(0, nil).Once()
	presence.On("UpsertParticipant", mock.Anything, "a1b2", mock.Anything, mock.Anything).Return(nil).Once()
	presence.On("SyncParticipantCount", mock.Anything, "a1b2").Return(1, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chat/rooms/join", bytes.NewBufferString(`{"roomId":"a1b2","password":"abcd"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Nickname            string `json:"nickname"`
		Avatar              string `json:"avatar"`
		CurrentParticipants int    `json:"current_participants"`
		EncryptionEnabled   bool   `json:"encryption_enabled"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Nickname)
	assert.NotEmpty(t, resp.Avatar)
	assert.Equal(t, 1, resp.CurrentParticipants)
	assert.True(t, resp.EncryptionEnabled)
	rooms.AssertExpectations(t)
	presence.AssertExpectations(t)
}

func TestJoinRoomWrongPassword(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, new(mocks.PresenceRepositoryMock)))

	rooms.On("PurgeExpiredRooms", mock.Anything).Return(int64(0), nil).Once()
	rooms.On("GetActiveRoom", mock.Anything, "a1b2").Return(activeRoom("a1b2", "abcd"), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chat/rooms/join", bytes.NewBufferString(`{"roomId":"a1b2","password":"abcX"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	rooms.AssertExpectations(t)
}

func TestJoinRoomNotFound(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, new(mocks.PresenceRepositoryMock)))

	rooms.On("PurgeExpiredRooms", mock.Anything).Return(int64(1), nil).Once()
	rooms.On("GetActiveRoom", mock.Anything, "gone").Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/chat/rooms/join", bytes.NewBufferString(`{"roomId":"gone","password":"abcd"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	rooms.AssertExpectations(t)
}

func TestJoinRoomFull(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	presence := new(mocks.PresenceRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, presence))

	room := activeRoom("a1b2", "abcd")
	cap := 2
	room.MaxParticipants = &cap

	rooms.On("PurgeExpiredRooms", mock.Anything).Return(int64(0), nil).Once()
	rooms.On("GetActiveRoom", mock.Anything, "a1b2").Return(room, nil).Once()
	presence.On("PurgeStaleParticipants", mock.Anything, "a1b2").Return(int64(0), nil).Once()
	presence.On("SyncParticipantCount", mock.Anything, "a1b2").Return(2, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chat/rooms/join", bytes.NewBufferString(`{"roomId":"a1b2","password":"abcd"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	rooms.AssertExpectations(t)
	presence.AssertExpectations(t)
}

func TestJoinRoomAfterStalePurgeFreesSlot(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	presence := new(mocks.PresenceRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, presence))

	room := activeRoom("a1b2", "abcd")
	cap := 2
	room.MaxParticipants = &cap

	rooms.On("PurgeExpiredRooms", mock.Anything).Return(int64(0), nil).Once()
	rooms.On("GetActiveRoom", mock.Anything, "a1b2").Return(room, nil).Once()
	// One stale participant got purged, leaving room below the cap.
	presence.On("PurgeStaleParticipants", mock.Anything, "a1b2").Return(int64(1), nil).Once()
	presence.On("SyncParticipantCount", mock.Anything, "a1b2").Return(1, nil).Once()
	presence.On("UpsertParticipant", mock.Anything, "a1b2", mock.Anything, mock.Anything).Return(nil).Once()
	presence.On("SyncParticipantCount", mock.Anything, "a1b2").Return(2, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chat/rooms/join", bytes.NewBufferString(`{"roomId":"a1b2","password":"abcd"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	presence.AssertExpectations(t)
}

func TestUpdateThemeSuccess(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, new(mocks.PresenceRepositoryMock)))

	rooms.On("UpdateTheme", mock.Anything, "a1b2", "light").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/chat/rooms/a1b2/theme", bytes.NewBufferString(`{"themeMode":"light"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	rooms.AssertExpectations(t)
}

func TestUpdateThemeInvalidMode(t *testing.T) {
	router := setupRoomRouter(newRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.PresenceRepositoryMock)))

	req := httptest.NewRequest(http.MethodPut, "/chat/rooms/a1b2/theme", bytes.NewBufferString(`{"themeMode":"sepia"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateThemeRoomExpired(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(rooms, new(mocks.PresenceRepositoryMock)))

	rooms.On("UpdateTheme", mock.Anything, "gone", "dark").Return(repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodPut, "/chat/rooms/gone/theme", bytes.NewBufferString(`{"themeMode":"dark"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	rooms.AssertExpectations(t)
}

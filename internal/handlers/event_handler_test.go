package handlers_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/pingme/internal/handlers"
	"github.com/thereayou/pingme/internal/models"
	ws "github.com/thereayou/pingme/internal/websocket"
)

// MockEventStore реализует handlers.EventStore поверх testify/mock
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) SaveMessage(message *models.Message) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockEventStore) GetMessage(id uuid.UUID) (*models.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockEventStore) TombstoneMessage(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockEventStore) MarkRoomRead(room models.RoomRef, readerID uuid.UUID) (int64, error) {
	args := m.Called(room, readerID)
	return args.Get(0).(int64), args.Error(1)
}

type testFixture struct {
	store *MockEventStore
	hub   *ws.Hub
	h     *handlers.EventHandler
	room  models.RoomRef
}

func newFixture() *testFixture {
	store := new(MockEventStore)
	hub := ws.NewHub()
	return &testFixture{
		store: store,
		hub:   hub,
		h:     handlers.NewEventHandler(store, hub),
		room:  models.RoomRef{Kind: models.RoomConversation, ID: uuid.New()},
	}
}

func (f *testFixture) connect(userID uuid.UUID) *ws.Client {
	client := ws.NewClient(f.hub, nil, userID, f.room)
	f.hub.Join(f.room, client)
	return client
}

func recvFrame(t *testing.T, client *ws.Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-client.Send:
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		t.Fatal("no frame delivered")
		return nil
	}
}

func TestChatMessagePersistThenBroadcast(t *testing.T) {
	f := newFixture()
	userA := uuid.New()

	a := f.connect(userA)
	b := f.connect(uuid.New())

	f.store.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	err := f.h.HandleEvent(a, &ws.Event{
		Type:    ws.TypeChatMessage,
		UserID:  userA,
		Message: "hi",
	})
	require.NoError(t, err)

	f.store.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.Message"))

	// Эхо отправителю и доставка остальным — один и тот же кадр
	for _, client := range []*ws.Client{a, b} {
		frame := recvFrame(t, client)
		assert.Equal(t, "chat_message", frame["type"])
		assert.Equal(t, "hi", frame["message"])
		assert.Equal(t, userA.String(), frame["user_id"])
		assert.NotEmpty(t, frame["message_id"])

		_, err := time.Parse(time.RFC3339, frame["timestamp"].(string))
		assert.NoError(t, err)
	}
}

func TestChatMessageBroadcastOrderMatchesPersistOrder(t *testing.T) {
	f := newFixture()
	userA := uuid.New()

	a := f.connect(userA)
	b := f.connect(uuid.New())

	f.store.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	texts := []string{"one", "two", "three"}
	for _, text := range texts {
		require.NoError(t, f.h.HandleEvent(a, &ws.Event{
			Type:    ws.TypeChatMessage,
			UserID:  userA,
			Message: text,
		}))
	}

	// Все сессии наблюдают одинаковую последовательность
	for _, client := range []*ws.Client{a, b} {
		for _, text := range texts {
			frame := recvFrame(t, client)
			assert.Equal(t, text, frame["message"])
		}
	}
}

func TestChatMessageWithoutTextOrAttachmentRejected(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	err := f.h.HandleEvent(a, &ws.Event{Type: ws.TypeChatMessage, UserID: userA})
	assert.ErrorIs(t, err, ws.ErrInvalidEvent)

	f.store.AssertNotCalled(t, "SaveMessage", mock.Anything)
	assert.Empty(t, a.Send)
}

func TestChatMessageWithAttachmentSkipsSecondWrite(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	// Вложение уже сохранено внешним путем загрузки
	messageID := uuid.New()
	err := f.h.HandleEvent(a, &ws.Event{
		Type:          ws.TypeChatMessage,
		UserID:        userA,
		AttachmentURL: "/uploads/photo.png",
		IsMedia:       true,
		MessageID:     &messageID,
	})
	require.NoError(t, err)

	f.store.AssertNotCalled(t, "SaveMessage", mock.Anything)

	frame := recvFrame(t, a)
	assert.Equal(t, "/uploads/photo.png", frame["file_url"])
	assert.Equal(t, true, frame["is_media"])
	assert.Equal(t, messageID.String(), frame["message_id"])
}

func TestChatMessageWithAttachmentWithoutIDRejected(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	err := f.h.HandleEvent(a, &ws.Event{
		Type:          ws.TypeChatMessage,
		UserID:        userA,
		AttachmentURL: "/uploads/photo.png",
		IsMedia:       true,
	})
	assert.ErrorIs(t, err, ws.ErrInvalidEvent)

	f.store.AssertNotCalled(t, "SaveMessage", mock.Anything)
	assert.Empty(t, a.Send)
}

func TestChatMessageMissingReplyTargetDegrades(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	replyTo := uuid.New()
	f.store.On("GetMessage", replyTo).Return(nil, errors.New("record not found"))
	f.store.On("SaveMessage", mock.MatchedBy(func(m *models.Message) bool {
		return m.ReplyToID == nil
	})).Return(nil)

	err := f.h.HandleEvent(a, &ws.Event{
		Type:    ws.TypeChatMessage,
		UserID:  userA,
		Message: "orphan reply",
		ReplyTo: &replyTo,
	})
	require.NoError(t, err)

	frame := recvFrame(t, a)
	assert.NotContains(t, frame, "reply_to")
}

func TestChatMessageClientTimestamp(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	supplied := "2024-01-02T03:04:05Z"
	f.store.On("SaveMessage", mock.MatchedBy(func(m *models.Message) bool {
		return m.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	})).Return(nil)

	err := f.h.HandleEvent(a, &ws.Event{
		Type:      ws.TypeChatMessage,
		UserID:    userA,
		Message:   "hi",
		Timestamp: supplied,
	})
	require.NoError(t, err)

	frame := recvFrame(t, a)
	assert.Equal(t, supplied, frame["timestamp"])
}

func TestChatMessageUnparseableTimestampFallsBack(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	before := time.Now().Add(-time.Second)
	f.store.On("SaveMessage", mock.MatchedBy(func(m *models.Message) bool {
		return m.CreatedAt.After(before)
	})).Return(nil)

	err := f.h.HandleEvent(a, &ws.Event{
		Type:      ws.TypeChatMessage,
		UserID:    userA,
		Message:   "hi",
		Timestamp: "yesterday evening",
	})
	require.NoError(t, err)

	f.store.AssertExpectations(t)
}

func TestDeleteMessageBySenderTombstones(t *testing.T) {
	f := newFixture()
	userA := uuid.New()

	a := f.connect(userA)
	b := f.connect(uuid.New())

	message := models.NewMessage(f.room, userA, "hi")
	f.store.On("GetMessage", message.ID).Return(message, nil)
	f.store.On("TombstoneMessage", message.ID).Return(nil)

	err := f.h.HandleEvent(a, &ws.Event{
		Type:      ws.TypeDeleteMessage,
		UserID:    userA,
		MessageID: &message.ID,
	})
	require.NoError(t, err)

	f.store.AssertCalled(t, "TombstoneMessage", message.ID)

	for _, client := range []*ws.Client{a, b} {
		frame := recvFrame(t, client)
		assert.Equal(t, "message_deleted", frame["type"])
		assert.Equal(t, true, frame["deleted"])
		assert.Equal(t, message.ID.String(), frame["message_id"])
	}
}

func TestDeleteMessageByNonSenderRefused(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	userB := uuid.New()

	a := f.connect(userA)
	b := f.connect(userB)

	message := models.NewMessage(f.room, userA, "hi")
	f.store.On("GetMessage", message.ID).Return(message, nil)

	err := f.h.HandleEvent(b, &ws.Event{
		Type:      ws.TypeDeleteMessage,
		UserID:    userB,
		MessageID: &message.ID,
	})
	require.NoError(t, err)

	// Текст не тронут, исход разослан всем с deleted:false
	f.store.AssertNotCalled(t, "TombstoneMessage", mock.Anything)
	assert.Equal(t, "hi", message.Text)

	for _, client := range []*ws.Client{a, b} {
		frame := recvFrame(t, client)
		assert.Equal(t, false, frame["deleted"])
		assert.Equal(t, userB.String(), frame["user_id"])
	}
}

func TestDeleteMessageFromAnotherRoomRefused(t *testing.T) {
	f := newFixture()
	userA := uuid.New()

	a := f.connect(userA)
	b := f.connect(uuid.New())

	// Сообщение отправителя, но из другой комнаты: сессия комнаты X не
	// может удалять в комнате Y
	elsewhere := models.RoomRef{Kind: models.RoomGroup, ID: uuid.New()}
	message := models.NewMessage(elsewhere, userA, "hi")
	f.store.On("GetMessage", message.ID).Return(message, nil)

	err := f.h.HandleEvent(a, &ws.Event{
		Type:      ws.TypeDeleteMessage,
		UserID:    userA,
		MessageID: &message.ID,
	})
	require.NoError(t, err)

	f.store.AssertNotCalled(t, "TombstoneMessage", mock.Anything)
	assert.Equal(t, "hi", message.Text)

	for _, client := range []*ws.Client{a, b} {
		frame := recvFrame(t, client)
		assert.Equal(t, false, frame["deleted"])
	}
}

func TestDeleteUnknownMessageBroadcastsRefusal(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	missing := uuid.New()
	f.store.On("GetMessage", missing).Return(nil, errors.New("record not found"))

	err := f.h.HandleEvent(a, &ws.Event{
		Type:      ws.TypeDeleteMessage,
		UserID:    userA,
		MessageID: &missing,
	})
	require.NoError(t, err)

	frame := recvFrame(t, a)
	assert.Equal(t, false, frame["deleted"])
}

func TestDeleteMessageWithoutIDRejected(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	err := f.h.HandleEvent(a, &ws.Event{Type: ws.TypeDeleteMessage, UserID: userA})
	assert.ErrorIs(t, err, ws.ErrInvalidEvent)
}

func TestMarkReadBroadcastsEphemeralReceipt(t *testing.T) {
	f := newFixture()
	userA := uuid.New()

	a := f.connect(userA)
	b := f.connect(uuid.New())

	err := f.h.HandleEvent(a, &ws.Event{Type: ws.TypeMarkRead, UserID: userA})
	require.NoError(t, err)

	// Квитанция не сохраняется и не возвращается отправителю
	f.store.AssertNotCalled(t, "MarkRoomRead", mock.Anything, mock.Anything)
	assert.Empty(t, a.Send)

	frame := recvFrame(t, b)
	assert.Equal(t, "mark_read", frame["type"])
	assert.Equal(t, userA.String(), frame["user_id"])
}

func TestCallSignalRelayedToOthersOnly(t *testing.T) {
	f := newFixture()
	userA := uuid.New()

	a := f.connect(userA)
	b := f.connect(uuid.New())

	err := f.h.HandleEvent(a, &ws.Event{
		Type:       ws.TypeCallSignal,
		UserID:     userA,
		Payload:    json.RawMessage(`{"sdp":"offer-blob"}`),
		SignalType: "offer",
	})
	require.NoError(t, err)

	assert.Empty(t, a.Send)

	frame := recvFrame(t, b)
	assert.Equal(t, "call_signal", frame["type"])
	assert.Equal(t, "offer", frame["signal_type"])
	assert.Equal(t, userA.String(), frame["sender_id"])
	assert.Equal(t, map[string]interface{}{"sdp": "offer-blob"}, frame["payload"])
}

func TestCallSignalWithoutPayloadRejected(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	err := f.h.HandleEvent(a, &ws.Event{Type: ws.TypeCallSignal, UserID: userA})
	assert.ErrorIs(t, err, ws.ErrInvalidEvent)
}

func TestUnknownEventTypeIgnored(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	err := f.h.HandleEvent(a, &ws.Event{Type: "typing_indicator", UserID: userA})
	assert.NoError(t, err)
	assert.Empty(t, a.Send)
}

func TestChatMessageToEmptyRoomEchoesOnlyToSender(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	f.store.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	err := f.h.HandleEvent(a, &ws.Event{
		Type:    ws.TypeChatMessage,
		UserID:  userA,
		Message: "hi",
	})
	require.NoError(t, err)

	frame := recvFrame(t, a)
	assert.Equal(t, "hi", frame["message"])
	assert.Empty(t, a.Send)
}

func TestPersistenceFailureSurfacesToCaller(t *testing.T) {
	f := newFixture()
	userA := uuid.New()
	a := f.connect(userA)

	f.store.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(errors.New("connection refused"))

	err := f.h.HandleEvent(a, &ws.Event{
		Type:    ws.TypeChatMessage,
		UserID:  userA,
		Message: "hi",
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ws.ErrInvalidEvent)

	// Рассылки не было: broadcast не может стать видимым раньше записи
	assert.Empty(t, a.Send)
}

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/pingme/internal/access"
	"github.com/thereayou/pingme/internal/handlers"
	"github.com/thereayou/pingme/internal/middleware"
	"github.com/thereayou/pingme/internal/models"
	ws "github.com/thereayou/pingme/internal/websocket"
)

func wsTestServer(t *testing.T, userID uuid.UUID, accessStore *MockMessageStore, events *MockEventStore) (*httptest.Server, *ws.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub()
	h := handlers.NewWebSocketHandler(
		hub,
		handlers.NewEventHandler(events, hub),
		access.NewAuthorizer(accessStore),
		events,
	)

	router := gin.New()
	router.GET("/ws/:kind/:id", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	}, h.HandleWebSocket)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, hub
}

func TestOpeningRoomMarksPriorMessagesRead(t *testing.T) {
	userID := uuid.New()
	peer := uuid.New()
	conv := &models.Conversation{ID: uuid.New(), InitiatorID: &userID, ReceiverID: &peer}

	accessStore := new(MockMessageStore)
	accessStore.On("GetConversation", conv.ID).Return(conv, nil)

	events := new(MockEventStore)
	events.On("MarkRoomRead", conv.Room(), userID).Return(int64(2), nil)

	srv, hub := wsTestServer(t, userID, accessStore, events)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/conversation/" + conv.ID.String()
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return len(hub.Members(conv.Room())) == 1
	}, time.Second, 10*time.Millisecond)

	// Открытие комнаты — массовая квитанция от лица открывшего; чужие
	// комнаты и собственные сообщения запрос не затрагивает
	events.AssertCalled(t, "MarkRoomRead", conv.Room(), userID)
	events.AssertNumberOfCalls(t, "MarkRoomRead", 1)
}

func TestWebSocketRejectedBeforeUpgradeForNonMember(t *testing.T) {
	stranger := uuid.New()
	a := uuid.New()
	b := uuid.New()
	conv := &models.Conversation{ID: uuid.New(), InitiatorID: &a, ReceiverID: &b}

	accessStore := new(MockMessageStore)
	accessStore.On("GetConversation", conv.ID).Return(conv, nil)

	events := new(MockEventStore)

	srv, hub := wsTestServer(t, stranger, accessStore, events)

	resp, err := http.Get(srv.URL + "/ws/conversation/" + conv.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, hub.Members(conv.Room()))
	events.AssertNotCalled(t, "MarkRoomRead", mock.Anything, mock.Anything)
}

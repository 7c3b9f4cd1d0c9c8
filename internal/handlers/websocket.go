package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/pingme/internal/access"
	"github.com/thereayou/pingme/internal/middleware"
	"github.com/thereayou/pingme/internal/models"
	ws "github.com/thereayou/pingme/internal/websocket"
)

// WebSocketHandler поднимает живые сессии, привязанные к комнате
type WebSocketHandler struct {
	hub          *ws.Hub
	eventHandler *EventHandler
	authorizer   *access.Authorizer
	store        EventStore
	upgrader     websocket.Upgrader
}

func NewWebSocketHandler(hub *ws.Hub, eventHandler *EventHandler, authorizer *access.Authorizer, store EventStore) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		eventHandler: eventHandler,
		authorizer:   authorizer,
		store:        store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Проверить origin в prod
				return true
			},
		},
	}
}

// HandleWebSocket открывает сессию для комнаты из маршрута. Членство
// проверяется до апгрейда; вход в комнату массово помечает чужие
// сообщения прочитанными.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	uid := userID.(uuid.UUID)

	room, err := models.ParseRoomRef(c.Param("kind"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room"})
		return
	}

	allowed, err := h.authorizer.CanRead(uid, room)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this room"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	// "Seen on open": открытие комнаты — неявная массовая квитанция
	if _, err := h.store.MarkRoomRead(room, uid); err != nil {
		log.Printf("Failed to mark room %s read: %v", room.ID, err)
	}

	client := ws.NewClient(h.hub, conn, uid, room)
	h.hub.Join(room, client)

	go client.WritePump()
	go client.ReadPump(h.eventHandler)
}

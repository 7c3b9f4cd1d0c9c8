package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/pingme/internal/models"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер кадра
	maxMessageSize = 512 * 1024 // 512KB
)

// EventHandler обрабатывает валидированное входящее событие сессии
type EventHandler interface {
	HandleEvent(client *Client, event *Event) error
}

// Client — одна живая сессия: владеет разбором входящих кадров и
// доставкой исходящих. Область видимости сессии — одна комната,
// заданная при подключении.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	hub *Hub

	// Охраняются мьютексом хаба
	room   models.RoomRef
	joined bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, room models.RoomRef) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		hub:    hub,
		room:   room,
	}
}

// Room возвращает комнату, к которой привязана сессия
func (c *Client) Room() models.RoomRef {
	return c.room
}

// ReadPump читает кадры сессии до ее закрытия. Неразбираемый кадр и
// невалидный payload закрывают сессию протокольной ошибкой; незнакомый
// тип события игнорируется ради прямой совместимости.
func (c *Client) ReadPump(handler EventHandler) {
	defer func() {
		c.hub.Leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.closeWithProtocolError("malformed frame")
			break
		}

		// Отправителем всегда считается владелец сессии
		event.UserID = c.UserID

		if handler == nil {
			continue
		}

		if err := handler.HandleEvent(c, &event); err != nil {
			if errors.Is(err, ErrInvalidEvent) {
				c.closeWithProtocolError(err.Error())
				break
			}
			// Ошибка хранилища: хаб не повторяет запись, за повтор
			// отвечает отправитель
			log.Printf("Error handling %s event: %v", event.Type, err)
			c.SendError(err.Error())
		}
	}
}

// WritePump отправляет кадры из очереди сессии и пингует клиента
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.Conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) SendEvent(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) SendError(errorMsg string) {
	c.SendEvent(map[string]string{
		"type":  string(TypeError),
		"error": errorMsg,
	})
}

func (c *Client) closeWithProtocolError(reason string) {
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
}

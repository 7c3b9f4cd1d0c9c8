package handlers

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/models"
	ws "github.com/thereayou/pingme/internal/websocket"
)

// EventStore — операции хранилища, нужные брокеру событий
type EventStore interface {
	SaveMessage(message *models.Message) error
	GetMessage(id uuid.UUID) (*models.Message, error)
	TombstoneMessage(id uuid.UUID) error
	MarkRoomRead(room models.RoomRef, readerID uuid.UUID) (int64, error)
}

// EventHandler маршрутизирует события живых сессий: валидирует,
// фиксирует побочный эффект в хранилище и рассылает результат всем
// текущим сессиям комнаты.
type EventHandler struct {
	store EventStore
	hub   *ws.Hub

	// Сериализует persist-then-broadcast в пределах одной комнаты:
	// рассылка не должна стать видимой раньше записи и не должна
	// переупорядочиваться относительно нее
	mu    sync.Mutex
	locks map[models.RoomRef]*sync.Mutex
}

func NewEventHandler(store EventStore, hub *ws.Hub) *EventHandler {
	return &EventHandler{
		store: store,
		hub:   hub,
		locks: make(map[models.RoomRef]*sync.Mutex),
	}
}

func (h *EventHandler) roomLock(room models.RoomRef) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()

	lock, ok := h.locks[room]
	if !ok {
		lock = &sync.Mutex{}
		h.locks[room] = lock
	}
	return lock
}

func (h *EventHandler) HandleEvent(client *ws.Client, event *ws.Event) error {
	switch event.Type {
	case ws.TypeChatMessage:
		return h.handleChatMessage(client, event)

	case ws.TypeMarkRead:
		return h.handleMarkRead(client, event)

	case ws.TypeDeleteMessage:
		return h.handleDeleteMessage(client, event)

	case ws.TypeCallSignal:
		return h.handleCallSignal(client, event)

	default:
		log.Printf("Ignoring unknown event type: %s", event.Type)
		return nil
	}
}

// handleChatMessage выполняет persist-then-broadcast. Сообщение с уже
// заполненным file_url сохранено внешним путем загрузки, для него
// выполняется только рассылка — без второй записи.
func (h *EventHandler) handleChatMessage(client *ws.Client, event *ws.Event) error {
	if event.Message == "" && event.AttachmentURL == "" {
		return ws.ErrInvalidEvent
	}

	room := client.Room()

	lock := h.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	out := ws.ChatMessageEvent{
		Type:          ws.TypeChatMessage,
		UserID:        event.UserID,
		Message:       event.Message,
		AttachmentURL: event.AttachmentURL,
		IsMedia:       event.IsMedia,
	}

	if event.AttachmentURL != "" {
		// Путь загрузки уже создал запись и вернул ее id; кадр без него
		// невалиден
		if event.MessageID == nil {
			return ws.ErrInvalidEvent
		}
		out.MessageID = *event.MessageID
		out.ReplyTo = event.ReplyTo
		out.Timestamp = ws.FormatTimestamp(eventTime(event.Timestamp))
		h.broadcast(room, out)
		return nil
	}

	message := models.NewMessage(room, event.UserID, event.Message)
	message.CreatedAt = eventTime(event.Timestamp)

	if event.ReplyTo != nil {
		// Ссылка на несуществующее сообщение деградирует до отсутствия
		// ответа, отправка не срывается
		if _, err := h.store.GetMessage(*event.ReplyTo); err == nil {
			message.ReplyToID = event.ReplyTo
		}
	}

	if err := h.store.SaveMessage(message); err != nil {
		log.Printf("Failed to save message: %v", err)
		return err
	}

	out.MessageID = message.ID
	out.ReplyTo = message.ReplyToID
	out.Timestamp = ws.FormatTimestamp(message.CreatedAt)
	h.broadcast(room, out)
	return nil
}

// handleMarkRead рассылает эфемерную квитанцию прочтения. Записи в
// хранилище нет: массовая отметка прочитанного происходит при открытии
// комнаты.
func (h *EventHandler) handleMarkRead(client *ws.Client, event *ws.Event) error {
	receipt := ws.ReadReceiptEvent{
		Type:   ws.TypeMarkRead,
		UserID: event.UserID,
	}

	data, err := json.Marshal(receipt)
	if err != nil {
		return err
	}

	h.hub.BroadcastExcept(client.Room(), data, client)
	return nil
}

// handleDeleteMessage выполняет мягкое удаление. Удалять может только
// отправитель; исход рассылается всем участникам в любом случае, чтобы
// управляющий канал комнаты оставался живым.
func (h *EventHandler) handleDeleteMessage(client *ws.Client, event *ws.Event) error {
	if event.MessageID == nil {
		return ws.ErrInvalidEvent
	}

	room := client.Room()

	lock := h.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	deleted := false

	message, err := h.store.GetMessage(*event.MessageID)
	switch {
	case err != nil:
		log.Printf("Delete of unknown message %s: %v", event.MessageID, err)
	case message.Room() != room:
		// Сессия привязана к одной комнате: чужую комнату через нее не
		// трогают, ее участники об этом кадре не узнают
	case !message.IsSender(event.UserID):
		// Не отправитель: операция отклоняется, рассылается deleted:false
	default:
		if err := h.store.TombstoneMessage(message.ID); err != nil {
			log.Printf("Failed to tombstone message %s: %v", message.ID, err)
		} else {
			deleted = true
		}
	}

	h.broadcast(room, ws.MessageDeletedEvent{
		Type:      ws.TypeMessageDeleted,
		MessageID: *event.MessageID,
		Deleted:   deleted,
		UserID:    event.UserID,
	})
	return nil
}

// handleCallSignal ретранслирует сигнальный кадр WebRTC остальным
// участникам комнаты. Payload не инспектируется и не сохраняется.
func (h *EventHandler) handleCallSignal(client *ws.Client, event *ws.Event) error {
	if event.SignalType == "" || len(event.Payload) == 0 {
		return ws.ErrInvalidEvent
	}

	signal := ws.CallSignalEvent{
		Type:       ws.TypeCallSignal,
		SenderID:   event.UserID,
		Payload:    event.Payload,
		SignalType: event.SignalType,
	}

	data, err := json.Marshal(signal)
	if err != nil {
		return err
	}

	h.hub.BroadcastExcept(client.Room(), data, client)
	return nil
}

func (h *EventHandler) broadcast(room models.RoomRef, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %T: %v", event, err)
		return
	}
	h.hub.Broadcast(room, data)
}

// eventTime выбирает время сообщения: разбираемая клиентская метка,
// иначе серверное время
func eventTime(supplied string) time.Time {
	if supplied != "" {
		if t, err := time.Parse(time.RFC3339, supplied); err == nil {
			return t
		}
	}
	return time.Now()
}

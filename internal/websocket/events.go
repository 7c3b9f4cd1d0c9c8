package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType определяет типы событий живого канала
type EventType string

const (
	// Входящие от клиента
	TypeChatMessage   EventType = "chat_message"
	TypeMarkRead      EventType = "mark_read"
	TypeDeleteMessage EventType = "delete_message"
	TypeCallSignal    EventType = "call_signal"

	// Только исходящие
	TypeMessageDeleted EventType = "message_deleted"
	TypeError          EventType = "error"
)

// Event — один входящий кадр. Кадры плоские: состав значимых полей
// зависит от Type, лишние поля игнорируются.
type Event struct {
	Type   EventType `json:"type"`
	UserID uuid.UUID `json:"user_id"`

	// chat_message
	Message       string     `json:"message"`
	ReplyTo       *uuid.UUID `json:"reply_to,omitempty"`
	AttachmentURL string     `json:"file_url,omitempty"`
	IsMedia       bool       `json:"is_media,omitempty"`
	Timestamp     string     `json:"timestamp,omitempty"`

	// delete_message, а также id уже сохраненного медиа-сообщения
	MessageID *uuid.UUID `json:"message_id,omitempty"`

	// call_signal: payload не интерпретируется хабом
	Payload    json.RawMessage `json:"payload,omitempty"`
	SignalType string          `json:"signal_type,omitempty"`
}

// ChatMessageEvent — материализованное сообщение, рассылаемое всем
// участникам комнаты, включая отправителя (единообразное эхо)
type ChatMessageEvent struct {
	Type          EventType  `json:"type"`
	MessageID     uuid.UUID  `json:"message_id"`
	UserID        uuid.UUID  `json:"user_id"`
	Message       string     `json:"message"`
	ReplyTo       *uuid.UUID `json:"reply_to,omitempty"`
	AttachmentURL string     `json:"file_url,omitempty"`
	IsMedia       bool       `json:"is_media,omitempty"`
	IsForwarded   bool       `json:"is_forwarded,omitempty"`
	Timestamp     string     `json:"timestamp"`
}

// MessageDeletedEvent рассылается независимо от исхода удаления, чтобы
// клиенты могли примирить оптимистичное локальное состояние
type MessageDeletedEvent struct {
	Type      EventType `json:"type"`
	MessageID uuid.UUID `json:"message_id"`
	Deleted   bool      `json:"deleted"`
	UserID    uuid.UUID `json:"user_id"`
}

// ReadReceiptEvent — эфемерная квитанция "пользователь увидел комнату"
type ReadReceiptEvent struct {
	Type   EventType `json:"type"`
	UserID uuid.UUID `json:"user_id"`
}

// CallSignalEvent переносит offer/answer/ICE-candidate как есть
type CallSignalEvent struct {
	Type       EventType       `json:"type"`
	SenderID   uuid.UUID       `json:"sender_id"`
	Payload    json.RawMessage `json:"payload"`
	SignalType string          `json:"signal_type"`
}

// FormatTimestamp приводит время к ISO-8601 для исходящих кадров
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

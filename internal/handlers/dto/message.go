package dto

import (
	"time"

	"github.com/google/uuid"
)

// MessageResponse — сообщение в порядке отрисовки комнаты
type MessageResponse struct {
	ID            uuid.UUID     `json:"id"`
	SenderID      *uuid.UUID    `json:"sender_id,omitempty"`
	Text          string        `json:"text"`
	AttachmentURL string        `json:"file_url,omitempty"`
	IsMedia       bool          `json:"is_media"`
	IsForwarded   bool          `json:"is_forwarded"`
	IsRead        bool          `json:"is_read"`
	ReplyTo       *ReplyPreview `json:"reply_to,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type ReplyPreview struct {
	ID       uuid.UUID  `json:"id"`
	SenderID *uuid.UUID `json:"sender_id,omitempty"`
	Text     string     `json:"text"`
}

// ChatListEntry — строка списка чатов: существующий диалог или контакт,
// с которым чата еще нет
type ChatListEntry struct {
	Type        string     `json:"type"` // chat | contact
	ID          uuid.UUID  `json:"id"`
	DisplayName string     `json:"display_name"`
	Preview     string     `json:"preview"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// TombstoneText подставляется вместо текста при мягком удалении.
// Остальные поля записи не трогаются.
const TombstoneText = "This message was deleted"

type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConversationID *uuid.UUID `gorm:"type:uuid;index"`
	GroupID        *uuid.UUID `gorm:"type:uuid;index"`
	ChannelID      *uuid.UUID `gorm:"type:uuid;index"`
	SenderID       *uuid.UUID `gorm:"type:uuid"`
	Text           string
	AttachmentURL  string
	IsMedia        bool       `gorm:"default:false"`
	IsForwarded    bool       `gorm:"default:false"`
	IsRead         bool       `gorm:"default:false"`
	ReplyToID      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time  `gorm:"index"`

	// Связи
	Sender  *User    `gorm:"foreignKey:SenderID"`
	ReplyTo *Message `gorm:"foreignKey:ReplyToID"`
}

// NewMessage создает сообщение, привязанное ровно к одной комнате.
// Принадлежность фиксируется здесь, а не nullability-конвенцией в БД.
func NewMessage(room RoomRef, senderID uuid.UUID, text string) *Message {
	msg := &Message{
		ID:        uuid.New(),
		SenderID:  &senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	id := room.ID
	switch room.Kind {
	case RoomGroup:
		msg.GroupID = &id
	case RoomChannel:
		msg.ChannelID = &id
	default:
		msg.ConversationID = &id
	}
	return msg
}

// Room возвращает тегированную ссылку на комнату сообщения
func (m *Message) Room() RoomRef {
	switch {
	case m.GroupID != nil:
		return RoomRef{Kind: RoomGroup, ID: *m.GroupID}
	case m.ChannelID != nil:
		return RoomRef{Kind: RoomChannel, ID: *m.ChannelID}
	case m.ConversationID != nil:
		return RoomRef{Kind: RoomConversation, ID: *m.ConversationID}
	}
	return RoomRef{}
}

func (m *Message) IsDeleted() bool {
	return m.Text == TombstoneText
}

func (m *Message) IsSender(userID uuid.UUID) bool {
	return m.SenderID != nil && *m.SenderID == userID
}

package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Conversation — личный чат двух пользователей. Для каждой
// неупорядоченной пары участников существует не более одной записи.
type Conversation struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	InitiatorID *uuid.UUID `gorm:"type:uuid;index:idx_conversation_pair,unique"`
	ReceiverID  *uuid.UUID `gorm:"type:uuid;index:idx_conversation_pair,unique"`
	CreatedAt   time.Time

	// Связи
	Initiator *User     `gorm:"foreignKey:InitiatorID"`
	Receiver  *User     `gorm:"foreignKey:ReceiverID"`
	Messages  []Message `gorm:"foreignKey:ConversationID"`
}

// CanonicalPair приводит неупорядоченную пару участников к
// каноническому порядку хранения: меньший UUID всегда первый. Благодаря
// этому уникальный индекс по (initiator_id, receiver_id) запирает пару
// независимо от того, кто кому написал первым.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

func (c *Conversation) Room() RoomRef {
	return RoomRef{Kind: RoomConversation, ID: c.ID}
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	if c.InitiatorID != nil && *c.InitiatorID == userID {
		return true
	}
	return c.ReceiverID != nil && *c.ReceiverID == userID
}

// OtherParticipant возвращает собеседника userID, nil если аккаунт удален
func (c *Conversation) OtherParticipant(userID uuid.UUID) *User {
	if c.InitiatorID != nil && *c.InitiatorID == userID {
		return c.Receiver
	}
	return c.Initiator
}

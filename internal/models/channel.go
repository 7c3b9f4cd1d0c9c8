package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel — широковещательный канал (один ко многим). Публичные каналы
// читаемы любым пользователем, приватные — только подписчиками.
type Channel struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	CreatorID   uuid.UUID `gorm:"type:uuid;not null"`
	IsPublic    bool      `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Связи
	Creator     *User     `gorm:"foreignKey:CreatorID"`
	Subscribers []User    `gorm:"many2many:channel_subscribers"`
	Messages    []Message `gorm:"foreignKey:ChannelID"`
}

func (ch *Channel) Room() RoomRef {
	return RoomRef{Kind: RoomChannel, ID: ch.ID}
}

func (ch *Channel) HasSubscriber(userID uuid.UUID) bool {
	if ch.CreatorID == userID {
		return true
	}
	for _, s := range ch.Subscribers {
		if s.ID == userID {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Group — групповой чат. Создатель всегда считается участником.
type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	CreatorID   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Связи
	Creator  *User     `gorm:"foreignKey:CreatorID"`
	Members  []User    `gorm:"many2many:group_members"`
	Messages []Message `gorm:"foreignKey:GroupID"`
}

func (g *Group) Room() RoomRef {
	return RoomRef{Kind: RoomGroup, ID: g.ID}
}

func (g *Group) HasMember(userID uuid.UUID) bool {
	if g.CreatorID == userID {
		return true
	}
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

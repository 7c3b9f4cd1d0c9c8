package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username         string    `gorm:"uniqueIndex;not null"`
	Email            string    `gorm:"uniqueIndex;not null"`
	Mobile           string    `gorm:"uniqueIndex;not null"`
	PasswordHash     string    `gorm:"not null"`
	IsMobileVerified bool      `gorm:"default:false"`
	LastSeenAt       time.Time
	CreatedAt        time.Time
}

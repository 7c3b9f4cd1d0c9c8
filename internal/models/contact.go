package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact — запись телефонной книги, уникальная для пары (владелец,
// сохраненный пользователь). Name — имя, под которым владелец сохранил
// контакт, оно перекрывает отображаемое имя.
type Contact struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contact_owner_saved"`
	SavedUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contact_owner_saved"`
	Name        string    `gorm:"not null"`
	CreatedAt   time.Time

	// Связи
	SavedUser *User `gorm:"foreignKey:SavedUserID"`
}

// DisplayName возвращает сохраненное имя контакта, иначе номер телефона,
// иначе username
func DisplayName(contact *Contact, target *User) string {
	if contact != nil && contact.Name != "" {
		return contact.Name
	}
	if target == nil {
		return ""
	}
	if target.Mobile != "" {
		return target.Mobile
	}
	return target.Username
}

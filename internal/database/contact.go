package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveContact(contact *models.Contact) error {
	return d.db.Create(contact).Error
}

func (d *Database) GetContact(id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := d.db.
		Preload("SavedUser").
		First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindContact ищет запись телефонной книги владельца для конкретного
// пользователя; (nil, nil) если контакт не сохранен
func (d *Database) FindContact(ownerID, savedUserID uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := d.db.
		Preload("SavedUser").
		First(&contact, "owner_id = ? AND saved_user_id = ?", ownerID, savedUserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// UserContacts возвращает телефонную книгу владельца; query фильтрует
// по сохраненному имени или номеру
func (d *Database) UserContacts(ownerID uuid.UUID, query string) ([]models.Contact, error) {
	var contacts []models.Contact

	q := d.db.Where("contacts.owner_id = ?", ownerID)
	if query != "" {
		q = q.Joins("JOIN users ON users.id = contacts.saved_user_id").
			Where("contacts.name ILIKE ? OR users.mobile ILIKE ?", "%"+query+"%", "%"+query+"%")
	}

	err := q.Preload("SavedUser").Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// DisplayName возвращает имя target так, как его видит owner: имя из
// телефонной книги, иначе номер, иначе username
func (d *Database) DisplayName(ownerID uuid.UUID, target *models.User) string {
	if target == nil {
		return ""
	}
	contact, err := d.FindContact(ownerID, target.ID)
	if err != nil {
		return target.Username
	}
	return models.DisplayName(contact, target)
}

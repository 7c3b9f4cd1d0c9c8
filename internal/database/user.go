package database

import (
	"time"

	"github.com/thereayou/pingme/internal/models"
)

func (d *Database) SaveUser(user *models.User) error {
	return d.db.Create(user).Error
}

func (d *Database) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByMobile(mobile string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "mobile = ?", mobile).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) UpdateUser(user *models.User) error {
	return d.db.Save(user).Error
}

func (d *Database) UpdateLastSeen(id string) error {
	return d.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now()).Error
}

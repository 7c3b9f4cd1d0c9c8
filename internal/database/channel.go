package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateChannel(channel *models.Channel) error {
	return d.db.Create(channel).Error
}

func (d *Database) GetChannel(id uuid.UUID) (*models.Channel, error) {
	var channel models.Channel
	err := d.db.
		Preload("Creator").
		Preload("Subscribers").
		First(&channel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (d *Database) UpdateChannel(channel *models.Channel) error {
	return d.db.Save(channel).Error
}

// ListChannels возвращает публичные каналы плюс каналы, на которые
// пользователь подписан или которые он создал
func (d *Database) ListChannels(userID uuid.UUID) ([]models.Channel, error) {
	var channels []models.Channel
	err := d.db.
		Joins("LEFT JOIN channel_subscribers cs ON cs.channel_id = channels.id").
		Where("channels.is_public = true OR channels.creator_id = ? OR cs.user_id = ?", userID, userID).
		Group("channels.id").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (d *Database) SubscribeToChannel(channelID, userID uuid.UUID) error {
	var user models.User
	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	var channel models.Channel
	if err := d.db.First(&channel, "id = ?", channelID).Error; err != nil {
		return err
	}

	return d.db.Model(&channel).Association("Subscribers").Append(&user)
}

func (d *Database) UnsubscribeFromChannel(channelID, userID uuid.UUID) error {
	var user models.User
	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	var channel models.Channel
	if err := d.db.First(&channel, "id = ?", channelID).Error; err != nil {
		return err
	}

	return d.db.Model(&channel).Association("Subscribers").Delete(&user)
}

func (d *Database) DeleteChannel(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Message{}, "channel_id = ?", id).Error; err != nil {
			return err
		}

		var channel models.Channel
		if err := tx.First(&channel, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Model(&channel).Association("Subscribers").Clear(); err != nil {
			return err
		}

		return tx.Delete(&channel).Error
	})
}

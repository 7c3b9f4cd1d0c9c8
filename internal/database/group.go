package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateGroup(group *models.Group) error {
	return d.db.Create(group).Error
}

func (d *Database) GetGroup(id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := d.db.
		Preload("Creator").
		Preload("Members").
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (d *Database) UpdateGroup(group *models.Group) error {
	return d.db.Save(group).Error
}

func (d *Database) UserGroups(userID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := d.db.
		Joins("LEFT JOIN group_members gm ON gm.group_id = groups.id").
		Where("groups.creator_id = ? OR gm.user_id = ?", userID, userID).
		Group("groups.id").
		Preload("Members").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (d *Database) AddGroupMember(groupID, userID uuid.UUID) error {
	var user models.User
	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	var group models.Group
	if err := d.db.First(&group, "id = ?", groupID).Error; err != nil {
		return err
	}

	return d.db.Model(&group).Association("Members").Append(&user)
}

func (d *Database) RemoveGroupMember(groupID, userID uuid.UUID) error {
	var user models.User
	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	var group models.Group
	if err := d.db.First(&group, "id = ?", groupID).Error; err != nil {
		return err
	}

	return d.db.Model(&group).Association("Members").Delete(&user)
}

// DeleteGroup каскадно удаляет группу: сообщения, связи участников,
// затем саму запись
func (d *Database) DeleteGroup(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Message{}, "group_id = ?", id).Error; err != nil {
			return err
		}

		var group models.Group
		if err := tx.First(&group, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Model(&group).Association("Members").Clear(); err != nil {
			return err
		}

		return tx.Delete(&group).Error
	})
}

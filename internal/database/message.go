package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/models"
)

func (d *Database) SaveMessage(message *models.Message) error {
	return d.db.Create(message).Error
}

func (d *Database) GetMessage(id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := d.db.First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// RoomMessages возвращает сообщения комнаты в порядке отрисовки:
// по времени создания, при равенстве — по id
func (d *Database) RoomMessages(room models.RoomRef) ([]models.Message, error) {
	var messages []models.Message

	err := d.db.
		Where(roomColumn(room)+" = ?", room.ID).
		Order("created_at ASC, id ASC").
		Preload("Sender").
		Preload("ReplyTo").
		Find(&messages).Error

	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (d *Database) LastRoomMessage(room models.RoomRef) (*models.Message, error) {
	var message models.Message
	err := d.db.
		Where(roomColumn(room)+" = ?", room.ID).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkRoomRead помечает прочитанными все чужие сообщения комнаты одним
// условным UPDATE ("seen on open"). Чужие комнаты и уже прочитанные
// записи не затрагиваются.
func (d *Database) MarkRoomRead(room models.RoomRef, readerID uuid.UUID) (int64, error) {
	res := d.db.Model(&models.Message{}).
		Where(roomColumn(room)+" = ? AND is_read = false AND (sender_id IS NULL OR sender_id <> ?)", room.ID, readerID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// TombstoneMessage выполняет мягкое удаление: заменяется только текст,
// id, вложение, время и ссылки ответов сохраняются
func (d *Database) TombstoneMessage(id uuid.UUID) error {
	return d.db.Model(&models.Message{}).
		Where("id = ?", id).
		Update("text", models.TombstoneText).Error
}

// HardDeleteMessage безвозвратно удаляет запись
func (d *Database) HardDeleteMessage(id uuid.UUID) error {
	return d.db.Delete(&models.Message{}, "id = ?", id).Error
}

// HardDeleteOwnedMessages удаляет из набора только записи, принадлежащие
// ownerID; чужие id молча пропускаются. Возвращает число удаленных строк.
func (d *Database) HardDeleteOwnedMessages(ids []uuid.UUID, ownerID uuid.UUID) (int64, error) {
	res := d.db.Delete(&models.Message{}, "id IN ? AND sender_id = ?", ids, ownerID)
	return res.RowsAffected, res.Error
}

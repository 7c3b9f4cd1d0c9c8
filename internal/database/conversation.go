package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/models"
	"gorm.io/gorm"
)

func (d *Database) GetConversation(id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := d.db.
		Preload("Initiator").
		Preload("Receiver").
		First(&conv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetOrCreateConversation ищет личный чат для неупорядоченной пары
// пользователей и создает его, если чата еще нет. Повторный вызов
// всегда возвращает существующую запись.
func (d *Database) GetOrCreateConversation(userID, peerID uuid.UUID) (*models.Conversation, error) {
	first, second := models.CanonicalPair(userID, peerID)

	conv, err := d.findConversationPair(first, second)
	if err == nil {
		return conv, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.Conversation{
		InitiatorID: &first,
		ReceiverID:  &second,
	}

	// Вставка всегда в каноническом порядке, поэтому при гонке двух
	// первых сообщений проигравший упирается в idx_conversation_pair
	// и перечитывает запись победителя
	if createErr := d.db.Create(&created).Error; createErr != nil {
		if conv, err := d.findConversationPair(first, second); err == nil {
			return conv, nil
		}
		return nil, createErr
	}

	return d.GetConversation(created.ID)
}

// findConversationPair ищет чат пары в обоих порядках: записи, созданные
// до канонизации, могли сохранить участников как угодно
func (d *Database) findConversationPair(first, second uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := d.db.
		Where("(initiator_id = ? AND receiver_id = ?) OR (initiator_id = ? AND receiver_id = ?)",
			first, second, second, first).
		Preload("Initiator").
		Preload("Receiver").
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (d *Database) UserConversations(userID uuid.UUID) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := d.db.
		Where("initiator_id = ? OR receiver_id = ?", userID, userID).
		Preload("Initiator").
		Preload("Receiver").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// DeleteConversation каскадно удаляет чат вместе с сообщениями
func (d *Database) DeleteConversation(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Message{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, "id = ?", id).Error
	})
}

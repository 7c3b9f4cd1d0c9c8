package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/access"
	"github.com/thereayou/pingme/internal/handlers/dto"
	"github.com/thereayou/pingme/internal/middleware"
	"github.com/thereayou/pingme/internal/models"
)

// MessageStore — операции хранилища для истории, пересылки и удаления
// комнат
type MessageStore interface {
	RoomMessages(room models.RoomRef) ([]models.Message, error)
	GetMessage(id uuid.UUID) (*models.Message, error)
	SaveMessage(message *models.Message) error
	HardDeleteMessage(id uuid.UUID) error
	HardDeleteOwnedMessages(ids []uuid.UUID, ownerID uuid.UUID) (int64, error)
	GetConversation(id uuid.UUID) (*models.Conversation, error)
	DeleteConversation(id uuid.UUID) error
	GetGroup(id uuid.UUID) (*models.Group, error)
	DeleteGroup(id uuid.UUID) error
	GetChannel(id uuid.UUID) (*models.Channel, error)
	DeleteChannel(id uuid.UUID) error
}

// MessageHandler обслуживает операции над историей вне живого канала:
// выборку, жесткое удаление, пересылку и их массовые варианты
type MessageHandler struct {
	store      MessageStore
	authorizer *access.Authorizer
}

func NewMessageHandler(store MessageStore, authorizer *access.Authorizer) *MessageHandler {
	return &MessageHandler{store: store, authorizer: authorizer}
}

// RoomMessages возвращает историю комнаты в порядке отрисовки
func (h *MessageHandler) RoomMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room, err := models.ParseRoomRef(c.Param("kind"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room"})
		return
	}

	if !h.requireRead(c, userID, room) {
		return
	}

	messages, err := h.store.RoomMessages(room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	responses := make([]dto.MessageResponse, len(messages))
	for i := range messages {
		responses[i] = formatMessage(&messages[i])
	}

	c.JSON(http.StatusOK, gin.H{"messages": responses})
}

// HardDeleteMessage безвозвратно удаляет сообщение отправителя
func (h *MessageHandler) HardDeleteMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	message, err := h.store.GetMessage(messageID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}

	if !message.IsSender(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete a message"})
		return
	}

	if err := h.store.HardDeleteMessage(messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

// BulkDeleteMessages жестко удаляет только сообщения, принадлежащие
// вызывающему; чужие id из набора молча пропускаются. Счетчик отражает
// фактически удаленные строки, повторный вызов безопасен.
func (h *MessageHandler) BulkDeleteMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		MessageIDs []uuid.UUID `json:"message_ids" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.store.HardDeleteOwnedMessages(req.MessageIDs, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ForwardMessage копирует текст и вложение сообщения в другую комнату
// вызывающего. Оригинал не изменяется, копия получает новый id и флаг
// is_forwarded.
func (h *MessageHandler) ForwardMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req struct {
		RoomKind string `json:"room_kind" binding:"required"`
		RoomID   string `json:"room_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := models.ParseRoomRef(req.RoomKind, req.RoomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room"})
		return
	}

	forwarded, status, err := h.forwardOne(userID, messageID, target)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, formatMessage(forwarded))
}

// BulkForwardMessages применяет пересылку к каждому id по очереди;
// сбой одного id не прерывает остальные
func (h *MessageHandler) BulkForwardMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		MessageIDs []uuid.UUID `json:"message_ids" binding:"required,min=1"`
		RoomKind   string      `json:"room_kind" binding:"required"`
		RoomID     string      `json:"room_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := models.ParseRoomRef(req.RoomKind, req.RoomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room"})
		return
	}

	forwarded := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, id := range req.MessageIDs {
		msg, _, err := h.forwardOne(userID, id, target)
		if err != nil {
			continue
		}
		forwarded = append(forwarded, msg.ID)
	}

	c.JSON(http.StatusOK, gin.H{"forwarded": forwarded, "count": len(forwarded)})
}

func (h *MessageHandler) forwardOne(userID, messageID uuid.UUID, target models.RoomRef) (*models.Message, int, error) {
	original, err := h.store.GetMessage(messageID)
	if err != nil {
		return nil, http.StatusNotFound, ErrMessageNotFound
	}

	canRead, err := h.authorizer.CanRead(userID, original.Room())
	if err != nil || !canRead {
		return nil, http.StatusForbidden, ErrForbidden
	}

	canWrite, err := h.authorizer.CanWrite(userID, target)
	if err != nil || !canWrite {
		return nil, http.StatusForbidden, ErrForbidden
	}

	forwarded := models.NewMessage(target, userID, original.Text)
	forwarded.AttachmentURL = original.AttachmentURL
	forwarded.IsMedia = original.IsMedia
	forwarded.IsForwarded = true

	if err := h.store.SaveMessage(forwarded); err != nil {
		return nil, http.StatusInternalServerError, ErrPersistence
	}

	return forwarded, http.StatusCreated, nil
}

// DeleteRoom каскадно удаляет комнату вместе с сообщениями. Личный чат
// может удалить любой участник, группу и канал — только создатель.
func (h *MessageHandler) DeleteRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room, err := models.ParseRoomRef(c.Param("kind"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room"})
		return
	}

	switch room.Kind {
	case models.RoomConversation:
		conv, err := h.store.GetConversation(room.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if !conv.HasParticipant(userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
			return
		}
		err = h.store.DeleteConversation(room.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
			return
		}

	case models.RoomGroup:
		group, err := h.store.GetGroup(room.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if group.CreatorID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can delete a group"})
			return
		}
		if err := h.store.DeleteGroup(room.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
			return
		}

	case models.RoomChannel:
		channel, err := h.store.GetChannel(room.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if channel.CreatorID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can delete a channel"})
			return
		}
		if err := h.store.DeleteChannel(room.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

func (h *MessageHandler) requireRead(c *gin.Context, userID uuid.UUID, room models.RoomRef) bool {
	allowed, err := h.authorizer.CanRead(userID, room)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this room"})
		return false
	}
	return true
}

func formatMessage(msg *models.Message) dto.MessageResponse {
	response := dto.MessageResponse{
		ID:            msg.ID,
		SenderID:      msg.SenderID,
		Text:          msg.Text,
		AttachmentURL: msg.AttachmentURL,
		IsMedia:       msg.IsMedia,
		IsForwarded:   msg.IsForwarded,
		IsRead:        msg.IsRead,
		CreatedAt:     msg.CreatedAt,
	}

	if msg.ReplyTo != nil {
		response.ReplyTo = &dto.ReplyPreview{
			ID:       msg.ReplyTo.ID,
			SenderID: msg.ReplyTo.SenderID,
			Text:     msg.ReplyTo.Text,
		}
	}

	return response
}

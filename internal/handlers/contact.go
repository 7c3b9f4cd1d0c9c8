package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/database"
	"github.com/thereayou/pingme/internal/middleware"
	"github.com/thereayou/pingme/internal/models"
)

type ContactHandler struct {
	db *database.Database
}

func NewContactHandler(db *database.Database) *ContactHandler {
	return &ContactHandler{db: db}
}

// AddContact сохраняет номер в телефонную книгу. Номер должен быть
// зарегистрирован, себя сохранить нельзя, повторное сохранение — no-op.
func (h *ContactHandler) AddContact(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Mobile string `json:"mobile" binding:"required"`
		Name   string `json:"name" binding:"required,max=100"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.db.FindUserByMobile(req.Mobile)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "number not registered"})
		return
	}

	if target.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot add yourself"})
		return
	}

	existing, err := h.db.FindContact(userID, target.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save contact"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, formatContact(existing))
		return
	}

	contact := &models.Contact{
		OwnerID:     userID,
		SavedUserID: target.ID,
		Name:        req.Name,
		CreatedAt:   time.Now(),
	}

	if err := h.db.SaveContact(contact); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save contact"})
		return
	}

	contact.SavedUser = target

	c.JSON(http.StatusCreated, formatContact(contact))
}

// ListContacts возвращает телефонную книгу, опционально с поиском по
// имени или номеру
func (h *ContactHandler) ListContacts(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	contacts, err := h.db.UserContacts(userID, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get contacts"})
		return
	}

	responses := make([]gin.H, len(contacts))
	for i := range contacts {
		responses[i] = formatContact(&contacts[i])
	}

	c.JSON(http.StatusOK, gin.H{"contacts": responses})
}

// StartChatFromContact открывает (или создает) личный чат с сохраненным
// контактом
func (h *ContactHandler) StartChatFromContact(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	contact, err := h.db.GetContact(contactID)
	if err != nil || contact.OwnerID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		return
	}

	conv, err := h.db.GetOrCreateConversation(userID, contact.SavedUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conv.ID,
		"display_name":    models.DisplayName(contact, contact.SavedUser),
	})
}

// GetProfile возвращает профиль пользователя так, как его видит
// вызывающий: с именем из телефонной книги, если контакт сохранен
func (h *ContactHandler) GetProfile(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	target, err := h.db.GetUser(targetID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	contact, _ := h.db.FindContact(userID, targetID)

	c.JSON(http.StatusOK, gin.H{
		"id":           target.ID,
		"username":     target.Username,
		"mobile":       target.Mobile,
		"display_name": models.DisplayName(contact, target),
		"is_contact":   contact != nil,
		"last_seen_at": target.LastSeenAt,
	})
}

func formatContact(contact *models.Contact) gin.H {
	response := gin.H{
		"id":         contact.ID,
		"name":       contact.Name,
		"created_at": contact.CreatedAt,
	}

	if contact.SavedUser != nil {
		response["user"] = gin.H{
			"id":       contact.SavedUser.ID,
			"username": contact.SavedUser.Username,
			"mobile":   contact.SavedUser.Mobile,
		}
	}

	return response
}

package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/database"
	"github.com/thereayou/pingme/internal/handlers/dto"
	"github.com/thereayou/pingme/internal/middleware"
	"github.com/thereayou/pingme/internal/models"
)

type ConversationHandler struct {
	db *database.Database
}

func NewConversationHandler(db *database.Database) *ConversationHandler {
	return &ConversationHandler{db: db}
}

// StartConversation создает личный чат с пользователем или возвращает
// существующий: для неупорядоченной пары чат всегда один
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	peerID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if peerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start chat with yourself"})
		return
	}

	if _, err := h.db.GetUser(peerID.String()); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	conv, err := h.db.GetOrCreateConversation(userID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start conversation"})
		return
	}

	c.JSON(http.StatusOK, h.formatConversation(userID, conv))
}

// ListConversations возвращает список чатов с превью последнего
// сообщения, свежие сверху. Поиск объединяет существующие чаты и
// сохраненные контакты, с которыми чата еще нет.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	query := strings.TrimSpace(c.Query("search"))

	convs, err := h.db.UserConversations(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get conversations"})
		return
	}

	entries := make([]dto.ChatListEntry, 0, len(convs))
	seen := make(map[uuid.UUID]bool)

	for _, conv := range convs {
		other := conv.OtherParticipant(userID)
		displayName := h.db.DisplayName(userID, other)

		if query != "" && !matchesPeer(query, displayName, other) {
			continue
		}

		entry := dto.ChatListEntry{
			Type:        "chat",
			ID:          conv.ID,
			DisplayName: displayName,
			Preview:     "New connection",
		}
		ts := conv.CreatedAt
		if last, err := h.db.LastRoomMessage(conv.Room()); err == nil {
			entry.Preview = last.Text
			ts = last.CreatedAt
		}
		entry.Timestamp = &ts

		entries = append(entries, entry)
		if other != nil {
			seen[other.ID] = true
		}
	}

	// Контакты, попавшие в поиск, но без чата: с ними можно начать чат
	// прямо из результатов
	if query != "" {
		contacts, err := h.db.UserContacts(userID, query)
		if err == nil {
			for _, contact := range contacts {
				if seen[contact.SavedUserID] {
					continue
				}
				preview := ""
				if contact.SavedUser != nil {
					preview = "Mobile: " + contact.SavedUser.Mobile
				}
				entries = append(entries, dto.ChatListEntry{
					Type:        "contact",
					ID:          contact.ID,
					DisplayName: contact.Name,
					Preview:     preview,
				})
				seen[contact.SavedUserID] = true
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp == nil || entries[j].Timestamp == nil {
			return entries[j].Timestamp == nil
		}
		return entries[i].Timestamp.After(*entries[j].Timestamp)
	})

	c.JSON(http.StatusOK, gin.H{"chats": entries})
}

// GetConversation возвращает чат с собеседником и историей
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conv, err := h.db.GetConversation(convID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}

	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	c.JSON(http.StatusOK, h.formatConversation(userID, conv))
}

// DeleteConversation удаляет чат вместе с сообщениями; доступно любому
// из двух участников
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conv, err := h.db.GetConversation(convID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}

	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	if err := h.db.DeleteConversation(convID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversation deleted"})
}

func (h *ConversationHandler) formatConversation(userID uuid.UUID, conv *models.Conversation) gin.H {
	response := gin.H{
		"id":         conv.ID,
		"created_at": conv.CreatedAt,
	}

	if other := conv.OtherParticipant(userID); other != nil {
		contact, _ := h.db.FindContact(userID, other.ID)
		response["peer"] = gin.H{
			"id":           other.ID,
			"display_name": models.DisplayName(contact, other),
			"mobile":       other.Mobile,
			"is_contact":   contact != nil,
		}
	}

	return response
}

// matchesPeer проверяет совпадение поиска с отображаемым именем,
// username или номером собеседника
func matchesPeer(query, displayName string, peer *models.User) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(displayName), q) {
		return true
	}
	if peer == nil {
		return false
	}
	return strings.Contains(strings.ToLower(peer.Username), q) ||
		strings.Contains(peer.Mobile, query)
}

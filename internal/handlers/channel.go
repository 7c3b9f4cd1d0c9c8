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

type ChannelHandler struct {
	db *database.Database
}

func NewChannelHandler(db *database.Database) *ChannelHandler {
	return &ChannelHandler{db: db}
}

func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Name        string `json:"name" binding:"required,max=150"`
		Description string `json:"description"`
		IsPublic    *bool  `json:"is_public"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	channel := &models.Channel{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
		IsPublic:    isPublic,
		CreatedAt:   time.Now(),
	}

	if err := h.db.CreateChannel(channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create channel"})
		return
	}

	c.JSON(http.StatusCreated, formatChannel(channel))
}

func (h *ChannelHandler) GetChannel(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	channel, err := h.db.GetChannel(channelID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	if !channel.IsPublic && !channel.HasSubscriber(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "channel is private"})
		return
	}

	c.JSON(http.StatusOK, formatChannel(channel))
}

// ListChannels возвращает публичные каналы и подписки пользователя
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	channels, err := h.db.ListChannels(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get channels"})
		return
	}

	responses := make([]gin.H, len(channels))
	for i := range channels {
		responses[i] = formatChannel(&channels[i])
	}

	c.JSON(http.StatusOK, gin.H{"channels": responses})
}

func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	channel, err := h.db.GetChannel(channelID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	if channel.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can update a channel"})
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    *bool  `json:"is_public"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		channel.Name = req.Name
	}
	if req.Description != "" {
		channel.Description = req.Description
	}
	if req.IsPublic != nil {
		channel.IsPublic = *req.IsPublic
	}

	if err := h.db.UpdateChannel(channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update channel"})
		return
	}

	c.JSON(http.StatusOK, formatChannel(channel))
}

func (h *ChannelHandler) Subscribe(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	channel, err := h.db.GetChannel(channelID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	// На приватный канал нельзя подписаться самостоятельно
	if !channel.IsPublic {
		c.JSON(http.StatusForbidden, gin.H{"error": "channel is private"})
		return
	}

	if err := h.db.SubscribeToChannel(channelID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscribed"})
}

func (h *ChannelHandler) Unsubscribe(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	if err := h.db.UnsubscribeFromChannel(channelID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unsubscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed"})
}

func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	channel, err := h.db.GetChannel(channelID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	if channel.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can delete a channel"})
		return
	}

	if err := h.db.DeleteChannel(channelID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete channel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "channel deleted"})
}

func formatChannel(channel *models.Channel) gin.H {
	return gin.H{
		"id":          channel.ID,
		"name":        channel.Name,
		"description": channel.Description,
		"creator_id":  channel.CreatorID,
		"is_public":   channel.IsPublic,
		"subscribers": len(channel.Subscribers),
		"created_at":  channel.CreatedAt,
	}
}

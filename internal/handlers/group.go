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

type GroupHandler struct {
	db *database.Database
}

func NewGroupHandler(db *database.Database) *GroupHandler {
	return &GroupHandler{db: db}
}

// CreateGroup создает группу; создатель становится участником неявно
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Name        string   `json:"name" binding:"required,max=150"`
		Description string   `json:"description"`
		MemberIDs   []string `json:"member_ids"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
		CreatedAt:   time.Now(),
	}

	if err := h.db.CreateGroup(group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}

	for _, memberID := range req.MemberIDs {
		id, err := uuid.Parse(memberID)
		if err != nil || id == userID {
			continue
		}
		h.db.AddGroupMember(group.ID, id)
	}

	fullGroup, _ := h.db.GetGroup(group.ID)

	c.JSON(http.StatusCreated, formatGroup(fullGroup))
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.db.GetGroup(groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	if !group.HasMember(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return
	}

	c.JSON(http.StatusOK, formatGroup(group))
}

func (h *GroupHandler) MyGroups(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groups, err := h.db.UserGroups(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get groups"})
		return
	}

	responses := make([]gin.H, len(groups))
	for i := range groups {
		responses[i] = formatGroup(&groups[i])
	}

	c.JSON(http.StatusOK, gin.H{"groups": responses})
}

// UpdateGroup меняет имя и описание; доступно только создателю
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.db.GetGroup(groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	if group.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can update a group"})
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		group.Name = req.Name
	}
	if req.Description != "" {
		group.Description = req.Description
	}

	if err := h.db.UpdateGroup(group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update group"})
		return
	}

	c.JSON(http.StatusOK, formatGroup(group))
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	group, err := h.db.GetGroup(groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	if !group.HasMember(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return
	}

	if err := h.db.AddGroupMember(groupID, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member added"})
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	memberID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	group, err := h.db.GetGroup(groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	// Выйти можно самому, исключать других может только создатель
	if memberID != userID && group.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can remove members"})
		return
	}

	if memberID == group.CreatorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creator cannot leave the group"})
		return
	}

	if err := h.db.RemoveGroupMember(groupID, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

// DeleteGroup удаляет группу каскадно; доступно только создателю
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.db.GetGroup(groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	if group.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can delete a group"})
		return
	}

	if err := h.db.DeleteGroup(groupID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}

func formatGroup(group *models.Group) gin.H {
	members := make([]gin.H, len(group.Members))
	for i, m := range group.Members {
		members[i] = gin.H{
			"id":       m.ID,
			"username": m.Username,
			"mobile":   m.Mobile,
		}
	}

	return gin.H{
		"id":          group.ID,
		"name":        group.Name,
		"description": group.Description,
		"creator_id":  group.CreatorID,
		"members":     members,
		"created_at":  group.CreatedAt,
	}
}

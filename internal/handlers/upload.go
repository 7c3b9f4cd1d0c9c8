package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/access"
	"github.com/thereayou/pingme/internal/database"
	"github.com/thereayou/pingme/internal/middleware"
	"github.com/thereayou/pingme/internal/models"
)

// UploadHandler — внешний путь сохранения вложений. Он сам создает
// запись Message, поэтому последующий chat_message с заполненным
// file_url хаб только рассылает, без второй записи.
type UploadHandler struct {
	db         *database.Database
	authorizer *access.Authorizer
	uploadDir  string
}

func NewUploadHandler(db *database.Database, authorizer *access.Authorizer, uploadDir string) *UploadHandler {
	return &UploadHandler{db: db, authorizer: authorizer, uploadDir: uploadDir}
}

// Upload принимает multipart-файл для комнаты из маршрута
func (h *UploadHandler) Upload(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room, err := models.ParseRoomRef(c.Param("kind"), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room"})
		return
	}

	allowed, err := h.authorizer.CanWrite(userID, room)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this room"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}

	mime := mimetype.Detect(data)
	isMedia := strings.HasPrefix(mime.String(), "image/") ||
		strings.HasPrefix(mime.String(), "video/") ||
		strings.HasPrefix(mime.String(), "audio/")

	stored := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot store file"})
		return
	}
	if err := os.WriteFile(filepath.Join(h.uploadDir, stored), data, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot store file"})
		return
	}

	fileURL := "/uploads/" + stored

	message := models.NewMessage(room, userID, c.PostForm("message"))
	message.AttachmentURL = fileURL
	message.IsMedia = isMedia

	if err := h.db.SaveMessage(message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"file_url":   fileURL,
		"is_media":   isMedia,
		"message_id": message.ID,
		"filename":   fileHeader.Filename,
	})
}

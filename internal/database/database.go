package database

import (
	"errors"
	"os"

	"github.com/thereayou/pingme/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) Connect() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Group{},
		&models.Channel{},
		&models.Message{},
		&models.Contact{},
	)
	if err != nil {
		return err
	}

	d.db = db

	return nil
}

// roomColumn возвращает колонку внешнего ключа для вида комнаты
func roomColumn(room models.RoomRef) string {
	switch room.Kind {
	case models.RoomGroup:
		return "group_id"
	case models.RoomChannel:
		return "channel_id"
	default:
		return "conversation_id"
	}
}

// Package access решает, может ли пользователь читать или писать в
// комнату. Правила членства для живых сессий и HTTP-запросов одни и те же.
package access

import (
	"github.com/google/uuid"
	"github.com/thereayou/pingme/internal/models"
)

// Store — срез хранилища, нужный авторизатору
type Store interface {
	GetConversation(id uuid.UUID) (*models.Conversation, error)
	GetGroup(id uuid.UUID) (*models.Group, error)
	GetChannel(id uuid.UUID) (*models.Channel, error)
}

type Authorizer struct {
	store Store
}

func NewAuthorizer(store Store) *Authorizer {
	return &Authorizer{store: store}
}

// CanRead проверяет право чтения комнаты:
// личный чат — только участники, группа — участники и создатель,
// канал — кто угодно, если канал публичный, иначе подписчики и создатель
func (a *Authorizer) CanRead(userID uuid.UUID, room models.RoomRef) (bool, error) {
	switch room.Kind {
	case models.RoomConversation:
		conv, err := a.store.GetConversation(room.ID)
		if err != nil {
			return false, err
		}
		return conv.HasParticipant(userID), nil

	case models.RoomGroup:
		group, err := a.store.GetGroup(room.ID)
		if err != nil {
			return false, err
		}
		return group.HasMember(userID), nil

	case models.RoomChannel:
		channel, err := a.store.GetChannel(room.ID)
		if err != nil {
			return false, err
		}
		if channel.IsPublic {
			return true, nil
		}
		return channel.HasSubscriber(userID), nil
	}

	return false, models.ErrUnknownRoomKind
}

// CanWrite проверяет право отправки сообщений. Для каналов писать может
// только создатель; проверка существует отдельно от CanRead, чтобы UI
// мог не показывать поле ввода подписчикам.
func (a *Authorizer) CanWrite(userID uuid.UUID, room models.RoomRef) (bool, error) {
	if room.Kind == models.RoomChannel {
		channel, err := a.store.GetChannel(room.ID)
		if err != nil {
			return false, err
		}
		return channel.CreatorID == userID, nil
	}
	return a.CanRead(userID, room)
}

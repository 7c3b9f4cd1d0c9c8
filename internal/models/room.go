package models

import (
	"errors"

	"github.com/google/uuid"
)

// RoomKind определяет вид комнаты
type RoomKind string

const (
	RoomConversation RoomKind = "conversation"
	RoomGroup        RoomKind = "group"
	RoomChannel      RoomKind = "channel"
)

var ErrUnknownRoomKind = errors.New("unknown room kind")

// RoomRef — тегированная ссылка на комнату: сообщение принадлежит
// ровно одной из трех сущностей (Conversation | Group | Channel)
type RoomRef struct {
	Kind RoomKind
	ID   uuid.UUID
}

func ParseRoomKind(s string) (RoomKind, error) {
	switch RoomKind(s) {
	case RoomConversation, RoomGroup, RoomChannel:
		return RoomKind(s), nil
	}
	return "", ErrUnknownRoomKind
}

func ParseRoomRef(kind, id string) (RoomRef, error) {
	k, err := ParseRoomKind(kind)
	if err != nil {
		return RoomRef{}, err
	}
	roomID, err := uuid.Parse(id)
	if err != nil {
		return RoomRef{}, err
	}
	return RoomRef{Kind: k, ID: roomID}, nil
}

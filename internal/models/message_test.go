package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/thereayou/pingme/internal/models"
)

func TestNewMessageBindsExactlyOneRoom(t *testing.T) {
	sender := uuid.New()

	tests := []struct {
		name string
		kind models.RoomKind
	}{
		{"conversation", models.RoomConversation},
		{"group", models.RoomGroup},
		{"channel", models.RoomChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := models.RoomRef{Kind: tt.kind, ID: uuid.New()}
			msg := models.NewMessage(room, sender, "hello")

			set := 0
			for _, fk := range []*uuid.UUID{msg.ConversationID, msg.GroupID, msg.ChannelID} {
				if fk != nil {
					set++
				}
			}
			assert.Equal(t, 1, set)
			assert.Equal(t, room, msg.Room())
			assert.NotEqual(t, uuid.Nil, msg.ID)
			assert.True(t, msg.IsSender(sender))
		})
	}
}

func TestParseRoomKind(t *testing.T) {
	kind, err := models.ParseRoomKind("group")
	assert.NoError(t, err)
	assert.Equal(t, models.RoomGroup, kind)

	_, err = models.ParseRoomKind("broadcast")
	assert.ErrorIs(t, err, models.ErrUnknownRoomKind)
}

func TestIsSenderWithRemovedAccount(t *testing.T) {
	msg := models.Message{SenderID: nil}
	assert.False(t, msg.IsSender(uuid.New()))
}

func TestDisplayNameFallbacks(t *testing.T) {
	user := &models.User{Username: "cool_dev", Mobile: "9876543210"}

	assert.Equal(t, "Dad", models.DisplayName(&models.Contact{Name: "Dad"}, user))
	assert.Equal(t, "9876543210", models.DisplayName(nil, user))

	user.Mobile = ""
	assert.Equal(t, "cool_dev", models.DisplayName(nil, user))

	assert.Equal(t, "", models.DisplayName(nil, nil))
}

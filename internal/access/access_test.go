package access_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/thereayou/pingme/internal/access"
	"github.com/thereayou/pingme/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetConversation(id uuid.UUID) (*models.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockStore) GetGroup(id uuid.UUID) (*models.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockStore) GetChannel(id uuid.UUID) (*models.Channel, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func TestConversationAccess(t *testing.T) {
	initiator := uuid.New()
	receiver := uuid.New()
	stranger := uuid.New()

	conv := &models.Conversation{
		ID:          uuid.New(),
		InitiatorID: &initiator,
		ReceiverID:  &receiver,
	}

	store := new(MockStore)
	store.On("GetConversation", conv.ID).Return(conv, nil)

	authorizer := access.NewAuthorizer(store)
	room := conv.Room()

	for _, userID := range []uuid.UUID{initiator, receiver} {
		ok, err := authorizer.CanRead(userID, room)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = authorizer.CanWrite(userID, room)
		assert.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := authorizer.CanRead(stranger, room)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGroupAccess(t *testing.T) {
	creator := uuid.New()
	member := uuid.New()
	stranger := uuid.New()

	group := &models.Group{
		ID:        uuid.New(),
		CreatorID: creator,
		Members:   []models.User{{ID: member}},
	}

	store := new(MockStore)
	store.On("GetGroup", group.ID).Return(group, nil)

	authorizer := access.NewAuthorizer(store)
	room := group.Room()

	// Создатель — участник неявно
	ok, _ := authorizer.CanRead(creator, room)
	assert.True(t, ok)

	ok, _ = authorizer.CanRead(member, room)
	assert.True(t, ok)

	ok, _ = authorizer.CanWrite(member, room)
	assert.True(t, ok)

	ok, _ = authorizer.CanRead(stranger, room)
	assert.False(t, ok)
}

func TestChannelAccess(t *testing.T) {
	creator := uuid.New()
	subscriber := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name         string
		isPublic     bool
		strangerRead bool
	}{
		{"public channel readable by anyone", true, true},
		{"private channel restricted to subscribers", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channel := &models.Channel{
				ID:          uuid.New(),
				CreatorID:   creator,
				IsPublic:    tt.isPublic,
				Subscribers: []models.User{{ID: subscriber}},
			}

			store := new(MockStore)
			store.On("GetChannel", channel.ID).Return(channel, nil)

			authorizer := access.NewAuthorizer(store)
			room := channel.Room()

			ok, err := authorizer.CanRead(stranger, room)
			assert.NoError(t, err)
			assert.Equal(t, tt.strangerRead, ok)

			ok, _ = authorizer.CanRead(subscriber, room)
			assert.True(t, ok)

			// Писать в канал может только создатель
			ok, _ = authorizer.CanWrite(creator, room)
			assert.True(t, ok)

			ok, _ = authorizer.CanWrite(subscriber, room)
			assert.False(t, ok)
		})
	}
}

func TestUnknownRoomKind(t *testing.T) {
	authorizer := access.NewAuthorizer(new(MockStore))

	_, err := authorizer.CanRead(uuid.New(), models.RoomRef{Kind: "status", ID: uuid.New()})
	assert.ErrorIs(t, err, models.ErrUnknownRoomKind)
}

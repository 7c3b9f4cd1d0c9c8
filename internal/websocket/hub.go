package websocket

import (
	"log"
	"sync"

	"github.com/thereayou/pingme/internal/models"
)

// Hub — таблица адресации fan-out: отображает комнату в множество живых
// сессий. Состояние процесс-локальное и не переживает рестарт,
// переподключившиеся клиенты регистрируются заново. Join/Leave/Members
// на одной комнате линеаризуемы относительно друг друга.
type Hub struct {
	mu    sync.RWMutex
	rooms map[models.RoomRef]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[models.RoomRef]map[*Client]bool),
	}
}

// Join регистрирует сессию в комнате. Сессия состоит ровно в одной
// комнате: повторный Join с другой комнатой неявно выполняет Leave
// из предыдущей.
func (h *Hub) Join(room models.RoomRef, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.joined && client.room != room {
		h.removeLocked(client)
	}

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.room = room
	client.joined = true

	log.Printf("Client %s joined %s %s", client.ID, room.Kind, room.ID)
}

// Leave снимает регистрацию сессии; дальнейшая доставка в нее не
// выполняется. Disconnect обязан всегда приводить сюда.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if !client.joined {
		return
	}
	if members, ok := h.rooms[client.room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, client.room)
		}
	}
	client.joined = false
}

// Members возвращает снимок множества сессий комнаты
func (h *Hub) Members(room models.RoomRef) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		members = append(members, client)
	}
	return members
}

// Broadcast доставляет кадр каждой сессии комнаты, включая отправителя
func (h *Hub) Broadcast(room models.RoomRef, message []byte) {
	h.broadcast(room, message, nil)
}

// BroadcastExcept доставляет кадр всем сессиям комнаты, кроме exclude
func (h *Hub) BroadcastExcept(room models.RoomRef, message []byte, exclude *Client) {
	h.broadcast(room, message, exclude)
}

func (h *Hub) broadcast(room models.RoomRef, message []byte, exclude *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		if client == exclude {
			continue
		}
		select {
		case client.Send <- message:
		default:
			// Медленный потребитель: кадр отбрасывается, очередь не растет
			log.Printf("Client %s send channel full", client.ID)
		}
	}
}

package ws

import (
	"log/slog"
	"sync"

	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/room"
)

// Hub routes outbound events to connected clients. It tracks which
// connection currently owns each handle and which room each handle
// occupies, so services can address players without knowing transports.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[model.Handle]*Client
	rooms   map[model.RoomID]map[model.Handle]*Client
	inRoom  map[model.Handle]model.RoomID
}

// Ensure Hub satisfies the services' broadcaster contract
var _ room.Broadcaster = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With(slog.String("component", "ws-hub")),
		clients: make(map[model.Handle]*Client),
		rooms:   make(map[model.RoomID]map[model.Handle]*Client),
		inRoom:  make(map[model.Handle]model.RoomID),
	}
}

// Bind makes the client the connection for a handle, returning the
// displaced previous connection if there was one. A handle already seated
// in a room keeps its seat; the replacement connection inherits it.
func (h *Hub) Bind(handle model.Handle, client *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.clients[handle]
	if prev == client {
		return nil
	}
	h.clients[handle] = client
	if id, ok := h.inRoom[handle]; ok {
		if members, ok := h.rooms[id]; ok {
			members[handle] = client
		}
	}
	h.logger.Info("client bound",
		slog.String("handle", string(handle)),
		slog.Bool("replaced", prev != nil))
	return prev
}

// Unbind releases a handle's binding, but only if the given client still
// owns it. It reports whether the client was the current connection; a
// kicked connection's late cleanup must not unseat its replacement.
func (h *Hub) Unbind(handle model.Handle, client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[handle] != client {
		return false
	}
	delete(h.clients, handle)
	if id, ok := h.inRoom[handle]; ok {
		delete(h.inRoom, handle)
		if members, ok := h.rooms[id]; ok {
			delete(members, handle)
			if len(members) == 0 {
				delete(h.rooms, id)
			}
		}
	}
	h.logger.Info("client unbound", slog.String("handle", string(handle)))
	return true
}

// JoinRoom seats a bound handle in a room for event routing
func (h *Hub) JoinRoom(id model.RoomID, handle model.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[handle]
	if !ok {
		return
	}
	members, ok := h.rooms[id]
	if !ok {
		members = make(map[model.Handle]*Client)
		h.rooms[id] = members
	}
	members[handle] = client
	h.inRoom[handle] = id
}

// LeaveRoom releases a handle's seat in a room
func (h *Hub) LeaveRoom(id model.RoomID, handle model.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.inRoom[handle] == id {
		delete(h.inRoom, handle)
	}
	if members, ok := h.rooms[id]; ok {
		delete(members, handle)
		if len(members) == 0 {
			delete(h.rooms, id)
		}
	}
}

// DropRoom releases every seat in a room, returning members to the lobby
// audience. Used when a room is destroyed out from under its members.
func (h *Hub) DropRoom(id model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for handle := range h.rooms[id] {
		delete(h.inRoom, handle)
	}
	delete(h.rooms, id)
}

// SendTo delivers an event to one handle's connection, if bound
func (h *Hub) SendTo(handle model.Handle, event model.Outbound) {
	h.mu.RLock()
	client := h.clients[handle]
	h.mu.RUnlock()

	if client != nil {
		h.trySend(handle, client, event)
	}
}

// BroadcastRoom delivers one event to every connection seated in a room
func (h *Hub) BroadcastRoom(id model.RoomID, event model.Outbound) {
	for handle, client := range h.roomMembers(id) {
		h.trySend(handle, client, event)
	}
}

// BroadcastRoomFunc delivers a per-recipient event to a room, letting the
// caller tailor the payload to each viewer
func (h *Hub) BroadcastRoomFunc(id model.RoomID, fn func(viewer model.Handle) model.Outbound) {
	for handle, client := range h.roomMembers(id) {
		h.trySend(handle, client, fn(handle))
	}
}

// BroadcastLobby delivers an event to every bound connection not seated
// in any room
func (h *Hub) BroadcastLobby(event model.Outbound) {
	h.mu.RLock()
	audience := make(map[model.Handle]*Client)
	for handle, client := range h.clients {
		if _, seated := h.inRoom[handle]; !seated {
			audience[handle] = client
		}
	}
	h.mu.RUnlock()

	for handle, client := range audience {
		h.trySend(handle, client, event)
	}
}

// roomMembers snapshots a room's seats so delivery runs without the lock
func (h *Hub) roomMembers(id model.RoomID) map[model.Handle]*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make(map[model.Handle]*Client, len(h.rooms[id]))
	for handle, client := range h.rooms[id] {
		members[handle] = client
	}
	return members
}

// trySend enqueues without blocking; a client whose buffer is full loses
// the event rather than stalling the whole room
func (h *Hub) trySend(handle model.Handle, client *Client, event model.Outbound) {
	if !client.Send(event) {
		h.logger.Warn("event dropped - client buffer full",
			slog.String("handle", string(handle)))
	}
}

// ClientCount returns the number of bound connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of seated connections for a room
func (h *Hub) RoomSize(id model.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[id])
}

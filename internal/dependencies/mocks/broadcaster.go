package mocks

import (
	"sync"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// Delivery records one event delivered through the MockBroadcaster
type Delivery struct {
	To     model.Handle // Recipient, when the delivery was addressed
	RoomID model.RoomID // Room, for room-wide deliveries
	Lobby  bool         // True for lobby-wide deliveries
	Event  model.Outbound
}

// MockBroadcaster records deliveries for assertions in tests
type MockBroadcaster struct {
	mu         sync.Mutex
	deliveries []Delivery

	// RoomMembers drives per-viewer fan-out for BroadcastRoomFunc.
	// Rooms without an entry get a single delivery with an empty viewer.
	RoomMembers map[model.RoomID][]model.Handle
}

// NewMockBroadcaster creates a new MockBroadcaster
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{
		RoomMembers: make(map[model.RoomID][]model.Handle),
	}
}

// SendTo records a delivery addressed to one handle
func (b *MockBroadcaster) SendTo(handle model.Handle, event model.Outbound) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliveries = append(b.deliveries, Delivery{To: handle, Event: event})
}

// BroadcastRoom records a room-wide delivery
func (b *MockBroadcaster) BroadcastRoom(id model.RoomID, event model.Outbound) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliveries = append(b.deliveries, Delivery{RoomID: id, Event: event})
}

// BroadcastRoomFunc records one delivery per configured room member
func (b *MockBroadcaster) BroadcastRoomFunc(id model.RoomID, fn func(viewer model.Handle) model.Outbound) {
	b.mu.Lock()
	viewers := append([]model.Handle(nil), b.RoomMembers[id]...)
	b.mu.Unlock()

	if len(viewers) == 0 {
		viewers = []model.Handle{""}
	}
	for _, v := range viewers {
		event := fn(v)
		b.mu.Lock()
		b.deliveries = append(b.deliveries, Delivery{To: v, RoomID: id, Event: event})
		b.mu.Unlock()
	}
}

// BroadcastLobby records a lobby-wide delivery
func (b *MockBroadcaster) BroadcastLobby(event model.Outbound) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliveries = append(b.deliveries, Delivery{Lobby: true, Event: event})
}

// DropRoom forgets the configured member list for a room
func (b *MockBroadcaster) DropRoom(id model.RoomID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.RoomMembers, id)
}

// Deliveries returns a copy of everything delivered so far
func (b *MockBroadcaster) Deliveries() []Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Delivery(nil), b.deliveries...)
}

// RoomDeliveries returns events delivered to the given room
func (b *MockBroadcaster) RoomDeliveries(id model.RoomID) []model.Outbound {
	b.mu.Lock()
	defer b.mu.Unlock()
	var events []model.Outbound
	for _, d := range b.deliveries {
		if d.RoomID == id {
			events = append(events, d.Event)
		}
	}
	return events
}

// DeliveriesTo returns events addressed to the given handle
func (b *MockBroadcaster) DeliveriesTo(handle model.Handle) []model.Outbound {
	b.mu.Lock()
	defer b.mu.Unlock()
	var events []model.Outbound
	for _, d := range b.deliveries {
		if d.To == handle {
			events = append(events, d.Event)
		}
	}
	return events
}

// LobbyDeliveries returns events delivered lobby-wide
func (b *MockBroadcaster) LobbyDeliveries() []model.Outbound {
	b.mu.Lock()
	defer b.mu.Unlock()
	var events []model.Outbound
	for _, d := range b.deliveries {
		if d.Lobby {
			events = append(events, d.Event)
		}
	}
	return events
}

// Reset clears recorded deliveries
func (b *MockBroadcaster) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliveries = nil
}

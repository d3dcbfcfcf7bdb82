package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	identities map[model.Handle]*model.Identity
	rooms      map[model.RoomID]*model.Room
	messages   map[model.RoomID][]model.ChatMessage
	games      map[string]*model.GameRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		identities: make(map[model.Handle]*model.Identity),
		rooms:      make(map[model.RoomID]*model.Room),
		messages:   make(map[model.RoomID][]model.ChatMessage),
		games:      make(map[string]*model.GameRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Identity operations

func (s *Storage) CreateIdentity(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[identity.Handle]; ok {
		return model.ErrHandleTaken
	}
	s.identities[identity.Handle] = identity
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, handle model.Handle) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[handle]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return identity, nil
}

func (s *Storage) UpdateIdentity(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.Handle] = identity
	return nil
}

func (s *Storage) ApplyGameOutcome(ctx context.Context, handle model.Handle, wallet int, won, survived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[handle]
	if !ok {
		return model.ErrIdentityNotFound
	}
	identity.Wallet += wallet
	if identity.Wallet < 0 {
		identity.Wallet = 0
	}
	identity.Stats.GamesPlayed++
	if won {
		identity.Stats.GamesWon++
	}
	if survived {
		identity.Stats.GamesSurvived++
	}
	return nil
}

// Room mirror operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	return nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) GetRoomsWaiting(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rooms []*model.Room
	for _, room := range s.rooms {
		if room.Status == model.RoomStatusWaiting {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// Chat transcript operations

func (s *Storage) AppendMessage(ctx context.Context, roomID model.RoomID, msg model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[roomID] = append(s.messages[roomID], msg)
	return nil
}

// Game record operations

func (s *Storage) RecordGameStart(ctx context.Context, record *model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[record.ID] = record
	return nil
}

func (s *Storage) RecordGameEnd(ctx context.Context, record *model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[record.ID] = record
	return nil
}

// GameRecord returns a stored game record, or nil. Not part of the
// storage interface; the in-memory store doubles as a test fixture.
func (s *Storage) GameRecord(id string) *model.GameRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[id]
}

// Messages returns the stored transcript for a room. Not part of the
// storage interface; the in-memory store doubles as a test fixture.
func (s *Storage) Messages(roomID model.RoomID) []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ChatMessage(nil), s.messages[roomID]...)
}

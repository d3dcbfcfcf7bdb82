package room

import (
	"errors"
	"sort"
	"sync"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// errIDTaken signals that a generated room id collided with a live room
var errIDTaken = errors.New("room id taken")

// Registry is the in-memory authoritative index of live rooms.
//
// Locking is two-level: the registry mutex guards the rooms and members
// maps, and each entry carries its own mutex serializing all mutation of
// that room's state, so gameplay in different rooms never contends. Lock
// order is always registry before entry; callbacks passed to registry
// methods run with the entry lock held and must not call back into the
// registry.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[model.RoomID]*entry
	members map[model.Handle]model.RoomID
}

type entry struct {
	mu      sync.Mutex
	room    *model.Room
	deleted bool
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[model.RoomID]*entry),
		members: make(map[model.Handle]model.RoomID),
	}
}

// Insert adds a freshly created room, binding owner as its sole member
func (r *Registry) Insert(room *model.Room, owner model.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[owner]; ok {
		return model.ErrAlreadyInRoom
	}
	if _, ok := r.rooms[room.ID]; ok {
		return errIDTaken
	}

	r.rooms[room.ID] = &entry{room: room}
	r.members[owner] = room.ID
	return nil
}

// Join binds handle to the room. fn runs inside the room's critical
// section to validate and apply the roster change; membership is
// committed only if fn succeeds.
func (r *Registry) Join(id model.RoomID, handle model.Handle, fn func(*model.Room) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[handle]; ok {
		return model.ErrAlreadyInRoom
	}
	e, ok := r.rooms[id]
	if !ok {
		return model.ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.ErrRoomNotFound
	}
	if err := fn(e.room); err != nil {
		return err
	}

	r.members[handle] = id
	return nil
}

// Leave removes handle's membership. fn runs inside the room's critical
// section to apply the roster change and reports whether the now-smaller
// room should be destroyed.
func (r *Registry) Leave(handle model.Handle, fn func(*model.Room) bool) (model.RoomID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.members[handle]
	if !ok {
		return "", model.ErrNotInRoom
	}
	delete(r.members, handle)

	e, ok := r.rooms[id]
	if !ok {
		// Room already destroyed; membership was the last trace
		return id, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if fn(e.room) {
		e.deleted = true
		delete(r.rooms, id)
	}
	return id, nil
}

// WithRoom runs fn inside the room's critical section
func (r *Registry) WithRoom(id model.RoomID, fn func(*model.Room) error) error {
	r.mu.RLock()
	e, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return model.ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.ErrRoomNotFound
	}
	return fn(e.room)
}

// RoomFor reports which room the handle is currently a member of
func (r *Registry) RoomFor(handle model.Handle) (model.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.members[handle]
	return id, ok
}

// Waiting returns clones of all rooms still gathering players, ordered
// by creation time
func (r *Registry) Waiting() []*model.Room {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.rooms))
	for _, e := range r.rooms {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	rooms := make([]*model.Room, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted && e.room.Status == model.RoomStatusWaiting {
			rooms = append(rooms, e.room.Clone())
		}
		e.mu.Unlock()
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms
}

// All returns snapshots of every live room regardless of status
func (r *Registry) All() []*model.Room {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.rooms))
	for _, e := range r.rooms {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	rooms := make([]*model.Room, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted {
			rooms = append(rooms, e.room.Clone())
		}
		e.mu.Unlock()
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms
}

// Destroy force-removes a room and all its memberships, returning the
// handles that were members
func (r *Registry) Destroy(id model.RoomID) ([]model.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}

	e.mu.Lock()
	handles := make([]model.Handle, 0, len(e.room.Roster))
	for _, p := range e.room.Roster {
		handles = append(handles, p.Handle)
	}
	e.deleted = true
	e.mu.Unlock()

	delete(r.rooms, id)
	for _, h := range handles {
		delete(r.members, h)
	}
	return handles, nil
}

// Len returns the number of live rooms
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

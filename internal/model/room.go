package model

import "time"

// RoomID is a short shareable code for joining rooms
type RoomID string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Gathering players
	RoomStatusPlaying  RoomStatus = "playing"  // Game in progress
	RoomStatusFinished RoomStatus = "finished" // Last game ended, roles revealed
)

// RoleConfig selects which optional roles are dealt at game start
type RoleConfig struct {
	Doctor bool `json:"doctor"` // One doctor when enabled and the roster has 5+ players
	Twins  bool `json:"twins"`  // Two twins when enabled and the roster has 6+ players
}

// Participant represents a player's presence within one room
type Participant struct {
	Handle   Handle
	Role     Role // Empty until the game starts
	Alive    bool
	Owner    bool
	JoinedAt time.Time
}

// ChatMessage is one line of a room's transcript
type ChatMessage struct {
	ID     string
	Sender Handle // Empty for system lines
	Text   string
	SentAt time.Time
}

// IsSystem returns true for server-generated transcript lines
func (m ChatMessage) IsSystem() bool {
	return m.Sender == ""
}

// Room is a lobby/game container with an ordered roster
// The roster preserves join order; index 0 joined earliest
type Room struct {
	ID         RoomID
	Name       string
	Status     RoomStatus
	Roster     []Participant
	Config     RoleConfig
	MinPlayers int
	MaxPlayers int
	Secret     string // Empty means no join secret
	Chat       []ChatMessage
	Game       *Game // Non-nil iff Status is playing
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GetOwner returns the current room owner, or nil if the roster is empty
func (r *Room) GetOwner() *Participant {
	for i := range r.Roster {
		if r.Roster[i].Owner {
			return &r.Roster[i]
		}
	}
	return nil
}

// GetParticipant returns the roster entry for the handle, or nil if absent
func (r *Room) GetParticipant(handle Handle) *Participant {
	for i := range r.Roster {
		if r.Roster[i].Handle == handle {
			return &r.Roster[i]
		}
	}
	return nil
}

// Living returns all living participants in roster order
func (r *Room) Living() []Participant {
	var living []Participant
	for _, p := range r.Roster {
		if p.Alive {
			living = append(living, p)
		}
	}
	return living
}

// LivingFaction returns all living participants aligned with the faction
func (r *Room) LivingFaction(f Faction) []Participant {
	var living []Participant
	for _, p := range r.Roster {
		if p.Alive && p.Role.Faction() == f {
			living = append(living, p)
		}
	}
	return living
}

// IsFull returns true if the roster has reached the room's player limit
func (r *Room) IsFull() bool {
	return len(r.Roster) >= r.MaxPlayers
}

// ChatHistoryLimit bounds how many transcript lines a room retains
const ChatHistoryLimit = 100

// AppendChat adds a line to the transcript, discarding the oldest lines
// once the retained window is full
func (r *Room) AppendChat(msg ChatMessage) {
	r.Chat = append(r.Chat, msg)
	if len(r.Chat) > ChatHistoryLimit {
		r.Chat = r.Chat[len(r.Chat)-ChatHistoryLimit:]
	}
}

// Clone returns a deep copy safe to hand to the persistence layer
func (r *Room) Clone() *Room {
	clone := *r
	clone.Roster = append([]Participant(nil), r.Roster...)
	clone.Chat = append([]ChatMessage(nil), r.Chat...)
	clone.Game = r.Game.Clone()
	return &clone
}

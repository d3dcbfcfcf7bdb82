package model

import (
	"sort"
	"time"
)

// Phase is one of the two recurring sub-rounds of a game
type Phase string

const (
	PhaseNight Phase = "night" // Covert kill/heal actions
	PhaseDay   Phase = "day"   // Discussion and elimination vote
)

// Verb identifies what a game action does
type Verb string

const (
	VerbStart Verb = "start" // Room owner starts the game
	VerbKill  Verb = "kill"  // Mafia night action
	VerbHeal  Verb = "heal"  // Doctor night action
	VerbVote  Verb = "vote"  // Day elimination vote
)

// Action is a single pending submission by one participant
// At most one action is pending per actor per phase; resubmission overwrites
// the previous one and takes a fresh Seq
type Action struct {
	Actor  Handle
	Verb   Verb
	Target Handle // Empty for verbs without a target
	At     time.Time
	Seq    int // Submission order within the game
}

// GameEvent is one line of a game's append-only log
type GameEvent struct {
	Day   int
	Phase Phase
	Text  string
	At    time.Time
}

// Game represents a single play-through bound to one room
type Game struct {
	RecordID    string // Persisted game record id
	Phase       Phase
	Day         int // Starts at 1
	Countdown   int // Seconds remaining in the current phase
	Pending     map[Handle]Action
	Log         []GameEvent
	LastOutcome string
	Winner      Faction // Empty until decided
	Seq         int     // Monotonic submission counter
	StartedAt   time.Time

	// StartRoster records the role dealt to every participant present at
	// game start; it is immutable afterwards and drives end-of-game rewards
	// even for participants who left mid-game
	StartRoster map[Handle]Role
}

// NextSeq advances and returns the submission counter
func (g *Game) NextSeq() int {
	g.Seq++
	return g.Seq
}

// PendingInOrder returns the pending actions sorted by submission order
func (g *Game) PendingInOrder() []Action {
	actions := make([]Action, 0, len(g.Pending))
	for _, a := range g.Pending {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].Seq < actions[j].Seq
	})
	return actions
}

// Decided returns true once a winner has been determined
func (g *Game) Decided() bool {
	return g.Winner != ""
}

// Clone returns a deep copy safe to hand to the persistence layer
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Pending = make(map[Handle]Action, len(g.Pending))
	for k, v := range g.Pending {
		clone.Pending[k] = v
	}
	clone.Log = append([]GameEvent(nil), g.Log...)
	clone.StartRoster = make(map[Handle]Role, len(g.StartRoster))
	for k, v := range g.StartRoster {
		clone.StartRoster[k] = v
	}
	return &clone
}

// GameRecord is the persisted summary of one game
type GameRecord struct {
	ID        string
	RoomID    RoomID
	Roster    map[Handle]Role
	StartedAt time.Time
	EndedAt   time.Time // Zero until the game ends
	Winner    Faction   // Empty until decided
	Days      int
}

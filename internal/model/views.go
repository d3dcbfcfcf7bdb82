package model

import "time"

// IdentityView is the wire shape of an identity, without credentials
type IdentityView struct {
	Handle    Handle   `json:"handle"`
	Wallet    int      `json:"wallet"`
	Cosmetics []string `json:"cosmetics"`
	Stats     Stats    `json:"stats"`
	Admin     bool     `json:"admin,omitempty"`
}

// NewIdentityView builds the wire shape of an identity
func NewIdentityView(id *Identity) IdentityView {
	cosmetics := id.Cosmetics
	if cosmetics == nil {
		cosmetics = []string{}
	}
	return IdentityView{
		Handle:    id.Handle,
		Wallet:    id.Wallet,
		Cosmetics: cosmetics,
		Stats:     id.Stats,
		Admin:     id.Admin,
	}
}

// RoomSummary is the lobby view of a room: counts only, no roster
type RoomSummary struct {
	ID         RoomID     `json:"roomId"`
	Name       string     `json:"name"`
	Status     RoomStatus `json:"status"`
	Players    int        `json:"players"`
	MinPlayers int        `json:"minPlayers"`
	MaxPlayers int        `json:"maxPlayers"`
	HasSecret  bool       `json:"hasSecret"`
}

// NewRoomSummary builds the lobby view of a room
func NewRoomSummary(r *Room) RoomSummary {
	return RoomSummary{
		ID:         r.ID,
		Name:       r.Name,
		Status:     r.Status,
		Players:    len(r.Roster),
		MinPlayers: r.MinPlayers,
		MaxPlayers: r.MaxPlayers,
		HasSecret:  r.Secret != "",
	}
}

// ParticipantView is the wire shape of a roster entry
// Role is populated only for the viewer's own entry until the room finishes
type ParticipantView struct {
	Handle Handle `json:"handle"`
	Role   Role   `json:"role,omitempty"`
	Alive  bool   `json:"alive"`
	Owner  bool   `json:"owner,omitempty"`
}

// GameView is the wire shape of an in-progress game
type GameView struct {
	Phase       Phase     `json:"phase"`
	Day         int       `json:"day"`
	Countdown   int       `json:"countdown"`
	LastOutcome string    `json:"lastOutcome,omitempty"`
	Winner      Faction   `json:"winner,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
}

// RoomSnapshot is the full per-recipient view of a room
type RoomSnapshot struct {
	ID         RoomID            `json:"roomId"`
	Name       string            `json:"name"`
	Status     RoomStatus        `json:"status"`
	Config     RoleConfig        `json:"config"`
	MinPlayers int               `json:"minPlayers"`
	MaxPlayers int               `json:"maxPlayers"`
	Roster     []ParticipantView `json:"roster"`
	Chat       []ChatMessageView `json:"chat"`
	Game       *GameView         `json:"game,omitempty"`
}

// NewRoomSnapshot builds the view of a room as seen by one recipient.
// A participant's role is visible only to that participant until the room
// reaches finished status, at which point all roles are revealed.
func NewRoomSnapshot(r *Room, viewer Handle) RoomSnapshot {
	roster := make([]ParticipantView, 0, len(r.Roster))
	for _, p := range r.Roster {
		view := ParticipantView{
			Handle: p.Handle,
			Alive:  p.Alive,
			Owner:  p.Owner,
		}
		if p.Handle == viewer || r.Status == RoomStatusFinished {
			view.Role = p.Role
		}
		roster = append(roster, view)
	}
	chat := make([]ChatMessageView, 0, len(r.Chat))
	for _, m := range r.Chat {
		chat = append(chat, NewChatMessageView(m))
	}
	snap := RoomSnapshot{
		ID:         r.ID,
		Name:       r.Name,
		Status:     r.Status,
		Config:     r.Config,
		MinPlayers: r.MinPlayers,
		MaxPlayers: r.MaxPlayers,
		Roster:     roster,
		Chat:       chat,
	}
	if r.Game != nil {
		snap.Game = &GameView{
			Phase:       r.Game.Phase,
			Day:         r.Game.Day,
			Countdown:   r.Game.Countdown,
			LastOutcome: r.Game.LastOutcome,
			Winner:      r.Game.Winner,
			StartedAt:   r.Game.StartedAt,
		}
	}
	return snap
}

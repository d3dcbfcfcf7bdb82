package game

import (
	"github.com/mcoot/mafiagame-go/internal/model"
)

// Roster sizes below these thresholds skip the optional roles even when
// the room config enables them
const (
	doctorMinPlayers = 5
	twinsMinPlayers  = 6
)

// BuildRoleDeck constructs the unshuffled role sequence for a roster of
// the given size. One don is always dealt, with mafiosi added until the
// mafia headcount reaches a third of the roster rounded down (the don
// counts toward that quota). Optional roles follow, and citizens fill
// the remaining slots.
func BuildRoleDeck(players int, cfg model.RoleConfig) []model.Role {
	deck := []model.Role{model.RoleDon}
	for len(deck) < players/3 {
		deck = append(deck, model.RoleMafioso)
	}
	if cfg.Doctor && players >= doctorMinPlayers {
		deck = append(deck, model.RoleDoctor)
	}
	if cfg.Twins && players >= twinsMinPlayers {
		deck = append(deck, model.RoleTwin, model.RoleTwin)
	}
	for len(deck) < players {
		deck = append(deck, model.RoleCitizen)
	}
	return deck
}

// dealRoles shuffles a fresh deck and assigns it positionally to the
// roster, reviving every participant. It returns the handle-to-role
// assignment for the game's start-of-game roster.
func (c *Controller) dealRoles(room *model.Room) map[model.Handle]model.Role {
	deck := BuildRoleDeck(len(room.Roster), room.Config)
	c.random.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	roster := make(map[model.Handle]model.Role, len(room.Roster))
	for i := range room.Roster {
		room.Roster[i].Role = deck[i]
		room.Roster[i].Alive = true
		roster[room.Roster[i].Handle] = deck[i]
	}
	return roster
}

package model

import "time"

// Handle uniquely identifies a registered player across the system
type Handle string

// Stats tracks a player's cumulative game outcomes
type Stats struct {
	GamesPlayed   int `json:"gamesPlayed"`
	GamesWon      int `json:"gamesWon"`
	GamesSurvived int `json:"gamesSurvived"`
}

// Identity represents a registered player account
// Accounts are never deleted; wallet and stats are mutated by game outcomes
type Identity struct {
	Handle       Handle
	PasswordHash string // bcrypt hash
	Wallet       int
	Cosmetics    []string // owned cosmetic effect ids
	Stats        Stats
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnsCosmetic returns true if the identity already owns the cosmetic
func (i *Identity) OwnsCosmetic(id string) bool {
	for _, c := range i.Cosmetics {
		if c == id {
			return true
		}
	}
	return false
}

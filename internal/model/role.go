package model

// Role is a participant's dealt game role
type Role string

const (
	RoleDon     Role = "don"     // Mafia leader, dealt in every game
	RoleMafioso Role = "mafioso" // Ordinary mafia
	RoleDoctor  Role = "doctor"  // Optional protector
	RoleTwin    Role = "twin"    // Optional paired role, dealt in twos
	RoleCitizen Role = "citizen" // Default town role
)

// Faction is the win-condition alignment of a role
type Faction string

const (
	FactionMafia Faction = "mafia"
	FactionTown  Faction = "town"
)

// Faction returns the alignment of the role
// The doctor and twins count as town for win evaluation
func (r Role) Faction() Faction {
	switch r {
	case RoleDon, RoleMafioso:
		return FactionMafia
	default:
		return FactionTown
	}
}

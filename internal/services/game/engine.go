package game

import (
	"fmt"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// validateAction checks that the verb is legal for the actor in the
// current phase and that the target is a living participant
func validateAction(room *model.Room, actor *model.Participant, verb model.Verb, target model.Handle) error {
	switch verb {
	case model.VerbKill:
		if room.Game.Phase != model.PhaseNight {
			return model.ErrWrongPhase
		}
		if actor.Role.Faction() != model.FactionMafia {
			return model.ErrWrongRole
		}
	case model.VerbHeal:
		if room.Game.Phase != model.PhaseNight {
			return model.ErrWrongPhase
		}
		if actor.Role != model.RoleDoctor {
			return model.ErrWrongRole
		}
	case model.VerbVote:
		if room.Game.Phase != model.PhaseDay {
			return model.ErrWrongPhase
		}
	default:
		return model.ErrUnknownVerb
	}

	// Self-targeting is allowed; only dead or absent targets are rejected
	if victim := room.GetParticipant(target); victim == nil || !victim.Alive {
		return model.ErrInvalidTarget
	}
	return nil
}

// requiredActors returns the participants whose pending actions gate
// early resolution of the current phase. At night only the mafia are
// awaited; the doctor's heal counts if present but is never waited for.
func requiredActors(room *model.Room) []model.Participant {
	if room.Game.Phase == model.PhaseNight {
		return room.LivingFaction(model.FactionMafia)
	}
	return room.Living()
}

// resolutionEligible reports whether every required actor has a pending
// action. An empty required set is trivially eligible, which lets a
// phase resolve immediately once every awaited actor has left.
func resolutionEligible(room *model.Room) bool {
	for _, p := range requiredActors(room) {
		if _, ok := room.Game.Pending[p.Handle]; !ok {
			return false
		}
	}
	return true
}

// resolveNight applies the night's kill and returns the outcome line.
// Exactly one kill is honored: the earliest-submitted one. Any heal on
// that same victim negates it. A victim who died or left before
// resolution is treated as no kill at all.
func resolveNight(room *model.Room) string {
	actions := room.Game.PendingInOrder()

	var (
		victim model.Handle
		found  bool
	)
	for _, a := range actions {
		if a.Verb == model.VerbKill {
			victim = a.Target
			found = true
			break
		}
	}
	if !found {
		return "no one was harmed"
	}

	for _, a := range actions {
		if a.Verb == model.VerbHeal && a.Target == victim {
			return "no one was harmed"
		}
	}

	target := room.GetParticipant(victim)
	if target == nil || !target.Alive {
		return "no one was harmed"
	}
	target.Alive = false
	return fmt.Sprintf("%s was killed", victim)
}

// resolveDay tallies votes in submission order and eliminates the target
// with the strictly highest count. The first target to reach the winning
// count takes a tie, so the earliest-arriving deciding vote is decisive.
func resolveDay(room *model.Room) string {
	tally := make(map[model.Handle]int)
	var (
		leader      model.Handle
		leaderCount int
	)
	for _, a := range room.Game.PendingInOrder() {
		if a.Verb != model.VerbVote {
			continue
		}
		tally[a.Target]++
		if tally[a.Target] > leaderCount {
			leader = a.Target
			leaderCount = tally[a.Target]
		}
	}
	if leaderCount == 0 {
		return "no one was eliminated"
	}

	target := room.GetParticipant(leader)
	if target == nil || !target.Alive {
		return "no one was eliminated"
	}
	target.Alive = false
	return fmt.Sprintf("%s was eliminated", leader)
}

// evaluateWin returns the winning faction, or empty while the game
// continues. The town wins only by eliminating every mafia member; the
// mafia wins on reaching parity with the town, so a stalemate counts as
// a mafia win.
func evaluateWin(room *model.Room) model.Faction {
	mafia := len(room.LivingFaction(model.FactionMafia))
	town := len(room.LivingFaction(model.FactionTown))
	if mafia == 0 {
		return model.FactionTown
	}
	if mafia >= town {
		return model.FactionMafia
	}
	return ""
}

package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mafiagame-go/internal/model"
)

type EngineSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

// buildRoom assembles a playing room with the given roles, everyone alive
func (s *EngineSuite) buildRoom(phase model.Phase, roles map[model.Handle]model.Role) *model.Room {
	rm := &model.Room{
		ID:     "ROOM01",
		Status: model.RoomStatusPlaying,
		Game: &model.Game{
			Phase:       phase,
			Day:         1,
			Pending:     make(map[model.Handle]model.Action),
			StartRoster: roles,
		},
	}
	// Stable roster order for tests: don, mafioso, doctor, twin, citizen
	order := []model.Role{model.RoleDon, model.RoleMafioso, model.RoleDoctor, model.RoleTwin, model.RoleCitizen}
	for _, want := range order {
		for handle, role := range roles {
			if role == want {
				rm.Roster = append(rm.Roster, model.Participant{Handle: handle, Role: role, Alive: true})
			}
		}
	}
	return rm
}

func (s *EngineSuite) submit(rm *model.Room, actor model.Handle, verb model.Verb, target model.Handle) {
	rm.Game.Pending[actor] = model.Action{
		Actor:  actor,
		Verb:   verb,
		Target: target,
		At:     time.Unix(0, 0),
		Seq:    rm.Game.NextSeq(),
	}
}

// validateAction tests

func (s *EngineSuite) TestValidateActionRules() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":     model.RoleDon,
		"doc":     model.RoleDoctor,
		"townie":  model.RoleCitizen,
		"townie2": model.RoleCitizen,
		"corpse":  model.RoleCitizen,
	})
	rm.GetParticipant("corpse").Alive = false

	tests := []struct {
		name    string
		phase   model.Phase
		actor   model.Handle
		verb    model.Verb
		target  model.Handle
		wantErr error
	}{
		{"mafia kill at night", model.PhaseNight, "don", model.VerbKill, "townie", nil},
		{"doctor heal at night", model.PhaseNight, "doc", model.VerbHeal, "townie", nil},
		{"doctor self heal", model.PhaseNight, "doc", model.VerbHeal, "doc", nil},
		{"vote by day", model.PhaseDay, "townie", model.VerbVote, "don", nil},
		{"kill by day", model.PhaseDay, "don", model.VerbKill, "townie", model.ErrWrongPhase},
		{"heal by day", model.PhaseDay, "doc", model.VerbHeal, "townie", model.ErrWrongPhase},
		{"vote at night", model.PhaseNight, "townie", model.VerbVote, "don", model.ErrWrongPhase},
		{"kill by townsfolk", model.PhaseNight, "townie", model.VerbKill, "don", model.ErrWrongRole},
		{"heal by townsfolk", model.PhaseNight, "townie", model.VerbHeal, "townie2", model.ErrWrongRole},
		{"dead target", model.PhaseNight, "don", model.VerbKill, "corpse", model.ErrInvalidTarget},
		{"absent target", model.PhaseNight, "don", model.VerbKill, "stranger", model.ErrInvalidTarget},
		{"start is not a game action", model.PhaseNight, "don", model.VerbStart, "townie", model.ErrUnknownVerb},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rm.Game.Phase = tt.phase
			err := validateAction(rm, rm.GetParticipant(tt.actor), tt.verb, tt.target)
			if tt.wantErr == nil {
				s.NoError(err)
			} else {
				s.ErrorIs(err, tt.wantErr)
			}
		})
	}
}

// Eligibility tests

func (s *EngineSuite) TestNightAwaitsEveryLivingMafia() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"mafi":   model.RoleMafioso,
		"doc":    model.RoleDoctor,
		"townie": model.RoleCitizen,
	})

	s.False(resolutionEligible(rm))

	s.submit(rm, "don", model.VerbKill, "townie")
	s.False(resolutionEligible(rm), "second mafioso still outstanding")

	s.submit(rm, "mafi", model.VerbKill, "townie")
	s.True(resolutionEligible(rm))
}

func (s *EngineSuite) TestNightDoesNotAwaitTheDoctor() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"doc":    model.RoleDoctor,
		"townie": model.RoleCitizen,
	})

	s.submit(rm, "don", model.VerbKill, "townie")
	s.True(resolutionEligible(rm), "the heal is optional, not awaited")
}

func (s *EngineSuite) TestDeadMafiaAreNotAwaited() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"mafi":   model.RoleMafioso,
		"townie": model.RoleCitizen,
	})
	rm.GetParticipant("mafi").Alive = false

	s.submit(rm, "don", model.VerbKill, "townie")
	s.True(resolutionEligible(rm))
}

func (s *EngineSuite) TestDayAwaitsEveryLivingParticipant() {
	rm := s.buildRoom(model.PhaseDay, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"townie": model.RoleCitizen,
		"other":  model.RoleCitizen,
	})

	s.submit(rm, "don", model.VerbVote, "townie")
	s.submit(rm, "townie", model.VerbVote, "don")
	s.False(resolutionEligible(rm))

	s.submit(rm, "other", model.VerbVote, "don")
	s.True(resolutionEligible(rm))
}

func (s *EngineSuite) TestEmptyRequiredSetIsEligible() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"townie": model.RoleCitizen,
		"other":  model.RoleCitizen,
	})

	s.True(resolutionEligible(rm), "no living mafia leaves nothing to wait for")
}

// Night resolution tests

func (s *EngineSuite) TestNightEarliestKillIsHonored() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"mafi":   model.RoleMafioso,
		"townie": model.RoleCitizen,
		"other":  model.RoleCitizen,
	})

	s.submit(rm, "mafi", model.VerbKill, "other")
	s.submit(rm, "don", model.VerbKill, "townie")

	s.Equal("other was killed", resolveNight(rm))
	s.False(rm.GetParticipant("other").Alive)
	s.True(rm.GetParticipant("townie").Alive)
}

func (s *EngineSuite) TestNightHealNegatesTheKill() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"doc":    model.RoleDoctor,
		"townie": model.RoleCitizen,
	})

	s.submit(rm, "doc", model.VerbHeal, "townie")
	s.submit(rm, "don", model.VerbKill, "townie")

	s.Equal("no one was harmed", resolveNight(rm))
	s.True(rm.GetParticipant("townie").Alive)
}

func (s *EngineSuite) TestNightHealElsewhereDoesNotSave() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"doc":    model.RoleDoctor,
		"townie": model.RoleCitizen,
	})

	s.submit(rm, "doc", model.VerbHeal, "doc")
	s.submit(rm, "don", model.VerbKill, "townie")

	s.Equal("townie was killed", resolveNight(rm))
	s.False(rm.GetParticipant("townie").Alive)
}

func (s *EngineSuite) TestNightWithoutKillsHarmsNoOne() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"townie": model.RoleCitizen,
	})

	s.Equal("no one was harmed", resolveNight(rm))
}

func (s *EngineSuite) TestNightKillOnDepartedTargetHarmsNoOne() {
	rm := s.buildRoom(model.PhaseNight, map[model.Handle]model.Role{
		"don":    model.RoleDon,
		"townie": model.RoleCitizen,
	})

	s.submit(rm, "don", model.VerbKill, "ghost")

	s.Equal("no one was harmed", resolveNight(rm))
}

// Day resolution tests

func (s *EngineSuite) TestDayHighestTallyIsEliminated() {
	rm := s.buildRoom(model.PhaseDay, map[model.Handle]model.Role{
		"don": model.RoleDon,
		"a":   model.RoleCitizen,
		"b":   model.RoleCitizen,
		"c":   model.RoleCitizen,
		"d":   model.RoleCitizen,
	})

	s.submit(rm, "a", model.VerbVote, "don")
	s.submit(rm, "b", model.VerbVote, "don")
	s.submit(rm, "don", model.VerbVote, "a")
	s.submit(rm, "c", model.VerbVote, "don")
	s.submit(rm, "d", model.VerbVote, "a")

	s.Equal("don was eliminated", resolveDay(rm))
	s.False(rm.GetParticipant("don").Alive)
	s.True(rm.GetParticipant("a").Alive)
}

func (s *EngineSuite) TestDayTieGoesToFirstTargetReachingTheCount() {
	rm := s.buildRoom(model.PhaseDay, map[model.Handle]model.Role{
		"don": model.RoleDon,
		"a":   model.RoleCitizen,
		"b":   model.RoleCitizen,
		"c":   model.RoleCitizen,
	})

	// Both a and don end on two votes; don reaches two first
	s.submit(rm, "a", model.VerbVote, "don")
	s.submit(rm, "b", model.VerbVote, "a")
	s.submit(rm, "c", model.VerbVote, "don")
	s.submit(rm, "don", model.VerbVote, "a")

	s.Equal("don was eliminated", resolveDay(rm))
	s.False(rm.GetParticipant("don").Alive)
	s.True(rm.GetParticipant("a").Alive)
}

func (s *EngineSuite) TestDayResubmissionMovesTheVote() {
	rm := s.buildRoom(model.PhaseDay, map[model.Handle]model.Role{
		"don": model.RoleDon,
		"a":   model.RoleCitizen,
		"b":   model.RoleCitizen,
	})

	s.submit(rm, "a", model.VerbVote, "don")
	s.submit(rm, "b", model.VerbVote, "a")
	// a changes their vote; the old one must not count
	s.submit(rm, "a", model.VerbVote, "b")

	s.Equal("a was eliminated", resolveDay(rm))
	s.Len(rm.Game.Pending, 2)
}

func (s *EngineSuite) TestDayWithoutVotesEliminatesNoOne() {
	rm := s.buildRoom(model.PhaseDay, map[model.Handle]model.Role{
		"don": model.RoleDon,
		"a":   model.RoleCitizen,
	})

	s.Equal("no one was eliminated", resolveDay(rm))
	s.True(rm.GetParticipant("don").Alive)
	s.True(rm.GetParticipant("a").Alive)
}

func (s *EngineSuite) TestDayLeadingVoteForDepartedTargetEliminatesNoOne() {
	rm := s.buildRoom(model.PhaseDay, map[model.Handle]model.Role{
		"don": model.RoleDon,
		"a":   model.RoleCitizen,
		"b":   model.RoleCitizen,
	})

	s.submit(rm, "a", model.VerbVote, "ghost")
	s.submit(rm, "b", model.VerbVote, "ghost")
	s.submit(rm, "don", model.VerbVote, "a")

	s.Equal("no one was eliminated", resolveDay(rm))
	s.True(rm.GetParticipant("a").Alive)
}

// Win evaluation tests

func (s *EngineSuite) TestWinEvaluation() {
	tests := []struct {
		name  string
		alive map[model.Handle]model.Role
		dead  []model.Handle
		want  model.Faction
	}{
		{
			name: "game continues while town outnumbers mafia",
			alive: map[model.Handle]model.Role{
				"don": model.RoleDon, "a": model.RoleCitizen, "b": model.RoleCitizen,
			},
			want: "",
		},
		{
			name: "town wins once the mafia is gone",
			alive: map[model.Handle]model.Role{
				"don": model.RoleDon, "a": model.RoleCitizen, "b": model.RoleCitizen,
			},
			dead: []model.Handle{"don"},
			want: model.FactionTown,
		},
		{
			name: "mafia wins on parity",
			alive: map[model.Handle]model.Role{
				"don": model.RoleDon, "a": model.RoleCitizen, "b": model.RoleCitizen,
			},
			dead: []model.Handle{"b"},
			want: model.FactionMafia,
		},
		{
			name: "mafia wins when outnumbering town",
			alive: map[model.Handle]model.Role{
				"don": model.RoleDon, "mafi": model.RoleMafioso, "a": model.RoleCitizen,
			},
			want: model.FactionMafia,
		},
		{
			name: "doctor counts as town",
			alive: map[model.Handle]model.Role{
				"don": model.RoleDon, "doc": model.RoleDoctor, "a": model.RoleCitizen,
			},
			want: "",
		},
		{
			name: "twins count as town",
			alive: map[model.Handle]model.Role{
				"don": model.RoleDon, "t1": model.RoleTwin, "t2": model.RoleTwin,
			},
			want: "",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rm := s.buildRoom(model.PhaseDay, tt.alive)
			for _, h := range tt.dead {
				rm.GetParticipant(h).Alive = false
			}
			s.Equal(tt.want, evaluateWin(rm))
		})
	}
}

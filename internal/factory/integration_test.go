package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/room"
	"github.com/mcoot/mafiagame-go/internal/storage/memory"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.Close()
}

func (s *IntegrationSuite) register(handle string) {
	_, err := s.app.AuthService.Register(s.ctx, model.Handle(handle), "hunter22")
	s.Require().NoError(err)
}

func (s *IntegrationSuite) wallet(handle string) int {
	identity, err := s.app.Storage.GetIdentity(s.ctx, model.Handle(handle))
	s.Require().NoError(err)
	return identity.Wallet
}

// Test: complete flow from registration through a town win and payouts
func (s *IntegrationSuite) TestCompleteGameFlow() {
	for _, h := range []string{"alice", "bob", "carol", "dave"} {
		s.register(h)
	}

	// Step 1: Alice opens a room and the others join
	s.app.MockRandom.QueueString("ROOM01")
	rm, err := s.app.RoomController.CreateRoom(s.ctx, "alice", room.CreateParams{Name: "late night"})
	s.Require().NoError(err)
	s.Equal(model.RoomID("ROOM01"), rm.ID)

	for _, h := range []string{"bob", "carol", "dave"} {
		_, err = s.app.RoomController.JoinRoom(s.ctx, model.Handle(h), rm.ID, "")
		s.Require().NoError(err)
	}

	// Step 2: start the game; with four players only the don is mafia,
	// and the empty shuffle queue deals in join order
	rm, err = s.app.GameController.StartGame(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusPlaying, rm.Status)
	s.Equal(model.PhaseNight, rm.Game.Phase)
	s.Equal(model.RoleDon, rm.GetParticipant("alice").Role)
	s.Equal(model.RoleCitizen, rm.GetParticipant("bob").Role)
	recordID := rm.Game.RecordID

	// Step 3: the don kills bob; the night resolves into day
	err = s.app.GameController.SubmitAction(s.ctx, "alice", model.VerbKill, "bob")
	s.Require().NoError(err)

	rm, err = s.app.RoomController.GetRoom("ROOM01")
	s.Require().NoError(err)
	s.Equal(model.PhaseDay, rm.Game.Phase)
	s.False(rm.GetParticipant("bob").Alive)

	// Step 4: the town votes out the don, ending the game
	s.Require().NoError(s.app.GameController.SubmitAction(s.ctx, "carol", model.VerbVote, "alice"))
	s.Require().NoError(s.app.GameController.SubmitAction(s.ctx, "dave", model.VerbVote, "alice"))
	s.Require().NoError(s.app.GameController.SubmitAction(s.ctx, "alice", model.VerbVote, "carol"))

	rm, err = s.app.RoomController.GetRoom("ROOM01")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, rm.Status)
	s.Nil(rm.Game)

	// Step 5: payouts land in the background
	s.Eventually(func() bool {
		return s.wallet("carol") == 130 && s.wallet("dave") == 130 &&
			s.wallet("bob") == 115 && s.wallet("alice") == 90
	}, 2*time.Second, 10*time.Millisecond)

	carol, err := s.app.Storage.GetIdentity(s.ctx, "carol")
	s.Require().NoError(err)
	s.Equal(1, carol.Stats.GamesPlayed)
	s.Equal(1, carol.Stats.GamesWon)
	s.Equal(1, carol.Stats.GamesSurvived)

	alice, err := s.app.Storage.GetIdentity(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, alice.Stats.GamesPlayed)
	s.Equal(0, alice.Stats.GamesWon)

	// Step 6: the finished game left a completed record behind
	s.Eventually(func() bool {
		record := s.app.Storage.(*memory.Storage).GameRecord(recordID)
		return record != nil && record.Winner == model.FactionTown && !record.EndedAt.IsZero()
	}, 2*time.Second, 10*time.Millisecond)
}

// Test: the same room can host another game after the first ends
func (s *IntegrationSuite) TestBackToBackGames() {
	for _, h := range []string{"alice", "bob", "carol"} {
		s.register(h)
	}

	s.app.MockRandom.QueueString("ROOM01")
	rm, err := s.app.RoomController.CreateRoom(s.ctx, "alice", room.CreateParams{Name: "again"})
	s.Require().NoError(err)
	_, err = s.app.RoomController.JoinRoom(s.ctx, "bob", rm.ID, "")
	s.Require().NoError(err)
	_, err = s.app.RoomController.JoinRoom(s.ctx, "carol", rm.ID, "")
	s.Require().NoError(err)

	// First game: the don kills carol, reaching parity and winning
	_, err = s.app.GameController.StartGame(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().NoError(s.app.GameController.SubmitAction(s.ctx, "alice", model.VerbKill, "carol"))

	rm, err = s.app.RoomController.GetRoom("ROOM01")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, rm.Status)

	// Second game starts cleanly with everyone alive again
	rm, err = s.app.GameController.StartGame(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PhaseNight, rm.Game.Phase)
	for _, p := range rm.Roster {
		s.True(p.Alive)
	}
}

// Test: shop purchases draw from the same wallet rewards feed
func (s *IntegrationSuite) TestShopPurchase() {
	s.register("alice")

	identity, err := s.app.ShopService.Purchase(s.ctx, "alice", "fedora")
	s.Require().NoError(err)
	s.Equal(60, identity.Wallet)
	s.Equal([]string{"fedora"}, identity.Cosmetics)

	_, err = s.app.ShopService.Purchase(s.ctx, "alice", "gold_watch")
	s.ErrorIs(err, model.ErrInsufficientFunds)
}

// Test: sessions expire against the shared clock
func (s *IntegrationSuite) TestSessionExpiry() {
	session, err := s.app.AuthService.Register(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)

	_, err = s.app.AuthService.ValidateSession(session.Token)
	s.NoError(err)

	s.app.MockClock.Advance(25 * time.Hour)
	_, err = s.app.AuthService.ValidateSession(session.Token)
	s.ErrorIs(err, model.ErrNotAuthenticated)
}

func TestFactoryStorageSelection(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("default factory: %v", err)
	}
	if _, ok := app.Storage.(*memory.Storage); !ok {
		t.Fatalf("expected memory storage by default, got %T", app.Storage)
	}

	if _, err := New(Config{StorageType: StorageTypeRedis}); err == nil {
		t.Fatal("expected error for redis storage without config")
	}

	if _, err := New(Config{StorageType: "bogus"}); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

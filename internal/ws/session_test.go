package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/mafiagame-go/internal/dependencies/mocks"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/auth"
	"github.com/mcoot/mafiagame-go/internal/services/game"
	"github.com/mcoot/mafiagame-go/internal/services/rewards"
	"github.com/mcoot/mafiagame-go/internal/services/room"
	"github.com/mcoot/mafiagame-go/internal/storage/memory"
	"github.com/mcoot/mafiagame-go/internal/testutil"
)

// SessionSuite drives the protocol through real services with in-process
// connections; only the network pumps are left out
type SessionSuite struct {
	suite.Suite
	registry *room.Registry
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	hub      *Hub
	auth     *auth.Service
	rooms    *room.Controller
	games    *game.Controller
	ctx      context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.registry = room.NewRegistry()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.hub = NewHub(testutil.NopLogger())
	s.auth = auth.New(s.storage, s.clock, auth.Config{
		BcryptCost:    bcrypt.MinCost,
		InitialWallet: 100,
	})
	s.rooms = room.NewController(s.registry, s.storage, s.hub, s.clock, s.random, testutil.NopLogger())
	s.games = game.NewController(s.registry, s.storage, rewards.New(rewards.DefaultConfig()),
		s.hub, s.clock, s.random, game.Config{}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *SessionSuite) TearDownTest() {
	s.games.StopAll()
}

// conn pairs a pump-less client with its session
type conn struct {
	client  *Client
	session *Session
}

func (s *SessionSuite) connect() *conn {
	client := NewClient(nil, testutil.NopLogger())
	session := NewSession(s.hub, client, SessionDeps{
		Auth:  s.auth,
		Rooms: s.rooms,
		Games: s.games,
	}, testutil.NopLogger())
	return &conn{client: client, session: session}
}

// drain collects everything queued for the client
func drain(c *Client) []model.Outbound {
	var events []model.Outbound
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func (s *SessionSuite) register(handle model.Handle) *conn {
	c := s.connect()
	c.session.dispatch(s.ctx, model.RegisterEvent{Handle: handle, Password: "hunter22"})
	events := drain(c.client)
	s.Require().NotEmpty(events)
	_, ok := events[0].(model.ConnectedEvent)
	s.Require().True(ok, "expected ConnectedEvent, got %T", events[0])
	return c
}

func (s *SessionSuite) createRoom(c *conn, code string) model.RoomID {
	s.random.QueueString(code)
	c.session.dispatch(s.ctx, model.CreateRoomEvent{Name: "night shift"})
	events := drain(c.client)
	s.Require().NotEmpty(events)
	joined, ok := events[len(events)-1].(model.RoomJoinedEvent)
	s.Require().True(ok, "expected RoomJoinedEvent, got %T", events[len(events)-1])
	return joined.Room.ID
}

func (s *SessionSuite) join(c *conn, id model.RoomID) {
	c.session.dispatch(s.ctx, model.JoinRoomEvent{RoomID: id})
	events := drain(c.client)
	s.Require().NotEmpty(events)
	_, ok := events[len(events)-1].(model.RoomJoinedEvent)
	s.Require().True(ok, "expected RoomJoinedEvent, got %T", events[len(events)-1])
}

func lastGameUpdate(events []model.Outbound) (model.GameUpdateEvent, bool) {
	var (
		update model.GameUpdateEvent
		found  bool
	)
	for _, ev := range events {
		if u, ok := ev.(model.GameUpdateEvent); ok {
			update = u
			found = true
		}
	}
	return update, found
}

func errorCodes(events []model.Outbound) []string {
	var codes []string
	for _, ev := range events {
		if e, ok := ev.(model.ErrorEvent); ok {
			codes = append(codes, e.Code)
		}
	}
	return codes
}

// Authentication

func (s *SessionSuite) TestRegisterCreatesIdentityAndShowsLobby() {
	c := s.connect()
	c.session.dispatch(s.ctx, model.RegisterEvent{Handle: "alice", Password: "hunter22"})

	events := drain(c.client)
	s.Require().Len(events, 2)

	connected, ok := events[0].(model.ConnectedEvent)
	s.Require().True(ok)
	s.Equal(model.Handle("alice"), connected.Identity.Handle)
	s.Equal(100, connected.Identity.Wallet)
	s.NotEmpty(connected.Token)

	list, ok := events[1].(model.RoomListEvent)
	s.Require().True(ok)
	s.Empty(list.Rooms)
	s.Equal(1, s.hub.ClientCount())
}

func (s *SessionSuite) TestRegisterDuplicateHandle() {
	s.register("alice")

	c := s.connect()
	c.session.dispatch(s.ctx, model.RegisterEvent{Handle: "alice", Password: "hunter22"})
	s.Equal([]string{"handle_taken"}, errorCodes(drain(c.client)))
}

func (s *SessionSuite) TestLoginWrongPassword() {
	s.register("alice")

	c := s.connect()
	c.session.dispatch(s.ctx, model.LoginEvent{Handle: "alice", Password: "wrong123"})
	s.Equal([]string{"invalid_credentials"}, errorCodes(drain(c.client)))
}

func (s *SessionSuite) TestLoginUnknownHandle() {
	c := s.connect()
	c.session.dispatch(s.ctx, model.LoginEvent{Handle: "nobody", Password: "hunter22"})
	s.Equal([]string{"invalid_credentials"}, errorCodes(drain(c.client)))
}

func (s *SessionSuite) TestLoginWithSessionToken() {
	first := s.connect()
	first.session.dispatch(s.ctx, model.RegisterEvent{Handle: "alice", Password: "hunter22"})
	events := drain(first.client)
	s.Require().NotEmpty(events)
	connected, ok := events[0].(model.ConnectedEvent)
	s.Require().True(ok)
	first.session.disconnected(s.ctx)

	second := s.connect()
	second.session.dispatch(s.ctx, model.LoginEvent{Token: connected.Token})

	events = drain(second.client)
	s.Require().NotEmpty(events)
	resumed, ok := events[0].(model.ConnectedEvent)
	s.Require().True(ok, "expected ConnectedEvent, got %T", events[0])
	s.Equal(model.Handle("alice"), resumed.Identity.Handle)
	s.Equal(connected.Token, resumed.Token)
}

func (s *SessionSuite) TestLoginWithBadToken() {
	c := s.connect()
	c.session.dispatch(s.ctx, model.LoginEvent{Token: "not-a-session"})
	s.Equal([]string{"not_authenticated"}, errorCodes(drain(c.client)))
}

func (s *SessionSuite) TestUnauthenticatedEventsAreRejected() {
	c := s.connect()
	c.session.dispatch(s.ctx, model.ListRoomsEvent{})
	s.Equal([]string{"not_authenticated"}, errorCodes(drain(c.client)))
}

func (s *SessionSuite) TestDuplicateLoginKicksPreviousConnection() {
	first := s.register("alice")

	second := s.connect()
	second.session.dispatch(s.ctx, model.LoginEvent{Handle: "alice", Password: "hunter22"})

	events := drain(first.client)
	s.Require().Len(events, 1)
	kicked, ok := events[0].(model.KickedEvent)
	s.Require().True(ok)
	s.NotEmpty(kicked.Reason)

	select {
	case <-first.client.done:
	default:
		s.Fail("the kicked connection should be closing")
	}

	events = drain(second.client)
	s.Require().NotEmpty(events)
	_, ok = events[0].(model.ConnectedEvent)
	s.True(ok)
	s.Equal(1, s.hub.ClientCount())
}

func (s *SessionSuite) TestLoginRebindsLiveRoomSeat() {
	first := s.register("alice")
	id := s.createRoom(first, "ROOM01")

	second := s.connect()
	second.session.dispatch(s.ctx, model.LoginEvent{Handle: "alice", Password: "hunter22"})

	events := drain(second.client)
	s.Require().NotEmpty(events)
	joined, ok := events[len(events)-1].(model.RoomJoinedEvent)
	s.Require().True(ok, "a reconnecting player lands back in their room")
	s.Equal(id, joined.Room.ID)

	// The kicked connection's late cleanup must not unseat the replacement
	first.session.disconnected(s.ctx)
	_, stillMember := s.rooms.RoomFor("alice")
	s.True(stillMember)
	s.Equal(1, s.hub.RoomSize(id))
}

// Rooms and chat

func (s *SessionSuite) TestCreateRoomRequiresName() {
	alice := s.register("alice")
	alice.session.dispatch(s.ctx, model.CreateRoomEvent{Name: "   "})
	s.Equal([]string{"invalid_input"}, errorCodes(drain(alice.client)))
}

func (s *SessionSuite) TestJoinRoomNotifiesExistingMembers() {
	alice := s.register("alice")
	id := s.createRoom(alice, "ROOM01")

	bob := s.register("bob")
	s.join(bob, id)

	events := drain(alice.client)
	var sawRoster, sawChat bool
	for _, ev := range events {
		switch e := ev.(type) {
		case model.RoomUpdatedEvent:
			sawRoster = len(e.Room.Roster) == 2
		case model.ChatMessageEvent:
			sawChat = e.Message.Text == "bob joined the room"
		}
	}
	s.True(sawRoster, "owner should see the grown roster")
	s.True(sawChat, "owner should see the join notice")
}

func (s *SessionSuite) TestChatReachesRoomOnly() {
	alice := s.register("alice")
	id := s.createRoom(alice, "ROOM01")
	bob := s.register("bob")
	s.join(bob, id)
	carol := s.register("carol")
	drain(alice.client)
	drain(carol.client)

	alice.session.dispatch(s.ctx, model.ChatEvent{Text: "trust no one"})

	var heard bool
	for _, ev := range drain(bob.client) {
		if e, ok := ev.(model.ChatMessageEvent); ok && e.Message.Text == "trust no one" {
			heard = true
			s.Equal(model.Handle("alice"), e.Message.Sender)
		}
	}
	s.True(heard)

	for _, ev := range drain(carol.client) {
		_, isChat := ev.(model.ChatMessageEvent)
		s.False(isChat, "lobby clients must not hear room chat")
	}
}

func (s *SessionSuite) TestLeaveRoomReturnsToLobby() {
	alice := s.register("alice")
	id := s.createRoom(alice, "ROOM01")
	bob := s.register("bob")
	s.join(bob, id)
	drain(alice.client)

	bob.session.dispatch(s.ctx, model.LeaveRoomEvent{})

	events := drain(bob.client)
	s.Require().NotEmpty(events)
	_, ok := events[len(events)-1].(model.RoomListEvent)
	s.True(ok, "the leaver lands back on the lobby view")
	s.Equal(1, s.hub.RoomSize(id))

	var sawDeparture bool
	for _, ev := range drain(alice.client) {
		if e, ok := ev.(model.ChatMessageEvent); ok && e.Message.Text == "bob left the room" {
			sawDeparture = true
		}
	}
	s.True(sawDeparture)
}

// Game actions

func (s *SessionSuite) TestStartVerbRoutesToGame() {
	alice := s.register("alice")
	id := s.createRoom(alice, "ROOM01")
	bob := s.register("bob")
	s.join(bob, id)
	carol := s.register("carol")
	s.join(carol, id)
	drain(alice.client)
	drain(bob.client)

	alice.session.dispatch(s.ctx, model.GameActionEvent{Verb: model.VerbStart})

	aliceUpdate, ok := lastGameUpdate(drain(alice.client))
	s.Require().True(ok)
	s.Equal(model.RoomStatusPlaying, aliceUpdate.Room.Status)
	s.Require().NotNil(aliceUpdate.Room.Game)
	s.Equal(model.PhaseNight, aliceUpdate.Room.Game.Phase)

	// The creator drew the don; bob sees his own role but not alice's
	bobUpdate, ok := lastGameUpdate(drain(bob.client))
	s.Require().True(ok)
	for _, p := range bobUpdate.Room.Roster {
		if p.Handle == "alice" {
			s.Empty(p.Role)
		}
		if p.Handle == "bob" {
			s.Equal(model.RoleCitizen, p.Role)
		}
	}
}

func (s *SessionSuite) TestStartVerbRequiresOwner() {
	alice := s.register("alice")
	id := s.createRoom(alice, "ROOM01")
	bob := s.register("bob")
	s.join(bob, id)
	carol := s.register("carol")
	s.join(carol, id)
	drain(bob.client)

	bob.session.dispatch(s.ctx, model.GameActionEvent{Verb: model.VerbStart})
	s.Equal([]string{"not_owner"}, errorCodes(drain(bob.client)))
}

func (s *SessionSuite) TestGameActionWithoutGame() {
	alice := s.register("alice")
	s.createRoom(alice, "ROOM01")
	drain(alice.client)

	alice.session.dispatch(s.ctx, model.GameActionEvent{Verb: model.VerbVote, Target: "alice"})
	s.Equal([]string{"no_game"}, errorCodes(drain(alice.client)))
}

func (s *SessionSuite) TestNightKillDecidesGameOverTheWire() {
	alice := s.register("alice")
	id := s.createRoom(alice, "ROOM01")
	bob := s.register("bob")
	s.join(bob, id)
	carol := s.register("carol")
	s.join(carol, id)

	alice.session.dispatch(s.ctx, model.GameActionEvent{Verb: model.VerbStart})
	drain(bob.client)

	// One don against two citizens: the first kill settles it
	alice.session.dispatch(s.ctx, model.GameActionEvent{Verb: model.VerbKill, Target: "bob"})

	events := drain(bob.client)
	update, ok := lastGameUpdate(events)
	s.Require().True(ok)
	s.Equal(model.RoomStatusFinished, update.Room.Status)
	s.Require().NotNil(update.Room.Game)
	s.Equal(model.FactionMafia, update.Room.Game.Winner)
	for _, p := range update.Room.Roster {
		s.NotEmpty(p.Role, "game end reveals every role")
	}

	var sawVerdict bool
	for _, ev := range events {
		if e, ok := ev.(model.ChatMessageEvent); ok && e.Message.Text == "the mafia has won" {
			sawVerdict = true
		}
	}
	s.True(sawVerdict)
}

func (s *SessionSuite) TestDisconnectOfLastMafiaEndsGame() {
	alice := s.register("alice")
	id := s.createRoom(alice, "ROOM01")
	bob := s.register("bob")
	s.join(bob, id)
	carol := s.register("carol")
	s.join(carol, id)
	dave := s.register("dave")
	s.join(dave, id)

	alice.session.dispatch(s.ctx, model.GameActionEvent{Verb: model.VerbStart})
	drain(bob.client)

	// The read pump runs this when alice's connection drops
	alice.session.disconnected(s.ctx)

	update, ok := lastGameUpdate(drain(bob.client))
	s.Require().True(ok)
	s.Equal(model.RoomStatusFinished, update.Room.Status)
	s.Require().NotNil(update.Room.Game)
	s.Equal(model.FactionTown, update.Room.Game.Winner)
	s.Equal(3, s.hub.ClientCount())
	s.Equal(3, s.hub.RoomSize(id))
}

func (s *SessionSuite) TestDisconnectBeforeLoginIsQuiet() {
	c := s.connect()
	c.session.disconnected(s.ctx)
	s.Equal(0, s.hub.ClientCount())
}

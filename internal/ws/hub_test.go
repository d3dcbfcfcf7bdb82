package ws

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	hub *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
}

// newTestClient builds a client whose pumps never run, so its send
// buffer can be inspected directly
func (s *HubSuite) newTestClient() *Client {
	return NewClient(nil, testutil.NopLogger())
}

// receive drains one queued event, reporting false when none is buffered
func receive(c *Client) (model.Outbound, bool) {
	select {
	case ev := <-c.send:
		return ev, true
	default:
		return nil, false
	}
}

func (s *HubSuite) TestSendToReachesBoundClient() {
	client := s.newTestClient()
	s.Nil(s.hub.Bind("alice", client))

	s.hub.SendTo("alice", model.ErrorEvent{Code: "test"})

	ev, ok := receive(client)
	s.Require().True(ok)
	s.Equal(model.ErrorEvent{Code: "test"}, ev)
}

func (s *HubSuite) TestSendToUnknownHandleIsANoOp() {
	s.hub.SendTo("ghost", model.ErrorEvent{Code: "test"})
	s.Equal(0, s.hub.ClientCount())
}

func (s *HubSuite) TestBindReturnsDisplacedConnection() {
	first := s.newTestClient()
	second := s.newTestClient()

	s.Nil(s.hub.Bind("alice", first))
	s.Equal(first, s.hub.Bind("alice", second))
	s.Equal(1, s.hub.ClientCount())

	// Rebinding the same connection displaces nothing
	s.Nil(s.hub.Bind("alice", second))

	s.hub.SendTo("alice", model.ErrorEvent{Code: "test"})
	_, ok := receive(second)
	s.True(ok)
	_, ok = receive(first)
	s.False(ok)
}

func (s *HubSuite) TestBindRebindsExistingRoomSeat() {
	first := s.newTestClient()
	s.hub.Bind("alice", first)
	s.hub.JoinRoom("ROOM01", "alice")

	second := s.newTestClient()
	s.hub.Bind("alice", second)

	s.hub.BroadcastRoom("ROOM01", model.ErrorEvent{Code: "test"})
	_, ok := receive(second)
	s.True(ok, "the replacement connection inherits the room seat")
	_, ok = receive(first)
	s.False(ok)
}

func (s *HubSuite) TestUnbindIsInstanceMatched() {
	first := s.newTestClient()
	second := s.newTestClient()
	s.hub.Bind("alice", first)
	s.hub.Bind("alice", second)

	s.False(s.hub.Unbind("alice", first), "a displaced connection cannot unbind its replacement")
	s.Equal(1, s.hub.ClientCount())

	s.True(s.hub.Unbind("alice", second))
	s.Equal(0, s.hub.ClientCount())
}

func (s *HubSuite) TestUnbindReleasesRoomSeat() {
	client := s.newTestClient()
	s.hub.Bind("alice", client)
	s.hub.JoinRoom("ROOM01", "alice")
	s.Equal(1, s.hub.RoomSize("ROOM01"))

	s.hub.Unbind("alice", client)
	s.Equal(0, s.hub.RoomSize("ROOM01"))
}

func (s *HubSuite) TestJoinRoomRequiresABoundHandle() {
	s.hub.JoinRoom("ROOM01", "ghost")
	s.Equal(0, s.hub.RoomSize("ROOM01"))
}

func (s *HubSuite) TestBroadcastRoomReachesOnlySeatedClients() {
	seated := s.newTestClient()
	lobby := s.newTestClient()
	s.hub.Bind("alice", seated)
	s.hub.Bind("bob", lobby)
	s.hub.JoinRoom("ROOM01", "alice")

	s.hub.BroadcastRoom("ROOM01", model.ErrorEvent{Code: "test"})

	_, ok := receive(seated)
	s.True(ok)
	_, ok = receive(lobby)
	s.False(ok)
}

func (s *HubSuite) TestBroadcastRoomFuncTailorsPerViewer() {
	alice := s.newTestClient()
	bob := s.newTestClient()
	s.hub.Bind("alice", alice)
	s.hub.Bind("bob", bob)
	s.hub.JoinRoom("ROOM01", "alice")
	s.hub.JoinRoom("ROOM01", "bob")

	s.hub.BroadcastRoomFunc("ROOM01", func(viewer model.Handle) model.Outbound {
		return model.ErrorEvent{Message: string(viewer)}
	})

	ev, ok := receive(alice)
	s.Require().True(ok)
	s.Equal("alice", ev.(model.ErrorEvent).Message)
	ev, ok = receive(bob)
	s.Require().True(ok)
	s.Equal("bob", ev.(model.ErrorEvent).Message)
}

func (s *HubSuite) TestBroadcastLobbySkipsSeatedClients() {
	seated := s.newTestClient()
	idle := s.newTestClient()
	s.hub.Bind("alice", seated)
	s.hub.Bind("bob", idle)
	s.hub.JoinRoom("ROOM01", "alice")

	s.hub.BroadcastLobby(model.RoomListEvent{})

	_, ok := receive(idle)
	s.True(ok)
	_, ok = receive(seated)
	s.False(ok)
}

func (s *HubSuite) TestLeaveRoomRestoresLobbyAudience() {
	client := s.newTestClient()
	s.hub.Bind("alice", client)
	s.hub.JoinRoom("ROOM01", "alice")
	s.hub.LeaveRoom("ROOM01", "alice")

	s.hub.BroadcastLobby(model.RoomListEvent{})
	_, ok := receive(client)
	s.True(ok)
	s.Equal(0, s.hub.RoomSize("ROOM01"))
}

func (s *HubSuite) TestDropRoomReseatsEveryMember() {
	alice := s.newTestClient()
	bob := s.newTestClient()
	s.hub.Bind("alice", alice)
	s.hub.Bind("bob", bob)
	s.hub.JoinRoom("ROOM01", "alice")
	s.hub.JoinRoom("ROOM01", "bob")

	s.hub.DropRoom("ROOM01")

	s.Equal(0, s.hub.RoomSize("ROOM01"))
	s.hub.BroadcastLobby(model.RoomListEvent{})
	_, ok := receive(alice)
	s.True(ok)
	_, ok = receive(bob)
	s.True(ok)
}

func (s *HubSuite) TestFullBufferDropsInsteadOfBlocking() {
	client := s.newTestClient()
	s.hub.Bind("alice", client)
	for i := 0; i < sendBufferSize; i++ {
		s.Require().True(client.Send(model.ErrorEvent{Code: "fill"}))
	}

	s.False(client.Send(model.ErrorEvent{Code: "overflow"}))
	// Must return immediately rather than wedge the caller
	s.hub.SendTo("alice", model.ErrorEvent{Code: "overflow"})
}

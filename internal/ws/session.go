package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/auth"
	"github.com/mcoot/mafiagame-go/internal/services/game"
	"github.com/mcoot/mafiagame-go/internal/services/room"
)

// SessionDeps bundles the services a connection needs
type SessionDeps struct {
	Auth  *auth.Service
	Rooms room.ControllerInterface
	Games game.ControllerInterface
}

// Session is the per-connection protocol state machine: it authenticates
// the connection, routes inbound events to the services and keeps the
// hub's routing tables in step with the player's room membership.
type Session struct {
	hub    *Hub
	client *Client
	auth   *auth.Service
	rooms  room.ControllerInterface
	games  game.ControllerInterface
	logger *slog.Logger

	handle model.Handle
}

// NewSession creates the session for one connection
func NewSession(hub *Hub, client *Client, deps SessionDeps, logger *slog.Logger) *Session {
	return &Session{
		hub:    hub,
		client: client,
		auth:   deps.Auth,
		rooms:  deps.Rooms,
		games:  deps.Games,
		logger: logger.With(slog.String("component", "ws-session")),
	}
}

// dispatch routes one inbound event
func (s *Session) dispatch(ctx context.Context, event model.Inbound) {
	switch e := event.(type) {
	case model.RegisterEvent:
		s.register(ctx, e)
		return
	case model.LoginEvent:
		s.login(ctx, e)
		return
	case model.DisconnectEvent:
		s.client.Close()
		return
	}

	if s.handle == "" {
		s.sendError(model.ErrNotAuthenticated)
		return
	}

	switch e := event.(type) {
	case model.ListRoomsEvent:
		s.client.Send(model.RoomListEvent{Rooms: s.rooms.ListRooms()})

	case model.CreateRoomEvent:
		rm, err := s.rooms.CreateRoom(ctx, s.handle, room.CreateParams{
			Name:       e.Name,
			Config:     e.Config,
			MinPlayers: e.MinPlayers,
			MaxPlayers: e.MaxPlayers,
			Secret:     e.Secret,
		})
		if err != nil {
			s.sendError(err)
			return
		}
		s.hub.JoinRoom(rm.ID, s.handle)
		s.client.Send(model.RoomJoinedEvent{Room: model.NewRoomSnapshot(rm, s.handle)})

	case model.JoinRoomEvent:
		rm, err := s.rooms.JoinRoom(ctx, s.handle, e.RoomID, e.Secret)
		if err != nil {
			s.sendError(err)
			return
		}
		s.hub.JoinRoom(rm.ID, s.handle)
		s.client.Send(model.RoomJoinedEvent{Room: model.NewRoomSnapshot(rm, s.handle)})

	case model.LeaveRoomEvent:
		s.leaveRoom(ctx)

	case model.ChatEvent:
		if err := s.rooms.SendChat(ctx, s.handle, e.Text); err != nil {
			s.sendError(err)
		}

	case model.GameActionEvent:
		if e.Verb == model.VerbStart {
			if _, err := s.games.StartGame(ctx, s.handle); err != nil {
				s.sendError(err)
			}
			return
		}
		if err := s.games.SubmitAction(ctx, s.handle, e.Verb, e.Target); err != nil {
			s.sendError(err)
		}

	default:
		s.sendError(model.ErrUnknownEventType)
	}
}

func (s *Session) register(ctx context.Context, e model.RegisterEvent) {
	if s.handle != "" {
		s.sendError(fmt.Errorf("%w: already signed in", model.ErrInvalidInput))
		return
	}
	session, err := s.auth.Register(ctx, e.Handle, e.Password)
	if err != nil {
		s.sendError(err)
		return
	}
	s.bind(ctx, session)
}

func (s *Session) login(ctx context.Context, e model.LoginEvent) {
	if s.handle != "" {
		s.sendError(fmt.Errorf("%w: already signed in", model.ErrInvalidInput))
		return
	}
	var (
		session *auth.Session
		err     error
	)
	if e.Token != "" {
		session, err = s.auth.ValidateSession(e.Token)
	} else {
		session, err = s.auth.Login(ctx, e.Handle, e.Password)
	}
	if err != nil {
		s.sendError(err)
		return
	}
	s.bind(ctx, session)
}

// bind ties the authenticated handle to this connection, kicking any
// previous connection, and brings the client up to date: its identity,
// then either the room it still occupies or the lobby listing
func (s *Session) bind(ctx context.Context, sess *auth.Session) {
	s.handle = sess.Handle
	if prev := s.hub.Bind(sess.Handle, s.client); prev != nil {
		prev.Send(model.KickedEvent{Reason: "signed in from another connection"})
		prev.Close()
		s.logger.Info("previous connection kicked", slog.String("handle", string(sess.Handle)))
	}

	identity, err := s.auth.GetIdentity(ctx, sess.Handle)
	if err != nil {
		s.sendError(err)
		return
	}
	s.client.Send(model.ConnectedEvent{
		Identity: model.NewIdentityView(identity),
		Token:    sess.Token,
	})

	if id, ok := s.rooms.RoomFor(sess.Handle); ok {
		if rm, err := s.rooms.GetRoom(id); err == nil {
			s.hub.JoinRoom(id, sess.Handle)
			s.client.Send(model.RoomJoinedEvent{Room: model.NewRoomSnapshot(rm, sess.Handle)})
			return
		}
	}
	s.client.Send(model.RoomListEvent{Rooms: s.rooms.ListRooms()})
}

func (s *Session) leaveRoom(ctx context.Context) {
	result, err := s.rooms.LeaveRoom(ctx, s.handle)
	if err != nil {
		s.sendError(err)
		return
	}
	s.hub.LeaveRoom(result.RoomID, s.handle)
	if result.WasPlaying {
		s.games.HandleDeparture(ctx, result.RoomID)
	}
	s.client.Send(model.RoomListEvent{Rooms: s.rooms.ListRooms()})
}

// disconnected runs when the connection's read pump exits. Leaving is
// implicit on disconnect, but only for the connection that still owns
// the handle; a kicked connection must not unseat its replacement.
func (s *Session) disconnected(ctx context.Context) {
	if s.handle == "" {
		return
	}
	if !s.hub.Unbind(s.handle, s.client) {
		return
	}
	result, err := s.rooms.LeaveRoom(ctx, s.handle)
	if err != nil {
		return
	}
	if result.WasPlaying {
		s.games.HandleDeparture(ctx, result.RoomID)
	}
	s.logger.Info("disconnected client left room",
		slog.String("handle", string(s.handle)),
		slog.String("room", string(result.RoomID)))
}

func (s *Session) sendError(err error) {
	s.client.Send(model.ErrorEvent{Code: errorCode(err), Message: err.Error()})
}

// errorCode maps a service error to its stable wire code
func errorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, model.ErrMalformedEvent):
		return "malformed_event"
	case errors.Is(err, model.ErrUnknownEventType):
		return "unknown_event_type"
	case errors.Is(err, model.ErrHandleTaken):
		return "handle_taken"
	case errors.Is(err, model.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, model.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, model.ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, model.ErrIdentityNotFound):
		return "identity_not_found"
	case errors.Is(err, model.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, model.ErrRoomFull):
		return "room_full"
	case errors.Is(err, model.ErrWrongSecret):
		return "wrong_secret"
	case errors.Is(err, model.ErrAlreadyInRoom):
		return "already_in_room"
	case errors.Is(err, model.ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, model.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, model.ErrGameInProgress):
		return "game_in_progress"
	case errors.Is(err, model.ErrNoGame):
		return "no_game"
	case errors.Is(err, model.ErrInsufficientPlayers):
		return "insufficient_players"
	case errors.Is(err, model.ErrTooManyPlayers):
		return "too_many_players"
	case errors.Is(err, model.ErrNotAlive):
		return "not_alive"
	case errors.Is(err, model.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, model.ErrWrongRole):
		return "wrong_role"
	case errors.Is(err, model.ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, model.ErrUnknownVerb):
		return "unknown_verb"
	case errors.Is(err, model.ErrUnknownCosmetic):
		return "unknown_cosmetic"
	case errors.Is(err, model.ErrAlreadyOwned):
		return "already_owned"
	case errors.Is(err, model.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "internal"
	}
}

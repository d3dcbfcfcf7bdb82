package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/mafiagame-go/internal/dependencies/clock"
	"github.com/mcoot/mafiagame-go/internal/dependencies/random"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// Roster bounds applied when a create request leaves them unset
	DefaultMinPlayers = 3
	DefaultMaxPlayers = 12

	minRosterSize = 3
	maxRosterSize = 16
	maxNameLength = 40
	maxChatLength = 500

	// maxCodeAttempts bounds room code generation against collisions
	maxCodeAttempts = 10

	// persistTimeout bounds each background storage write
	persistTimeout = 5 * time.Second
)

// Broadcaster delivers outbound events to connected clients; the
// transport layer provides the implementation
type Broadcaster interface {
	SendTo(handle model.Handle, event model.Outbound)
	BroadcastRoom(id model.RoomID, event model.Outbound)
	BroadcastRoomFunc(id model.RoomID, fn func(viewer model.Handle) model.Outbound)
	BroadcastLobby(event model.Outbound)
	DropRoom(id model.RoomID)
}

// CreateParams are the owner-supplied settings for a new room
type CreateParams struct {
	Name       string
	Config     model.RoleConfig
	MinPlayers int
	MaxPlayers int
	Secret     string
}

// LeaveResult describes the side effects of a departure
type LeaveResult struct {
	RoomID     model.RoomID
	Destroyed  bool
	WasPlaying bool
	Room       *model.Room // Post-departure snapshot, nil when destroyed
}

// Controller manages room membership, chat and the lobby view
type Controller struct {
	registry    *Registry
	storage     storage.Store
	broadcaster Broadcaster
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	registry *Registry,
	storage storage.Store,
	broadcaster Broadcaster,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry:    registry,
		storage:     storage,
		broadcaster: broadcaster,
		clock:       clock,
		random:      random,
		logger:      logger.With(slog.String("component", "room-controller")),
	}
}

// CreateRoom creates a new room with the given handle as owner
func (c *Controller) CreateRoom(ctx context.Context, owner model.Handle, params CreateParams) (*model.Room, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", model.ErrInvalidInput)
	}
	if len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: room name too long", model.ErrInvalidInput)
	}

	minPlayers := params.MinPlayers
	if minPlayers == 0 {
		minPlayers = DefaultMinPlayers
	}
	maxPlayers := params.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if minPlayers < minRosterSize || maxPlayers > maxRosterSize || minPlayers > maxPlayers {
		return nil, fmt.Errorf("%w: player bounds must satisfy %d <= min <= max <= %d",
			model.ErrInvalidInput, minRosterSize, maxRosterSize)
	}

	now := c.clock.Now()

	// Generate a unique room code; the clone is taken before the room is
	// published to the registry so later reads never race
	var clone *model.Room
	inserted := false
	for attempt := 0; attempt < maxCodeAttempts && !inserted; attempt++ {
		room := &model.Room{
			ID:     model.RoomID(c.random.String(RoomCodeLength, RoomCodeAlphabet)),
			Name:   name,
			Status: model.RoomStatusWaiting,
			Roster: []model.Participant{{
				Handle:   owner,
				Alive:    true,
				Owner:    true,
				JoinedAt: now,
			}},
			Config:     params.Config,
			MinPlayers: minPlayers,
			MaxPlayers: maxPlayers,
			Secret:     params.Secret,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		room.AppendChat(c.systemMessage(fmt.Sprintf("%s created the room", owner)))
		clone = room.Clone()

		err := c.registry.Insert(room, owner)
		if errors.Is(err, errIDTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		inserted = true
	}
	if !inserted {
		return nil, fmt.Errorf("could not allocate a unique room code after %d attempts", maxCodeAttempts)
	}

	c.persistRoom(clone)
	c.broadcastLobbyList()
	return clone, nil
}

// JoinRoom adds a handle to an existing room
func (c *Controller) JoinRoom(ctx context.Context, handle model.Handle, id model.RoomID, secret string) (*model.Room, error) {
	var (
		clone *model.Room
		msg   model.ChatMessage
	)
	err := c.registry.Join(id, handle, func(room *model.Room) error {
		if room.Secret != "" && room.Secret != secret {
			return model.ErrWrongSecret
		}
		if room.Status != model.RoomStatusWaiting {
			return model.ErrGameInProgress
		}
		if room.IsFull() {
			return model.ErrRoomFull
		}

		now := c.clock.Now()
		room.Roster = append(room.Roster, model.Participant{
			Handle:   handle,
			Alive:    true,
			JoinedAt: now,
		})
		msg = c.systemMessage(fmt.Sprintf("%s joined the room", handle))
		room.AppendChat(msg)
		room.UpdatedAt = now
		clone = room.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.persistRoom(clone)
	c.persistMessage(id, msg)
	c.broadcaster.BroadcastRoomFunc(id, func(viewer model.Handle) model.Outbound {
		return model.RoomUpdatedEvent{Room: model.NewRoomSnapshot(clone, viewer)}
	})
	c.broadcaster.BroadcastRoom(id, model.ChatMessageEvent{Message: model.NewChatMessageView(msg)})
	c.broadcastLobbyList()
	return clone, nil
}

// LeaveRoom removes a handle from its room. An empty room is destroyed;
// otherwise ownership passes to the earliest-joined remaining member.
func (c *Controller) LeaveRoom(ctx context.Context, handle model.Handle) (*LeaveResult, error) {
	var (
		result LeaveResult
		msg    model.ChatMessage
	)
	id, err := c.registry.Leave(handle, func(room *model.Room) bool {
		result.WasPlaying = room.Status == model.RoomStatusPlaying

		wasOwner := false
		for i := range room.Roster {
			if room.Roster[i].Handle == handle {
				wasOwner = room.Roster[i].Owner
				room.Roster = append(room.Roster[:i], room.Roster[i+1:]...)
				break
			}
		}

		if len(room.Roster) == 0 {
			result.Destroyed = true
			return true
		}

		if wasOwner {
			room.Roster[0].Owner = true
		}

		// A departed participant's pending action is never considered
		if room.Game != nil {
			delete(room.Game.Pending, handle)
		}

		msg = c.systemMessage(fmt.Sprintf("%s left the room", handle))
		room.AppendChat(msg)
		room.UpdatedAt = c.clock.Now()
		clone := room.Clone()
		result.Room = clone
		return false
	})
	if err != nil {
		return nil, err
	}
	result.RoomID = id

	if result.Destroyed {
		c.deleteRoom(id)
		c.broadcastLobbyList()
		return &result, nil
	}
	if result.Room == nil {
		// Membership pointed at an already-destroyed room
		return &result, nil
	}

	c.persistRoom(result.Room)
	c.persistMessage(id, msg)
	snapshot := result.Room
	c.broadcaster.BroadcastRoomFunc(id, func(viewer model.Handle) model.Outbound {
		return model.RoomUpdatedEvent{Room: model.NewRoomSnapshot(snapshot, viewer)}
	})
	c.broadcaster.BroadcastRoom(id, model.ChatMessageEvent{Message: model.NewChatMessageView(msg)})
	c.broadcastLobbyList()
	return &result, nil
}

// SendChat appends a line to the sender's room transcript
func (c *Controller) SendChat(ctx context.Context, handle model.Handle, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: chat text is required", model.ErrInvalidInput)
	}
	if len(text) > maxChatLength {
		return fmt.Errorf("%w: chat text too long", model.ErrInvalidInput)
	}

	id, ok := c.registry.RoomFor(handle)
	if !ok {
		return model.ErrNotInRoom
	}

	var msg model.ChatMessage
	err := c.registry.WithRoom(id, func(room *model.Room) error {
		msg = model.ChatMessage{
			ID:     uuid.NewString(),
			Sender: handle,
			Text:   text,
			SentAt: c.clock.Now(),
		}
		room.AppendChat(msg)
		room.UpdatedAt = msg.SentAt
		return nil
	})
	if err != nil {
		return err
	}

	c.persistMessage(id, msg)
	c.broadcaster.BroadcastRoom(id, model.ChatMessageEvent{Message: model.NewChatMessageView(msg)})
	return nil
}

// ListRooms returns the lobby view of rooms still gathering players
func (c *Controller) ListRooms() []model.RoomSummary {
	return LobbySummaries(c.registry)
}

// AllRooms builds summaries of every live room regardless of status
func (c *Controller) AllRooms() []model.RoomSummary {
	rooms := c.registry.All()
	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, model.NewRoomSummary(r))
	}
	return summaries
}

// LobbySummaries builds the lobby view of every waiting room
func LobbySummaries(registry *Registry) []model.RoomSummary {
	rooms := registry.Waiting()
	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, model.NewRoomSummary(r))
	}
	return summaries
}

// GetRoom returns a point-in-time copy of a live room
func (c *Controller) GetRoom(id model.RoomID) (*model.Room, error) {
	var clone *model.Room
	err := c.registry.WithRoom(id, func(room *model.Room) error {
		clone = room.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// RoomFor reports which room the handle currently occupies
func (c *Controller) RoomFor(handle model.Handle) (model.RoomID, bool) {
	return c.registry.RoomFor(handle)
}

// DestroyRoom force-closes a room and notifies its members
func (c *Controller) DestroyRoom(ctx context.Context, id model.RoomID) ([]model.Handle, error) {
	handles, err := c.registry.Destroy(id)
	if err != nil {
		return nil, err
	}

	for _, h := range handles {
		c.broadcaster.SendTo(h, model.ErrorEvent{
			Code:    "room_closed",
			Message: "the room was closed by an administrator",
		})
	}
	c.broadcaster.DropRoom(id)
	c.deleteRoom(id)
	c.broadcastLobbyList()
	return handles, nil
}

// systemMessage builds a server-generated transcript line
func (c *Controller) systemMessage(text string) model.ChatMessage {
	return model.ChatMessage{
		ID:     uuid.NewString(),
		Text:   text,
		SentAt: c.clock.Now(),
	}
}

// broadcastLobbyList pushes a fresh room list to room-less connections
func (c *Controller) broadcastLobbyList() {
	c.broadcaster.BroadcastLobby(model.RoomListEvent{Rooms: c.ListRooms()})
}

// persistRoom writes a room snapshot in the background; storage failures
// are logged and never block gameplay
func (c *Controller) persistRoom(room *model.Room) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			c.logger.Error("failed to persist room",
				slog.String("room", string(room.ID)),
				slog.Any("error", err))
		}
	}()
}

// persistMessage appends a transcript line in the background
func (c *Controller) persistMessage(id model.RoomID, msg model.ChatMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.storage.AppendMessage(ctx, id, msg); err != nil {
			c.logger.Error("failed to persist chat message",
				slog.String("room", string(id)),
				slog.Any("error", err))
		}
	}()
}

// deleteRoom removes a destroyed room from storage in the background
func (c *Controller) deleteRoom(id model.RoomID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.storage.DeleteRoom(ctx, id); err != nil {
			c.logger.Error("failed to delete persisted room",
				slog.String("room", string(id)),
				slog.Any("error", err))
		}
	}()
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, owner model.Handle, params CreateParams) (*model.Room, error)
	JoinRoom(ctx context.Context, handle model.Handle, id model.RoomID, secret string) (*model.Room, error)
	LeaveRoom(ctx context.Context, handle model.Handle) (*LeaveResult, error)
	SendChat(ctx context.Context, handle model.Handle, text string) error
	ListRooms() []model.RoomSummary
	AllRooms() []model.RoomSummary
	GetRoom(id model.RoomID) (*model.Room, error)
	RoomFor(handle model.Handle) (model.RoomID, bool)
	DestroyRoom(ctx context.Context, id model.RoomID) ([]model.Handle, error)
}

var _ ControllerInterface = (*Controller)(nil)

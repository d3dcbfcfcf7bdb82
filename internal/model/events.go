package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// InboundType identifies a client-to-server event
type InboundType string

const (
	InboundRegister   InboundType = "register"
	InboundLogin      InboundType = "login"
	InboundListRooms  InboundType = "listRooms"
	InboundCreateRoom InboundType = "createRoom"
	InboundJoinRoom   InboundType = "joinRoom"
	InboundLeaveRoom  InboundType = "leaveRoom"
	InboundChat       InboundType = "chat"
	InboundGameAction InboundType = "gameAction"
	InboundDisconnect InboundType = "disconnect"
)

// OutboundType identifies a server-to-client event
type OutboundType string

const (
	OutboundConnected   OutboundType = "connected"
	OutboundError       OutboundType = "error"
	OutboundRoomList    OutboundType = "roomList"
	OutboundRoomJoined  OutboundType = "roomJoined"
	OutboundRoomUpdated OutboundType = "roomUpdated"
	OutboundChatMessage OutboundType = "chatMessage"
	OutboundGameUpdate  OutboundType = "gameUpdate"
	OutboundKicked      OutboundType = "kicked"
)

// Inbound is implemented by every client-to-server event
type Inbound interface {
	isInbound()
}

// RegisterEvent creates a new identity
type RegisterEvent struct {
	Handle   Handle `json:"handle"`
	Password string `json:"password"`
}

// LoginEvent authenticates and binds the connection to an identity.
// Either a handle and password, or the token of an unexpired session,
// can be presented.
type LoginEvent struct {
	Handle   Handle `json:"handle,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// ListRoomsEvent requests the waiting-room lobby view
type ListRoomsEvent struct{}

// CreateRoomEvent creates a room with the sender as owner
type CreateRoomEvent struct {
	Name       string     `json:"name"`
	Config     RoleConfig `json:"config"`
	MinPlayers int        `json:"minPlayers"`
	MaxPlayers int        `json:"maxPlayers"`
	Secret     string     `json:"secret,omitempty"`
}

// JoinRoomEvent adds the sender to an existing room
type JoinRoomEvent struct {
	RoomID RoomID `json:"roomId"`
	Secret string `json:"secret,omitempty"`
}

// LeaveRoomEvent removes the sender from its room
type LeaveRoomEvent struct{}

// ChatEvent appends a line to the sender's room transcript
type ChatEvent struct {
	Text string `json:"text"`
}

// GameActionEvent submits a game action for the sender
type GameActionEvent struct {
	Verb   Verb   `json:"verb"`
	Target Handle `json:"target,omitempty"`
}

// DisconnectEvent announces an orderly client shutdown
type DisconnectEvent struct{}

func (RegisterEvent) isInbound()   {}
func (LoginEvent) isInbound()      {}
func (ListRoomsEvent) isInbound()  {}
func (CreateRoomEvent) isInbound() {}
func (JoinRoomEvent) isInbound()   {}
func (LeaveRoomEvent) isInbound()  {}
func (ChatEvent) isInbound()       {}
func (GameActionEvent) isInbound() {}
func (DisconnectEvent) isInbound() {}

// Outbound is implemented by every server-to-client event
type Outbound interface {
	isOutbound()
}

// ConnectedEvent confirms a successful login
type ConnectedEvent struct {
	Identity IdentityView `json:"identity"`
	Token    string       `json:"token"`
}

// ErrorEvent reports a rejected inbound event
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomListEvent carries the waiting-room lobby view
type RoomListEvent struct {
	Rooms []RoomSummary `json:"rooms"`
}

// RoomJoinedEvent carries the full snapshot sent to a joining player
type RoomJoinedEvent struct {
	Room RoomSnapshot `json:"room"`
}

// RoomUpdatedEvent carries a fresh room snapshot after a roster change
type RoomUpdatedEvent struct {
	Room RoomSnapshot `json:"room"`
}

// ChatMessageEvent carries one new transcript line
type ChatMessageEvent struct {
	Message ChatMessageView `json:"message"`
}

// GameUpdateEvent carries a fresh room snapshot after a game state change
type GameUpdateEvent struct {
	Room RoomSnapshot `json:"room"`
}

// KickedEvent tells a connection it has been forcibly terminated
type KickedEvent struct {
	Reason string `json:"reason"`
}

func (ConnectedEvent) isOutbound()   {}
func (ErrorEvent) isOutbound()       {}
func (RoomListEvent) isOutbound()    {}
func (RoomJoinedEvent) isOutbound()  {}
func (RoomUpdatedEvent) isOutbound() {}
func (ChatMessageEvent) isOutbound() {}
func (GameUpdateEvent) isOutbound()  {}
func (KickedEvent) isOutbound()      {}

// envelope is the wire framing shared by both directions
type envelope struct {
	Type string `json:"type"`
}

// DecodeInbound parses a client frame into its typed event
func DecodeInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	var (
		ev  Inbound
		err error
	)
	switch InboundType(env.Type) {
	case InboundRegister:
		ev, err = decodeAs[RegisterEvent](data)
	case InboundLogin:
		ev, err = decodeAs[LoginEvent](data)
	case InboundListRooms:
		ev, err = decodeAs[ListRoomsEvent](data)
	case InboundCreateRoom:
		ev, err = decodeAs[CreateRoomEvent](data)
	case InboundJoinRoom:
		ev, err = decodeAs[JoinRoomEvent](data)
	case InboundLeaveRoom:
		ev, err = decodeAs[LeaveRoomEvent](data)
	case InboundChat:
		ev, err = decodeAs[ChatEvent](data)
	case InboundGameAction:
		ev, err = decodeAs[GameActionEvent](data)
	case InboundDisconnect:
		ev, err = decodeAs[DisconnectEvent](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, env.Type)
	}
	return ev, err
}

// DecodeOutbound parses a server frame into its typed event
func DecodeOutbound(data []byte) (Outbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	var (
		ev  Outbound
		err error
	)
	switch OutboundType(env.Type) {
	case OutboundConnected:
		ev, err = decodeAs[ConnectedEvent](data)
	case OutboundError:
		ev, err = decodeAs[ErrorEvent](data)
	case OutboundRoomList:
		ev, err = decodeAs[RoomListEvent](data)
	case OutboundRoomJoined:
		ev, err = decodeAs[RoomJoinedEvent](data)
	case OutboundRoomUpdated:
		ev, err = decodeAs[RoomUpdatedEvent](data)
	case OutboundChatMessage:
		ev, err = decodeAs[ChatMessageEvent](data)
	case OutboundGameUpdate:
		ev, err = decodeAs[GameUpdateEvent](data)
	case OutboundKicked:
		ev, err = decodeAs[KickedEvent](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, env.Type)
	}
	return ev, err
}

func decodeAs[T any](data []byte) (T, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return ev, nil
}

// EncodeInbound serializes a client event with its type tag
func EncodeInbound(ev Inbound) ([]byte, error) {
	switch e := ev.(type) {
	case RegisterEvent:
		return encodeTagged(string(InboundRegister), e)
	case LoginEvent:
		return encodeTagged(string(InboundLogin), e)
	case ListRoomsEvent:
		return encodeTagged(string(InboundListRooms), e)
	case CreateRoomEvent:
		return encodeTagged(string(InboundCreateRoom), e)
	case JoinRoomEvent:
		return encodeTagged(string(InboundJoinRoom), e)
	case LeaveRoomEvent:
		return encodeTagged(string(InboundLeaveRoom), e)
	case ChatEvent:
		return encodeTagged(string(InboundChat), e)
	case GameActionEvent:
		return encodeTagged(string(InboundGameAction), e)
	case DisconnectEvent:
		return encodeTagged(string(InboundDisconnect), e)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEventType, ev)
	}
}

// EncodeOutbound serializes a server event with its type tag
func EncodeOutbound(ev Outbound) ([]byte, error) {
	switch e := ev.(type) {
	case ConnectedEvent:
		return encodeTagged(string(OutboundConnected), e)
	case ErrorEvent:
		return encodeTagged(string(OutboundError), e)
	case RoomListEvent:
		return encodeTagged(string(OutboundRoomList), e)
	case RoomJoinedEvent:
		return encodeTagged(string(OutboundRoomJoined), e)
	case RoomUpdatedEvent:
		return encodeTagged(string(OutboundRoomUpdated), e)
	case ChatMessageEvent:
		return encodeTagged(string(OutboundChatMessage), e)
	case GameUpdateEvent:
		return encodeTagged(string(OutboundGameUpdate), e)
	case KickedEvent:
		return encodeTagged(string(OutboundKicked), e)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEventType, ev)
	}
}

// encodeTagged merges the type tag into the event's own JSON object
func encodeTagged(tag string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", tag))
	return json.Marshal(fields)
}

// ChatMessageView is the wire shape of one transcript line
type ChatMessageView struct {
	ID     string    `json:"id"`
	Sender Handle    `json:"sender,omitempty"`
	System bool      `json:"system,omitempty"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// NewChatMessageView builds the wire shape for a transcript line
func NewChatMessageView(m ChatMessage) ChatMessageView {
	return ChatMessageView{
		ID:     m.ID,
		Sender: m.Sender,
		System: m.IsSystem(),
		Text:   m.Text,
		SentAt: m.SentAt,
	}
}

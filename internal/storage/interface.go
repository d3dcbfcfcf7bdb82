package storage

import (
	"context"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// Store defines the interface for data persistence.
// The in-memory session state is authoritative during live play; every call
// here is best-effort write-through and must be treated as failure-tolerant
// by callers.
type Store interface {
	// Identity operations
	CreateIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentity(ctx context.Context, handle model.Handle) (*model.Identity, error)
	UpdateIdentity(ctx context.Context, identity *model.Identity) error

	// ApplyGameOutcome adjusts one identity's wallet and stats after a game.
	// The wallet never drops below zero.
	ApplyGameOutcome(ctx context.Context, handle model.Handle, wallet int, won, survived bool) error

	// Room mirror operations
	SaveRoom(ctx context.Context, room *model.Room) error
	DeleteRoom(ctx context.Context, id model.RoomID) error
	GetRoomsWaiting(ctx context.Context) ([]*model.Room, error)

	// Chat transcript operations
	AppendMessage(ctx context.Context, roomID model.RoomID, msg model.ChatMessage) error

	// Game record operations
	RecordGameStart(ctx context.Context, record *model.GameRecord) error
	RecordGameEnd(ctx context.Context, record *model.GameRecord) error
}

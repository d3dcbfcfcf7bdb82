package model

import "errors"

// Common errors used across the application
var (
	// Identity errors
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrHandleTaken        = errors.New("handle is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAdmin           = errors.New("admin privileges required")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrWrongSecret    = errors.New("wrong room secret")
	ErrAlreadyInRoom  = errors.New("already in a room")
	ErrNotInRoom      = errors.New("not in a room")
	ErrNotOwner       = errors.New("not the room owner")
	ErrGameInProgress = errors.New("game is in progress")

	// Game errors
	ErrNoGame              = errors.New("no game in progress")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrTooManyPlayers      = errors.New("too many players to start")
	ErrNotAlive            = errors.New("participant is not alive")
	ErrWrongPhase          = errors.New("action not allowed in this phase")
	ErrWrongRole           = errors.New("action not allowed for this role")
	ErrInvalidTarget       = errors.New("invalid action target")
	ErrUnknownVerb         = errors.New("unknown action verb")

	// Shop errors
	ErrUnknownCosmetic   = errors.New("unknown cosmetic")
	ErrAlreadyOwned      = errors.New("cosmetic already owned")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Protocol errors
	ErrMalformedEvent   = errors.New("malformed event")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrInvalidInput     = errors.New("invalid input")
)

package redis

import (
	"fmt"

	"github.com/mcoot/mafiagame-go/internal/model"
)

// Key prefix for all session-related data
const keyPrefix = "mafia"

// Key generation functions for each entity type

// identityKey returns the Redis key for an Identity
func identityKey(handle model.Handle) string {
	return fmt.Sprintf("%s:identity:%s", keyPrefix, handle)
}

// roomKey returns the Redis key for a mirrored Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomsWaitingIndexKey returns the Redis key for the SET of waiting room keys
func roomsWaitingIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms_waiting", keyPrefix)
}

// messagesKey returns the Redis key for a room's transcript list
func messagesKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:messages:%s", keyPrefix, roomID)
}

// gameRecordKey returns the Redis key for a GameRecord
func gameRecordKey(id string) string {
	return fmt.Sprintf("%s:gamerec:%s", keyPrefix, id)
}

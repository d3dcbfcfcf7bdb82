package response

import (
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/shop"
)

// The model view types (IdentityView, RoomSummary) already carry wire
// tags shared with the socket protocol, so endpoints return them
// directly. Only shapes without a model view live here.

// RoomList is the room listing body, matching the socket roomList payload
type RoomList struct {
	Rooms []model.RoomSummary `json:"rooms"`
}

// NewRoomList wraps summaries, normalizing nil to an empty list
func NewRoomList(rooms []model.RoomSummary) RoomList {
	if rooms == nil {
		rooms = []model.RoomSummary{}
	}
	return RoomList{Rooms: rooms}
}

// Catalog lists the cosmetics available for purchase
type Catalog struct {
	Cosmetics []shop.Cosmetic `json:"cosmetics"`
}

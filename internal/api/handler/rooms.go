package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/mcoot/mafiagame-go/internal/api/response"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/room"
)

// qrSize is the pixel width of generated join codes, sized for phone cameras
const qrSize = 320

// RoomsHandler handles public room listing endpoints
type RoomsHandler struct {
	roomController room.ControllerInterface
}

// NewRoomsHandler creates a new rooms handler
func NewRoomsHandler(roomController room.ControllerInterface) *RoomsHandler {
	return &RoomsHandler{
		roomController: roomController,
	}
}

// List handles GET /api/rooms
func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.NewRoomList(h.roomController.ListRooms()))
}

// QR handles GET /api/rooms/{roomId}/qr
// The code encodes a join link for the room so phones can scan straight in
func (h *RoomsHandler) QR(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["roomId"])

	if _, err := h.roomController.GetRoom(roomID); err != nil {
		WriteError(w, err)
		return
	}

	png, err := qrcode.Encode(joinURL(r, roomID), qrcode.Medium, qrSize)
	if err != nil {
		WriteError(w, NewInternalError())
		return
	}

	response.PNG(w, png)
}

// joinURL builds the shareable join link, respecting forwarded proto
func joinURL(r *http.Request, roomID model.RoomID) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/join/" + string(roomID)
}

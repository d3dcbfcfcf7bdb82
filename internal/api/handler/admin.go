package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mafiagame-go/internal/api/response"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/game"
	"github.com/mcoot/mafiagame-go/internal/services/room"
)

// AdminHandler handles moderation endpoints
type AdminHandler struct {
	roomController room.ControllerInterface
	gameController game.ControllerInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(roomController room.ControllerInterface, gameController game.ControllerInterface) *AdminHandler {
	return &AdminHandler{
		roomController: roomController,
		gameController: gameController,
	}
}

// ListRooms handles GET /api/admin/rooms
// Unlike the public listing this includes rooms with a game in progress
func (h *AdminHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.NewRoomList(h.roomController.AllRooms()))
}

// DestroyRoom handles DELETE /api/admin/rooms/{roomId}
func (h *AdminHandler) DestroyRoom(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["roomId"])

	// Stop the phase scheduler before the room disappears from the registry
	h.gameController.StopRoom(roomID)

	if _, err := h.roomController.DestroyRoom(r.Context(), roomID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

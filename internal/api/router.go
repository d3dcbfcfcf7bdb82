package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mafiagame-go/internal/api/handler"
	"github.com/mcoot/mafiagame-go/internal/api/middleware"
	"github.com/mcoot/mafiagame-go/internal/services/auth"
	"github.com/mcoot/mafiagame-go/internal/services/game"
	"github.com/mcoot/mafiagame-go/internal/services/room"
	"github.com/mcoot/mafiagame-go/internal/services/shop"
	"github.com/mcoot/mafiagame-go/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	RoomController room.ControllerInterface
	GameController game.ControllerInterface
	ShopService    *shop.Service
	Hub            *ws.Hub
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomsHandler := handler.NewRoomsHandler(cfg.RoomController)
	profileHandler := handler.NewProfileHandler(cfg.AuthService, cfg.ShopService)
	adminHandler := handler.NewAdminHandler(cfg.RoomController, cfg.GameController)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	adminMiddleware := middleware.RequireAdmin(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}/qr", roomsHandler.QR).Methods(http.MethodGet)
	api.HandleFunc("/shop", profileHandler.Catalog).Methods(http.MethodGet)

	// Profile routes (require auth)
	profile := api.PathPrefix("/profile").Subrouter()
	profile.Use(authMiddleware)
	profile.HandleFunc("", profileHandler.Get).Methods(http.MethodGet)
	profile.HandleFunc("/purchase", profileHandler.Purchase).Methods(http.MethodPost)

	// Admin routes (require auth plus the admin flag)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.Use(adminMiddleware)
	admin.HandleFunc("/rooms", adminHandler.ListRooms).Methods(http.MethodGet)
	admin.HandleFunc("/rooms/{roomId}", adminHandler.DestroyRoom).Methods(http.MethodDelete)

	// WebSocket upgrade into the event protocol; clients authenticate
	// over the socket, so no auth middleware here
	wsHandler := ws.ServeWS(cfg.Hub, ws.SessionDeps{
		Auth:  cfg.AuthService,
		Rooms: cfg.RoomController,
		Games: cfg.GameController,
	}, cfg.Logger)
	r.Handle("/ws", recoveryMiddleware(loggingMiddleware(wsHandler))).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/mafiagame-go/internal/api/middleware"
	"github.com/mcoot/mafiagame-go/internal/api/request"
	"github.com/mcoot/mafiagame-go/internal/api/response"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/auth"
	"github.com/mcoot/mafiagame-go/internal/services/shop"
)

// ProfileHandler handles identity and shop endpoints
type ProfileHandler struct {
	authService *auth.Service
	shopService *shop.Service
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(authService *auth.Service, shopService *shop.Service) *ProfileHandler {
	return &ProfileHandler{
		authService: authService,
		shopService: shopService,
	}
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())

	identity, err := h.authService.GetIdentity(r.Context(), handle)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, model.NewIdentityView(identity))
}

// Catalog handles GET /api/shop
func (h *ProfileHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Catalog{Cosmetics: h.shopService.Catalog()})
}

// Purchase handles POST /api/profile/purchase
func (h *ProfileHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())

	var req request.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.CosmeticID == "" {
		WriteError(w, NewInvalidRequestError("cosmeticId is required"))
		return
	}

	identity, err := h.shopService.Purchase(r.Context(), handle, req.CosmeticID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, model.NewIdentityView(identity))
}

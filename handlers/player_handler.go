package handlers

import (
	"net/http"

	"github.com/mukhoplus/Masked-StarCraft/middleware"
	"github.com/mukhoplus/Masked-StarCraft/services"
)

type PlayerHandler struct {
	playerService *services.PlayerService
}

func NewPlayerHandler(playerService *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// List handles GET /api/v1/players. Public, but admins see real names.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context(), middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Retire handles DELETE /api/v1/players/{id}.
func (h *PlayerHandler) Retire(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.playerService.Retire(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RetireAll handles DELETE /api/v1/players.
func (h *PlayerHandler) RetireAll(w http.ResponseWriter, r *http.Request) {
	if err := h.playerService.RetireAll(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

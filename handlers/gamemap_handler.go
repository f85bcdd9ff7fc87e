package handlers

import (
	"net/http"

	"github.com/mukhoplus/Masked-StarCraft/services"
)

type GameMapHandler struct {
	gameMapService *services.GameMapService
}

func NewGameMapHandler(gameMapService *services.GameMapService) *GameMapHandler {
	return &GameMapHandler{gameMapService: gameMapService}
}

// Create handles POST /api/v1/maps.
func (h *GameMapHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	gameMap, err := h.gameMapService.Create(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"map": gameMap}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List handles GET /api/v1/maps.
func (h *GameMapHandler) List(w http.ResponseWriter, r *http.Request) {
	gameMaps, err := h.gameMapService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"maps": gameMaps}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Retire handles DELETE /api/v1/maps/{id}.
func (h *GameMapHandler) Retire(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.gameMapService.Retire(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mukhoplus/Masked-StarCraft/middleware"
	"github.com/mukhoplus/Masked-StarCraft/services"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
}

func NewTournamentHandler(tournamentService *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// Current handles GET /api/v1/tournaments/current. Public; falls back to
// the latest finished tournament, and renders a null payload when nothing
// was ever played.
func (h *TournamentHandler) Current(w http.ResponseWriter, r *http.Request) {
	view, err := h.tournamentService.Current(r.Context(), middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournament": view}
	if view == nil {
		response["message"] = "no tournament has been played yet"
	}
	if err = writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Start handles POST /api/v1/tournaments/start.
func (h *TournamentHandler) Start(w http.ResponseWriter, r *http.Request) {
	view, err := h.tournamentService.Start(r.Context(), middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"tournament": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResult handles POST /api/v1/games/result.
func (h *TournamentHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var input struct {
		WinnerID int `json:"winner_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.RecordResult(r.Context(), input.WinnerID, middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Audit trail: which admin entered the result.
	if adminID, idErr := middleware.GetUserIDFromContext(r.Context()); idErr == nil {
		slog.Info("match result recorded",
			slog.Int("recorded_by", adminID),
			slog.Int("winner_id", input.WinnerID),
		)
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"tournament": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

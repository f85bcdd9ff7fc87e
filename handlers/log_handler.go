package handlers

import (
	"fmt"
	"net/http"

	"github.com/mukhoplus/Masked-StarCraft/middleware"
	"github.com/mukhoplus/Masked-StarCraft/services"
)

type LogHandler struct {
	logService *services.LogService
}

func NewLogHandler(logService *services.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// List handles GET /api/v1/logs/tournaments.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.logService.List(r.Context(), middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"logs": logs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get handles GET /api/v1/logs/tournaments/{id}.
func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	log, err := h.logService.Get(r.Context(), id, middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"log": log}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Download handles GET /api/v1/logs/tournaments/{id}/download with a plaintext
// attachment.
func (h *LogHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filename, content, err := h.logService.Render(r.Context(), id, middleware.IsAdmin(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(content); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Archive handles POST /api/v1/logs/tournaments/{id}/archive.
func (h *LogHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.logService.Archive(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"archive": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

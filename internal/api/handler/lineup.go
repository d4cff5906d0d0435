package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lineupsheet/internal/api/request"
	"github.com/mcoot/lineupsheet/internal/api/response"
	"github.com/mcoot/lineupsheet/internal/model"
	"github.com/mcoot/lineupsheet/internal/services/lineup"
)

// LineupHandler handles lineup endpoints
type LineupHandler struct {
	service *lineup.Service
}

// NewLineupHandler creates a new lineup handler
func NewLineupHandler(service *lineup.Service) *LineupHandler {
	return &LineupHandler{service: service}
}

// Create handles POST /api/v1/lineups
func (h *LineupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLineupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), req.ToInput())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreatedLineup{
		ID:        string(created.ID),
		ExpiresAt: created.ExpiresAt,
	})
}

// Get handles GET /api/v1/lineups/{id}
func (h *LineupHandler) Get(w http.ResponseWriter, r *http.Request) {
	lineup, err := h.service.Read(r.Context(), lineupID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LineupFromModel(lineup))
}

// Claim handles POST /api/v1/lineups/{id}/claim
func (h *LineupHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req request.ClaimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	roster, err := h.service.Claim(r.Context(), lineupID(r), req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RosterUpdate{OK: true, Roster: roster})
}

// Unclaim handles POST /api/v1/lineups/{id}/unclaim
func (h *LineupHandler) Unclaim(w http.ResponseWriter, r *http.Request) {
	var req request.UnclaimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	roster, err := h.service.Unclaim(r.Context(), lineupID(r), req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RosterUpdate{OK: true, Roster: roster})
}

func lineupID(r *http.Request) model.LineupID {
	return model.LineupID(mux.Vars(r)["id"])
}

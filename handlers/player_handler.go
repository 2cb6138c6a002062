package handlers

import (
	"net/http"

	"github.com/antoniorme/minis-padel/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// @Summary  List club players
// @Tags     players
// @Security BearerAuth
// @Router   /players [get]
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	players, err := h.playerService.List(r.Context(), ownerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"players": players})
}

// @Summary  Club ranking by rating
// @Tags     players
// @Security BearerAuth
// @Router   /players/ranking [get]
func (h *PlayerHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	players, err := h.playerService.Ranking(r.Context(), ownerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"ranking": players})
}

// @Summary  Register a player
// @Tags     players
// @Security BearerAuth
// @Param    input body services.PlayerInput true "Player"
// @Router   /players [post]
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.playerService.Create(r.Context(), ownerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"player": player})
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "playerID")
	if !ok {
		return
	}
	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.playerService.Update(r.Context(), ownerID, ids[0], input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"player": player})
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "playerID")
	if !ok {
		return
	}
	if err := h.playerService.Delete(r.Context(), ownerID, ids[0]); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/antoniorme/minis-padel/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// List godoc
// @Summary      List the organizer's tournaments
// @Tags         tournaments
// @Produce      json
// @Security     BearerAuth
// @Param        archived  query  bool  false  "Include archived tournaments"
// @Router       /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("archived"))
	list, err := h.tournamentService.List(r.Context(), ownerID, includeArchived)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournaments": list})
}

// Create godoc
// @Summary      Create a mini tournament
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body  services.CreateTournamentInput  true  "Tournament"
// @Router       /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.tournamentService.Create(r.Context(), ownerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"tournament": t})
}

// Get godoc
// @Summary      Tournament state with reconstructed groups
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Router       /tournaments/{tournamentID} [get]
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	state, err := h.tournamentService.GetState(r.Context(), ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": state})
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.tournamentService.Update(r.Context(), ownerID, ids[0], input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": t})
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	if err := h.tournamentService.Delete(r.Context(), ownerID, ids[0]); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Standings godoc
// @Summary      Group tables
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Router       /tournaments/{tournamentID}/standings [get]
func (h *TournamentHandler) Standings(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	tables, err := h.tournamentService.Standings(r.Context(), ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"standings": tables})
}

// Start godoc
// @Summary      Seed groups and generate the group schedule
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID  path  int                             true   "Tournament ID"
// @Param        input         body  services.StartTournamentInput  false  "Seeding method"
// @Failure      409  {object}  map[string]string
// @Router       /tournaments/{tournamentID}/start [post]
func (h *TournamentHandler) Start(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	var input services.StartTournamentInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	state, err := h.tournamentService.Start(r.Context(), ownerID, ids[0], input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": state})
}

// Advance godoc
// @Summary      Move to the next round
// @Tags         tournaments
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Failure      409  {object}  map[string]string
// @Router       /tournaments/{tournamentID}/advance [post]
func (h *TournamentHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	state, err := h.tournamentService.Advance(r.Context(), ownerID, ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": state})
}

func (h *TournamentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	state, err := h.tournamentService.Reset(r.Context(), ownerID, ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": state})
}

// Archive godoc
// @Summary      Archive a finished tournament
// @Tags         tournaments
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Router       /tournaments/{tournamentID}/archive [post]
func (h *TournamentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	res, err := h.tournamentService.Archive(r.Context(), ownerID, ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"archive": res})
}

package handlers

import (
	"net/http"

	"github.com/antoniorme/minis-padel/services"
)

type LeagueHandler struct {
	leagueService services.LeagueService
}

func NewLeagueHandler(leagueService services.LeagueService) *LeagueHandler {
	return &LeagueHandler{leagueService: leagueService}
}

func (h *LeagueHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	leagues, err := h.leagueService.List(r.Context(), ownerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"leagues": leagues})
}

func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	var input services.CreateLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	l, err := h.leagueService.Create(r.Context(), ownerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"league": l})
}

func (h *LeagueHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "leagueID")
	if !ok {
		return
	}
	l, err := h.leagueService.Get(r.Context(), ownerID, ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"league": l})
}

// AddCategory godoc
// @Summary      Add a competition category to a league
// @Tags         leagues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        leagueID  path  int                           true  "League ID"
// @Param        input     body  services.CreateCategoryInput  true  "Category and its rules"
// @Router       /leagues/{leagueID}/categories [post]
func (h *LeagueHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "leagueID")
	if !ok {
		return
	}
	var input services.CreateCategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	c, err := h.leagueService.AddCategory(r.Context(), ownerID, ids[0], input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"category": c})
}

func (h *LeagueHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "leagueID", "categoryID")
	if !ok {
		return
	}
	view, err := h.leagueService.GetCategory(r.Context(), ownerID, ids[0], ids[1])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"category": view})
}

func (h *LeagueHandler) AddPair(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "leagueID", "categoryID")
	if !ok {
		return
	}
	var input services.LeaguePairInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pair, err := h.leagueService.AddPair(r.Context(), ownerID, ids[0], ids[1], input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"pair": pair})
}

// GenerateGroups godoc
// @Summary      Draw groups and the round-robin calendar
// @Tags         leagues
// @Produce      json
// @Security     BearerAuth
// @Param        leagueID    path  int  true  "League ID"
// @Param        categoryID  path  int  true  "Category ID"
// @Router       /leagues/{leagueID}/categories/{categoryID}/groups [post]
func (h *LeagueHandler) GenerateGroups(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "leagueID", "categoryID")
	if !ok {
		return
	}
	view, err := h.leagueService.GenerateGroups(r.Context(), ownerID, ids[0], ids[1])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"category": view})
}

// StartPlayoffs godoc
// @Summary      Seed the playoff from the final group tables
// @Tags         leagues
// @Produce      json
// @Security     BearerAuth
// @Param        leagueID    path  int  true  "League ID"
// @Param        categoryID  path  int  true  "Category ID"
// @Router       /leagues/{leagueID}/categories/{categoryID}/playoffs [post]
func (h *LeagueHandler) StartPlayoffs(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "leagueID", "categoryID")
	if !ok {
		return
	}
	view, err := h.leagueService.StartPlayoffs(r.Context(), ownerID, ids[0], ids[1])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"category": view})
}

func (h *LeagueHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "leagueID", "categoryID", "matchID")
	if !ok {
		return
	}
	var input ScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	scoreA, scoreB, err := input.values()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.leagueService.SubmitScore(r.Context(), ownerID, ids[0], ids[1], ids[2], scoreA, scoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"category": view})
}

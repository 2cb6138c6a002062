package handlers

import (
	"errors"
	"net/http"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/services"
)

type PairHandler struct {
	pairService services.PairService
}

func NewPairHandler(pairService services.PairService) *PairHandler {
	return &PairHandler{pairService: pairService}
}

func (h *PairHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	pairs, err := h.pairService.List(r.Context(), ownerID, ids[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"pairs": pairs})
}

// Create godoc
// @Summary      Register a pair (or a solo player) for a tournament
// @Tags         pairs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID  path  int                       true  "Tournament ID"
// @Param        input         body  services.CreatePairInput  true  "Pair"
// @Router       /tournaments/{tournamentID}/pairs [post]
func (h *PairHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	var input services.CreatePairInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pair, err := h.pairService.Create(r.Context(), ownerID, ids[0], input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"pair": pair})
}

func (h *PairHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "pairID")
	if !ok {
		return
	}
	var input services.UpdatePairInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pair, err := h.pairService.Update(r.Context(), ownerID, ids[0], ids[1], input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"pair": pair})
}

func (h *PairHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "pairID")
	if !ok {
		return
	}
	if err := h.pairService.Delete(r.Context(), ownerID, ids[0], ids[1]); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PairHandler) AssignPartner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "pairID")
	if !ok {
		return
	}
	var input struct {
		PartnerID int `json:"partner_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pair, err := h.pairService.AssignPartner(r.Context(), ownerID, ids[0], ids[1], input.PartnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"pair": pair})
}

func (h *PairHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "pairID")
	if !ok {
		return
	}
	var input struct {
		Status models.PairStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Status == "" {
		badRequestResponse(w, r, errors.New("status is required"))
		return
	}
	pair, err := h.pairService.SetStatus(r.Context(), ownerID, ids[0], ids[1], input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"pair": pair})
}

// Join godoc
// @Summary      Public self-registration of a player awaiting a partner
// @Tags         pairs
// @Accept       json
// @Produce      json
// @Param        tournamentID  path  int                 true  "Tournament ID"
// @Param        input         body  services.JoinInput  true  "Player"
// @Router       /tournaments/{tournamentID}/join [post]
func (h *PairHandler) Join(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	var input services.JoinInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	res, err := h.pairService.Join(r.Context(), ids[0], input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"registration": res})
}

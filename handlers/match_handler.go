package handlers

import (
	"errors"
	"net/http"

	"github.com/antoniorme/minis-padel/services"
)

// ScoreInput: счёт матча в геймах.
type ScoreInput struct {
	ScoreA *int `json:"score_a"`
	ScoreB *int `json:"score_b"`
}

func (in ScoreInput) values() (int, int, error) {
	if in.ScoreA == nil || in.ScoreB == nil {
		return 0, 0, errors.New("score_a and score_b are required")
	}
	return *in.ScoreA, *in.ScoreB, nil
}

type MatchHandler struct {
	tournamentService services.TournamentService
}

func NewMatchHandler(tournamentService services.TournamentService) *MatchHandler {
	return &MatchHandler{tournamentService: tournamentService}
}

// SubmitScore godoc
// @Summary      Record a match result
// @Tags         matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tournamentID  path  int         true  "Tournament ID"
// @Param        matchID       path  int         true  "Match ID"
// @Param        input         body  ScoreInput  true  "Games won by each side"
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /tournaments/{tournamentID}/matches/{matchID}/score [post]
func (h *MatchHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	ids, ok := urlIDs(w, r, "tournamentID", "matchID")
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

	match, err := h.tournamentService.SubmitScore(r.Context(), ownerID, ids[0], ids[1], scoreA, scoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

package handlers

import (
	"net/http"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/services"
)

type MatchHandler struct {
	matchService   services.MatchService
	bracketService services.BracketService
}

func NewMatchHandler(matchService services.MatchService, bracketService services.BracketService) *MatchHandler {
	return &MatchHandler{
		matchService:   matchService,
		bracketService: bracketService,
	}
}

func (h *MatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var round *models.Round
	if value := r.URL.Query().Get("round"); value != "" {
		parsed, err := models.ParseRound(value)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		round = &parsed
	}

	var region *string
	if value := r.URL.Query().Get("region"); value != "" {
		region = &value
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, round, region)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var patch models.MatchResultPatch
	if err := readJSON(w, r, &patch); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RecordResult(r.Context(), matchID, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateNextRound pairs the winners of a fully completed round into the
// next round's matches.
func (h *MatchHandler) GenerateNextRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		FromRound models.Round `json:"from_round"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GenerateNextRound(r.Context(), tournamentID, input.FromRound)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/services"
)

// entryTokenHeader carries the participant's entry token on self-service
// requests. Participants have no accounts; the token is their credential.
const entryTokenHeader = "X-Entry-Token"

type ParticipantHandler struct {
	participantService services.ParticipantService
	pickService        services.PickService
}

func NewParticipantHandler(participantService services.ParticipantService, pickService services.PickService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		pickService:        pickService,
	}
}

func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.Register(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.Leaderboard(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) SetPaid(w http.ResponseWriter, r *http.Request) {
	participantID, err := urlParamInt(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Paid bool `json:"paid"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.SetPaid(r.Context(), participantID, input.Paid)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Me returns the participant identified by the entry token header.
func (h *ParticipantHandler) Me(w http.ResponseWriter, r *http.Request) {
	participant, err := h.resolveEntryToken(w, r)
	if err != nil {
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) SubmitMatchPick(w http.ResponseWriter, r *http.Request) {
	participant, err := h.resolveEntryToken(w, r)
	if err != nil {
		return
	}

	var input services.SubmitMatchPickInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pick, err := h.pickService.SubmitMatchPick(r.Context(), participant.ID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pick": pick}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) SubmitPreTournamentPick(w http.ResponseWriter, r *http.Request) {
	participant, err := h.resolveEntryToken(w, r)
	if err != nil {
		return
	}

	var input services.SubmitPreTournamentPickInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pick, err := h.pickService.SubmitPreTournamentPick(r.Context(), participant.ID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pick": pick}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) MyPicks(w http.ResponseWriter, r *http.Request) {
	participant, err := h.resolveEntryToken(w, r)
	if err != nil {
		return
	}

	picks, err := h.pickService.ListForParticipant(r.Context(), participant.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"picks": picks}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PublicPicks serves another participant's picks once the tournament has
// started.
func (h *ParticipantHandler) PublicPicks(w http.ResponseWriter, r *http.Request) {
	participantID, err := urlParamInt(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	picks, err := h.pickService.ListPublicForParticipant(r.Context(), participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"picks": picks}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// resolveEntryToken looks up the participant for the request's entry token.
// On failure a response has already been written and a non-nil error is
// returned so callers can bail out.
func (h *ParticipantHandler) resolveEntryToken(w http.ResponseWriter, r *http.Request) (*models.Participant, error) {
	token := r.Header.Get(entryTokenHeader)
	if token == "" {
		unauthorizedResponse(w, r, "entry token is required")
		return nil, errors.New("missing entry token")
	}

	participant, err := h.participantService.GetByEntryToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrParticipantNotFound) {
			unauthorizedResponse(w, r, "invalid entry token")
		} else {
			serverErrorResponse(w, r, err)
		}
		return nil, err
	}

	return participant, nil
}

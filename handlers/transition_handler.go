package handlers

import (
	"net/http"
	"time"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/services"
)

type TransitionHandler struct {
	transitionService services.TransitionService
}

func NewTransitionHandler(transitionService services.TransitionService) *TransitionHandler {
	return &TransitionHandler{transitionService: transitionService}
}

func (h *TransitionHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ScheduleTransitionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	transition, err := h.transitionService.Schedule(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"transition": transition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TransitionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.transitionService.Cancel(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TransitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	transition, err := h.transitionService.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transition": transition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TransitionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ToRound models.Round `json:"to_round"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.transitionService.AdvanceImmediately(r.Context(), tournamentID, input.ToRound)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ProcessDue is the HTTP face of the poller: an external cron can hit it to
// apply every transition whose scheduled time has passed. The in-process
// ticker makes the same call, so both triggers share one code path.
func (h *TransitionHandler) ProcessDue(w http.ResponseWriter, r *http.Request) {
	processed, err := h.transitionService.ProcessDue(r.Context(), time.Now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"processed": processed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

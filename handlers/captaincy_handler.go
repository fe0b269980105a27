package handlers

import (
	"net/http"

	"github.com/Bekzat04/sportsfest-system/middleware"
	"github.com/Bekzat04/sportsfest-system/services"
)

type CaptaincyHandler struct {
	captaincyService services.CaptaincyService
}

func NewCaptaincyHandler(cs services.CaptaincyService) *CaptaincyHandler {
	return &CaptaincyHandler{captaincyService: cs}
}

type captaincyRequest struct {
	PlayerID int    `json:"player_id"`
	Sport    string `json:"sport"`
}

func (h *CaptaincyHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req captaincyRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current player")
		return
	}

	if err = h.captaincyService.Grant(r.Context(), req.PlayerID, req.Sport, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *CaptaincyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req captaincyRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current player")
		return
	}

	if err = h.captaincyService.Revoke(r.Context(), req.PlayerID, req.Sport, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CaptaincyHandler) ListSports(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sports, err := h.captaincyService.ListSports(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"sports": sports}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

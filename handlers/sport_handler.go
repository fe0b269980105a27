package handlers

import (
	"errors"
	"net/http"

	"github.com/Bekzat04/sportsfest-system/catalog"
	"github.com/go-chi/chi/v5"
)

// SportHandler serves the read-only sport catalog.
type SportHandler struct {
	sports catalog.SportCatalog
}

func NewSportHandler(sports catalog.SportCatalog) *SportHandler {
	return &SportHandler{sports: sports}
}

func (h *SportHandler) ListSports(w http.ResponseWriter, r *http.Request) {
	response := jsonResponse{
		"event_year": h.sports.EventYear(),
		"sports":     h.sports.List(),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SportHandler) GetSport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "sport")
	if name == "" {
		badRequestResponse(w, r, errors.New("missing sport in URL path"))
		return
	}

	sport, err := h.sports.Get(name)
	if err != nil {
		if errors.Is(err, catalog.ErrSportNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"sport": sport}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

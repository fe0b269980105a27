package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Bekzat04/sportsfest-system/middleware"
	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/services"
	"github.com/go-chi/chi/v5"
)

const matchDateLayout = "2006-01-02"

type FixtureHandler struct {
	fixtureService services.FixtureService
}

func NewFixtureHandler(fs services.FixtureService) *FixtureHandler {
	return &FixtureHandler{fixtureService: fs}
}

type scheduleFixtureRequest struct {
	Sport        string   `json:"sport"`
	MatchType    string   `json:"match_type"`
	Participants []string `json:"participants"`
	MatchDate    string   `json:"match_date"`
}

func (h *FixtureHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleFixtureRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchDate, err := time.Parse(matchDateLayout, req.MatchDate)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("match_date must be in %s format: %w", matchDateLayout, err))
		return
	}

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current player")
		return
	}

	input := services.ScheduleFixtureInput{
		Sport:        req.Sport,
		MatchType:    models.MatchType(req.MatchType),
		Participants: req.Participants,
		MatchDate:    matchDate,
	}

	fixture, err := h.fixtureService.ScheduleFixture(r.Context(), input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type scheduleLeagueRoundRequest struct {
	Sport     string `json:"sport"`
	MatchDate string `json:"match_date"`
}

func (h *FixtureHandler) ScheduleLeagueRound(w http.ResponseWriter, r *http.Request) {
	var req scheduleLeagueRoundRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchDate, err := time.Parse(matchDateLayout, req.MatchDate)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("match_date must be in %s format: %w", matchDateLayout, err))
		return
	}

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current player")
		return
	}

	fixtures, err := h.fixtureService.ScheduleLeagueRound(r.Context(), req.Sport, matchDate, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FixtureHandler) GetFixture(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.fixtureService.GetFixture(r.Context(), fixtureID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FixtureHandler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	if sport == "" {
		badRequestResponse(w, r, errors.New("missing sport in URL path"))
		return
	}

	fixtures, err := h.fixtureService.ListFixtures(r.Context(), sport)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

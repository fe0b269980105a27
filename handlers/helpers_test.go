package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Bekzat04/sportsfest-system/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", services.ErrTeamNotFound, http.StatusNotFound},
		{"fixture not found", services.ErrFixtureNotFound, http.StatusNotFound},
		{"validation", services.ErrValidationFailed, http.StatusBadRequest},
		{"not yet playable", services.ErrNotYetPlayable, http.StatusBadRequest},
		{"locked result", services.ErrLockedResult, http.StatusLocked},
		{"irreversible result", services.ErrIrreversibleResult, http.StatusConflict},
		{"conflict", services.ErrConflict, http.StatusConflict},
		{"reg number taken", services.ErrRegNumberTaken, http.StatusConflict},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"must be captain", services.ErrMustBeCaptain, http.StatusForbidden},
		{"store unavailable", services.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)

			mapServiceErrorToHTTP(w, r, tc.err)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected JSON content type, got %q", ct)
			}
		})
	}
}

func TestMapServiceErrorWrappedSentinels(t *testing.T) {
	// Wrapped errors must map the same as bare sentinels.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/fixtures/1", nil)

	wrapped := errors.Join(errors.New("delete fixture 1"), services.ErrIrreversibleResult)
	mapServiceErrorToHTTP(w, r, wrapped)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for wrapped irreversible result, got %d", w.Code)
	}
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"sport":"chess","bogus":1}`))

	var dst struct {
		Sport string `json:"sport"`
	}
	err := readJSON(w, r, &dst)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadJSONRejectsSecondDocument(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"sport":"chess"}{"sport":"relay"}`))

	var dst struct {
		Sport string `json:"sport"`
	}
	if err := readJSON(w, r, &dst); err == nil {
		t.Fatal("expected error for trailing JSON document")
	}
}

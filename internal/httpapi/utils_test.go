package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jaspreet000/remotify-sub001/internal/progression"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", progression.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unknown power-up", progression.ErrUnknownPowerUp, http.StatusNotFound, "not_found"},
		{"unknown quest", progression.ErrUnknownQuest, http.StatusNotFound, "not_found"},
		{"insufficient coins", progression.ErrInsufficientCoins, http.StatusConflict, "conflict"},
		{"quest not completed", progression.ErrQuestNotCompleted, http.StatusConflict, "conflict"},
		{"quest already claimed", progression.ErrQuestAlreadyClaimed, http.StatusConflict, "conflict"},
		{"opaque storage failure", errors.New("store down"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

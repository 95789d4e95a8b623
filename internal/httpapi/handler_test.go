package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jaspreet000/remotify-sub001/internal/auth"
	"github.com/Jaspreet000/remotify-sub001/internal/leaderboard"
	"github.com/Jaspreet000/remotify-sub001/internal/progression"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	verifier, err := auth.NewVerifier(auth.Config{Mode: auth.ModeNoop})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	service := progression.NewService(
		progression.NewMemoryRepository(),
		leaderboard.NewMemoryRepository(),
		progression.NewStaticCatalog(),
	)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))
		RegisterRoutes(r, service)
	})
	return r
}

func TestGetProgressionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/progression", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp progression.ProgressionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.Level != 1 {
		t.Fatalf("expected freshly initialized level 1, got %d", resp.Stats.Level)
	}
	if resp.Stats.LeaderboardRank != 1 {
		t.Fatalf("expected rank 1, got %d", resp.Stats.LeaderboardRank)
	}
	if len(resp.Quests) == 0 {
		t.Fatal("expected active quests in response")
	}
}

func TestProgressionRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/progression", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRecordSessionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"duration_minutes": 50, "session_score": 90, "task_completed": true}`
	req := httptest.NewRequest(http.MethodPost, "/v1/progression/sessions", strings.NewReader(body))
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result progression.SessionResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Stats.TotalFocusTime != 50 {
		t.Fatalf("total focus time = %d, want 50", result.Stats.TotalFocusTime)
	}
	if result.Delta.ExperienceGained != 59 { // 50 minutes + 90/10 bonus
		t.Fatalf("experience gained = %d, want 59", result.Delta.ExperienceGained)
	}
}

func TestRecordSessionValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"zero duration", `{"duration_minutes": 0, "session_score": 50}`},
		{"score out of range", `{"duration_minutes": 30, "session_score": 150}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/progression/sessions", strings.NewReader(tt.body))
			req.Header.Set("X-User-ID", "user-123")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestClaimQuestEndpoint(t *testing.T) {
	router := newTestRouter(t)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodPost, "/v1/progression/quests/no-such-quest/claim", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown quest status = %d, want 404", rec.Code)
	}

	questID := "daily-productivity-" + time.Now().UTC().Format("2006-01-02")

	// Fresh user, zero average score: the quest is not completed yet.
	if rec := do(http.MethodPost, "/v1/progression/quests/"+questID+"/claim", ""); rec.Code != http.StatusConflict {
		t.Fatalf("incomplete quest status = %d, want 409", rec.Code)
	}

	// One 90-score session lifts the average past the target of 70.
	if rec := do(http.MethodPost, "/v1/progression/sessions", `{"duration_minutes": 30, "session_score": 90}`); rec.Code != http.StatusOK {
		t.Fatalf("session status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec := do(http.MethodPost, "/v1/progression/quests/"+questID+"/claim", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("claim status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result progression.ClaimResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.QuestID != questID || result.Reward.Coins != 10 {
		t.Fatalf("unexpected claim result: %+v", result)
	}

	// Replaying the claim conflicts instead of double-awarding.
	if rec := do(http.MethodPost, "/v1/progression/quests/"+questID+"/claim", ""); rec.Code != http.StatusConflict {
		t.Fatalf("replayed claim status = %d, want 409", rec.Code)
	}
}

func TestRedeemPowerUpEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/progression/powerups/double_xp", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	// A brand-new user has zero coins.
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard?limit=5", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var view progression.LeaderboardView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Rank != 1 {
		t.Fatalf("rank = %d, want 1", view.Rank)
	}
}

package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Jaspreet000/remotify-sub001/internal/auth"
	"github.com/Jaspreet000/remotify-sub001/internal/progression"
)

var validate = validator.New()

// RegisterRoutes registers all progression routes.
func RegisterRoutes(r chi.Router, service progression.Service) {
	r.Route("/v1/progression", func(r chi.Router) {
		r.Get("/", getProgression(service))
		r.Post("/sessions", recordSession(service))
		r.Post("/quests/{questID}/claim", claimQuest(service))
		r.Post("/powerups/{powerUpID}", redeemPowerUp(service))
	})

	r.Get("/v1/leaderboard", getLeaderboard(service))
}

func userIDFromRequest(r *http.Request) string {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return user.UserID
	}
	return ""
}

func getProgression(service progression.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromRequest(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		resp, err := service.GetProgression(r.Context(), userID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func recordSession(service progression.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromRequest(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var input progression.CompletedSession
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(input); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := service.RecordSession(r.Context(), userID, input)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func claimQuest(service progression.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromRequest(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		questID := chi.URLParam(r, "questID")
		if questID == "" {
			writeError(w, http.StatusBadRequest, "quest id required")
			return
		}

		result, err := service.ClaimQuest(r.Context(), userID, questID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func redeemPowerUp(service progression.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromRequest(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		powerUpID := chi.URLParam(r, "powerUpID")
		if powerUpID == "" {
			writeError(w, http.StatusBadRequest, "power-up id required")
			return
		}

		result, err := service.RedeemPowerUp(r.Context(), userID, powerUpID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func getLeaderboard(service progression.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromRequest(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
				limit = parsed
			}
		}

		view, err := service.Leaderboard(r.Context(), userID, limit)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

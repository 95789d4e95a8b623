package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	sharederrors "github.com/Jaspreet000/remotify-sub001/internal/errors"
	"github.com/Jaspreet000/remotify-sub001/internal/progression"
)

type errorResponse = sharederrors.ErrorResponse

func writeError(w http.ResponseWriter, status int, message string) {
	code := strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps domain errors onto the canonical envelope. Storage
// failures and invariant violations deliberately collapse into an opaque 500;
// callers may retry the whole request.
func respondServiceError(w http.ResponseWriter, err error) {
	code, message := classifyServiceError(err)
	writeJSON(w, sharederrors.ToStatusCode(code), errorResponse{Code: code, Message: message})
}

func classifyServiceError(err error) (code, message string) {
	switch {
	case errors.Is(err, progression.ErrNotFound):
		return "not_found", "user not found"
	case errors.Is(err, progression.ErrUnknownPowerUp):
		return "not_found", "unknown power-up"
	case errors.Is(err, progression.ErrUnknownQuest):
		return "not_found", "unknown quest"
	case errors.Is(err, progression.ErrInsufficientCoins):
		return "conflict", "insufficient coins"
	case errors.Is(err, progression.ErrQuestNotCompleted):
		return "conflict", "quest not completed"
	case errors.Is(err, progression.ErrQuestAlreadyClaimed):
		return "conflict", "quest reward already claimed"
	default:
		return "internal_error", "internal server error"
	}
}

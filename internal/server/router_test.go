package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jaspreet000/remotify-sub001/internal/dto"
)

func TestNewRouterHealthz(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := NewRouter("progression-service", logger, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health dto.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if health.Status != "ok" || health.Service != "progression-service" {
		t.Fatalf("unexpected health payload: %+v", health)
	}

	// The request log line carries the id assigned by the RequestID middleware.
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("request log is not JSON: %v (%s)", err, buf.String())
	}
	if line["requestId"] == "" || line["requestId"] == nil {
		t.Fatalf("request log missing requestId: %v", line)
	}
	if line["status"] != float64(http.StatusOK) {
		t.Fatalf("request log status = %v, want 200", line["status"])
	}
}

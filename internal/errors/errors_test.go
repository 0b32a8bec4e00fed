package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{EmptyResult("nothing"), http.StatusNotFound},
		{Unprocessable(fmt.Errorf("line 3"), "load"), http.StatusUnprocessableEntity},
		{TooLarge("big"), http.StatusRequestEntityTooLarge},
		{RateLimit("slow down"), http.StatusTooManyRequests},
		{Unavailable("later"), http.StatusServiceUnavailable},
		{Internal("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if tt.err.StatusCode != tt.want {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cause := fmt.Errorf("line 3: bad date")

	w := httptest.NewRecorder()
	WriteError(w, logger, fmt.Errorf("wrapped: %w", Unprocessable(cause, "Could not load dataset")), "req-7")

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Details   string `json:"details"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error.Code != "LOAD_ERROR" || resp.Error.RequestID != "req-7" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Error.Details != cause.Error() {
		t.Errorf("Details = %q", resp.Error.Details)
	}
}

func TestWriteError_PlainError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w := httptest.NewRecorder()
	WriteError(w, logger, fmt.Errorf("disk on fire"), "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessWithHeaders(w, map[string]int{"rows": 3}, map[string]string{"Cache-Control": "no-store"})

	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("custom header not set")
	}
	var resp SuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success should be true")
	}
}

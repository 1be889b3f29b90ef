// Package api provides HTTP handlers for the interview API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashureev/interviewd/internal/ai"
	"github.com/ashureev/interviewd/internal/interview"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads the request body into v and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// serviceError maps interview and gateway failures onto HTTP responses.
func serviceError(w http.ResponseWriter, err error) {
	var rle *ai.RateLimitError
	var ue *ai.UpstreamError
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		Error(w, http.StatusNotFound, "session not found")
	case errors.Is(err, interview.ErrInterviewCompleted):
		Error(w, http.StatusBadRequest, "interview already completed")
	case errors.As(err, &rle):
		JSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":       rle.Message,
			"type":        "rate_limit_exceeded",
			"retry_after": int(rle.RetryAfter.Seconds()),
		})
	case errors.Is(err, ai.ErrMissingAPIKey):
		Error(w, http.StatusInternalServerError, "AI service is not configured")
	case errors.As(err, &ue):
		JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error": "AI service is temporarily unavailable",
			"type":  "service_error",
		})
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}

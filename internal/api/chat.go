package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/interviewd/internal/interview"
	"github.com/go-chi/chi/v5"
)

// ChatHandler serves the interview turn routes.
type ChatHandler struct {
	svc    *interview.Service
	logger *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(svc *interview.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the chat routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/send", h.Send)
		r.Post("/stream", h.Stream)
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (req *chatRequest) validate(w http.ResponseWriter) bool {
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return false
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message must not be empty")
		return false
	}
	return true
}

// Send runs one interview turn and returns the full reply.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) || !req.validate(w) {
		return
	}

	result, err := h.svc.SendMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, result)
}

// Stream runs one interview turn and forwards the reply as
// server-sent events, one JSON payload per chunk, terminated by a
// [DONE] sentinel. Turn validation failures are reported as plain JSON
// errors before any event is written.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) || !req.validate(w) {
		return
	}

	seq, err := h.svc.StreamMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		serviceError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for chunk, err := range seq {
		if err != nil {
			// The service substitutes canned text for failures; anything
			// surfacing here is unexpected.
			h.logger.Error("stream chunk error", "session_id", req.SessionID, "error", err)
			break
		}
		if !writeSSE(w, flusher, map[string]string{"content": chunk}) {
			return
		}
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// writeSSE writes one data event and reports whether the client is
// still connected.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return false
	}
	flusher.Flush()
	return true
}

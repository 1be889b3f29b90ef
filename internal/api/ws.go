package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/interviewd/internal/ai"
	"github.com/ashureev/interviewd/internal/interview"
	"github.com/coder/websocket"
)

// WSHandler serves the WebSocket chat transport. One connection carries
// any number of interview turns; each incoming frame is a turn request
// and the reply is streamed back as chunk frames followed by a done
// frame.
type WSHandler struct {
	svc            *interview.Service
	allowedOrigins []string
	logger         *slog.Logger
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(svc *interview.Service, allowedOrigins []string, logger *slog.Logger) *WSHandler {
	return &WSHandler{svc: svc, allowedOrigins: allowedOrigins, logger: logger}
}

type wsTurnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type wsFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	Completed bool   `json:"interview_completed,omitempty"`
}

// ServeHTTP upgrades the connection and runs the turn loop.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.allowedOrigins,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			h.logger.Debug("websocket close failed", "error", closeErr)
		}
	}()

	ctx := r.Context()
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				h.logger.Debug("websocket read failed", "error", err)
			}
			return
		}

		var req wsTurnRequest
		if err := json.Unmarshal(data, &req); err != nil {
			h.writeFrame(ctx, ws, wsFrame{Type: "error", Error: "invalid request"})
			continue
		}
		if req.SessionID == "" || req.Message == "" {
			h.writeFrame(ctx, ws, wsFrame{Type: "error", Error: "session_id and message are required"})
			continue
		}

		h.runTurn(ctx, ws, req)
	}
}

func (h *WSHandler) runTurn(ctx context.Context, ws *websocket.Conn, req wsTurnRequest) {
	seq, err := h.svc.StreamMessage(ctx, req.SessionID, req.Message)
	if err != nil {
		h.writeFrame(ctx, ws, wsFrame{Type: "error", Error: turnErrorText(err)})
		return
	}

	completed := false
	for chunk, chunkErr := range seq {
		if chunkErr != nil {
			h.logger.Error("websocket stream chunk error", "session_id", req.SessionID, "error", chunkErr)
			break
		}
		if !h.writeFrame(ctx, ws, wsFrame{Type: "chunk", Content: chunk}) {
			return
		}
	}

	if status, statusErr := h.svc.Status(ctx, req.SessionID); statusErr == nil {
		completed = status.InterviewCompleted
	}
	h.writeFrame(ctx, ws, wsFrame{Type: "done", Completed: completed})
}

func (h *WSHandler) writeFrame(ctx context.Context, ws *websocket.Conn, frame wsFrame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return false
	}
	return true
}

// turnErrorText maps turn rejections onto client-facing frame text.
func turnErrorText(err error) string {
	var rle *ai.RateLimitError
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, interview.ErrInterviewCompleted):
		return "interview already completed"
	case errors.As(err, &rle):
		return rle.Message
	case errors.Is(err, ai.ErrMissingAPIKey):
		return "AI service is not configured"
	default:
		return "internal server error"
	}
}

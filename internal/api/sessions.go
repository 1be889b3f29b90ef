package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ashureev/interviewd/internal/auth"
	"github.com/ashureev/interviewd/internal/domain"
	"github.com/ashureev/interviewd/internal/interview"
	"github.com/ashureev/interviewd/internal/prompts"
	"github.com/ashureev/interviewd/internal/store"
	"github.com/go-chi/chi/v5"
)

// SessionHandler serves session lifecycle and progress routes.
type SessionHandler struct {
	svc    *interview.Service
	repo   store.Repository
	issuer *auth.TokenIssuer
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc *interview.Service, repo store.Repository, issuer *auth.TokenIssuer, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, repo: repo, issuer: issuer, logger: logger}
}

// RegisterRoutes mounts the session routes. Authentication is optional
// for session creation (guests interview anonymously); the my-sessions
// listing requires it.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.With(auth.Optional(h.issuer)).Post("/init", h.Init)
		r.Post("/start", h.Start)
		r.Post("/end", h.End)
		r.Get("/{sessionID}/history", h.History)
		r.Get("/{sessionID}/status", h.Status)
		r.Group(func(r chi.Router) {
			r.Use(auth.Required(h.issuer))
			r.Get("/my-sessions", h.MySessions)
			r.Get("/my-sessions/active", h.ActiveSessions)
		})
	})
	r.Get("/api/roles", h.Roles)
}

type initRequest struct {
	RoleID string `json:"role_id"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// Init creates a new interview session for a role. The body is
// optional; a missing or unknown role falls back to the default role.
// When the caller is authenticated the session is linked to their
// account.
func (h *SessionHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	roleID := req.RoleID
	if !prompts.Known(roleID) {
		roleID = prompts.DefaultRoleID
	}

	sessionID, err := h.svc.CreateSession(r.Context(), roleID)
	if err != nil {
		h.logger.Error("create session failed", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if email, ok := auth.EmailFromContext(r.Context()); ok {
		if err := h.repo.AddSessionToUser(r.Context(), email, sessionID); err != nil {
			h.logger.Error("link session to user failed", "email", email, "error", err)
		}
	}

	JSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"role_id":    roleID,
	})
}

// Start triggers the interviewer's opening question.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}

	reply, err := h.svc.StartInterview(r.Context(), req.SessionID)
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"response": reply})
}

// End manually completes the interview.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}

	farewell, err := h.svc.EndInterview(r.Context(), req.SessionID)
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"response":           farewell,
		"interview_ended":    true,
		"completion_message": farewell,
	})
}

// History returns the visible conversation history.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.svc.History(r.Context(), sessionID)
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   messages,
	})
}

// Status returns session progress.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	status, err := h.svc.Status(r.Context(), sessionID)
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, status)
}

// MySessions lists all of the authenticated user's sessions.
func (h *SessionHandler) MySessions(w http.ResponseWriter, r *http.Request) {
	h.listSessions(w, r, false)
}

// ActiveSessions lists only the user's sessions still in progress.
func (h *SessionHandler) ActiveSessions(w http.ResponseWriter, r *http.Request) {
	h.listSessions(w, r, true)
}

func (h *SessionHandler) listSessions(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	email, _ := auth.EmailFromContext(r.Context())
	user, err := h.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("load user failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		Error(w, http.StatusUnauthorized, "user not found")
		return
	}

	summaries, err := h.svc.Summaries(r.Context(), user.Sessions)
	if err != nil {
		h.logger.Error("build session summaries failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if activeOnly {
		active := make([]domain.SessionSummary, 0, len(summaries))
		for _, s := range summaries {
			if !s.InterviewCompleted {
				active = append(active, s)
			}
		}
		summaries = active
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"sessions": summaries,
		"total":    len(summaries),
	})
}

// Roles lists the interview roles available for session creation.
func (h *SessionHandler) Roles(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"roles":   prompts.Roles(),
		"default": prompts.DefaultRoleID,
	})
}

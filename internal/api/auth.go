package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/ashureev/interviewd/internal/auth"
	"github.com/ashureev/interviewd/internal/domain"
	"github.com/ashureev/interviewd/internal/store"
	"github.com/go-chi/chi/v5"
)

const minPasswordLength = 8

// AuthHandler serves account registration, login and profile routes.
type AuthHandler struct {
	repo   store.Repository
	issuer *auth.TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(repo store.Repository, issuer *auth.TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{repo: repo, issuer: issuer, logger: logger}
}

// RegisterRoutes mounts the auth routes. Profile routes require a
// valid token; signup and login are public.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Group(func(r chi.Router) {
			r.Use(auth.Required(h.issuer))
			r.Get("/profile", h.Me)
			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
		})
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        domain.Profile `json:"user"`
}

// Signup creates an account and returns an access token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		Error(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hash failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Sessions:     []string{},
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			Error(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("create user failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.issueToken(w, user, http.StatusCreated)
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("load user failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	now := time.Now().UTC()
	if err := h.repo.UpdateLastLogin(r.Context(), user.Email, now); err != nil {
		h.logger.Error("update last login failed", "email", user.Email, "error", err)
	}
	user.LastLogin = &now

	h.issueToken(w, user, http.StatusOK)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
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
	JSON(w, http.StatusOK, user.Profile())
}

// Logout acknowledges the logout. Tokens are stateless, so the client
// simply discards its copy; nothing is revoked server side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, user *domain.User, status int) {
	token, err := h.issuer.Issue(user.Email)
	if err != nil {
		h.logger.Error("token issue failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	JSON(w, status, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user.Profile(),
	})
}

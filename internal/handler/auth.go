package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/breachboard/breachboard/internal/model"
	"github.com/breachboard/breachboard/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account and establishes a session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.authService.Register(email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			writeError(w, http.StatusBadRequest, "email already registered")
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrInvalidPassword):
			writeError(w, http.StatusBadRequest, "must provide a valid email and password")
		default:
			slog.Error("registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	err = h.establishSession(w, user)
	if err != nil {
		slog.Error("failed to establish session", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
}

// Login establishes a session. Invalid credentials are reported without
// distinguishing a missing account from a wrong password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.authService.Login(email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "invalid email or password")
			return
		}
		slog.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	err = h.establishSession(w, user)
	if err != nil {
		slog.Error("failed to establish session", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginRequired is the redirect target for unauthenticated callers.
func (h *AuthHandler) LoginRequired(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusUnauthorized, "authentication required")
}

func (h *AuthHandler) establishSession(w http.ResponseWriter, user *model.User) error {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		return err
	}

	h.authService.SetSessionCookie(w, token, time.Now().Add(h.authService.SessionExpiry()))
	return nil
}

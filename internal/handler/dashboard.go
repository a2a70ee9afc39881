package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/breachboard/breachboard/internal/ctxkeys"
	"github.com/breachboard/breachboard/internal/service"
	"github.com/breachboard/breachboard/internal/validation"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Home sends callers to the dashboard or to login.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	if ctxkeys.User(r.Context()) == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
}

// DashboardPage returns the last persisted breach count, score and advisory.
func (h *DashboardHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	view, err := h.dashboardService.View(user.ID)
	if err != nil {
		slog.Error("failed to load dashboard", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Refresh runs the email breach lookup and returns the updated view.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	email := r.FormValue("email")
	err := validation.ValidateEmail(email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "must provide a valid email")
		return
	}

	view, err := h.dashboardService.Refresh(r.Context(), user.ID, email)
	if err != nil {
		if errors.Is(err, service.ErrLookupFailed) {
			slog.Warn("breach lookup failed", "error", err, "user_id", user.ID)
			writeError(w, http.StatusBadGateway, "breach lookup unavailable, nothing was updated")
			return
		}
		slog.Error("failed to refresh dashboard", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to update dashboard")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/breachboard/breachboard/internal/ctxkeys"
	"github.com/breachboard/breachboard/internal/service"
)

type PasswordHandler struct {
	dashboardService *service.DashboardService
}

func NewPasswordHandler(dashboardService *service.DashboardService) *PasswordHandler {
	return &PasswordHandler{
		dashboardService: dashboardService,
	}
}

// Check answers whether the submitted password appears in the leaked corpus.
// The password is never persisted; on lookup failure the verdict is
// inconclusive, never "appears safe".
func (h *PasswordHandler) Check(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	password := r.FormValue("password")
	if password == "" {
		writeError(w, http.StatusBadRequest, "must provide a password")
		return
	}

	verdict, err := h.dashboardService.CheckPassword(r.Context(), password)
	if err != nil {
		if errors.Is(err, service.ErrLookupFailed) {
			slog.Warn("password check inconclusive", "user_id", user.ID)
			writeJSON(w, http.StatusBadGateway, map[string]string{"verdict": verdict})
			return
		}
		slog.Error("password check failed", "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "password check failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"verdict": verdict})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/breachboard/breachboard/internal/ctxkeys"
	"github.com/breachboard/breachboard/internal/service"
)

type BackupHandler struct {
	backupService *service.BackupService
}

func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
	}
}

// Export streams the caller's record as a JSON attachment.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=breachboard-export.json")

	err := h.backupService.Export(r.Context(), w, user.ID)
	if err != nil {
		slog.Error("failed to export record", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to export record", http.StatusInternalServerError)
		return
	}
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/breachboard/breachboard/internal/repository"
	"github.com/breachboard/breachboard/internal/storage"
)

// BackupService exports a user's persisted record. The export is streamed to
// the caller; when snapshot storage is configured an offsite copy is written
// as well, and a failure there does not fail the export.
type BackupService struct {
	userRepository repository.UserRepository
	snapshots      storage.Storage // nil when offsite snapshots are disabled
}

func NewBackupService(userRepository repository.UserRepository, snapshots storage.Storage) *BackupService {
	return &BackupService{
		userRepository: userRepository,
		snapshots:      snapshots,
	}
}

// Export writes the user's record as JSON to w. The password hash is
// excluded by the model's serialization rules.
func (s *BackupService) Export(ctx context.Context, w io.Writer, userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	payload, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if s.snapshots != nil {
		key := fmt.Sprintf("snapshots/%s/%s.json", userID, time.Now().UTC().Format(time.RFC3339))
		err = s.snapshots.Save(ctx, key, bytes.NewReader(payload))
		if err != nil {
			slog.Warn("failed to write offsite snapshot", "error", err, "user_id", userID)
		} else {
			slog.Info("offsite snapshot written", "key", key, "user_id", userID)
		}
	}

	_, err = w.Write(payload)
	return err
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/breachboard/breachboard/internal/model"
	"github.com/breachboard/breachboard/internal/repository"
)

// DashboardView is what the dashboard endpoints return to the caller.
type DashboardView struct {
	Email         string     `json:"email"`
	BreachesCount int        `json:"breaches_count"`
	Score         int        `json:"score"`
	LookupStatus  string     `json:"lookup_status"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	Tip           string     `json:"tip"`
}

// Password check verdicts.
const (
	VerdictBreached     = "breached"
	VerdictAppearsSafe  = "appears safe"
	VerdictInconclusive = "inconclusive"
)

type DashboardService struct {
	userRepository repository.UserRepository
	breachClient   *BreachClient
}

func NewDashboardService(userRepository repository.UserRepository, breachClient *BreachClient) *DashboardService {
	return &DashboardService{
		userRepository: userRepository,
		breachClient:   breachClient,
	}
}

// View returns the last persisted breach result for a user.
func (s *DashboardService) View(userID string) (*DashboardView, error) {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return viewFor(user), nil
}

// Refresh runs the email breach lookup and persists the outcome.
// A verified answer overwrites count and score together. A degraded answer
// only marks the row degraded; count and score stay as they were, and the
// returned view carries the api-error advisory instead of a false clean
// result. On ErrLookupFailed nothing is written.
func (s *DashboardService) Refresh(ctx context.Context, userID, email string) (*DashboardView, error) {
	count, status, err := s.breachClient.EmailBreaches(ctx, email)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if status == LookupDegraded {
		err = s.userRepository.MarkDegraded(userID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to mark lookup degraded: %w", err)
		}

		user, err := s.userRepository.ByID(userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		slog.Warn("breach lookup degraded", "user_id", userID)
		return viewFor(user), nil
	}

	score := ComputeScore(count)
	err = s.userRepository.UpdateBreachResult(userID, count, score, now)
	if err != nil {
		return nil, fmt.Errorf("failed to persist breach result: %w", err)
	}

	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	slog.Info("breach result updated", "user_id", userID, "breaches_count", count, "score", score)
	return viewFor(user), nil
}

// CheckPassword runs the k-anonymity leaked-password check. Nothing is
// persisted and the plaintext never reaches logs or the store; transport
// failures surface as ErrLookupFailed so callers answer "inconclusive"
// rather than "appears safe".
func (s *DashboardService) CheckPassword(ctx context.Context, password string) (string, error) {
	pwned, err := s.breachClient.PasswordPwned(ctx, password)
	if err != nil {
		return VerdictInconclusive, err
	}

	if pwned {
		return VerdictBreached, nil
	}
	return VerdictAppearsSafe, nil
}

func viewFor(user *model.User) *DashboardView {
	tip := AdvisoryTip(user.BreachesCount)
	if user.LastLookupStatus == model.LookupStatusDegraded {
		tip = TipAPIError
	}

	return &DashboardView{
		Email:         user.Email,
		BreachesCount: user.BreachesCount,
		Score:         user.Score,
		LookupStatus:  user.LastLookupStatus,
		LastCheckedAt: user.LastCheckedAt,
		Tip:           tip,
	}
}

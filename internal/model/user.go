package model

import (
	"time"
)

// Lookup status values for User.LastLookupStatus.
// A degraded lookup means the breach service answered but declined full
// service (e.g. missing API key tier); the stored count/score are stale,
// not a verified-clean result.
const (
	LookupStatusNever    = "never"
	LookupStatusVerified = "verified"
	LookupStatusDegraded = "degraded"
)

type User struct {
	ID               string     `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	BreachesCount    int        `db:"breaches_count" json:"breaches_count"`
	Score            int        `db:"score" json:"score"`
	LastLookupStatus string     `db:"last_lookup_status" json:"last_lookup_status"`
	LastCheckedAt    *time.Time `db:"last_checked_at" json:"last_checked_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

func (u *User) Verified() bool {
	return u.LastLookupStatus == LookupStatusVerified
}

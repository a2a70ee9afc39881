package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/breachboard/breachboard/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	// UpdateBreachResult persists a verified lookup: count and score are
	// written together in a single statement, never separately.
	UpdateBreachResult(id string, breachesCount, score int, checkedAt time.Time) error
	// MarkDegraded records that the last lookup came back unauthorized.
	// The stored count and score are left untouched.
	MarkDegraded(id string, checkedAt time.Time) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (id, email, password_hash, breaches_count, score, last_lookup_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query, user.ID, user.Email, user.PasswordHash, user.BreachesCount, user.Score, user.LastLookupStatus, user.CreatedAt)
	if err != nil {
		// Check for unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.Get(user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) UpdateBreachResult(id string, breachesCount, score int, checkedAt time.Time) error {
	query := `UPDATE users SET breaches_count = $1, score = $2, last_lookup_status = $3, last_checked_at = $4 WHERE id = $5`

	result, err := r.db.Exec(query, breachesCount, score, model.LookupStatusVerified, checkedAt, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *userRepository) MarkDegraded(id string, checkedAt time.Time) error {
	query := `UPDATE users SET last_lookup_status = $1, last_checked_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, model.LookupStatusDegraded, checkedAt, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

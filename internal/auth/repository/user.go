package repository

import (
	"context"
	"time"

	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
)

// User holds the sign-in credentials of a staff member
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// UserRepository handles user persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user using q, which may be a transaction
func (r *UserRepository) Create(ctx context.Context, q database.Querier, email, passwordHash string) (*User, error) {
	var user User
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at, updated_at
	`
	if err := q.GetContext(ctx, &user, query, email, passwordHash); err != nil {
		return nil, database.MapError(err, "user")
	}
	return &user, nil
}

// GetByEmail looks a user up case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, database.MapError(err, "user")
	}
	return &user, nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, database.MapError(err, "user")
	}
	return &user, nil
}

package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
)

// Session represents a signed-in device. Only a hash of the refresh token is stored.
type Session struct {
	ID               string     `db:"id"`
	UserID           string     `db:"user_id"`
	RefreshTokenHash string     `db:"refresh_token_hash"`
	UserAgent        *string    `db:"user_agent"`
	IPAddress        *string    `db:"ip_address"`
	ExpiresAt        time.Time  `db:"expires_at"`
	CreatedAt        time.Time  `db:"created_at"`
	RevokedAt        *time.Time `db:"revoked_at"`
}

// SessionRepository handles session persistence
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a session under a caller chosen ID, which is embedded in the refresh token
func (r *SessionRepository) Create(ctx context.Context, id, userID, refreshToken string, expiresAt time.Time, userAgent, ipAddress string) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token_hash, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		id, userID, HashToken(refreshToken), nullable(userAgent), nullable(ipAddress), expiresAt,
	)
	return database.MapError(err, "session")
}

// GetActive returns the live session identified by id and refresh token
func (r *SessionRepository) GetActive(ctx context.Context, id, refreshToken string) (*Session, error) {
	var session Session
	query := `
		SELECT id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, created_at, revoked_at
		FROM sessions
		WHERE id = $1 AND refresh_token_hash = $2 AND revoked_at IS NULL AND expires_at > NOW()
	`
	if err := r.db.GetContext(ctx, &session, query, id, HashToken(refreshToken)); err != nil {
		return nil, database.MapError(err, "session")
	}
	return &session, nil
}

// Rotate swaps the stored refresh token hash after a refresh
func (r *SessionRepository) Rotate(ctx context.Context, id, newRefreshToken string) error {
	query := `UPDATE sessions SET refresh_token_hash = $1 WHERE id = $2 AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, HashToken(newRefreshToken), id)
	return err
}

// Revoke revokes a session
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// RevokeAllForUser revokes all sessions for a user
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	query := `UPDATE sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// HashToken returns the hex sha256 of a refresh token
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

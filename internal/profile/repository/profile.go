package repository

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/profile/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

const profileColumns = `id, user_id, email, full_name, role, phone, specialization, license_number, is_active, created_at, updated_at`

// ProfileRepository handles profile persistence
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile using q, which may be a transaction
func (r *ProfileRepository) Create(ctx context.Context, q database.Querier, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, email, full_name, role, phone, specialization, license_number, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + profileColumns

	err := q.GetContext(ctx, p, query,
		p.UserID, p.Email, p.FullName, p.Role, p.Phone, p.Specialization, p.LicenseNumber, p.IsActive,
	)
	return database.MapError(err, "profile")
}

// GetByID gets a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, database.MapError(err, "profile")
	}
	return &p, nil
}

// GetDoctor gets a profile that holds the doctor role. An unknown profile or
// another role is a validation error on doctor_id.
func (r *ProfileRepository) GetDoctor(ctx context.Context, id string) (*domain.Profile, error) {
	doctor, err := r.GetByID(ctx, id)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Validation(map[string]string{"doctor_id": "unknown profile"})
	}
	if err != nil {
		return nil, err
	}
	if doctor.Role != permissions.RoleDoctor {
		return nil, errors.Validation(map[string]string{"doctor_id": "profile is not a doctor"})
	}
	return doctor, nil
}

// GetByUserID gets the profile belonging to a user
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		return nil, database.MapError(err, "profile")
	}
	return &p, nil
}

// ListAll returns every profile, newest first
func (r *ProfileRepository) ListAll(ctx context.Context) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ListDoctors returns active doctors ordered by name
func (r *ProfileRepository) ListDoctors(ctx context.Context) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE role = $1 AND is_active = true
		ORDER BY full_name`
	if err := r.db.SelectContext(ctx, &profiles, query, permissions.RoleDoctor); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SetActive toggles a profile's active flag and returns the updated row
func (r *ProfileRepository) SetActive(ctx context.Context, id string, active bool) (*domain.Profile, error) {
	var p domain.Profile
	query := `UPDATE profiles SET is_active = $1 WHERE id = $2 RETURNING ` + profileColumns
	if err := r.db.GetContext(ctx, &p, query, active, id); err != nil {
		return nil, database.MapError(err, "profile")
	}
	return &p, nil
}

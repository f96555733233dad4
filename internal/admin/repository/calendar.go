package repository

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/admin/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
)

const selectPermissions = `
	SELECT cp.id, cp.user_id, cp.doctor_id, cp.can_view, cp.can_edit, cp.created_by, cp.created_at,
	       u.full_name AS user_name, u.email AS user_email, d.full_name AS doctor_name
	FROM calendar_permissions cp
	JOIN profiles u ON u.id = cp.user_id
	JOIN profiles d ON d.id = cp.doctor_id`

// CalendarPermissionRepository handles calendar permission persistence
type CalendarPermissionRepository struct {
	db *database.DB
}

// NewCalendarPermissionRepository creates a new calendar permission repository
func NewCalendarPermissionRepository(db *database.DB) *CalendarPermissionRepository {
	return &CalendarPermissionRepository{db: db}
}

// List returns every permission with user and doctor names, newest first
func (r *CalendarPermissionRepository) List(ctx context.Context) ([]domain.CalendarPermission, error) {
	permissions := []domain.CalendarPermission{}
	if err := r.db.SelectContext(ctx, &permissions, selectPermissions+` ORDER BY cp.created_at DESC`); err != nil {
		return nil, err
	}
	return permissions, nil
}

// GetByID gets a permission by ID
func (r *CalendarPermissionRepository) GetByID(ctx context.Context, id string) (*domain.CalendarPermission, error) {
	var p domain.CalendarPermission
	if err := r.db.GetContext(ctx, &p, selectPermissions+` WHERE cp.id = $1`, id); err != nil {
		return nil, database.MapError(err, "calendar_permission")
	}
	return &p, nil
}

// Create inserts a permission and returns its ID
func (r *CalendarPermissionRepository) Create(ctx context.Context, in *domain.CalendarPermissionInput, createdBy string) (string, error) {
	var id string
	query := `
		INSERT INTO calendar_permissions (user_id, doctor_id, can_view, can_edit, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.GetContext(ctx, &id, query, in.UserID, in.DoctorID, in.View(), in.CanEdit, createdBy); err != nil {
		return "", database.MapError(err, "calendar_permission")
	}
	return id, nil
}

// Delete removes a permission
func (r *CalendarPermissionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendar_permissions WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "calendar_permission")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("calendar_permission")
	}
	return nil
}

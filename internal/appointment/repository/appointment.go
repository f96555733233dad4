package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
)

const selectAppointments = `
	SELECT a.id, a.patient_id, a.doctor_id, a.created_by, a.appointment_date,
	       to_char(a.appointment_time, 'HH24:MI') AS appointment_time,
	       a.duration_minutes, a.status, a.reason, a.notes, a.diagnosis, a.treatment,
	       a.next_appointment_needed, a.created_at, a.updated_at,
	       p.first_name AS patient_first_name, p.last_name AS patient_last_name,
	       d.full_name AS doctor_full_name, d.specialization AS doctor_specialization
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	LEFT JOIN profiles d ON d.id = a.doctor_id`

// AppointmentRepository handles appointment persistence
type AppointmentRepository struct {
	db *database.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *database.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// List returns appointments ordered by date and time, joined with the
// patient and doctor names.
func (r *AppointmentRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Appointment, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Date != nil {
		args = append(args, *filter.Date)
		conditions = append(conditions, fmt.Sprintf("a.appointment_date = $%d", len(args)))
	}
	if filter.DoctorID != "" {
		args = append(args, filter.DoctorID)
		conditions = append(conditions, fmt.Sprintf("a.doctor_id = $%d", len(args)))
	}

	query := selectAppointments
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY a.appointment_date, a.appointment_time`

	appointments := []domain.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, err
	}
	return appointments, nil
}

// GetByID gets an appointment by ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := r.db.GetContext(ctx, &a, selectAppointments+` WHERE a.id = $1`, id); err != nil {
		return nil, database.MapError(err, "appointment")
	}
	return &a, nil
}

// Create books an appointment and returns its ID
func (r *AppointmentRepository) Create(ctx context.Context, in *domain.Input, createdBy string) (string, error) {
	var id string
	query := `
		INSERT INTO appointments (patient_id, doctor_id, created_by, appointment_date, appointment_time,
			duration_minutes, status, reason, notes, diagnosis, treatment, next_appointment_needed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err := r.db.GetContext(ctx, &id, query,
		in.PatientID, in.DoctorID, createdBy, in.AppointmentDate, in.AppointmentTime,
		in.DurationMinutes, in.Status, in.Reason, in.Notes, in.Diagnosis, in.Treatment, in.NextAppointmentNeeded,
	)
	if err != nil {
		return "", database.MapError(err, "appointment")
	}
	return id, nil
}

// Update replaces the editable fields of an appointment
func (r *AppointmentRepository) Update(ctx context.Context, q database.Querier, id string, in *domain.Input) error {
	var updated string
	query := `
		UPDATE appointments SET
			patient_id = $2, doctor_id = $3, appointment_date = $4, appointment_time = $5,
			duration_minutes = $6, status = $7, reason = $8, notes = $9, diagnosis = $10,
			treatment = $11, next_appointment_needed = $12
		WHERE id = $1
		RETURNING id`

	err := q.GetContext(ctx, &updated, query, id,
		in.PatientID, in.DoctorID, in.AppointmentDate, in.AppointmentTime,
		in.DurationMinutes, in.Status, in.Reason, in.Notes, in.Diagnosis, in.Treatment, in.NextAppointmentNeeded,
	)
	return database.MapError(err, "appointment")
}

// LockStatus reads the current status and locks the row for the rest of the transaction
func (r *AppointmentRepository) LockStatus(ctx context.Context, q database.Querier, id string) (domain.Status, error) {
	var status domain.Status
	err := q.GetContext(ctx, &status, `SELECT status FROM appointments WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return "", database.MapError(err, "appointment")
	}
	return status, nil
}

// UpdateStatus sets the status of an appointment
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, q database.Querier, id string, status domain.Status) error {
	_, err := q.ExecContext(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, status)
	return database.MapError(err, "appointment")
}

// Delete removes an appointment permanently
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("appointment")
	}
	return nil
}

// CountOnDate counts appointments booked for a day
func (r *AppointmentRepository) CountOnDate(ctx context.Context, day dates.Date) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM appointments WHERE appointment_date = $1`, day)
	return n, err
}

// CountByStatus counts appointments in a status
func (r *AppointmentRepository) CountByStatus(ctx context.Context, status domain.Status) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM appointments WHERE status = $1`, status)
	return n, err
}

package repository

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/patient/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
)

const patientColumns = `id, first_name, last_name, date_of_birth, jmbg, phone, email, address, city,
	emergency_contact_name, emergency_contact_phone, medical_notes, allergies, chronic_conditions,
	is_active, created_at, updated_at`

// PatientRepository handles patient persistence
type PatientRepository struct {
	db *database.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *database.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// List returns patients newest first. Inactive patients are only included when asked for.
func (r *PatientRepository) List(ctx context.Context, includeInactive bool) ([]domain.Patient, error) {
	patients := []domain.Patient{}
	query := `SELECT ` + patientColumns + ` FROM patients`
	if !includeInactive {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, err
	}
	return patients, nil
}

// GetByID gets a patient by ID, active or not
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	var p domain.Patient
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, database.MapError(err, "patient")
	}
	return &p, nil
}

// Create inserts a new active patient
func (r *PatientRepository) Create(ctx context.Context, in *domain.Input) (*domain.Patient, error) {
	var p domain.Patient
	query := `
		INSERT INTO patients (first_name, last_name, date_of_birth, jmbg, phone, email, address, city,
			emergency_contact_name, emergency_contact_phone, medical_notes, allergies, chronic_conditions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + patientColumns

	err := r.db.GetContext(ctx, &p, query,
		in.FirstName, in.LastName, in.DateOfBirth, in.JMBG, in.Phone, in.Email, in.Address, in.City,
		in.EmergencyContactName, in.EmergencyContactPhone, in.MedicalNotes, in.Allergies, in.ChronicConditions,
	)
	if err != nil {
		return nil, database.MapError(err, "patient")
	}
	return &p, nil
}

// Update replaces the editable fields of a patient
func (r *PatientRepository) Update(ctx context.Context, id string, in *domain.Input) (*domain.Patient, error) {
	var p domain.Patient
	query := `
		UPDATE patients SET
			first_name = $2, last_name = $3, date_of_birth = $4, jmbg = $5, phone = $6, email = $7,
			address = $8, city = $9, emergency_contact_name = $10, emergency_contact_phone = $11,
			medical_notes = $12, allergies = $13, chronic_conditions = $14
		WHERE id = $1
		RETURNING ` + patientColumns

	err := r.db.GetContext(ctx, &p, query, id,
		in.FirstName, in.LastName, in.DateOfBirth, in.JMBG, in.Phone, in.Email, in.Address, in.City,
		in.EmergencyContactName, in.EmergencyContactPhone, in.MedicalNotes, in.Allergies, in.ChronicConditions,
	)
	if err != nil {
		return nil, database.MapError(err, "patient")
	}
	return &p, nil
}

// Deactivate soft deletes a patient
func (r *PatientRepository) Deactivate(ctx context.Context, id string) (*domain.Patient, error) {
	var p domain.Patient
	query := `UPDATE patients SET is_active = false WHERE id = $1 RETURNING ` + patientColumns
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, database.MapError(err, "patient")
	}
	return &p, nil
}

// CountActive counts active patients
func (r *PatientRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM patients WHERE is_active = true`)
	return n, err
}

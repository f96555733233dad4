// Package domain holds the patient record and the roster search.
package domain

import (
	"strings"
	"time"

	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
)

// Patient is a person registered with the clinic
type Patient struct {
	ID                    string      `db:"id" json:"id"`
	FirstName             string      `db:"first_name" json:"first_name"`
	LastName              string      `db:"last_name" json:"last_name"`
	DateOfBirth           *dates.Date `db:"date_of_birth" json:"date_of_birth"`
	JMBG                  *string     `db:"jmbg" json:"jmbg"`
	Phone                 *string     `db:"phone" json:"phone"`
	Email                 *string     `db:"email" json:"email"`
	Address               *string     `db:"address" json:"address"`
	City                  *string     `db:"city" json:"city"`
	EmergencyContactName  *string     `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone *string     `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	MedicalNotes          *string     `db:"medical_notes" json:"medical_notes"`
	Allergies             *string     `db:"allergies" json:"allergies"`
	ChronicConditions     *string     `db:"chronic_conditions" json:"chronic_conditions"`
	IsActive              bool        `db:"is_active" json:"is_active"`
	CreatedAt             time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at" json:"updated_at"`
}

// FullName returns "first last"
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Input is the editable part of a patient, shared by create and update
type Input struct {
	FirstName             string      `json:"first_name" validate:"required,max=100"`
	LastName              string      `json:"last_name" validate:"required,max=100"`
	DateOfBirth           *dates.Date `json:"date_of_birth"`
	JMBG                  *string     `json:"jmbg" validate:"omitempty,max=13"`
	Phone                 *string     `json:"phone" validate:"omitempty,max=50"`
	Email                 *string     `json:"email" validate:"omitempty,email"`
	Address               *string     `json:"address" validate:"omitempty,max=255"`
	City                  *string     `json:"city" validate:"omitempty,max=100"`
	EmergencyContactName  *string     `json:"emergency_contact_name" validate:"omitempty,max=200"`
	EmergencyContactPhone *string     `json:"emergency_contact_phone" validate:"omitempty,max=50"`
	MedicalNotes          *string     `json:"medical_notes"`
	Allergies             *string     `json:"allergies"`
	ChronicConditions     *string     `json:"chronic_conditions"`
}

// Normalize trims names and turns blank optional fields into nulls
func (in *Input) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	for _, f := range []**string{
		&in.JMBG, &in.Phone, &in.Email, &in.Address, &in.City,
		&in.EmergencyContactName, &in.EmergencyContactPhone,
		&in.MedicalNotes, &in.Allergies, &in.ChronicConditions,
	} {
		if *f == nil {
			continue
		}
		if v := strings.TrimSpace(**f); v != "" {
			*f = &v
		} else {
			*f = nil
		}
	}
}

// Search filters patients by a case-insensitive substring of the full name,
// JMBG, phone or email. An empty or blank query returns the input unchanged.
func Search(patients []Patient, query string) []Patient {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return patients
	}

	out := make([]Patient, 0, len(patients))
	for _, p := range patients {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Patient, q string) bool {
	if strings.Contains(strings.ToLower(p.FullName()), q) {
		return true
	}
	for _, field := range []*string{p.JMBG, p.Phone, p.Email} {
		if field != nil && strings.Contains(strings.ToLower(*field), q) {
			return true
		}
	}
	return false
}

// Summary counts the roster figures shown above the patient list
type Summary struct {
	Total                 int `json:"total"`
	WithAllergies         int `json:"with_allergies"`
	WithChronicConditions int `json:"with_chronic_conditions"`
}

// Summarize computes the roster summary over a patient list
func Summarize(patients []Patient) Summary {
	s := Summary{Total: len(patients)}
	for _, p := range patients {
		if p.Allergies != nil && *p.Allergies != "" {
			s.WithAllergies++
		}
		if p.ChronicConditions != nil && *p.ChronicConditions != "" {
			s.WithChronicConditions++
		}
	}
	return s
}

// Package domain holds appointments, their status lifecycle and the agenda view.
package domain

import (
	"time"

	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
)

// Status is the lifecycle state of an appointment
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusScheduled, StatusConfirmed, StatusInProgress,
	StatusCompleted, StatusCancelled, StatusNoShow,
}

// DefaultDuration is used when a booking does not give a duration.
const DefaultDuration = 30

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further status change is expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Appointment is a booked visit, joined with the patient and doctor names
type Appointment struct {
	ID                    string     `db:"id" json:"id"`
	PatientID             string     `db:"patient_id" json:"patient_id"`
	DoctorID              string     `db:"doctor_id" json:"doctor_id"`
	CreatedBy             string     `db:"created_by" json:"created_by"`
	AppointmentDate       dates.Date `db:"appointment_date" json:"appointment_date"`
	AppointmentTime       string     `db:"appointment_time" json:"appointment_time"`
	DurationMinutes       int        `db:"duration_minutes" json:"duration_minutes"`
	Status                Status     `db:"status" json:"status"`
	Reason                *string    `db:"reason" json:"reason"`
	Notes                 *string    `db:"notes" json:"notes"`
	Diagnosis             *string    `db:"diagnosis" json:"diagnosis"`
	Treatment             *string    `db:"treatment" json:"treatment"`
	NextAppointmentNeeded *bool      `db:"next_appointment_needed" json:"next_appointment_needed"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`

	PatientFirstName     string  `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName      string  `db:"patient_last_name" json:"patient_last_name"`
	DoctorFullName       *string `db:"doctor_full_name" json:"doctor_full_name"`
	DoctorSpecialization *string `db:"doctor_specialization" json:"doctor_specialization"`
}

// PatientName returns "first last" of the booked patient
func (a *Appointment) PatientName() string {
	return a.PatientFirstName + " " + a.PatientLastName
}

// Input is the editable part of an appointment, shared by create and update.
// Status is only honoured on update; new bookings always start scheduled.
type Input struct {
	PatientID             string      `json:"patient_id" validate:"required,uuid"`
	DoctorID              string      `json:"doctor_id" validate:"required,uuid"`
	AppointmentDate       *dates.Date `json:"appointment_date" validate:"required"`
	AppointmentTime       string      `json:"appointment_time" validate:"required,datetime=15:04"`
	DurationMinutes       int         `json:"duration_minutes" validate:"omitempty,min=1,max=480"`
	Status                Status      `json:"status" validate:"omitempty,oneof=scheduled confirmed in_progress completed cancelled no_show"`
	Reason                *string     `json:"reason"`
	Notes                 *string     `json:"notes"`
	Diagnosis             *string     `json:"diagnosis"`
	Treatment             *string     `json:"treatment"`
	NextAppointmentNeeded *bool       `json:"next_appointment_needed"`
}

// ApplyDefaults fills the duration and status a booking omits.
func (in *Input) ApplyDefaults() {
	if in.DurationMinutes == 0 {
		in.DurationMinutes = DefaultDuration
	}
	if in.Status == "" {
		in.Status = StatusScheduled
	}
}

// StatusInput is the body of a status change
type StatusInput struct {
	Status Status `json:"status" validate:"required,oneof=scheduled confirmed in_progress completed cancelled no_show"`
}

// Filter narrows the appointment list. Zero values match everything.
type Filter struct {
	Date     *dates.Date
	DoctorID string
}

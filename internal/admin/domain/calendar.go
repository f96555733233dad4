// Package domain holds the admin panel models.
package domain

import "time"

// CalendarPermission grants a staff member access to a doctor's appointments
type CalendarPermission struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	DoctorID  string    `db:"doctor_id" json:"doctor_id"`
	CanView   bool      `db:"can_view" json:"can_view"`
	CanEdit   bool      `db:"can_edit" json:"can_edit"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	UserName   *string `db:"user_name" json:"user_name"`
	UserEmail  string  `db:"user_email" json:"user_email"`
	DoctorName *string `db:"doctor_name" json:"doctor_name"`
}

// CalendarPermissionInput is the body of a calendar permission create.
// CanView defaults to true when omitted.
type CalendarPermissionInput struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	DoctorID string `json:"doctor_id" validate:"required,uuid"`
	CanView  *bool  `json:"can_view"`
	CanEdit  bool   `json:"can_edit"`
}

// View reports the effective view flag. Edit access implies view access.
func (in *CalendarPermissionInput) View() bool {
	if in.CanEdit {
		return true
	}
	return in.CanView == nil || *in.CanView
}

// ProfileStatusInput is the body of an activation toggle
type ProfileStatusInput struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

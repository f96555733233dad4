// Package domain holds the staff profile model.
package domain

import (
	"time"

	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

// Profile is a staff member's account within the clinic
type Profile struct {
	ID             string           `db:"id" json:"id"`
	UserID         string           `db:"user_id" json:"user_id"`
	Email          string           `db:"email" json:"email"`
	FullName       *string          `db:"full_name" json:"full_name"`
	Role           permissions.Role `db:"role" json:"role"`
	Phone          *string          `db:"phone" json:"phone"`
	Specialization *string          `db:"specialization" json:"specialization"`
	LicenseNumber  *string          `db:"license_number" json:"license_number"`
	IsActive       bool             `db:"is_active" json:"is_active"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// DisplayName falls back to the email when no full name was entered
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

// HasRole reports whether the profile satisfies the required role
func (p *Profile) HasRole(required permissions.Role) bool {
	return permissions.HasRole(p.Role, p.IsActive, required)
}

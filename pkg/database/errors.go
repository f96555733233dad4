package database

import (
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/lib/pq"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return mapUniqueConstraint(pqErr)

	// Foreign key violation (23503)
	case "23503":
		return errors.Validation(map[string]string{
			foreignKeyField(pqErr): "referenced record does not exist",
		})

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// MapError maps driver errors for the caller: sql.ErrNoRows becomes NotFound for
// the given resource, constraint violations become their AppError and anything
// else is returned as is.
func MapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource)
	}
	if appErr := MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "current_stock"):
		return errors.Validation(map[string]string{
			"current_stock": "must not be negative",
		})
	case strings.Contains(constraint, "min_stock_level"):
		return errors.Validation(map[string]string{
			"min_stock_level": "must not be negative",
		})
	case strings.Contains(constraint, "duration_minutes"):
		return errors.Validation(map[string]string{
			"duration_minutes": "must be positive",
		})
	case strings.Contains(constraint, "quantity"):
		return errors.Validation(map[string]string{
			"quantity": "is out of range for the transaction type",
		})
	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// mapUniqueConstraint creates a user-friendly conflict for unique violations.
func mapUniqueConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "email"):
		appErr := errors.Conflict("a user with this email already exists")
		appErr.MessageKey = "errors.email_taken"
		return appErr
	case constraint == "patients_jmbg_key":
		return errors.Conflict("a patient with this JMBG already exists")
	case constraint == "inventory_categories_name_key":
		return errors.Conflict("a category with this name already exists")
	case constraint == "calendar_permissions_user_doctor_key":
		return errors.Conflict("this user already has a permission for this doctor")
	default:
		return errors.Conflict("a record with these values already exists")
	}
}

// foreignKeyField guesses the offending column from a constraint named
// <table>_<column>_fkey.
func foreignKeyField(pqErr *pq.Error) string {
	name := strings.TrimSuffix(pqErr.Constraint, "_fkey")
	if pqErr.Table != "" {
		name = strings.TrimPrefix(name, pqErr.Table+"_")
	}
	if name == "" {
		return "reference"
	}
	return name
}

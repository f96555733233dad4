package domain

import "github.com/pulsmedic/pulsmedic-backend/pkg/errors"

var forward = map[Status]Status{
	StatusScheduled:  StatusConfirmed,
	StatusConfirmed:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// ValidateTransition checks a status change under the strict lifecycle:
// one step forward along scheduled, confirmed, in_progress, completed, or
// cancelled/no_show from any open status. Terminal statuses are frozen.
// Setting the current status again is always allowed.
func ValidateTransition(from, to Status) error {
	if !to.Valid() {
		return errors.Validation(map[string]string{"status": "unknown status"})
	}
	if from == to {
		return nil
	}
	if from.Terminal() {
		return errors.InvalidStatusTransition(string(from), string(to))
	}
	if to == StatusCancelled || to == StatusNoShow || forward[from] == to {
		return nil
	}
	return errors.InvalidStatusTransition(string(from), string(to))
}

package domain

import "github.com/pulsmedic/pulsmedic-backend/pkg/dates"

// Agenda splits appointments around a selected day
type Agenda struct {
	Date     dates.Date    `json:"date"`
	Today    []Appointment `json:"today"`
	Upcoming []Appointment `json:"upcoming"`
}

// BuildAgenda partitions appointments for the given day. Today holds every
// appointment on that date; Upcoming holds later appointments that are not
// completed or cancelled. Input order is preserved in both lists.
func BuildAgenda(appointments []Appointment, day dates.Date) Agenda {
	agenda := Agenda{Date: day, Today: []Appointment{}, Upcoming: []Appointment{}}
	for _, a := range appointments {
		switch {
		case a.AppointmentDate.Equal(day):
			agenda.Today = append(agenda.Today, a)
		case a.AppointmentDate.After(day) && a.Status != StatusCompleted && a.Status != StatusCancelled:
			agenda.Upcoming = append(agenda.Upcoming, a)
		}
	}
	return agenda
}

package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/events"
	"github.com/pulsmedic/pulsmedic-backend/pkg/config"
	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/messaging"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
	"github.com/pulsmedic/pulsmedic-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	appointmentID = "8f14e45f-ceea-467f-a0e6-2b0b5f1f4c11"
	patientID     = "5c1f4a52-9a43-4c61-8b0e-3e1a7f7d2b10"
	doctorID      = "33333333-3333-3333-3333-333333333333"
)

var appointmentCols = []string{
	"id", "patient_id", "doctor_id", "created_by", "appointment_date", "appointment_time",
	"duration_minutes", "status", "reason", "notes", "diagnosis", "treatment",
	"next_appointment_needed", "created_at", "updated_at",
	"patient_first_name", "patient_last_name", "doctor_full_name", "doctor_specialization",
}

const byIDQuery = "LEFT JOIN profiles d ON d.id = a.doctor_id WHERE a.id = $1"

var profileCols = []string{
	"id", "user_id", "email", "full_name", "role", "phone",
	"specialization", "license_number", "is_active", "created_at", "updated_at",
}

func profileRows(id string, role permissions.Role) *sqlmock.Rows {
	now := time.Now()
	return testutil.MockRows(profileCols...).
		AddRow(id, "u1", "dr@pulsmedic.rs", "Dr Petar Petrović", string(role), nil, "Kardiologija", nil, true, now, now)
}

func expectDoctor(db *testutil.MockDB, role permissions.Role) {
	db.ExpectQuery("FROM profiles WHERE id = $1").WithArgs(doctorID).WillReturnRows(profileRows(doctorID, role))
}

func newService(t *testing.T, policy config.PolicyConfig) (*AppointmentService, *testutil.MockDB, *testutil.MockPublisher) {
	t.Helper()
	db := testutil.NewMockDB(t)
	pub := testutil.NewMockPublisher()
	log := logger.Nop()
	svc := NewAppointmentService(db.Database(), events.NewAppointmentEventPublisher(pub, log), policy, log)
	return svc, db, pub
}

func appointmentRows(rows [][]interface{}) *sqlmock.Rows {
	r := testutil.MockRows(appointmentCols...)
	for _, row := range rows {
		vals := make([]driver.Value, len(row))
		for i, v := range row {
			vals[i] = v
		}
		r.AddRow(vals...)
	}
	return r
}

func row(id, date, status string) []interface{} {
	now := time.Now()
	return []interface{}{
		id, patientID, doctorID, testutil.Actor(permissions.RoleReceptionist).ProfileID, date, "09:30",
		30, status, nil, nil, nil, nil, nil, now, now,
		"Ana", "Ilić", "Dr Petar Petrović", "Kardiologija",
	}
}

func TestList_AppliesFilters(t *testing.T) {
	svc, db, _ := newService(t, config.PolicyConfig{})
	day := dates.New(2024, 3, 15)

	db.ExpectQuery("WHERE a.appointment_date = $1 AND a.doctor_id = $2 ORDER BY a.appointment_date, a.appointment_time").
		WithArgs("2024-03-15", doctorID).
		WillReturnRows(appointmentRows([][]interface{}{row(appointmentID, "2024-03-15", "scheduled")}))

	appointments, err := svc.List(context.Background(), domain.Filter{Date: &day, DoctorID: doctorID})

	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "Ana Ilić", appointments[0].PatientName())
	assert.Equal(t, "09:30", appointments[0].AppointmentTime)
	assert.True(t, appointments[0].AppointmentDate.Equal(day))
}

func TestAgenda_DefaultsToToday(t *testing.T) {
	svc, db, _ := newService(t, config.PolicyConfig{})
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC) }

	db.ExpectQuery("ORDER BY a.appointment_date, a.appointment_time").
		WillReturnRows(appointmentRows([][]interface{}{
			row("a1", "2024-03-14", "scheduled"),
			row("a2", "2024-03-15", "completed"),
			row("a3", "2024-03-16", "confirmed"),
			row("a4", "2024-03-17", "cancelled"),
		}))

	agenda, err := svc.Agenda(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", agenda.Date.String())
	require.Len(t, agenda.Today, 1)
	assert.Equal(t, "a2", agenda.Today[0].ID)
	require.Len(t, agenda.Upcoming, 1)
	assert.Equal(t, "a3", agenda.Upcoming[0].ID)
}

func TestCreate_DefaultsAndCreator(t *testing.T) {
	svc, db, pub := newService(t, config.PolicyConfig{})
	a := testutil.Actor(permissions.RoleReceptionist)
	day := dates.New(2024, 3, 15)

	expectDoctor(db, permissions.RoleDoctor)
	db.ExpectQuery("INSERT INTO appointments").
		WithArgs(patientID, doctorID, a.ProfileID, "2024-03-15", "09:30", 30, "scheduled",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(testutil.MockRows("id").AddRow(appointmentID))
	db.ExpectQuery(byIDQuery).WithArgs(appointmentID).
		WillReturnRows(appointmentRows([][]interface{}{row(appointmentID, "2024-03-15", "scheduled")}))

	appointment, err := svc.Create(context.Background(), a, &domain.Input{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: &day,
		AppointmentTime: "09:30",
		Status:          domain.StatusCompleted,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, appointment.Status)
	pub.AssertEventPublished(t, messaging.EventAppointmentCreated)
}

func TestCreate_RequiresDoctorProfile(t *testing.T) {
	input := func() *domain.Input {
		day := dates.New(2024, 3, 15)
		return &domain.Input{PatientID: patientID, DoctorID: doctorID, AppointmentDate: &day, AppointmentTime: "09:30"}
	}

	t.Run("profile is not a doctor", func(t *testing.T) {
		svc, db, pub := newService(t, config.PolicyConfig{})
		expectDoctor(db, permissions.RoleNurse)

		_, err := svc.Create(context.Background(), testutil.Actor(permissions.RoleReceptionist), input())

		var appErr *errors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.True(t, errors.Is(err, errors.ErrValidation))
		assert.Contains(t, appErr.Details, "doctor_id")
		pub.AssertNoEventsPublished(t)
	})

	t.Run("unknown profile", func(t *testing.T) {
		svc, db, pub := newService(t, config.PolicyConfig{})
		db.ExpectQuery("FROM profiles WHERE id = $1").WithArgs(doctorID).WillReturnError(sql.ErrNoRows)

		_, err := svc.Create(context.Background(), testutil.Actor(permissions.RoleReceptionist), input())

		assert.True(t, errors.Is(err, errors.ErrValidation))
		pub.AssertNoEventsPublished(t)
	})
}

func TestSetStatus_PermissiveByDefault(t *testing.T) {
	svc, db, pub := newService(t, config.PolicyConfig{})
	a := testutil.Actor(permissions.RoleDoctor)

	db.ExpectBegin()
	db.ExpectQuery("SELECT status FROM appointments WHERE id = $1 FOR UPDATE").
		WithArgs(appointmentID).
		WillReturnRows(testutil.MockRows("status").AddRow("completed"))
	db.ExpectExec("UPDATE appointments SET status = $2 WHERE id = $1").
		WithArgs(appointmentID, "scheduled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.ExpectCommit()
	db.ExpectQuery(byIDQuery).WithArgs(appointmentID).
		WillReturnRows(appointmentRows([][]interface{}{row(appointmentID, "2024-03-15", "scheduled")}))

	appointment, err := svc.SetStatus(context.Background(), a, appointmentID, domain.StatusScheduled)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, appointment.Status)
	events := pub.Events(messaging.EventAppointmentStatusChanged)
	require.Len(t, events, 1)
	assert.Equal(t, messaging.AppointmentStatusChangedEvent{
		AppointmentID: appointmentID,
		OldStatus:     "completed",
		NewStatus:     "scheduled",
		ActorID:       a.ProfileID,
	}, events[0])
}

func TestSetStatus_StrictRejectsBackwardMove(t *testing.T) {
	svc, db, pub := newService(t, config.PolicyConfig{EnforceStatusTransitions: true})

	db.ExpectBegin()
	db.ExpectQuery("SELECT status FROM appointments WHERE id = $1 FOR UPDATE").
		WithArgs(appointmentID).
		WillReturnRows(testutil.MockRows("status").AddRow("completed"))
	db.ExpectRollback()

	_, err := svc.SetStatus(context.Background(), testutil.Actor(permissions.RoleDoctor), appointmentID, domain.StatusScheduled)

	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))
	pub.AssertNoEventsPublished(t)
}

func TestSetStatus_SameStatusPublishesNothing(t *testing.T) {
	svc, db, pub := newService(t, config.PolicyConfig{EnforceStatusTransitions: true})

	db.ExpectBegin()
	db.ExpectQuery("FOR UPDATE").WillReturnRows(testutil.MockRows("status").AddRow("confirmed"))
	db.ExpectExec("UPDATE appointments SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	db.ExpectCommit()
	db.ExpectQuery(byIDQuery).
		WillReturnRows(appointmentRows([][]interface{}{row(appointmentID, "2024-03-15", "confirmed")}))

	_, err := svc.SetStatus(context.Background(), testutil.Actor(permissions.RoleNurse), appointmentID, domain.StatusConfirmed)

	require.NoError(t, err)
	pub.AssertNoEventsPublished(t)
}

func TestSetStatus_NotFound(t *testing.T) {
	svc, db, _ := newService(t, config.PolicyConfig{})

	db.ExpectBegin()
	db.ExpectQuery("FOR UPDATE").WillReturnError(sql.ErrNoRows)
	db.ExpectRollback()

	_, err := svc.SetStatus(context.Background(), testutil.Actor(permissions.RoleNurse), appointmentID, domain.StatusConfirmed)

	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdate_KeepsStatusWhenOmitted(t *testing.T) {
	svc, db, pub := newService(t, config.PolicyConfig{EnforceStatusTransitions: true})
	day := dates.New(2024, 3, 16)

	expectDoctor(db, permissions.RoleDoctor)
	db.ExpectBegin()
	db.ExpectQuery("SELECT status FROM appointments WHERE id = $1 FOR UPDATE").
		WithArgs(appointmentID).
		WillReturnRows(testutil.MockRows("status").AddRow("in_progress"))
	db.ExpectQuery("UPDATE appointments SET").
		WithArgs(appointmentID, patientID, doctorID, "2024-03-16", "10:00", 45, "in_progress",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(testutil.MockRows("id").AddRow(appointmentID))
	db.ExpectCommit()
	db.ExpectQuery(byIDQuery).WithArgs(appointmentID).
		WillReturnRows(appointmentRows([][]interface{}{row(appointmentID, "2024-03-16", "in_progress")}))

	_, err := svc.Update(context.Background(), testutil.Actor(permissions.RoleDoctor), appointmentID, &domain.Input{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: &day,
		AppointmentTime: "10:00",
		DurationMinutes: 45,
	})

	require.NoError(t, err)
	pub.AssertEventPublished(t, messaging.EventAppointmentUpdated)
	pub.AssertEventNotPublished(t, messaging.EventAppointmentStatusChanged)
}

func TestUpdate_StrictRejectsBackwardMoveUnderLock(t *testing.T) {
	svc, db, pub := newService(t, config.PolicyConfig{EnforceStatusTransitions: true})
	day := dates.New(2024, 3, 16)

	expectDoctor(db, permissions.RoleDoctor)
	db.ExpectBegin()
	db.ExpectQuery("SELECT status FROM appointments WHERE id = $1 FOR UPDATE").
		WithArgs(appointmentID).
		WillReturnRows(testutil.MockRows("status").AddRow("completed"))
	db.ExpectRollback()

	_, err := svc.Update(context.Background(), testutil.Actor(permissions.RoleDoctor), appointmentID, &domain.Input{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: &day,
		AppointmentTime: "10:00",
		Status:          domain.StatusScheduled,
	})

	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))
	pub.AssertNoEventsPublished(t)
}

func TestUpdate_StatusChangePublishesTransition(t *testing.T) {
	svc, db, pub := newService(t, config.PolicyConfig{})
	a := testutil.Actor(permissions.RoleNurse)
	day := dates.New(2024, 3, 16)

	expectDoctor(db, permissions.RoleDoctor)
	db.ExpectBegin()
	db.ExpectQuery("FOR UPDATE").WithArgs(appointmentID).
		WillReturnRows(testutil.MockRows("status").AddRow("scheduled"))
	db.ExpectQuery("UPDATE appointments SET").WillReturnRows(testutil.MockRows("id").AddRow(appointmentID))
	db.ExpectCommit()
	db.ExpectQuery(byIDQuery).WithArgs(appointmentID).
		WillReturnRows(appointmentRows([][]interface{}{row(appointmentID, "2024-03-16", "confirmed")}))

	_, err := svc.Update(context.Background(), a, appointmentID, &domain.Input{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: &day,
		AppointmentTime: "10:00",
		Status:          domain.StatusConfirmed,
	})

	require.NoError(t, err)
	events := pub.Events(messaging.EventAppointmentStatusChanged)
	require.Len(t, events, 1)
	assert.Equal(t, messaging.AppointmentStatusChangedEvent{
		AppointmentID: appointmentID,
		OldStatus:     "scheduled",
		NewStatus:     "confirmed",
		ActorID:       a.ProfileID,
	}, events[0])
}

func TestUpdate_RequiresDoctorProfile(t *testing.T) {
	svc, db, pub := newService(t, config.PolicyConfig{})
	day := dates.New(2024, 3, 16)
	expectDoctor(db, permissions.RoleReceptionist)

	_, err := svc.Update(context.Background(), testutil.Actor(permissions.RoleDoctor), appointmentID, &domain.Input{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: &day,
		AppointmentTime: "10:00",
	})

	assert.True(t, errors.Is(err, errors.ErrValidation))
	pub.AssertNoEventsPublished(t)
}

func TestDelete(t *testing.T) {
	t.Run("removes the row", func(t *testing.T) {
		svc, db, pub := newService(t, config.PolicyConfig{})
		db.ExpectExec("DELETE FROM appointments WHERE id = $1").
			WithArgs(appointmentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.Delete(context.Background(), testutil.Actor(permissions.RoleReceptionist), appointmentID)

		require.NoError(t, err)
		pub.AssertEventPublished(t, messaging.EventAppointmentDeleted)
	})

	t.Run("missing row is not found", func(t *testing.T) {
		svc, db, pub := newService(t, config.PolicyConfig{})
		db.ExpectExec("DELETE FROM appointments WHERE id = $1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := svc.Delete(context.Background(), testutil.Actor(permissions.RoleReceptionist), appointmentID)

		assert.True(t, errors.Is(err, errors.ErrNotFound))
		pub.AssertNoEventsPublished(t)
	})
}

func TestDoctors(t *testing.T) {
	svc, db, _ := newService(t, config.PolicyConfig{})
	now := time.Now()
	db.ExpectQuery("WHERE role = $1 AND is_active = true ORDER BY full_name").
		WithArgs("doctor").
		WillReturnRows(testutil.MockRows(profileCols...).
			AddRow(doctorID, "u1", "dr@pulsmedic.rs", "Dr Petar Petrović", "doctor", nil, "Kardiologija", nil, true, now, now))

	doctors, err := svc.Doctors(context.Background())

	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, permissions.RoleDoctor, doctors[0].Role)
}

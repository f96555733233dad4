package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/events"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/repository"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/messaging"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
	"github.com/pulsmedic/pulsmedic-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patientCols = []string{
	"id", "first_name", "last_name", "date_of_birth", "jmbg", "phone", "email", "address", "city",
	"emergency_contact_name", "emergency_contact_phone", "medical_notes", "allergies", "chronic_conditions",
	"is_active", "created_at", "updated_at",
}

const patientID = "5c1f4a52-9a43-4c61-8b0e-3e1a7f7d2b10"

func newService(t *testing.T) (*PatientService, *testutil.MockDB, *testutil.MockPublisher) {
	t.Helper()
	db := testutil.NewMockDB(t)
	pub := testutil.NewMockPublisher()
	log := logger.Nop()
	svc := NewPatientService(
		repository.NewPatientRepository(db.Database()),
		events.NewPatientEventPublisher(pub, log),
		log,
	)
	return svc, db, pub
}

func patientRow(rows *sqlmock.Rows, id, first, last string, jmbg interface{}, active bool) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, first, last, nil, jmbg, nil, nil, nil, nil, nil, nil, nil, nil, nil, active, now, now)
}

func TestList_FiltersActiveAndSearches(t *testing.T) {
	svc, db, _ := newService(t)

	rows := testutil.MockRows(patientCols...)
	patientRow(rows, "p1", "Marko", "Marković", "0101990710001", true)
	patientRow(rows, "p2", "Jelena", "Petrović", nil, true)
	db.ExpectQuery("FROM patients WHERE is_active = true ORDER BY created_at DESC").WillReturnRows(rows)

	patients, err := svc.List(context.Background(), ListParams{Query: "MARKO"})

	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "p1", patients[0].ID)
}

func TestList_IncludeInactive(t *testing.T) {
	svc, db, _ := newService(t)

	rows := testutil.MockRows(patientCols...)
	patientRow(rows, "p1", "Marko", "Marković", nil, false)
	db.ExpectQuery("FROM patients ORDER BY created_at DESC").WillReturnRows(rows)

	patients, err := svc.List(context.Background(), ListParams{IncludeInactive: true})

	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.False(t, patients[0].IsActive)
}

func TestGet_NotFound(t *testing.T) {
	svc, db, _ := newService(t)
	db.ExpectQuery("FROM patients WHERE id = $1").WithArgs(patientID).WillReturnError(sql.ErrNoRows)

	_, err := svc.Get(context.Background(), patientID)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestCreate_NormalizesAndPublishes(t *testing.T) {
	svc, db, pub := newService(t)
	a := testutil.Actor(permissions.RoleReceptionist)

	db.ExpectQuery("INSERT INTO patients").
		WithArgs("Ana", "Ilić", sqlmock.AnyArg(), sqlmock.AnyArg(), nil, "ana@example.rs",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(patientRow(testutil.MockRows(patientCols...), patientID, "Ana", "Ilić", nil, true))

	blank := " "
	email := " ana@example.rs"
	patient, err := svc.Create(context.Background(), a, &domain.Input{
		FirstName: " Ana",
		LastName:  "Ilić ",
		Phone:     &blank,
		Email:     &email,
	})

	require.NoError(t, err)
	assert.Equal(t, patientID, patient.ID)
	events := pub.Events(messaging.EventPatientCreated)
	require.Len(t, events, 1)
	assert.Equal(t, messaging.EntityEvent{ID: patientID, ActorID: a.ProfileID}, events[0])
}

func TestCreate_DuplicateJMBG(t *testing.T) {
	svc, db, pub := newService(t)
	db.ExpectQuery("INSERT INTO patients").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "patients_jmbg_key"})

	_, err := svc.Create(context.Background(), testutil.Actor(permissions.RoleNurse), &domain.Input{FirstName: "A", LastName: "B"})

	assert.True(t, errors.Is(err, errors.ErrConflict))
	pub.AssertNoEventsPublished(t)
}

func TestCreate_RequiresActor(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Create(context.Background(), nil, &domain.Input{FirstName: "A", LastName: "B"})

	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestDeactivate(t *testing.T) {
	svc, db, pub := newService(t)
	db.ExpectQuery("UPDATE patients SET is_active = false WHERE id = $1").
		WithArgs(patientID).
		WillReturnRows(patientRow(testutil.MockRows(patientCols...), patientID, "Ana", "Ilić", nil, false))

	patient, err := svc.Deactivate(context.Background(), testutil.Actor(permissions.RoleDoctor), patientID)

	require.NoError(t, err)
	assert.False(t, patient.IsActive)
	pub.AssertEventPublished(t, messaging.EventPatientDeactivated)
}

func TestPublishFailureDoesNotFailTheRequest(t *testing.T) {
	svc, db, pub := newService(t)
	pub.Err = assert.AnError
	db.ExpectQuery("UPDATE patients SET").
		WillReturnRows(patientRow(testutil.MockRows(patientCols...), patientID, "Ana", "Ilić", nil, true))

	_, err := svc.Update(context.Background(), testutil.Actor(permissions.RoleDoctor), patientID, &domain.Input{FirstName: "Ana", LastName: "Ilić"})

	assert.NoError(t, err)
}

func TestSummary(t *testing.T) {
	svc, db, _ := newService(t)
	now := time.Now()
	rows := testutil.MockRows(patientCols...).
		AddRow("p1", "A", "B", nil, nil, nil, nil, nil, nil, nil, nil, nil, "polen", nil, true, now, now).
		AddRow("p2", "C", "D", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, "astma", true, now, now)
	db.ExpectQuery("FROM patients WHERE is_active = true").WillReturnRows(rows)

	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Total: 2, WithAllergies: 1, WithChronicConditions: 1}, summary)
}

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/service"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/i18n"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
	"github.com/pulsmedic/pulsmedic-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patientID = "5c1f4a52-9a43-4c61-8b0e-3e1a7f7d2b10"

type stubService struct {
	params  service.ListParams
	created *domain.Input
	actor   *actor.Actor
	getErr  error
}

func (s *stubService) List(_ context.Context, params service.ListParams) ([]domain.Patient, error) {
	s.params = params
	return []domain.Patient{{ID: patientID, FirstName: "Ana", LastName: "Ilić", IsActive: true}}, nil
}

func (s *stubService) Summary(context.Context) (domain.Summary, error) {
	return domain.Summary{Total: 3, WithAllergies: 1}, nil
}

func (s *stubService) Get(_ context.Context, id string) (*domain.Patient, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &domain.Patient{ID: id, FirstName: "Ana", LastName: "Ilić"}, nil
}

func (s *stubService) Create(_ context.Context, a *actor.Actor, in *domain.Input) (*domain.Patient, error) {
	s.actor = a
	s.created = in
	return &domain.Patient{ID: patientID, FirstName: in.FirstName, LastName: in.LastName, IsActive: true}, nil
}

func (s *stubService) Update(_ context.Context, a *actor.Actor, id string, in *domain.Input) (*domain.Patient, error) {
	return &domain.Patient{ID: id, FirstName: in.FirstName, LastName: in.LastName, IsActive: true}, nil
}

func (s *stubService) Deactivate(_ context.Context, a *actor.Actor, id string) (*domain.Patient, error) {
	return &domain.Patient{ID: id, FirstName: "Ana", LastName: "Ilić", IsActive: false}, nil
}

func newRouter(svc PatientService) http.Handler {
	h := NewPatientHandler(svc, logger.Nop())
	r := chi.NewRouter()
	r.Use(i18n.Middleware)
	r.Route("/patients", h.Routes)
	return r
}

func TestList_PassesFilters(t *testing.T) {
	svc := &stubService{}
	req := testutil.NewHTTPRequest(http.MethodGet, "/patients?q=ilic&include_inactive=true", nil)

	rr := testutil.ExecuteRequest(newRouter(svc), req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, service.ListParams{Query: "ilic", IncludeInactive: true}, svc.params)
	env := testutil.DecodeEnvelope[[]domain.Patient](t, rr)
	require.Len(t, env.Data, 1)
	assert.Equal(t, 1, env.Meta.Total)
}

func TestSummary(t *testing.T) {
	rr := testutil.ExecuteRequest(newRouter(&stubService{}), testutil.NewHTTPRequest(http.MethodGet, "/patients/summary", nil))

	testutil.AssertStatus(t, rr, http.StatusOK)
	env := testutil.DecodeEnvelope[domain.Summary](t, rr)
	assert.Equal(t, 3, env.Data.Total)
}

func TestGet_MalformedIDIsNotFound(t *testing.T) {
	rr := testutil.ExecuteRequest(newRouter(&stubService{}), testutil.NewHTTPRequest(http.MethodGet, "/patients/not-a-uuid", nil))

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestGet_Localized404(t *testing.T) {
	svc := &stubService{getErr: errors.NotFound("patient")}
	req := testutil.NewHTTPRequest(http.MethodGet, "/patients/"+patientID, nil)
	req.Header.Set("Accept-Language", "sr")

	rr := testutil.ExecuteRequest(newRouter(svc), req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
	env := testutil.DecodeEnvelope[any](t, rr)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Pacijent nije pronađen", env.Error.Message)
}

func TestCreate(t *testing.T) {
	svc := &stubService{}
	a := testutil.Actor(permissions.RoleReceptionist)
	req := testutil.WithActor(testutil.NewHTTPRequest(http.MethodPost, "/patients", map[string]string{
		"first_name": "Ana",
		"last_name":  "Ilić",
		"jmbg":       "0101990715007",
	}), a)

	rr := testutil.ExecuteRequest(newRouter(svc), req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	assert.Same(t, a, svc.actor)
	require.NotNil(t, svc.created.JMBG)
	assert.Equal(t, "0101990715007", *svc.created.JMBG)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing first name", map[string]string{"last_name": "Ilić"}, "first_name"},
		{"missing last name", map[string]string{"first_name": "Ana"}, "last_name"},
		{"bad email", map[string]string{"first_name": "Ana", "last_name": "Ilić", "email": "nope"}, "email"},
		{"jmbg too long", map[string]string{"first_name": "Ana", "last_name": "Ilić", "jmbg": "01019907150071"}, "jmbg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			req := testutil.WithActor(testutil.NewHTTPRequest(http.MethodPost, "/patients", tt.body), testutil.Actor(permissions.RoleNurse))

			rr := testutil.ExecuteRequest(newRouter(svc), req)

			testutil.AssertStatus(t, rr, http.StatusBadRequest)
			env := testutil.DecodeEnvelope[any](t, rr)
			require.NotNil(t, env.Error)
			assert.Contains(t, env.Error.Details, tt.field)
			assert.Nil(t, svc.created)
		})
	}
}

func TestDelete_ReturnsDeactivatedPatient(t *testing.T) {
	req := testutil.WithActor(testutil.NewHTTPRequest(http.MethodDelete, "/patients/"+patientID, nil), testutil.Actor(permissions.RoleDoctor))

	rr := testutil.ExecuteRequest(newRouter(&stubService{}), req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	env := testutil.DecodeEnvelope[domain.Patient](t, rr)
	assert.Equal(t, patientID, env.Data.ID)
	assert.False(t, env.Data.IsActive)
}

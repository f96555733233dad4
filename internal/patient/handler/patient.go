package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/service"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
)

// PatientService is the subset of the patient service the handler needs
type PatientService interface {
	List(ctx context.Context, params service.ListParams) ([]domain.Patient, error)
	Summary(ctx context.Context) (domain.Summary, error)
	Get(ctx context.Context, id string) (*domain.Patient, error)
	Create(ctx context.Context, a *actor.Actor, in *domain.Input) (*domain.Patient, error)
	Update(ctx context.Context, a *actor.Actor, id string, in *domain.Input) (*domain.Patient, error)
	Deactivate(ctx context.Context, a *actor.Actor, id string) (*domain.Patient, error)
}

// PatientHandler handles patient endpoints
type PatientHandler struct {
	service PatientService
	logger  *logger.Logger
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(svc PatientService, log *logger.Logger) *PatientHandler {
	return &PatientHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the patient endpoints
func (h *PatientHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/summary", h.Summary)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List lists active patients, optionally filtered by ?q= and widened by ?include_inactive=true
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.List(r.Context(), service.ListParams{
		Query:           r.URL.Query().Get("q"),
		IncludeInactive: httputil.QueryBool(r, "include_inactive"),
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, patients)
}

// Summary returns roster counts
func (h *PatientHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}

// Get gets a patient by ID
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "patient")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	patient, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, patient)
}

// Create registers a patient
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.Input
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	patient, err := h.service.Create(r.Context(), actor.FromContext(r.Context()), &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, patient)
}

// Update updates a patient
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "patient")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var in domain.Input
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	patient, err := h.service.Update(r.Context(), actor.FromContext(r.Context()), id, &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, patient)
}

// Delete deactivates a patient and returns the deactivated record
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "patient")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	patient, err := h.service.Deactivate(r.Context(), actor.FromContext(r.Context()), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, patient)
}

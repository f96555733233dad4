package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/domain"
	profiledomain "github.com/pulsmedic/pulsmedic-backend/internal/profile/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
)

// AppointmentService is the subset of the appointment service the handler needs
type AppointmentService interface {
	List(ctx context.Context, filter domain.Filter) ([]domain.Appointment, error)
	Agenda(ctx context.Context, day *dates.Date) (domain.Agenda, error)
	Doctors(ctx context.Context) ([]profiledomain.Profile, error)
	Get(ctx context.Context, id string) (*domain.Appointment, error)
	Create(ctx context.Context, a *actor.Actor, in *domain.Input) (*domain.Appointment, error)
	Update(ctx context.Context, a *actor.Actor, id string, in *domain.Input) (*domain.Appointment, error)
	SetStatus(ctx context.Context, a *actor.Actor, id string, status domain.Status) (*domain.Appointment, error)
	Delete(ctx context.Context, a *actor.Actor, id string) error
}

// AppointmentHandler handles appointment endpoints
type AppointmentHandler struct {
	service AppointmentService
	logger  *logger.Logger
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(svc AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the appointment endpoints
func (h *AppointmentHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/agenda", h.Agenda)
	r.Get("/doctors", h.Doctors)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/status", h.SetStatus)
	r.Delete("/{id}", h.Delete)
}

// List lists appointments, optionally for one ?date= and one ?doctor_id=
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	day, err := dateQuery(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	filter := domain.Filter{Date: day, DoctorID: r.URL.Query().Get("doctor_id")}
	appointments, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, appointments)
}

// Agenda returns today's and upcoming appointments relative to ?date=
func (h *AppointmentHandler) Agenda(w http.ResponseWriter, r *http.Request) {
	day, err := dateQuery(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	agenda, err := h.service.Agenda(r.Context(), day)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, agenda)
}

// Doctors lists the doctors available for booking
func (h *AppointmentHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.service.Doctors(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, doctors)
}

// Get gets an appointment by ID
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "appointment")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	appointment, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, appointment)
}

// Create books an appointment
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.Input
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	appointment, err := h.service.Create(r.Context(), actor.FromContext(r.Context()), &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, appointment)
}

// Update updates an appointment
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "appointment")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var in domain.Input
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	appointment, err := h.service.Update(r.Context(), actor.FromContext(r.Context()), id, &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, appointment)
}

// SetStatus changes an appointment's status
func (h *AppointmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "appointment")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var in domain.StatusInput
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	appointment, err := h.service.SetStatus(r.Context(), actor.FromContext(r.Context()), id, in.Status)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, appointment)
}

// Delete removes an appointment
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "appointment")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor.FromContext(r.Context()), id); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}

func dateQuery(r *http.Request) (*dates.Date, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return nil, nil
	}
	day, err := dates.Parse(raw)
	if err != nil {
		return nil, errors.Validation(map[string]string{"date": err.Error()})
	}
	return &day, nil
}

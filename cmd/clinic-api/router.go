package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	adminhandler "github.com/pulsmedic/pulsmedic-backend/internal/admin/handler"
	appointmenthandler "github.com/pulsmedic/pulsmedic-backend/internal/appointment/handler"
	authhandler "github.com/pulsmedic/pulsmedic-backend/internal/auth/handler"
	authmiddleware "github.com/pulsmedic/pulsmedic-backend/internal/auth/middleware"
	dashboardhandler "github.com/pulsmedic/pulsmedic-backend/internal/dashboard/handler"
	inventoryhandler "github.com/pulsmedic/pulsmedic-backend/internal/inventory/handler"
	patienthandler "github.com/pulsmedic/pulsmedic-backend/internal/patient/handler"
	"github.com/pulsmedic/pulsmedic-backend/pkg/config"
	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
	"github.com/pulsmedic/pulsmedic-backend/pkg/i18n"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

// handlers groups the HTTP handlers mounted under /api/v1
type handlers struct {
	auth         *authhandler.AuthHandler
	dashboard    *dashboardhandler.DashboardHandler
	patients     *patienthandler.PatientHandler
	appointments *appointmenthandler.AppointmentHandler
	inventory    *inventoryhandler.InventoryHandler
	admin        *adminhandler.AdminHandler
}

// healthFunc reports the state of each backing component
type healthFunc func(ctx context.Context) map[string]interface{}

func newRouter(cfg *config.Config, log *logger.Logger, authenticator authmiddleware.Authenticator, h handlers, health healthFunc) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Accept-Language"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(i18n.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		components := health(r.Context())
		status := "healthy"
		for _, c := range components {
			if m, ok := c.(map[string]string); ok && m["status"] == "down" {
				status = "degraded"
			}
		}

		body := map[string]interface{}{"status": status, "service": serviceName}
		for name, c := range components {
			body[name] = c
		}
		httputil.JSON(w, http.StatusOK, body)
	})

	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		authenticate := authmiddleware.Authenticate(authenticator, log)

		r.Route("/auth", func(r chi.Router) {
			h.auth.PublicRoutes(r)
			r.With(authenticate).Group(h.auth.ProtectedRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.With(scoped(permissions.DashboardRead, "")).Route("/dashboard", h.dashboard.Routes)
			r.With(scoped(permissions.PatientsRead, permissions.PatientsWrite)).Route("/patients", h.patients.Routes)
			r.With(scoped(permissions.AppointmentsRead, permissions.AppointmentsWrite)).Route("/appointments", h.appointments.Routes)
			r.With(scoped(permissions.InventoryRead, permissions.InventoryWrite)).Route("/inventory", h.inventory.Routes)

			r.Route("/admin", func(r chi.Router) {
				r.Use(authmiddleware.RequireRole(permissions.RoleAdmin))
				h.admin.Routes(r)
			})
		})
	})

	return r
}

// scoped checks the read permission on safe methods and the write permission on the rest
func scoped(read, write string) func(http.Handler) http.Handler {
	readOnly := authmiddleware.RequirePermission(read)
	readWrite := authmiddleware.RequirePermission(write)
	return func(next http.Handler) http.Handler {
		readNext, writeNext := readOnly(next), readWrite(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				readNext.ServeHTTP(w, r)
			default:
				writeNext.ServeHTTP(w, r)
			}
		})
	}
}

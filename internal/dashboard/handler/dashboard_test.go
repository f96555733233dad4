package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pulsmedic/pulsmedic-backend/internal/dashboard/service"
	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/i18n"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type stubStats struct {
	err error
}

func (s stubStats) Stats(context.Context) (*service.Stats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.Stats{
		Date:                  dates.New(2024, 3, 15),
		AppointmentsToday:     4,
		ActivePatients:        120,
		LowStockItems:         2,
		ScheduledAppointments: 9,
		StockValue:            decimal.RequireFromString("99.90"),
	}, nil
}

func newRouter(svc StatsService) http.Handler {
	r := chi.NewRouter()
	r.Use(i18n.Middleware)
	r.Route("/dashboard", NewDashboardHandler(svc, logger.Nop()).Routes)
	return r
}

func TestGetStats(t *testing.T) {
	rr := testutil.ExecuteRequest(newRouter(stubStats{}), testutil.NewHTTPRequest(http.MethodGet, "/dashboard/stats", nil))

	testutil.AssertStatus(t, rr, http.StatusOK)
	env := testutil.DecodeEnvelope[map[string]interface{}](t, rr)
	assert.Equal(t, "2024-03-15", env.Data["date"])
	assert.Equal(t, float64(4), env.Data["appointments_today"])
	assert.Equal(t, float64(120), env.Data["active_patients"])
	assert.Equal(t, float64(2), env.Data["low_stock_items"])
	assert.Equal(t, float64(9), env.Data["scheduled_appointments"])
	assert.Equal(t, "99.9", env.Data["stock_value"])
}

func TestGetStats_Error(t *testing.T) {
	rr := testutil.ExecuteRequest(newRouter(stubStats{err: errors.Internal("database unavailable")}), testutil.NewHTTPRequest(http.MethodGet, "/dashboard/stats", nil))

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
}

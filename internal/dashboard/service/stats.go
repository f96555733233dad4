// Package service computes the dashboard aggregates.
package service

import (
	"context"
	"time"

	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// AppointmentCounter counts appointments
type AppointmentCounter interface {
	CountOnDate(ctx context.Context, day dates.Date) (int, error)
	CountByStatus(ctx context.Context, status domain.Status) (int, error)
}

// PatientCounter counts patients
type PatientCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// StockCounter aggregates inventory stock
type StockCounter interface {
	CountLowStock(ctx context.Context) (int, error)
	TotalStockValue(ctx context.Context) (decimal.Decimal, error)
}

// Stats are the dashboard figures for one day
type Stats struct {
	Date                  dates.Date      `json:"date"`
	AppointmentsToday     int             `json:"appointments_today"`
	ActivePatients        int             `json:"active_patients"`
	LowStockItems         int             `json:"low_stock_items"`
	ScheduledAppointments int             `json:"scheduled_appointments"`
	StockValue            decimal.Decimal `json:"stock_value"`
}

// DashboardService computes dashboard statistics
type DashboardService struct {
	appointments AppointmentCounter
	patients     PatientCounter
	stock        StockCounter
	logger       *logger.Logger
	now          func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(appointments AppointmentCounter, patients PatientCounter, stock StockCounter, log *logger.Logger) *DashboardService {
	return &DashboardService{
		appointments: appointments,
		patients:     patients,
		stock:        stock,
		logger:       log.WithComponent("dashboard"),
		now:          time.Now,
	}
}

// Stats runs the dashboard counts concurrently. Any failing count fails the whole result.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Date: dates.Of(s.now())}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.AppointmentsToday, err = s.appointments.CountOnDate(ctx, stats.Date)
		return err
	})
	g.Go(func() (err error) {
		stats.ScheduledAppointments, err = s.appointments.CountByStatus(ctx, domain.StatusScheduled)
		return err
	})
	g.Go(func() (err error) {
		stats.ActivePatients, err = s.patients.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.LowStockItems, err = s.stock.CountLowStock(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.StockValue, err = s.stock.TotalStockValue(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to compute dashboard stats")
		return nil, err
	}
	return stats, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
)

const (
	dashboardCacheTTLSeconds = 60
	upcomingLimit            = 5
)

// DashboardCacheKey names the cached dashboard of an agent
func DashboardCacheKey(agentID string) string {
	return "dashboard:" + agentID
}

// DashboardService aggregates an agent's bookings and revenue
type DashboardService struct {
	appointments repositories.AppointmentRepository
	payments     repositories.PaymentRepository
	cache        providers.CacheProvider
	windowDays   int
	now          func() time.Time
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(
	appointments repositories.AppointmentRepository,
	payments repositories.PaymentRepository,
	cache providers.CacheProvider,
	windowDays int,
) *DashboardService {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &DashboardService{
		appointments: appointments,
		payments:     payments,
		cache:        cache,
		windowDays:   windowDays,
		now:          time.Now,
	}
}

// Periods returns the current window ending today and the window of equal
// length before it
func (s *DashboardService) Periods() (current, previous repositories.DateRange) {
	today := s.now().UTC()
	currentFrom := today.AddDate(0, 0, -(s.windowDays - 1))
	previousTo := currentFrom.AddDate(0, 0, -1)
	previousFrom := previousTo.AddDate(0, 0, -(s.windowDays - 1))

	current = repositories.DateRange{From: currentFrom.Format(entities.DateLayout), To: today.Format(entities.DateLayout)}
	previous = repositories.DateRange{From: previousFrom.Format(entities.DateLayout), To: previousTo.Format(entities.DateLayout)}
	return current, previous
}

// AgentDashboard returns the agent's dashboard. Bookings are counted by the
// day they were made and revenue by the day it was paid.
func (s *DashboardService) AgentDashboard(ctx context.Context, agentID string) (*entities.AgentDashboard, error) {
	logger := observability.LoggerFromContext(ctx)
	key := DashboardCacheKey(agentID)

	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			var cached entities.AgentDashboard
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, providers.ErrCacheMiss) {
			logger.Warn().Err(err).Str("key", key).Msg("Dashboard cache read failed")
		}
	}

	current, previous := s.Periods()

	var (
		currentCounts, previousCounts []entities.StatusCount
		currentRevenue, prevRevenue   float64
		unpaid                        []*entities.Appointment
		upcoming                      []*entities.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		currentCounts, err = s.appointments.CountByStatus(gctx, agentID, current)
		return err
	})
	g.Go(func() error {
		var err error
		previousCounts, err = s.appointments.CountByStatus(gctx, agentID, previous)
		return err
	})
	g.Go(func() error {
		var err error
		currentRevenue, err = s.payments.SumPaid(gctx, agentID, current)
		return err
	})
	g.Go(func() error {
		var err error
		prevRevenue, err = s.payments.SumPaid(gctx, agentID, previous)
		return err
	})
	g.Go(func() error {
		var err error
		unpaid, err = s.appointments.ListUnpaid(gctx, agentID)
		return err
	})
	g.Go(func() error {
		var err error
		upcoming, err = s.appointments.ListUpcoming(gctx, agentID, current.To, upcomingLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	statusCounts := make(map[entities.AppointmentStatus]int, 5)
	for _, status := range []entities.AppointmentStatus{
		entities.AppointmentStatusPending,
		entities.AppointmentStatusConfirmed,
		entities.AppointmentStatusCancelled,
		entities.AppointmentStatusCompleted,
		entities.AppointmentStatusNoShow,
	} {
		statusCounts[status] = 0
	}
	for _, row := range currentCounts {
		statusCounts[row.Status] = row.Count
	}

	currentTotal, currentConfirmed := summarizeCounts(currentCounts)
	previousTotal, previousConfirmed := summarizeCounts(previousCounts)

	if upcoming == nil {
		upcoming = []*entities.Appointment{}
	}

	dashboard := &entities.AgentDashboard{
		PeriodFrom:            current.From,
		PeriodTo:              current.To,
		StatusCounts:          statusCounts,
		TotalAppointments:     entities.NewPeriodMetric(float64(currentTotal), float64(previousTotal)),
		ConfirmedAppointments: entities.NewPeriodMetric(float64(currentConfirmed), float64(previousConfirmed)),
		Revenue:               entities.NewPeriodMetric(currentRevenue, prevRevenue),
		UnpaidCount:           len(unpaid),
		Upcoming:              upcoming,
	}

	if s.cache != nil {
		if data, err := json.Marshal(dashboard); err == nil {
			if err := s.cache.Set(ctx, key, data, dashboardCacheTTLSeconds); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("Dashboard cache write failed")
			}
		}
	}
	return dashboard, nil
}

// summarizeCounts returns the total and the number that reached confirmation.
// COMPLETED and NO_SHOW appointments were confirmed before moving on.
func summarizeCounts(rows []entities.StatusCount) (total, confirmed int) {
	for _, row := range rows {
		total += row.Count
		switch row.Status {
		case entities.AppointmentStatusConfirmed, entities.AppointmentStatusCompleted, entities.AppointmentStatusNoShow:
			confirmed += row.Count
		}
	}
	return total, confirmed
}

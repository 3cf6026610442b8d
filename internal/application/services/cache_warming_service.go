package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

const (
	warmListPages = 3
	warmSlotDays  = 7
)

// CacheWarmingService preloads the doctor reads agents hit first: the
// specialization list, the first pages of the doctor directory and the
// coming week's slots of the doctors on the first page.
type CacheWarmingService struct {
	doctorRepo    repositories.DoctorRepository
	doctorService *DoctorService
	now           func() time.Time
}

// NewCacheWarmingService creates a new cache warming service. doctorRepo
// should be the caching repository so that reads populate the cache.
func NewCacheWarmingService(doctorRepo repositories.DoctorRepository, doctorService *DoctorService) *CacheWarmingService {
	return &CacheWarmingService{
		doctorRepo:    doctorRepo,
		doctorService: doctorService,
		now:           time.Now,
	}
}

// WarmCache runs one warming pass. Individual failures are logged and skipped.
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()
	log.Debug().Msg("Starting cache warming")

	if _, err := s.doctorRepo.Specializations(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to warm specializations")
	}

	var firstPage []*entities.Doctor
	for page := 1; page <= warmListPages; page++ {
		params := pagination.FromQuery(url.Values{"page": {strconv.Itoa(page)}}, DoctorSorting)
		doctors, _, err := s.doctorRepo.List(ctx, repositories.DoctorFilter{Page: params})
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("Failed to warm doctor list page")
			continue
		}
		if page == 1 {
			firstPage = doctors
		}
		if len(doctors) < params.Limit {
			break
		}
	}

	warmed := 0
	today := s.now().UTC()
	for _, doctor := range firstPage {
		for day := 0; day < warmSlotDays; day++ {
			date := today.AddDate(0, 0, day).Format(entities.DateLayout)
			if len(doctor.Availability.SlotsOn(date)) == 0 {
				continue
			}
			if _, err := s.doctorService.AvailableSlots(ctx, doctor.ID, date); err != nil {
				log.Warn().Err(err).Str("doctor_id", doctor.ID).Str("date", date).Msg("Failed to warm doctor slots")
				continue
			}
			warmed++
		}
	}

	log.Info().
		Int("doctors", len(firstPage)).
		Int("slot_days", warmed).
		Dur("duration", time.Since(start)).
		Msg("Cache warming completed")
	return nil
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping cache warming service")
				return
			case <-ticker.C:
				if err := s.WarmCache(ctx); err != nil {
					log.Warn().Err(err).Msg("Periodic cache warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("Started periodic cache warming")
}

package database

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
)

// Cache TTLs (in seconds)
const (
	doctorByIDTTL         = 300
	doctorsListTTL        = 120
	specializationsTTL    = 600
	doctorsListKeyPattern = "doctors:*"
)

// CachedDoctorAdapter wraps a DoctorRepository with a read-through cache.
// Every write drops the doctor's entry and all cached listings.
type CachedDoctorAdapter struct {
	adapter repositories.DoctorRepository
	cache   providers.CacheProvider
}

// NewCachedDoctorAdapter creates a new cached doctor adapter
func NewCachedDoctorAdapter(adapter repositories.DoctorRepository, cache providers.CacheProvider) repositories.DoctorRepository {
	return &CachedDoctorAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

func doctorCacheKey(id string) string {
	return fmt.Sprintf("doctor:%s", id)
}

func doctorsListCacheKey(filter repositories.DoctorFilter) string {
	raw, _ := json.Marshal(filter)
	sum := sha1.Sum(raw)
	return "doctors:list:" + hex.EncodeToString(sum[:])
}

const specializationsCacheKey = "doctors:specializations"

type cachedDoctorPage struct {
	Doctors []*entities.Doctor `json:"doctors"`
	Total   int                `json:"total"`
}

// GetByID retrieves a doctor by ID with caching
func (a *CachedDoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	key := doctorCacheKey(id)

	var doctor entities.Doctor
	if a.load(ctx, key, &doctor) {
		return &doctor, nil
	}

	found, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.store(ctx, key, found, doctorByIDTTL)
	return found, nil
}

// List searches doctors with caching
func (a *CachedDoctorAdapter) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, int, error) {
	key := doctorsListCacheKey(filter)

	var page cachedDoctorPage
	if a.load(ctx, key, &page) {
		return page.Doctors, page.Total, nil
	}

	doctors, total, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	a.store(ctx, key, cachedDoctorPage{Doctors: doctors, Total: total}, doctorsListTTL)
	return doctors, total, nil
}

// Specializations lists distinct specializations with caching
func (a *CachedDoctorAdapter) Specializations(ctx context.Context) ([]string, error) {
	var specializations []string
	if a.load(ctx, specializationsCacheKey, &specializations) {
		return specializations, nil
	}

	specializations, err := a.adapter.Specializations(ctx)
	if err != nil {
		return nil, err
	}
	a.store(ctx, specializationsCacheKey, specializations, specializationsTTL)
	return specializations, nil
}

// Create creates a doctor and invalidates cached listings
func (a *CachedDoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	if err := a.adapter.Create(ctx, doctor); err != nil {
		return err
	}
	a.invalidate(ctx, doctor.ID)
	return nil
}

// Update updates a doctor and invalidates its cache entries
func (a *CachedDoctorAdapter) Update(ctx context.Context, doctor *entities.Doctor) error {
	if err := a.adapter.Update(ctx, doctor); err != nil {
		return err
	}
	a.invalidate(ctx, doctor.ID)
	return nil
}

func (a *CachedDoctorAdapter) load(ctx context.Context, key string, dest interface{}) bool {
	cached, err := a.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(cached, dest); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached doctor data")
		return false
	}
	return true
}

func (a *CachedDoctorAdapter) store(ctx context.Context, key string, value interface{}, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to cache doctor data")
	}
}

func (a *CachedDoctorAdapter) invalidate(ctx context.Context, id string) {
	logger := observability.LoggerFromContext(ctx)
	if err := a.cache.Delete(ctx, doctorCacheKey(id)); err != nil {
		logger.Warn().Err(err).Str("doctor_id", id).Msg("Failed to invalidate doctor cache")
	}
	if err := a.cache.DeletePattern(ctx, doctorsListKeyPattern); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate doctor listings cache")
	}
}

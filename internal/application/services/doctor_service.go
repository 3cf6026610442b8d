package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

const slotsCacheTTLSeconds = 60

// DoctorSorting is the sort allow-list for doctor listings
var DoctorSorting = pagination.Sorting{
	Allowed: map[string]string{
		"name":            "name",
		"specialization":  "specialization",
		"hospital":        "hospital",
		"consultationFee": "consultation_fee",
		"createdAt":       "created_at",
	},
	DefaultKey: "createdAt",
	DefaultDir: pagination.SortDesc,
}

// DoctorInput creates a doctor
type DoctorInput struct {
	Name            string                        `json:"name" validate:"required,min=2,max=255"`
	Email           string                        `json:"email" validate:"required,email"`
	Phone           string                        `json:"phone" validate:"required,min=7,max=20"`
	Specialization  string                        `json:"specialization" validate:"required,max=255"`
	Hospital        string                        `json:"hospital" validate:"required,max=255"`
	Qualifications  string                        `json:"qualifications,omitempty" validate:"max=1000"`
	ExperienceYears int                           `json:"experienceYears" validate:"gte=0,lte=80"`
	ConsultationFee float64                       `json:"consultationFee" validate:"gte=0"`
	Availability    entities.AvailabilityCalendar `json:"availability" validate:"dive"`
}

// UpdateDoctorInput changes a doctor. Nil fields are left as they are.
type UpdateDoctorInput struct {
	Name            *string  `json:"name,omitempty" validate:"omitnil,min=2,max=255"`
	Email           *string  `json:"email,omitempty" validate:"omitnil,email"`
	Phone           *string  `json:"phone,omitempty" validate:"omitnil,min=7,max=20"`
	Specialization  *string  `json:"specialization,omitempty" validate:"omitnil,min=1,max=255"`
	Hospital        *string  `json:"hospital,omitempty" validate:"omitnil,min=1,max=255"`
	Qualifications  *string  `json:"qualifications,omitempty" validate:"omitempty,max=1000"`
	ExperienceYears *int     `json:"experienceYears,omitempty" validate:"omitempty,gte=0,lte=80"`
	ConsultationFee *float64 `json:"consultationFee,omitempty" validate:"omitempty,gte=0"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

func (in DoctorInput) normalized() DoctorInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Specialization = strings.TrimSpace(in.Specialization)
	in.Hospital = strings.TrimSpace(in.Hospital)
	in.Qualifications = strings.TrimSpace(in.Qualifications)
	return in
}

func (in UpdateDoctorInput) normalized() UpdateDoctorInput {
	in.Name = trimmed(in.Name)
	in.Phone = trimmed(in.Phone)
	in.Specialization = trimmed(in.Specialization)
	in.Hospital = trimmed(in.Hospital)
	in.Qualifications = trimmed(in.Qualifications)
	if email := trimmed(in.Email); email != nil {
		lowered := strings.ToLower(*email)
		in.Email = &lowered
	}
	return in
}

type availabilityInput struct {
	Availability entities.AvailabilityCalendar `json:"availability" validate:"dive"`
}

// DoctorSlots lists the slots still bookable for a doctor on one day
type DoctorSlots struct {
	DoctorID  string   `json:"doctorId"`
	Date      string   `json:"date"`
	Available []string `json:"available"`
	Booked    []string `json:"booked"`
}

// DoctorService handles doctor reference data
type DoctorService struct {
	repo            repositories.DoctorRepository
	appointmentRepo repositories.AppointmentRepository
	cache           providers.CacheProvider
	now             func() time.Time
}

// NewDoctorService creates a new doctor service. cache may be nil.
func NewDoctorService(repo repositories.DoctorRepository, appointmentRepo repositories.AppointmentRepository, cache providers.CacheProvider) *DoctorService {
	return &DoctorService{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		cache:           cache,
		now:             time.Now,
	}
}

// SlotsCacheKey names the cached slot list of a doctor on date
func SlotsCacheKey(doctorID, date string) string {
	return fmt.Sprintf("slots:%s:%s", doctorID, date)
}

// Create adds a doctor
func (s *DoctorService) Create(ctx context.Context, input DoctorInput) (*entities.Doctor, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	availability := input.Availability
	if availability == nil {
		availability = entities.AvailabilityCalendar{}
	}

	now := s.now().UTC()
	doctor := &entities.Doctor{
		ID:              uuid.New().String(),
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Specialization:  input.Specialization,
		Hospital:        input.Hospital,
		Qualifications:  input.Qualifications,
		ExperienceYears: input.ExperienceYears,
		ConsultationFee: input.ConsultationFee,
		Availability:    availability,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	observability.LoggerFromContext(ctx).Info().Str("doctor_id", doctor.ID).Msg("Doctor created")
	return doctor, nil
}

// Get returns a doctor. Inactive doctors are hidden unless includeInactive is set.
func (s *DoctorService) Get(ctx context.Context, id string, includeInactive bool) (*entities.Doctor, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive && !includeInactive {
		return nil, apperrors.NewNotFoundError("doctor not found")
	}
	return doctor, nil
}

// Update edits a doctor's profile
func (s *DoctorService) Update(ctx context.Context, id string, input UpdateDoctorInput) (*entities.Doctor, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&doctor.Name, input.Name)
	setString(&doctor.Phone, input.Phone)
	setString(&doctor.Specialization, input.Specialization)
	setString(&doctor.Hospital, input.Hospital)
	setString(&doctor.Qualifications, input.Qualifications)
	setString(&doctor.Email, input.Email)
	if input.ExperienceYears != nil {
		doctor.ExperienceYears = *input.ExperienceYears
	}
	if input.ConsultationFee != nil {
		doctor.ConsultationFee = *input.ConsultationFee
	}
	if input.IsActive != nil {
		doctor.IsActive = *input.IsActive
	}

	doctor.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	s.invalidateSlots(ctx, id)
	return doctor, nil
}

// SetAvailability replaces a doctor's availability calendar
func (s *DoctorService) SetAvailability(ctx context.Context, id string, calendar entities.AvailabilityCalendar) (*entities.Doctor, error) {
	if calendar == nil {
		calendar = entities.AvailabilityCalendar{}
	}
	if err := validateInput(availabilityInput{Availability: calendar}); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(calendar))
	for _, day := range calendar {
		if _, dup := seen[day.Date]; dup {
			return nil, apperrors.NewValidationError(fmt.Sprintf("availability lists %s more than once", day.Date))
		}
		seen[day.Date] = struct{}{}
	}

	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor.Availability = calendar
	doctor.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}

	s.invalidateSlots(ctx, id)
	return doctor, nil
}

func (s *DoctorService) invalidateSlots(ctx context.Context, doctorID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, SlotsCacheKey(doctorID, "*")); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("doctor_id", doctorID).Msg("Failed to invalidate slot cache")
	}
}

// Deactivate hides a doctor from booking. Existing appointments are kept.
func (s *DoctorService) Deactivate(ctx context.Context, id string) (*entities.Doctor, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return doctor, nil
	}
	doctor.IsActive = false
	doctor.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	s.invalidateSlots(ctx, id)
	observability.LoggerFromContext(ctx).Info().Str("doctor_id", id).Msg("Doctor deactivated")
	return doctor, nil
}

// List returns one page of doctors
func (s *DoctorService) List(ctx context.Context, filter repositories.DoctorFilter) (pagination.Page[*entities.Doctor], error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*entities.Doctor]{}, err
	}
	return pagination.NewPage(items, total, filter.Page), nil
}

// Specializations lists the distinct specializations of active doctors
func (s *DoctorService) Specializations(ctx context.Context) ([]string, error) {
	specializations, err := s.repo.Specializations(ctx)
	if err != nil {
		return nil, err
	}
	if specializations == nil {
		specializations = []string{}
	}
	return specializations, nil
}

// AvailableSlots returns the doctor's offered slots on date minus the slots
// held by PENDING or CONFIRMED appointments
func (s *DoctorService) AvailableSlots(ctx context.Context, id, date string) (*DoctorSlots, error) {
	if _, err := time.Parse(entities.DateLayout, date); err != nil {
		return nil, apperrors.NewValidationError("date must be a date formatted YYYY-MM-DD")
	}

	key := SlotsCacheKey(id, date)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var cached DoctorSlots
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Slot cache read failed")
		}
	}

	doctor, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	held, err := s.appointmentRepo.HeldSlots(ctx, id, date)
	if err != nil {
		return nil, err
	}
	heldSet := make(map[string]struct{}, len(held))
	for _, slot := range held {
		heldSet[slot] = struct{}{}
	}

	result := &DoctorSlots{
		DoctorID:  id,
		Date:      date,
		Available: []string{},
		Booked:    []string{},
	}
	for _, slot := range doctor.Availability.SlotsOn(date) {
		if _, taken := heldSet[slot]; taken {
			result.Booked = append(result.Booked, slot)
			continue
		}
		result.Available = append(result.Available, slot)
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, data, slotsCacheTTLSeconds); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Slot cache write failed")
			}
		}
	}
	return result, nil
}

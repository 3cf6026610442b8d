package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

func TestAvailabilityFrom(t *testing.T) {
	// 2030-01-18 is a Friday
	start := time.Date(2030, 1, 18, 0, 0, 0, 0, time.UTC)
	calendar := availabilityFrom(start, 4)

	require.Len(t, calendar, 4)
	assert.Equal(t, "2030-01-18", calendar[0].Date)
	assert.True(t, calendar[0].IsAvailable)
	assert.False(t, calendar[1].IsAvailable, "saturday")
	assert.False(t, calendar[2].IsAvailable, "sunday")
	assert.True(t, calendar[3].IsAvailable)
	assert.Equal(t, seedSlots, calendar[3].TimeSlots)

	calendar[0].TimeSlots[0] = "07:00"
	assert.Equal(t, "09:00", calendar[1].TimeSlots[0], "days do not share slot slices")
}

func TestSeedDoctors_AreValidAndDistinct(t *testing.T) {
	calendar := availabilityFrom(time.Now().UTC(), 3)
	doctors := seedDoctors(calendar)

	emails := map[string]bool{}
	for _, d := range doctors {
		assert.False(t, emails[d.Email], "duplicate email %s", d.Email)
		emails[d.Email] = true
		assert.Positive(t, d.ConsultationFee)
		assert.Len(t, d.Availability, 3)
	}
}

func TestNewAdminUser(t *testing.T) {
	hasher := auth.NewBcryptHasher(4)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	user, err := newAdminUser("  Root@Corp.Test ", "correct-horse-battery", hasher, now)
	require.NoError(t, err)
	assert.Equal(t, "root@corp.test", user.Email)
	assert.Equal(t, entities.UserRoleAdmin, user.Role)
	assert.True(t, user.IsActive)
	assert.NoError(t, hasher.Compare(user.PasswordHash, "correct-horse-battery"))

	_, err = newAdminUser("root", "correct-horse-battery", hasher, now)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = newAdminUser("root@corp.test", "short", hasher, now)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

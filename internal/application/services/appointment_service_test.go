package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const (
	agentA = "agent-a"
	agentB = "agent-b"
)

func newAppointmentService(f *fixture, maxBulk int) *services.AppointmentService {
	return services.NewAppointmentService(f.tx, f.appts, f.doctors, f.payments, f.notifier, nil, maxBulk)
}

func booking(doctorID, date, slot string) services.CreateAppointmentInput {
	return services.CreateAppointmentInput{
		DoctorID:     doctorID,
		PatientName:  "Jane Perera",
		PatientEmail: "Jane@Example.com",
		PatientPhone: "0771234567",
		Date:         date,
		TimeSlot:     slot,
	}
}

func TestAppointmentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("books a pending appointment priced at the consultation fee", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)

		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))

		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusPending, appt.Status)
		assert.Equal(t, 2500.0, appt.Amount)
		assert.Equal(t, entities.PaymentMethodCorporateAccount, appt.PaymentMethod)
		assert.Equal(t, "jane@example.com", appt.PatientEmail)
		assert.Equal(t, agentA, appt.AgentID)
		assert.Nil(t, appt.PaymentID)
		assert.Equal(t, []entities.AppointmentEventType{entities.AppointmentEventCreated}, f.notifier.types())
	})

	t.Run("keeps an explicit amount and method", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)

		input := booking("doc-1", "2030-01-15", "09:00")
		amount := 1800.0
		input.Amount = &amount
		input.PaymentMethod = entities.PaymentMethodCard

		appt, err := svc.Create(ctx, agentA, input)

		require.NoError(t, err)
		assert.Equal(t, 1800.0, appt.Amount)
		assert.Equal(t, entities.PaymentMethodCard, appt.PaymentMethod)
	})

	t.Run("rejects an inactive doctor", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, false)
		svc := newAppointmentService(f, 50)

		_, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		assert.Equal(t, 0, f.appointmentCount())
	})

	t.Run("rejects an unknown doctor", func(t *testing.T) {
		f := newFixture()
		svc := newAppointmentService(f, 50)

		_, err := svc.Create(ctx, agentA, booking("missing", "2030-01-15", "09:00"))

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("validates every field", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)

		input := booking("doc-1", "15/01/2030", "09:00")
		input.PatientEmail = "not-an-email"

		_, err := svc.Create(ctx, agentA, input)

		require.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "date")
		assert.Contains(t, err.Error(), "patientEmail")
		assert.Empty(t, f.notifier.types())
	})

	t.Run("rejects blank slot and name after trimming", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)

		input := booking("doc-1", "2030-01-15", "   ")
		input.PatientName = "   "

		_, err := svc.Create(ctx, agentA, input)

		require.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "timeSlot")
		assert.Contains(t, err.Error(), "patientName")
		assert.Equal(t, 0, f.appointmentCount())
		assert.Empty(t, f.notifier.types())
	})

	t.Run("stores trimmed values", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)

		input := booking("doc-1", " 2030-01-15 ", " 09:00 ")
		input.PatientName = "  Jane Perera "

		appt, err := svc.Create(ctx, agentA, input)

		require.NoError(t, err)
		assert.Equal(t, "2030-01-15", appt.Date)
		assert.Equal(t, "09:00", appt.TimeSlot)
		assert.Equal(t, "Jane Perera", appt.PatientName)

		_, err = svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "09:00"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict), "the trimmed slot is the one held")
	})

	t.Run("rejects a day in the past", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)

		yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(entities.DateLayout)
		_, err := svc.Create(ctx, agentA, booking("doc-1", yesterday, "09:00"))

		require.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "past")
		assert.Equal(t, 0, f.appointmentCount())

		today := time.Now().UTC().Format(entities.DateLayout)
		_, err = svc.Create(ctx, agentA, booking("doc-1", today, "23:30"))
		assert.NoError(t, err, "today is still bookable")
	})
}

func TestAppointmentService_NoDoubleBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addDoctor("doc-1", 2500, true)
	svc := newAppointmentService(f, 50)

	first, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "09:00"))
	require.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Contains(t, err.Error(), "09:00")

	_, err = svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "09:30"))
	require.NoError(t, err, "a different slot is free")

	_, err = svc.Confirm(ctx, agentA, first.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "09:00"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict), "a confirmed appointment still holds its slot")

	_, err = svc.Cancel(ctx, agentA, first.ID, "patient travelling")
	require.NoError(t, err)
	_, err = svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "09:00"))
	assert.NoError(t, err, "cancelling frees the slot")
}

func TestAppointmentService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a reason of at least five characters", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		for _, reason := range []string{"", "abcd", "   ab   "} {
			_, err := svc.Cancel(ctx, agentA, appt.ID, reason)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "reason %q", reason)
		}

		stored, err := svc.Get(ctx, agentA, appt.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusPending, stored.Status)
		assert.Nil(t, stored.CancellationReason)
	})

	t.Run("records the trimmed reason", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		cancelled, err := svc.Cancel(ctx, agentA, appt.ID, "  sick  ")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "four characters after trimming")
		assert.Nil(t, cancelled)

		cancelled, err = svc.Cancel(ctx, agentA, appt.ID, "  doctor unavailable ")
		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.CancellationReason)
		assert.Equal(t, "doctor unavailable", *cancelled.CancellationReason)
	})

	t.Run("other agents cannot cancel", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, agentB, appt.ID, "not my booking")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAppointmentService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("creates exactly one paid payment", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		confirmed, err := svc.Confirm(ctx, agentA, appt.ID)
		require.NoError(t, err)

		assert.Equal(t, entities.AppointmentStatusConfirmed, confirmed.Status)
		require.NotNil(t, confirmed.Payment)
		require.NotNil(t, confirmed.PaymentID)
		assert.Equal(t, confirmed.Payment.ID, *confirmed.PaymentID)
		assert.Equal(t, entities.PaymentStatusPaid, confirmed.Payment.Status)
		assert.Equal(t, 2500.0, confirmed.Payment.Amount)
		assert.Equal(t, entities.PaymentMethodCorporateAccount, confirmed.Payment.Method)
		assert.NotNil(t, confirmed.Payment.PaidAt)
		assert.Regexp(t, `^TXN-\d{8}-[0-9A-F]{8}$`, confirmed.Payment.TransactionRef)

		_, err = svc.Confirm(ctx, agentA, appt.ID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Equal(t, 1, f.db.paymentCount(appt.ID))
	})

	t.Run("a cancelled appointment cannot be confirmed", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, agentA, appt.ID, "plans changed")
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, agentA, appt.ID)

		require.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "invalid status transition from CANCELLED to CONFIRMED")
		assert.Equal(t, 0, f.db.paymentCount(appt.ID))
	})
}

func TestAppointmentService_TerminalStatesAreFinal(t *testing.T) {
	ctx := context.Background()

	for _, terminal := range []entities.AppointmentStatus{
		entities.AppointmentStatusCancelled,
		entities.AppointmentStatusCompleted,
		entities.AppointmentStatusNoShow,
	} {
		t.Run(string(terminal), func(t *testing.T) {
			f := newFixture()
			f.addDoctor("doc-1", 2500, true)
			svc := newAppointmentService(f, 50)
			appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
			require.NoError(t, err)

			if terminal == entities.AppointmentStatusCancelled {
				_, err = svc.Cancel(ctx, agentA, appt.ID, "no longer needed")
			} else {
				_, err = svc.Confirm(ctx, agentA, appt.ID)
				require.NoError(t, err)
				_, err = svc.UpdateStatus(ctx, appt.ID, terminal, "")
			}
			require.NoError(t, err)

			for _, next := range []entities.AppointmentStatus{
				entities.AppointmentStatusPending,
				entities.AppointmentStatusConfirmed,
				entities.AppointmentStatusCancelled,
				entities.AppointmentStatusCompleted,
				entities.AppointmentStatusNoShow,
			} {
				_, err := svc.UpdateStatus(ctx, appt.ID, next, "trying again")
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "%s -> %s", terminal, next)
			}

			notes := "late note"
			_, err = svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{Notes: &notes})
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

			stored, err := svc.Get(ctx, "", appt.ID)
			require.NoError(t, err)
			assert.Equal(t, terminal, stored.Status)
		})
	}
}

func TestAppointmentService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addDoctor("doc-1", 2500, true)
	svc := newAppointmentService(f, 50)
	appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, appt.ID, "ARCHIVED", "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.UpdateStatus(ctx, appt.ID, entities.AppointmentStatusCompleted, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "PENDING cannot complete")

	confirmed, err := svc.UpdateStatus(ctx, appt.ID, entities.AppointmentStatusConfirmed, "")
	require.NoError(t, err)
	assert.NotNil(t, confirmed.Payment, "confirming through the admin path still records a payment")

	_, err = svc.UpdateStatus(ctx, appt.ID, entities.AppointmentStatusCancelled, "no")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "the reason rule applies to admins too")

	completed, err := svc.UpdateStatus(ctx, appt.ID, entities.AppointmentStatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, entities.AppointmentStatusCompleted, completed.Status)
	assert.Equal(t, []entities.AppointmentEventType{
		entities.AppointmentEventCreated,
		entities.AppointmentEventConfirmed,
		entities.AppointmentEventStatusChanged,
	}, f.notifier.types())
}

func TestAppointmentService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("moving to a taken slot conflicts", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		_, err := svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "10:00"))
		require.NoError(t, err)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		slot := "10:00"
		_, err = svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{TimeSlot: &slot})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))

		same := "09:00"
		name := "Jane P."
		updated, err := svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{TimeSlot: &same, PatientName: &name})
		require.NoError(t, err, "keeping its own slot is not a conflict")
		assert.Equal(t, "Jane P.", updated.PatientName)

		date := "2030-01-16"
		moved, err := svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{Date: &date, TimeSlot: &slot})
		require.NoError(t, err)
		assert.Equal(t, "2030-01-16", moved.Date)
		assert.Equal(t, "10:00", moved.TimeSlot)
	})

	t.Run("confirmed appointments accept notes only", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)
		_, err = svc.Confirm(ctx, agentA, appt.ID)
		require.NoError(t, err)

		amount := 10.0
		_, err = svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{Amount: &amount})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

		notes := "bring previous reports"
		updated, err := svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, notes, updated.Notes)
		assert.Equal(t, 2500.0, updated.Amount)
	})

	t.Run("no change emits no event", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		_, err = svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{})
		require.NoError(t, err)
		assert.Equal(t, []entities.AppointmentEventType{entities.AppointmentEventCreated}, f.notifier.types())
	})

	t.Run("blank slot or name is rejected and nothing changes", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		blank := "  "
		_, err = svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{TimeSlot: &blank})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		_, err = svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{PatientName: &blank})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

		stored, err := svc.Get(ctx, agentA, appt.ID)
		require.NoError(t, err)
		assert.Equal(t, "09:00", stored.TimeSlot)
		assert.Equal(t, "Jane Perera", stored.PatientName)
		assert.Equal(t, []entities.AppointmentEventType{entities.AppointmentEventCreated}, f.notifier.types())
	})

	t.Run("cannot move into the past", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)
		appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		past := "2020-03-01"
		_, err = svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{Date: &past})
		require.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "past")
	})
}

func TestAppointmentService_BulkCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("three succeed and two fail", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		f.addDoctor("doc-off", 2500, false)
		svc := newAppointmentService(f, 50)
		_, err := svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "09:00"))
		require.NoError(t, err)

		inputs := []services.CreateAppointmentInput{
			booking("doc-1", "2030-01-15", "10:00"),
			booking("doc-1", "2030-01-15", "09:00"),
			booking("doc-1", "2030-01-15", "11:00"),
			booking("doc-off", "2030-01-15", "10:00"),
			booking("doc-1", "2030-01-16", "10:00"),
		}

		result, err := svc.BulkCreate(ctx, agentA, inputs)

		require.NoError(t, err)
		assert.Len(t, result.Created, 3)
		require.Len(t, result.Failed, 2)
		assert.Equal(t, 1, result.Failed[0].Index)
		assert.Contains(t, result.Failed[0].Error, "already booked")
		assert.Equal(t, 3, result.Failed[1].Index)
		assert.Contains(t, result.Failed[1].Error, "inactive")
		assert.Equal(t, 4, f.appointmentCount())
	})

	t.Run("duplicates within one batch conflict with each other", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)

		result, err := svc.BulkCreate(ctx, agentA, []services.CreateAppointmentInput{
			booking("doc-1", "2030-01-15", "09:00"),
			booking("doc-1", "2030-01-15", "09:00"),
		})

		require.NoError(t, err)
		assert.Len(t, result.Created, 1)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, 1, result.Failed[0].Index)
	})

	t.Run("all failing leaves nothing behind", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 50)

		bad := booking("doc-1", "2030-01-15", "09:00")
		bad.PatientEmail = "nope"
		result, err := svc.BulkCreate(ctx, agentA, []services.CreateAppointmentInput{
			bad,
			booking("missing", "2030-01-15", "09:00"),
		})

		require.NoError(t, err)
		assert.Empty(t, result.Created)
		assert.Len(t, result.Failed, 2)
		assert.Equal(t, 0, f.appointmentCount())
		assert.Empty(t, f.notifier.types())
	})

	t.Run("enforces batch bounds", func(t *testing.T) {
		f := newFixture()
		f.addDoctor("doc-1", 2500, true)
		svc := newAppointmentService(f, 2)

		_, err := svc.BulkCreate(ctx, agentA, nil)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

		inputs := make([]services.CreateAppointmentInput, 3)
		for i := range inputs {
			inputs[i] = booking("doc-1", "2030-01-15", fmt.Sprintf("1%d:00", i))
		}
		_, err = svc.BulkCreate(ctx, agentA, inputs)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Equal(t, 0, f.appointmentCount())
	})
}

func TestAppointmentService_ListUnpaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addDoctor("doc-1", 2500, true)
	svc := newAppointmentService(f, 50)

	pending, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
	require.NoError(t, err)
	paid, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "10:00"))
	require.NoError(t, err)
	cancelled, err := svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "11:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "12:00"))
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, agentA, paid.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, agentA, cancelled.ID, "duplicate booking")
	require.NoError(t, err)

	unpaid, err := svc.ListUnpaid(ctx, agentA)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, pending.ID, unpaid[0].ID)
}

func TestAppointmentService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addDoctor("doc-1", 2500, true)
	svc := newAppointmentService(f, 50)

	_, err := svc.List(ctx, repositories.AppointmentFilter{Status: "LOST"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.List(ctx, repositories.AppointmentFilter{DateFrom: "2030-02-01", DateTo: "2030-01-01"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, agentB, booking("doc-1", "2030-01-15", "10:00"))
	require.NoError(t, err)

	page, err := svc.List(ctx, repositories.AppointmentFilter{
		AgentID: agentA,
		Page:    paramsFor(1, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Items, 1)
}

func TestAppointmentService_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addDoctor("doc-1", 3000, true)
	svc := newAppointmentService(f, 50)

	appt, err := svc.Create(ctx, agentA, booking("doc-1", "2030-03-01", "14:00"))
	require.NoError(t, err)

	notes := "fasting required"
	_, err = svc.Update(ctx, agentA, appt.ID, services.UpdateAppointmentInput{Notes: &notes})
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, agentA, appt.ID)
	require.NoError(t, err)

	completed, err := svc.UpdateStatus(ctx, appt.ID, entities.AppointmentStatusCompleted, "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, agentA, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.AppointmentStatusCompleted, got.Status)
	assert.Equal(t, notes, got.Notes)
	require.NotNil(t, got.Doctor)
	assert.Equal(t, "doc-1", got.Doctor.ID)
	require.NotNil(t, got.Payment)
	assert.Equal(t, confirmed.Payment.ID, got.Payment.ID)
	assert.Equal(t, completed.PaymentID, got.PaymentID)

	_, err = svc.Get(ctx, agentB, appt.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = svc.Create(ctx, agentB, booking("doc-1", "2030-03-01", "14:00"))
	assert.NoError(t, err, "a completed appointment no longer holds its slot")

	assert.Equal(t, []entities.AppointmentEventType{
		entities.AppointmentEventCreated,
		entities.AppointmentEventUpdated,
		entities.AppointmentEventConfirmed,
		entities.AppointmentEventStatusChanged,
		entities.AppointmentEventCreated,
	}, f.notifier.types())
}
